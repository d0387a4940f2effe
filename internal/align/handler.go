package align

import (
	"math"
	"slices"
	"time"

	"ChartAlign/internal/model"
)

// Handler aligns value buffers sampled on one source clock onto a
// reference clock. clk is the already-sliced source clock as returned by
// Generator.Clock; start and end are the matching indices used to cut the
// same window out of every value buffer sharing that clock. A Handler
// never mutates its inputs and is safe for concurrent use.
type Handler struct {
	clk   []time.Time
	start int
	end   int
}

// NewHandler creates a Handler for one (source clock, range) pair.
func NewHandler(clk []time.Time, start, end int) *Handler {
	return &Handler{clk: clk, start: start, end: end}
}

// Clock returns the handler's source clock.
func (h *Handler) Clock() []time.Time {
	return h.clk
}

// Resample projects values onto the reference clock ref, emitting exactly
// one output per reference instant.
//
// The walk keeps a forward-only cursor into the source window so total work
// is O(window + reference). The last adopted value carries forward across
// reference instants with no exact source match (forward-fill). When the
// source clock overshoots a reference instant, fillGaps adopts the next
// source value immediately instead of holding the stale one; without
// fillGaps the overshoot is only bridged by a non-missing sample already
// passed within the same scan. An overshoot that bridges nothing leaves the
// cursor in place, so the same source position is still available to the
// next reference instant. Missing cells are NaN.
func (h *Handler) Resample(values []float64, ref []time.Time, fillGaps bool) []float64 {
	segment := SliceWithEnd(values, h.start, h.end)
	n := min(len(segment), len(h.clk))

	out := make([]float64, 0, len(ref))
	cursor := 0
	v := math.NaN()
	for _, c := range ref {
		// Most recent non-missing sample passed while scanning for c,
		// needed for the overshoot decision.
		idxPrev := -1
		var scPrev time.Time
	scan:
		for i := cursor; i < n; i++ {
			sc := h.clk[i]
			switch {
			case sc.Before(c):
				if !math.IsNaN(segment[i]) {
					v = segment[i]
				}
			case sc.Equal(c):
				// A missing sample at an exact match must not
				// overwrite an already-adopted candidate.
				if math.IsNaN(v) || !math.IsNaN(segment[i]) {
					v = segment[i]
				}
				cursor = i + 1
				break scan
			default: // source clock overshot c
				if fillGaps || (idxPrev >= 0 && scPrev.Before(c)) {
					if idxPrev >= 0 {
						v = segment[idxPrev]
						cursor = idxPrev + 1
					} else {
						v = segment[i]
						cursor = i
					}
				}
				break scan
			}
			if !math.IsNaN(segment[i]) {
				scPrev, idxPrev = sc, i
			}
		}
		out = append(out, v)
	}
	return out
}

// Series is Resample with the reference clock defaulting to the handler's
// own source clock when ref is nil.
func (h *Handler) Series(values []float64, ref []time.Time, fillGaps bool) []float64 {
	if ref == nil {
		ref = h.clk
	}
	return h.Resample(values, ref, fillGaps)
}

// Table aligns every line not listed in skip onto ref and assembles the
// results into a table. Columns keep the input order and are named
// prefix+line name; the row index is the reference clock.
func (h *Handler) Table(lines []model.Line, ref []time.Time, prefix string, skip []string, fillGaps bool) *model.Table {
	if ref == nil {
		ref = h.clk
	}
	t := &model.Table{Index: ref}
	for _, ln := range lines {
		if slices.Contains(skip, ln.Name) {
			continue
		}
		t.Columns = append(t.Columns, model.Column{
			Name:   prefix + ln.Name,
			Values: h.Resample(ln.Values, ref, fillGaps),
		})
	}
	return t
}
