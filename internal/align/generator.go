package align

import (
	"fmt"
	"math"
	"sort"
	"time"

	"ChartAlign/internal/model"
)

// Bound selects one end of a clock range. The zero value means "absent":
// start defaults to 0 and end to the last decoded position.
type Bound struct {
	kind  boundKind
	index int
	at    time.Time
}

type boundKind int

const (
	boundNone boundKind = iota
	boundIndex
	boundTime
)

// BoundIndex bounds a range at a concrete decoded-clock index.
func BoundIndex(i int) Bound {
	return Bound{kind: boundIndex, index: i}
}

// BoundTime bounds a range at a timestamp. As a start it resolves to the
// first position at or after t, as an end to the last position at or
// before t.
func BoundTime(t time.Time) Bound {
	return Bound{kind: boundTime, at: t}
}

// Generator wraps one feed's raw stamp buffer and answers range queries
// against the decoded clock. The decoded sequence skips unfilled live
// slots, so its indices may differ from raw-buffer indices; everything
// returned by Times, ResolveRange and Clock speaks decoded indices.
type Generator struct {
	stamps []float64
	loc    *time.Location
}

// NewGenerator resolves the feed selector against the bundle and wraps the
// selected feed's clock. An empty selector picks the primary feed.
func NewGenerator(b *model.Bundle, feedName string) (*Generator, error) {
	f, err := b.ByName(feedName)
	if err != nil {
		return nil, fmt.Errorf("clock source: %w", err)
	}
	return &Generator{stamps: f.Stamps, loc: f.Loc}, nil
}

// Times decodes the stamp buffer into an ordered clock, skipping NaN slots.
// NaN stamps occur on live feeds for rows that are not filled yet.
func (g *Generator) Times() []time.Time {
	out := make([]time.Time, 0, len(g.stamps))
	for _, s := range g.stamps {
		if math.IsNaN(s) {
			continue
		}
		out = append(out, decodeStamp(s, g.loc))
	}
	return out
}

// ResolveRange turns symbolic bounds into concrete inclusive indices into
// times. A timestamp start resolves to the leftmost position >= t, a
// timestamp end to the rightmost position <= t. back > 0 overrides start
// with a "last back observations ending at end" window. The returned end
// may sit beyond the decoded clock; SliceWithEnd treats that as empty.
func (g *Generator) ResolveRange(times []time.Time, start, end Bound, back int) (int, int) {
	s := 0
	switch start.kind {
	case boundIndex:
		s = start.index
	case boundTime:
		s = sort.Search(len(times), func(i int) bool { return !times[i].Before(start.at) })
	}
	e := len(times) - 1
	switch end.kind {
	case boundIndex:
		e = end.index
	case boundTime:
		e = sort.Search(len(times), func(i int) bool { return times[i].After(end.at) }) - 1
	}
	if back > 0 {
		s = max(0, e-back+1)
	}
	return s, e
}

// Clock decodes the feed's clock, resolves the requested range and returns
// the inclusive slice together with the resolved indices. The indices are
// what a Handler needs to slice value buffers sharing this clock.
func (g *Generator) Clock(start, end Bound, back int) ([]time.Time, int, int) {
	times := g.Times()
	s, e := g.ResolveRange(times, start, end, back)
	return SliceWithEnd(times, s, e), s, e
}

// TimeAt decodes the stamp at a raw-buffer index. Unlike Times this is a
// direct positional lookup with no NaN skipping.
func (g *Generator) TimeAt(i int) time.Time {
	return decodeStamp(g.stamps[i], g.loc)
}

// decodeStamp converts a float Unix-seconds stamp into a time in loc.
func decodeStamp(stamp float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	sec, frac := math.Modf(stamp)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).In(loc)
}
