package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownFeed is returned when a selector names a feed that was never
// registered with the bundle.
var ErrUnknownFeed = errors.New("unknown feed")

// Line is one named value buffer of a feed. Values are positionally aligned
// with the feed's stamp buffer: Values[i] was observed at Stamps[i].
// NaN marks a missing observation.
type Line struct {
	Name   string
	Values []float64
}

// Feed holds one data source: a raw float-encoded stamp buffer, the location
// its stamps decode into, and the ordered value lines sampled on that clock.
// Stamps are Unix seconds with an optional fractional part; NaN marks a
// live-data slot that has not been filled yet.
type Feed struct {
	Name   string
	Loc    *time.Location
	Stamps []float64
	Lines  []Line
}

// Line returns the value buffer with the given name.
func (f *Feed) Line(name string) ([]float64, bool) {
	for i := range f.Lines {
		if f.Lines[i].Name == name {
			return f.Lines[i].Values, true
		}
	}
	return nil, false
}

// Bundle is an ordered set of feeds. The first feed added is the primary one
// unless another is explicitly marked primary.
type Bundle struct {
	feeds   []*Feed
	primary int
}

// Add appends a feed to the bundle.
func (b *Bundle) Add(f *Feed) {
	b.feeds = append(b.feeds, f)
}

// MarkPrimary flags the most recently added feed as the primary one.
func (b *Bundle) MarkPrimary() {
	if len(b.feeds) > 0 {
		b.primary = len(b.feeds) - 1
	}
}

// Primary returns the primary feed, or nil for an empty bundle.
func (b *Bundle) Primary() *Feed {
	if len(b.feeds) == 0 {
		return nil
	}
	return b.feeds[b.primary]
}

// ByName resolves a feed selector. An empty name selects the primary feed.
func (b *Bundle) ByName(name string) (*Feed, error) {
	if name == "" {
		if f := b.Primary(); f != nil {
			return f, nil
		}
		return nil, fmt.Errorf("%w: empty bundle", ErrUnknownFeed)
	}
	for _, f := range b.feeds {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFeed, name)
}

// Feeds returns the feeds in registration order.
func (b *Bundle) Feeds() []*Feed {
	return b.feeds
}
