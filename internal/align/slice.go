package align

// SliceWithEnd returns data[start:end] extended by the element at end, so
// the position at end is included. An inverted range (end < start) or an
// end outside the data is the canonical "no data" case and yields nil
// rather than panicking; end < start occurs naturally when the source is
// empty and end defaults to len-1 == -1.
func SliceWithEnd[T any](data []T, start, end int) []T {
	if start < 0 || end < start || end >= len(data) {
		return nil
	}
	out := make([]T, end-start+1)
	copy(out, data[start:end+1])
	return out
}
