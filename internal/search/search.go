// Package search provides the binary-search helper used by the calendar
// engine to locate extents by position. Comparison is always done through
// an explicit three-way comparator supplied by the caller; compared values
// are never probed for comparison methods themselves.
package search

// Find binary-searches xs, which must be sorted ascending with respect to
// cmp, for an element matching the probe encoded in cmp. cmp returns a
// negative value when the probe sorts before its argument, zero on a match,
// and a positive value when the probe sorts after it.
//
// On a match the element's index is returned. Otherwise the negation of the
// insertion index is returned. A result of 0 is ambiguous between "found at
// index 0" and "insert at index 0"; callers that passed a probe which may
// be absent must check the element at index 0 themselves, or use FindOK.
func Find[T any](xs []T, cmp func(T) int) int {
	lo, hi := 0, len(xs)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		c := cmp(xs[mid])
		switch {
		case c == 0:
			return mid
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return -lo
}

// FindOK is Find without the zero ambiguity: it reports the insertion index
// and whether an exact match was found there.
func FindOK[T any](xs []T, cmp func(T) int) (int, bool) {
	i := Find(xs, cmp)
	if i > 0 {
		return i, true
	}
	i = -i
	return i, i < len(xs) && cmp(xs[i]) == 0
}
