// Package conv provides bounds-checked integer conversions.
//
// Use them where a value crosses into a fixed-width field: frame headers,
// bitmap positions. For conversions that are provably safe by construction
// (loop indices, bounded counters), use direct type casts instead.
package conv
