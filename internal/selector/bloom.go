// internal/selector/bloom.go
package selector

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// BloomBits returns the two-bit signature of a class name in a 64-bit bloom
// filter. An element's filter is the OR of the signatures of its classes, so
// a compound whose class mask is not a subset of it can be rejected without
// looking at the class list. False positives are possible, false negatives are not.
func BloomBits(class string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(class); i++ {
		h ^= uint64(class[i])
		h *= fnvPrime64
	}
	return 1<<(h&63) | 1<<((h>>32)&63)
}

// BloomFilter builds a filter from a set of class names.
func BloomFilter(classes []string) uint64 {
	var f uint64
	for _, c := range classes {
		f |= BloomBits(c)
	}
	return f
}

// MayContain reports whether every bit of mask is present in filter.
func MayContain(filter, mask uint64) bool {
	return filter&mask == mask
}
