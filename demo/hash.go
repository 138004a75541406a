// This file ports the original implementation's compile-time send-prop name
// hash (original_source/src/consthash.rs) to a runtime equivalent: Go has no
// const fn, so instead of hashing at compile time we hash once per
// flattened-table build and cache the result alongside each
// SendPropDefinition, keeping the entity decoder's hot path a uint64
// comparison instead of a string comparison.

package demo

// FNVHash computes the FNV-1a hash of the concatenation of parts, with a
// 0xFF sentinel byte mixed in after each part the way the original's
// push_string appended a sentinel after every pushed string, so that
// FNVHash("a", "b") differs from FNVHash("ab").
func FNVHash(parts ...string) uint64 {
	const (
		offsetBasis uint64 = 0xcbf29ce484222325
		prime       uint64 = 0x100000001b3
	)
	hash := offsetBasis
	mix := func(b byte) {
		hash ^= uint64(b)
		hash *= prime
	}
	for _, part := range parts {
		for j := 0; j < len(part); j++ {
			mix(part[j])
		}
		mix(0xff)
	}
	return hash
}
