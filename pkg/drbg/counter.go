package drbg

// increment adds one to the big-endian counter v, wrapping at 2^128.
func increment(v *[BlockSize]byte) {
	for i := BlockSize - 1; i >= 0; i-- {
		v[i]++
		if v[i] != 0 {
			return
		}
	}
}
