package drbg

// update derives a new key and counter from three encrypted counter blocks,
// optionally XORed with mix. The state is replaced as a whole only after the
// scratch buffer is complete.
func (d *DRBG) update(mix *[SeedSize]byte) {
	var temp [SeedSize]byte

	block := newBlock(&d.key)
	v := d.v
	for i := 0; i < SeedSize; i += BlockSize {
		increment(&v)
		block.Encrypt(temp[i:i+BlockSize], v[:])
	}

	if mix != nil {
		for i := range temp {
			temp[i] ^= mix[i]
		}
	}

	copy(d.key[:], temp[:KeySize])
	copy(d.v[:], temp[KeySize:])
	clear(temp[:])
}
