package drbg

import (
	"fmt"
)

// Generate returns n bytes of output and advances the state. A zero-length
// request still advances the state.
func (d *DRBG) Generate(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("requested %d bytes: %w", n, ErrInvalidLength)
	}
	out := make([]byte, n)
	if err := d.Fill(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fill overwrites dst with len(dst) bytes of output and advances the state,
// exactly like Generate(len(dst)).
func (d *DRBG) Fill(dst []byte) error {
	if !d.Initialized() {
		return ErrNotInitialized
	}

	block := newBlock(&d.key)
	var buf [BlockSize]byte
	for off := 0; off < len(dst); off += BlockSize {
		increment(&d.v)
		if len(dst)-off >= BlockSize {
			block.Encrypt(dst[off:off+BlockSize], d.v[:])
			continue
		}
		// Final partial block: the unused tail is discarded.
		block.Encrypt(buf[:], d.v[:])
		copy(dst[off:], buf[:])
	}
	clear(buf[:])

	d.update(nil)
	d.generationCount++
	return nil
}
