package drbg

import (
	"encoding/binary"
	"fmt"
)

// StateSize is the length of the serialized state: key, counter, then the
// generation count as a big-endian uint64.
const StateSize = KeySize + BlockSize + 8

// MarshalBinary implements encoding.BinaryMarshaler.
func (d *DRBG) MarshalBinary() ([]byte, error) {
	out := make([]byte, StateSize)
	copy(out, d.key[:])
	copy(out[KeySize:], d.v[:])
	binary.BigEndian.PutUint64(out[KeySize+BlockSize:], d.generationCount)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The previous state
// of d is left untouched on error.
func (d *DRBG) UnmarshalBinary(data []byte) error {
	if len(data) != StateSize {
		return fmt.Errorf("got %d bytes, want %d: %w", len(data), StateSize, ErrInvalidStateLength)
	}
	copy(d.key[:], data[:KeySize])
	copy(d.v[:], data[KeySize:KeySize+BlockSize])
	d.generationCount = binary.BigEndian.Uint64(data[KeySize+BlockSize:])
	return nil
}

// Erase zeroes the key and counter and marks d uninitialized.
func (d *DRBG) Erase() {
	clear(d.key[:])
	clear(d.v[:])
	d.generationCount = 0
}

// WithDRBG seeds a generator, passes it to fn and erases it when fn returns,
// fails or panics. The generator must not be retained by fn.
func WithDRBG(entropy, personalization []byte, fn func(*DRBG) error) error {
	d, err := New(entropy, personalization)
	if err != nil {
		return err
	}
	defer d.Erase()
	return fn(d)
}
