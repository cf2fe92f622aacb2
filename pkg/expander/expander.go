// Package expander implements the AES-256 seed expander (an extendable-output
// function) that ships alongside the KAT generator in the NIST PQC reference
// rng.c. Several submissions use it to stretch a 32-byte seed into a long
// deterministic byte string.
//
// The 16-byte counter block is laid out as
//
//	diversifier (8) || maxLen big-endian (4) || block counter big-endian (4)
//
// and each 16 bytes of output is the AES-256 encryption of that block under
// the seed. Output is served through an internal one-block buffer, so reads
// of any size concatenate to the same stream.
package expander

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// SeedSize is the expander key length.
	SeedSize = 32
	// DiversifierSize is the length of the diversifier prefix.
	DiversifierSize = 8

	blockSize = aes.BlockSize
)

var (
	ErrBadSeedLength        = errors.New("seed expander: bad seed length")
	ErrBadDiversifierLength = errors.New("seed expander: bad diversifier length")
	ErrRequestTooLong       = errors.New("seed expander: request exceeds remaining length")
)

// Expander is a seeded XOF instance. It is not safe for concurrent use.
type Expander struct {
	block     cipher.Block
	ctr       [blockSize]byte
	buffer    [blockSize]byte
	pos       int
	remaining uint32
}

// New returns an expander for seed and diversifier that will serve fewer
// than maxLen bytes in total.
func New(seed, diversifier []byte, maxLen uint32) (*Expander, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("got %d bytes, want %d: %w", len(seed), SeedSize, ErrBadSeedLength)
	}
	if len(diversifier) != DiversifierSize {
		return nil, fmt.Errorf("got %d bytes, want %d: %w", len(diversifier), DiversifierSize, ErrBadDiversifierLength)
	}
	block, err := aes.NewCipher(seed)
	if err != nil {
		return nil, err
	}

	x := &Expander{
		block:     block,
		pos:       blockSize,
		remaining: maxLen,
	}
	copy(x.ctr[:DiversifierSize], diversifier)
	binary.BigEndian.PutUint32(x.ctr[8:12], maxLen)
	return x, nil
}

// Remaining returns the byte budget left. A read must request strictly
// fewer bytes than this.
func (x *Expander) Remaining() uint32 {
	return x.remaining
}

// Read fills p entirely or, if len(p) is not below Remaining, reads nothing
// and returns ErrRequestTooLong.
func (x *Expander) Read(p []byte) (int, error) {
	if uint64(len(p)) >= uint64(x.remaining) {
		return 0, fmt.Errorf("requested %d bytes with %d remaining: %w", len(p), x.remaining, ErrRequestTooLong)
	}
	x.remaining -= uint32(len(p))

	off := 0
	for off < len(p) {
		if x.pos == blockSize {
			x.refill()
		}
		n := copy(p[off:], x.buffer[x.pos:])
		x.pos += n
		off += n
	}
	return len(p), nil
}

func (x *Expander) refill() {
	x.block.Encrypt(x.buffer[:], x.ctr[:])
	x.pos = 0
	binary.BigEndian.PutUint32(x.ctr[12:], binary.BigEndian.Uint32(x.ctr[12:])+1)
}
