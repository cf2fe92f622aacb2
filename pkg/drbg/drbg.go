// Package drbg implements the AES-256 counter-mode deterministic random bit
// generator that the NIST post-quantum submissions use to produce their
// known-answer test (KAT) vectors.
//
// Given the same 48-byte seed, the generator always emits the same byte
// sequence as the reference randombytes() implementation. That is its only
// contract: it exists so that independent implementations of a scheme can be
// checked against the published .rsp files.
//
// State model:
//   - key: 32-byte AES-256 key
//   - v: 16-byte counter, a big-endian unsigned integer that wraps mod 2^128
//   - generation count: number of completed generate calls plus one
//     (the reference calls this reseed_counter), zero when uninitialized
//
// Every Generate call encrypts ceil(n/16) fresh counter blocks and then runs
// the update transform once, so the key used for one call's output is never
// used again.
//
// Usage warnings:
//   - Do not use this generator for real key generation
//   - A DRBG value is not safe for concurrent use; see package rng for a
//     locked adapter
package drbg

import (
	"fmt"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// BlockSize is the AES block and counter length in bytes.
	BlockSize = 16
	// SeedSize is the length of entropy input and personalization strings.
	SeedSize = KeySize + BlockSize
)

// DRBG holds the complete generator state. The zero value is an
// uninitialized generator; use New, FromSeed or Init before generating.
type DRBG struct {
	key             [KeySize]byte
	v               [BlockSize]byte
	generationCount uint64
}

// New returns a generator seeded from entropy and an optional
// personalization string. Both must be exactly SeedSize bytes; a nil or
// empty personalization means none.
func New(entropy, personalization []byte) (*DRBG, error) {
	d := &DRBG{}
	if err := d.Init(entropy, personalization); err != nil {
		return nil, err
	}
	return d, nil
}

// FromSeed returns a generator seeded from a fixed-size seed with no
// personalization.
func FromSeed(seed [SeedSize]byte) *DRBG {
	d := &DRBG{}
	d.instantiate(&seed)
	return d
}

// Init (re)seeds d. Any prior state is discarded.
func (d *DRBG) Init(entropy, personalization []byte) error {
	if len(entropy) != SeedSize {
		return fmt.Errorf("entropy input is %d bytes, want %d: %w", len(entropy), SeedSize, ErrInvalidSeedLength)
	}
	if len(personalization) != 0 && len(personalization) != SeedSize {
		return fmt.Errorf("personalization string is %d bytes, want %d: %w", len(personalization), SeedSize, ErrInvalidSeedLength)
	}

	var seed [SeedSize]byte
	copy(seed[:], entropy)
	for i := range personalization {
		seed[i] ^= personalization[i]
	}
	d.instantiate(&seed)
	return nil
}

func (d *DRBG) instantiate(seed *[SeedSize]byte) {
	d.key = [KeySize]byte{}
	d.v = [BlockSize]byte{}
	d.update(seed)
	d.generationCount = 1
}

// Initialized reports whether d has been seeded.
func (d *DRBG) Initialized() bool {
	return d.generationCount != 0
}

// Key returns a copy of the current AES key.
func (d *DRBG) Key() [KeySize]byte {
	return d.key
}

// Counter returns a copy of the current counter block.
func (d *DRBG) Counter() [BlockSize]byte {
	return d.v
}

// GenerationCount returns 1 after seeding, incremented by every Generate
// call. It is informational and does not affect output.
func (d *DRBG) GenerationCount() uint64 {
	return d.generationCount
}
