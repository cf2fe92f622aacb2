package drbg

import "errors"

var (
	// ErrInvalidSeedLength is returned when entropy or personalization is
	// not exactly SeedSize bytes.
	ErrInvalidSeedLength = errors.New("invalid seed length")

	// ErrNotInitialized is returned when generating from a state that was
	// never seeded, or was erased.
	ErrNotInitialized = errors.New("drbg not initialized")

	// ErrInvalidLength is returned for a negative output length.
	ErrInvalidLength = errors.New("invalid output length")

	// ErrInvalidStateLength is returned when decoding a serialized state of
	// the wrong size.
	ErrInvalidStateLength = errors.New("invalid serialized state length")
)
