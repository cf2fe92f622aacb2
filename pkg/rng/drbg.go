package rng

import (
	"context"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"sync"

	"github.com/rayozzie/katrng/pkg/drbg"
	"github.com/rayozzie/katrng/pkg/trace"
)

// DRBGSource exposes a KAT DRBG through the RNG interface. Each Read is
// exactly one generate call, so the byte stream depends on how callers size
// their reads, just as it does for randombytes() in the reference harness.
type DRBGSource struct {
	lock sync.Mutex
	d    *drbg.DRBG
}

// NewDRBGSource seeds a DRBG and wraps it.
func NewDRBGSource(entropy, personalization []byte) (*DRBGSource, error) {
	d, err := drbg.New(entropy, personalization)
	if err != nil {
		return nil, err
	}
	return &DRBGSource{d: d}, nil
}

// WrapDRBG takes ownership of d; the caller must not use d directly
// afterwards.
func WrapDRBG(d *drbg.DRBG) *DRBGSource {
	return &DRBGSource{d: d}
}

// Read implements the RNG interface.
func (s *DRBGSource) Read(ctx context.Context, p []byte) (int, error) {
	log := trace.FromContext(ctx).WithPrefix("KAT-DRBG")

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.d.Fill(p); err != nil {
		log.Error(fmt.Errorf("generate %d bytes failed: %w", len(p), err))
		return 0, err
	}
	log.Debugf("Generated %d bytes (generation %d)", len(p), s.d.GenerationCount()-1)
	v := s.d.Counter()
	log.Tracef("counter now %X", v[:])
	return len(p), nil
}

var _ mrand.Source64 = (*DRBGSource)(nil)

// Uint64 draws 8 bytes in a single generate call and decodes them
// little-endian. It panics if the generator has been closed, since
// math/rand sources can not return errors.
func (s *DRBGSource) Uint64() uint64 {
	var b [8]byte
	s.fill(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Uint32 is Uint64 with a 4-byte generate call.
func (s *DRBGSource) Uint32() uint32 {
	var b [4]byte
	s.fill(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// Int63 implements math/rand.Source.
func (s *DRBGSource) Int63() int64 {
	return int64(s.Uint64() & (1<<63 - 1))
}

// Seed is a no-op; reseed through drbg.DRBG.Init instead.
func (s *DRBGSource) Seed(int64) {}

func (s *DRBGSource) fill(b []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.d.Fill(b); err != nil {
		panic(fmt.Sprintf("KAT-DRBG: %v", err))
	}
}

// Snapshot returns the serialized state, for persisting between runs.
func (s *DRBGSource) Snapshot() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.d.MarshalBinary()
}

// GenerationCount reports the wrapped generator's count.
func (s *DRBGSource) GenerationCount() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.d.GenerationCount()
}

// Close erases the wrapped generator. Later reads fail with
// drbg.ErrNotInitialized.
func (s *DRBGSource) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.d.Erase()
	return nil
}
