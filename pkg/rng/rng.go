// Package rng adapts the KAT generator to a generic "fill this buffer"
// interface and provides the entropy sources used to pick fresh seeds.
//
// Two kinds of sources live here:
//   - DRBGSource: deterministic output of the KAT DRBG, one generate call
//     per Read
//   - entropy sources (CryptoRNG, ChaCha20Rand, MT19937Rand, MultiRNG):
//     non-deterministic bytes for seeding a DRBG when the caller does not
//     supply a seed
//
// All sources are safe for concurrent use.
package rng

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/rayozzie/katrng/pkg/trace"
)

// RNG defines the core interface for all random number generators.
type RNG interface {
	// Read fills p with random bytes and returns the number of bytes written.
	// The returned error is non-nil only if the generator fails to provide
	// randomness.
	Read(ctx context.Context, p []byte) (n int, err error)
}

// ReadFull reads from r until p is full.
func ReadFull(ctx context.Context, r RNG, p []byte) error {
	offset := 0
	for offset < len(p) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(ctx, p[offset:])
		if err != nil {
			return err
		}
		offset += n
	}
	return nil
}

// Reader returns an io.Reader view of r bound to ctx.
func Reader(ctx context.Context, r RNG) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   RNG
}

func (c *ctxReader) Read(p []byte) (int, error) {
	return c.r.Read(c.ctx, p)
}

// MultiRNG XORs the output of all of its sources, so the result is at least
// as unpredictable as the strongest source.
type MultiRNG struct {
	// Sources is a slice of RNG implementations to combine
	Sources []RNG
	lock    sync.Mutex
}

// Read implements the RNG interface.
func (m *MultiRNG) Read(ctx context.Context, p []byte) (int, error) {
	log := trace.FromContext(ctx).WithPrefix("MULTI-RNG")
	log.Debugf("Generating %d random bytes from %d sources", len(p), len(m.Sources))

	m.lock.Lock()
	defer m.lock.Unlock()

	acc := make([]byte, len(p))
	tmp := make([]byte, len(p))
	for i, s := range m.Sources {
		if err := ReadFull(ctx, s, tmp); err != nil {
			log.Error(fmt.Errorf("random source #%d failed: %w", i+1, err))
			return 0, fmt.Errorf("random source #%d failed: %w", i+1, err)
		}
		for j := range acc {
			acc[j] ^= tmp[j]
		}
	}

	copy(p, acc)
	return len(p), nil
}

// DefaultEntropySource is the source used when none is named.
const DefaultEntropySource = "multi"

var entropySources = map[string]func() RNG{
	"crypto":   func() RNG { return &CryptoRNG{} },
	"chacha20": func() RNG { return NewChaCha20Rand() },
	"mt19937":  func() RNG { return NewMT19937Rand() },
	"multi":    NewDefaultRNG,
}

// EntropySourceNames lists the names accepted by NewEntropySource.
func EntropySourceNames() []string {
	names := make([]string, 0, len(entropySources))
	for name := range entropySources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEntropySource returns the named entropy source. An empty name selects
// DefaultEntropySource.
func NewEntropySource(name string) (RNG, error) {
	if name == "" {
		name = DefaultEntropySource
	}
	ctor, ok := entropySources[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown entropy source %q (want one of %s)", name, strings.Join(EntropySourceNames(), ", "))
	}
	return ctor(), nil
}

// NewDefaultRNG combines crypto/rand with an independently keyed ChaCha20
// keystream.
func NewDefaultRNG() RNG {
	return &MultiRNG{
		Sources: []RNG{
			&CryptoRNG{},
			NewChaCha20Rand(),
		},
	}
}
