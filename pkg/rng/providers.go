package rng

import (
	"context"
	"crypto/cipher"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"sync"

	"github.com/rayozzie/katrng/pkg/trace"
	"github.com/seehuhn/mt19937"
	"golang.org/x/crypto/chacha20"
)

// CryptoRNG reads from the operating system's CSPRNG via crypto/rand.
type CryptoRNG struct {
	lock sync.Mutex
}

// Read implements the RNG interface.
func (r *CryptoRNG) Read(ctx context.Context, p []byte) (int, error) {
	log := trace.FromContext(ctx).WithPrefix("CRYPTO-RNG")
	log.Debugf("Reading %d random bytes from crypto/rand", len(p))

	r.lock.Lock()
	defer r.lock.Unlock()

	n, err := crand.Read(p)
	if err != nil {
		log.Error(fmt.Errorf("crypto/rand read failed: %w", err))
		return n, fmt.Errorf("crypto/rand read failed: %w", err)
	}
	return n, nil
}

// ChaCha20Rand emits a ChaCha20 keystream under a key and nonce drawn from
// crypto/rand at construction.
type ChaCha20Rand struct {
	lock   sync.Mutex
	stream cipher.Stream
}

// NewChaCha20Rand creates a new ChaCha20-based random number generator.
// It panics if crypto/rand is unavailable.
func NewChaCha20Rand() *ChaCha20Rand {
	key := make([]byte, chacha20.KeySize)
	nonce := make([]byte, chacha20.NonceSize)
	if _, err := crand.Read(key); err != nil {
		panic(fmt.Sprintf("Failed to generate ChaCha20 key: %v", err))
	}
	if _, err := crand.Read(nonce); err != nil {
		panic(fmt.Sprintf("Failed to generate ChaCha20 nonce: %v", err))
	}
	return newChaCha20Rand(key, nonce)
}

func newChaCha20Rand(key, nonce []byte) *ChaCha20Rand {
	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		panic(fmt.Sprintf("Failed to create ChaCha20 stream: %v", err))
	}
	return &ChaCha20Rand{stream: stream}
}

// Read implements the RNG interface.
func (c *ChaCha20Rand) Read(ctx context.Context, p []byte) (int, error) {
	log := trace.FromContext(ctx).WithPrefix("CHACHA20-RNG")
	log.Debugf("Reading %d random bytes from ChaCha20 stream", len(p))

	c.lock.Lock()
	defer c.lock.Unlock()

	clear(p)
	c.stream.XORKeyStream(p, p)
	return len(p), nil
}

// MT19937Rand is a Mersenne Twister seeded from crypto/rand. It is not a
// cryptographic generator; only use it mixed into a MultiRNG or for
// throwaway seeds.
type MT19937Rand struct {
	lock sync.Mutex
	src  *mrand.Rand
}

// NewMT19937Rand creates a new Mersenne Twister-based random number generator
func NewMT19937Rand() *MT19937Rand {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("Failed to generate MT19937 seed: %v", err))
	}
	return newMT19937Rand(int64(binary.LittleEndian.Uint64(seed[:])))
}

func newMT19937Rand(seed int64) *MT19937Rand {
	mt := mt19937.New()
	mt.Seed(seed)
	return &MT19937Rand{src: mrand.New(mt)}
}

// Read implements the RNG interface.
func (m *MT19937Rand) Read(ctx context.Context, b []byte) (int, error) {
	log := trace.FromContext(ctx).WithPrefix("MT19937-RNG")
	log.Debugf("Reading %d random bytes from MT19937 source", len(b))

	m.lock.Lock()
	defer m.lock.Unlock()

	for i := 0; i < len(b); i += 8 {
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], m.src.Uint64())
		copy(b[i:], word[:])
	}
	return len(b), nil
}
