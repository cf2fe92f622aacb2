package rng

import (
	"bytes"
	"context"
	"errors"
	"io"
	mrand "math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rayozzie/katrng/pkg/drbg"
	"github.com/rayozzie/katrng/pkg/trace"
)

func testContext() context.Context {
	tracer := trace.NewTracer("TEST", trace.LogLevelTrace)
	tracer.SetOutput(io.Discard)
	return trace.WithContext(context.Background(), tracer)
}

func masterEntropy() []byte {
	e := make([]byte, drbg.SeedSize)
	for i := range e {
		e[i] = byte(i)
	}
	return e
}

// TestRNGInterfaces verifies that every source fills the whole buffer.
func TestRNGInterfaces(t *testing.T) {
	ctx := testContext()
	buf := make([]byte, 1024)

	src, err := NewDRBGSource(masterEntropy(), nil)
	if err != nil {
		t.Fatalf("NewDRBGSource failed: %v", err)
	}
	rngs := map[string]RNG{
		"crypto":   &CryptoRNG{},
		"chacha20": NewChaCha20Rand(),
		"mt19937":  NewMT19937Rand(),
		"multi":    NewDefaultRNG(),
		"drbg":     src,
	}

	for name, r := range rngs {
		n, err := r.Read(ctx, buf)
		if err != nil {
			t.Errorf("%s failed to read random bytes: %v", name, err)
		}
		if n != len(buf) {
			t.Errorf("%s returned short read: got %d, want %d", name, n, len(buf))
		}
	}
}

// TestDRBGSourceMatchesEngine checks that one Read is one generate call.
func TestDRBGSourceMatchesEngine(t *testing.T) {
	ctx := testContext()
	src, err := NewDRBGSource(masterEntropy(), nil)
	if err != nil {
		t.Fatalf("NewDRBGSource failed: %v", err)
	}
	d, _ := drbg.New(masterEntropy(), nil)

	for _, n := range []int{48, 48, 33, 0, 100} {
		got := make([]byte, n)
		if _, err := src.Read(ctx, got); err != nil {
			t.Fatalf("Read(%d) failed: %v", n, err)
		}
		want, _ := d.Generate(n)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Read(%d) mismatch (-want +got):\n%s", n, diff)
		}
	}
	if src.GenerationCount() != d.GenerationCount() {
		t.Errorf("Expected generation count %d, got %d", d.GenerationCount(), src.GenerationCount())
	}
}

func TestDRBGSourceSnapshotAndClose(t *testing.T) {
	ctx := testContext()
	src, _ := NewDRBGSource(masterEntropy(), nil)
	src.Read(ctx, make([]byte, 10))

	snap, err := src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	var restored drbg.DRBG
	if err := restored.UnmarshalBinary(snap); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	resumed := WrapDRBG(&restored)

	a := make([]byte, 20)
	b := make([]byte, 20)
	src.Read(ctx, a)
	resumed.Read(ctx, b)
	if !bytes.Equal(a, b) {
		t.Errorf("Expected resumed source to continue the stream")
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := src.Read(ctx, a); !errors.Is(err, drbg.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized after Close, got %v", err)
	}
}

func TestDRBGSourceIntegers(t *testing.T) {
	zero := make([]byte, drbg.SeedSize)

	src, _ := NewDRBGSource(zero, nil)
	if got := src.Uint32(); got != 0xe98f6191 {
		t.Errorf("Expected Uint32 0xe98f6191, got %#x", got)
	}

	src, _ = NewDRBGSource(zero, nil)
	if got := src.Uint64(); got != 0x20948f9ae98f6191 {
		t.Errorf("Expected Uint64 0x20948f9ae98f6191, got %#x", got)
	}
	// one generate call per value: 8 bytes, then 4
	if got := src.Uint32(); got != 0x9429c1f9 {
		t.Errorf("Expected second value 0x9429c1f9, got %#x", got)
	}
	if src.GenerationCount() != 3 {
		t.Errorf("Expected generation count 3, got %d", src.GenerationCount())
	}
}

func TestDRBGSourceMathRand(t *testing.T) {
	zero := make([]byte, drbg.SeedSize)
	src, _ := NewDRBGSource(zero, nil)
	src.Seed(42)

	r := mrand.New(src)
	if got := r.Int63(); got != 0x20948f9ae98f6191 {
		t.Errorf("Expected Int63 0x20948f9ae98f6191, got %#x", got)
	}
	// Rand.Uint64 goes straight to the source
	if got := r.Uint64(); uint32(got) != 0x9429c1f9 {
		t.Errorf("Expected Uint64 low word 0x9429c1f9, got %#x", got)
	}

	src.Close()
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic from a closed source")
		}
	}()
	src.Uint64()
}

// TestDRBGSourceConcurrent checks that concurrent readers see whole calls:
// the set of outputs matches some serial order of the same requests.
func TestDRBGSourceConcurrent(t *testing.T) {
	ctx := testContext()
	src, _ := NewDRBGSource(masterEntropy(), nil)

	const workers = 8
	var wg sync.WaitGroup
	results := make([][]byte, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf := make([]byte, drbg.SeedSize)
			if _, err := src.Read(ctx, buf); err != nil {
				t.Errorf("Read failed: %v", err)
			}
			results[i] = buf
		}(i)
	}
	wg.Wait()

	d, _ := drbg.New(masterEntropy(), nil)
	serial := make(map[string]bool)
	for i := 0; i < workers; i++ {
		out, _ := d.Generate(drbg.SeedSize)
		serial[string(out)] = true
	}
	for i, r := range results {
		if !serial[string(r)] {
			t.Errorf("worker %d got bytes not produced by any serial call", i)
		}
	}
	if src.GenerationCount() != workers+1 {
		t.Errorf("Expected generation count %d, got %d", workers+1, src.GenerationCount())
	}
}

func TestDRBGRandomness(t *testing.T) {
	src, _ := NewDRBGSource(masterEntropy(), nil)
	buf := make([]byte, 100000)
	if _, err := src.Read(testContext(), buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	runRandomnessTests(t, "KAT-DRBG", buf)
}

func TestChaCha20RandDeterministicKey(t *testing.T) {
	key := make([]byte, 32)
	nonce := make([]byte, 12)
	a := newChaCha20Rand(key, nonce)
	b := newChaCha20Rand(key, nonce)

	bufA := []byte("pre-filled garbage that must be overwritten")
	bufB := make([]byte, len(bufA))
	a.Read(testContext(), bufA)
	b.Read(testContext(), bufB)
	if !bytes.Equal(bufA, bufB) {
		t.Errorf("Expected output independent of prior buffer contents")
	}
}

func TestMT19937RandSeeded(t *testing.T) {
	a := newMT19937Rand(42)
	b := newMT19937Rand(42)
	bufA := make([]byte, 37)
	bufB := make([]byte, 37)
	a.Read(testContext(), bufA)
	b.Read(testContext(), bufB)
	if !bytes.Equal(bufA, bufB) {
		t.Errorf("Expected identical streams for identical seeds")
	}
	if bytes.Equal(bufA, make([]byte, 37)) {
		t.Errorf("Expected non-zero output")
	}
}

type fixedRNG struct{ b byte }

func (f fixedRNG) Read(_ context.Context, p []byte) (int, error) {
	for i := range p {
		p[i] = f.b
	}
	return len(p), nil
}

type failingRNG struct{}

func (failingRNG) Read(context.Context, []byte) (int, error) {
	return 0, errors.New("source offline")
}

// trickleRNG returns one byte per call.
type trickleRNG struct{}

func (trickleRNG) Read(_ context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = 0x0F
	return 1, nil
}

func TestMultiRNGXor(t *testing.T) {
	m := &MultiRNG{Sources: []RNG{fixedRNG{0xF0}, trickleRNG{}, fixedRNG{0x01}}}
	buf := make([]byte, 5)
	if _, err := m.Read(testContext(), buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, b := range buf {
		if b != 0xF0^0x0F^0x01 {
			t.Errorf("byte %d: expected %02x, got %02x", i, 0xF0^0x0F^0x01, b)
		}
	}
}

func TestMultiRNGFailure(t *testing.T) {
	m := &MultiRNG{Sources: []RNG{fixedRNG{1}, failingRNG{}}}
	if _, err := m.Read(testContext(), make([]byte, 4)); err == nil {
		t.Errorf("Expected error from failing source")
	}
}

func TestNewEntropySource(t *testing.T) {
	for _, name := range append(EntropySourceNames(), "", "CRYPTO") {
		r, err := NewEntropySource(name)
		if err != nil {
			t.Errorf("NewEntropySource(%q) failed: %v", name, err)
			continue
		}
		buf := make([]byte, drbg.SeedSize)
		if err := ReadFull(testContext(), r, buf); err != nil {
			t.Errorf("%q: ReadFull failed: %v", name, err)
		}
	}
	if _, err := NewEntropySource("dice"); err == nil {
		t.Errorf("Expected error for unknown source")
	}
}

func TestReaderAdapter(t *testing.T) {
	src, _ := NewDRBGSource(masterEntropy(), nil)
	got := make([]byte, drbg.SeedSize)
	if _, err := io.ReadFull(Reader(testContext(), src), got); err != nil {
		t.Fatalf("io.ReadFull failed: %v", err)
	}
	d, _ := drbg.New(masterEntropy(), nil)
	want, _ := d.Generate(drbg.SeedSize)
	if !bytes.Equal(want, got) {
		t.Errorf("Expected io.Reader view to match the engine")
	}
}

func TestReadFullCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext())
	cancel()
	if err := ReadFull(ctx, &CryptoRNG{}, make([]byte, 8)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
