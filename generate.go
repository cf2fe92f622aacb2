package katrng

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rayozzie/katrng/pkg/drbg"
	"github.com/rayozzie/katrng/pkg/rng"
	"github.com/rayozzie/katrng/pkg/trace"
)

// GenerateConfig holds configuration for producing DRBG output.
//
// The generator state comes from exactly one of: Seed (with optional
// Personalization), StateIn (a file written by an earlier StateOut), or a
// fresh seed drawn from EntropySource.
type GenerateConfig struct {
	Seed            []byte
	Personalization []byte
	StateIn         string
	StateOut        string
	EntropySource   string

	Length int // total output bytes
	Calls  int // number of generate calls the output is split across; 0 means 1
	Format Format
	Output io.Writer
}

// GenerateResult reports what Generate did.
type GenerateResult struct {
	// Seed is the entropy input used, or nil when resuming from a state file.
	Seed            []byte
	Bytes           int
	Calls           int
	GenerationCount uint64
	// HardwareAES reports whether the AES rounds ran on CPU instructions.
	HardwareAES bool
}

var (
	// ErrNoSeed is returned when a GenerateConfig names no state source.
	ErrNoSeed = errors.New("no seed, state file or entropy source given")
	// ErrConflictingSources is returned when a GenerateConfig names more
	// than one state source.
	ErrConflictingSources = errors.New("more than one of seed, state file and entropy source given")
)

// SplitLength divides total into calls near-equal parts, larger parts first.
func SplitLength(total, calls int) []int {
	if calls < 1 {
		calls = 1
	}
	sizes := make([]int, calls)
	base, rem := total/calls, total%calls
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// Generate writes cfg.Length bytes of DRBG output to cfg.Output.
func Generate(ctx context.Context, cfg GenerateConfig) (*GenerateResult, error) {
	log := trace.FromContext(ctx).WithPrefix("GENERATE")
	start := time.Now()

	if cfg.Output == nil {
		return nil, fmt.Errorf("no output writer")
	}
	if cfg.Length < 0 {
		return nil, fmt.Errorf("invalid length: %d", cfg.Length)
	}
	if cfg.Calls < 0 {
		return nil, fmt.Errorf("invalid call count: %d", cfg.Calls)
	}
	formatter, err := NewFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}

	d, seed, err := openDRBG(ctx, cfg)
	if err != nil {
		return nil, err
	}
	src := rng.WrapDRBG(d)
	defer src.Close()

	sizes := SplitLength(cfg.Length, cfg.Calls)
	log.Debugf("Generating %d bytes in %d calls", cfg.Length, len(sizes))
	for i, n := range sizes {
		buf := make([]byte, n)
		if _, err := src.Read(ctx, buf); err != nil {
			return nil, fmt.Errorf("generate call %d: %w", i+1, err)
		}
		if err := formatter.WriteChunk(cfg.Output, i, buf); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
	}

	if cfg.StateOut != "" {
		state, err := src.Snapshot()
		if err != nil {
			return nil, err
		}
		if err := writeFileAtomic(cfg.StateOut, state, 0600); err != nil {
			return nil, fmt.Errorf("failed to save state: %w", err)
		}
		log.Debugf("Saved generator state to %s", cfg.StateOut)
	}

	res := &GenerateResult{
		Seed:            seed,
		Bytes:           cfg.Length,
		Calls:           len(sizes),
		GenerationCount: src.GenerationCount(),
		HardwareAES:     drbg.HardwareAES(),
	}
	log.Debugf("Generated %d bytes in %v (hardware AES: %v)", cfg.Length, time.Since(start), res.HardwareAES)
	return res, nil
}

func openDRBG(ctx context.Context, cfg GenerateConfig) (*drbg.DRBG, []byte, error) {
	log := trace.FromContext(ctx).WithPrefix("GENERATE")

	if len(cfg.Seed) > 0 && cfg.EntropySource != "" {
		return nil, nil, fmt.Errorf("a seed can not be combined with entropy source %q: %w", cfg.EntropySource, ErrConflictingSources)
	}
	if cfg.StateIn != "" {
		if len(cfg.Seed) > 0 || len(cfg.Personalization) > 0 || cfg.EntropySource != "" {
			return nil, nil, fmt.Errorf("a state file can not be combined with a seed or entropy source: %w", ErrConflictingSources)
		}
		data, err := os.ReadFile(cfg.StateIn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read state file: %w", err)
		}
		d := &drbg.DRBG{}
		if err := d.UnmarshalBinary(data); err != nil {
			return nil, nil, fmt.Errorf("state file %s: %w", cfg.StateIn, err)
		}
		if !d.Initialized() {
			return nil, nil, fmt.Errorf("state file %s: %w", cfg.StateIn, drbg.ErrNotInitialized)
		}
		log.Debugf("Resumed generator from %s at generation %d", cfg.StateIn, d.GenerationCount())
		return d, nil, nil
	}

	seed := cfg.Seed
	if len(seed) == 0 {
		if cfg.EntropySource == "" {
			return nil, nil, ErrNoSeed
		}
		source, err := rng.NewEntropySource(cfg.EntropySource)
		if err != nil {
			return nil, nil, err
		}
		seed = make([]byte, drbg.SeedSize)
		if err := rng.ReadFull(ctx, source, seed); err != nil {
			return nil, nil, fmt.Errorf("failed to draw seed: %w", err)
		}
		log.Debugf("Using fresh seed %X", seed)
	}

	d, err := drbg.New(seed, cfg.Personalization)
	if err != nil {
		return nil, nil, err
	}
	return d, seed, nil
}
