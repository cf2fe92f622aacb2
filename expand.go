package katrng

import (
	"context"
	"fmt"
	"io"

	"github.com/rayozzie/katrng/pkg/expander"
	"github.com/rayozzie/katrng/pkg/trace"
)

// ExpandConfig holds configuration for running the seed expander.
type ExpandConfig struct {
	Seed        []byte
	Diversifier []byte
	MaxLen      uint32 // 0 means Length+1, the smallest limit that allows the read
	Length      int
	Format      Format
	Output      io.Writer
}

// Expand writes cfg.Length bytes of seed expander output in one read.
func Expand(ctx context.Context, cfg ExpandConfig) error {
	log := trace.FromContext(ctx).WithPrefix("EXPAND")
	if cfg.Output == nil {
		return fmt.Errorf("no output writer")
	}
	if cfg.Length < 0 || uint64(cfg.Length) >= 1<<32-1 {
		return fmt.Errorf("invalid length: %d", cfg.Length)
	}
	formatter, err := NewFormatter(cfg.Format)
	if err != nil {
		return err
	}

	maxLen := cfg.MaxLen
	if maxLen == 0 {
		maxLen = uint32(cfg.Length) + 1
	}
	x, err := expander.New(cfg.Seed, cfg.Diversifier, maxLen)
	if err != nil {
		return err
	}
	log.Debugf("Expanding %d bytes (limit %d)", cfg.Length, maxLen)

	out := make([]byte, cfg.Length)
	if _, err := x.Read(out); err != nil {
		return err
	}
	return formatter.WriteChunk(cfg.Output, 0, out)
}
