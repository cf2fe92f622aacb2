package katrng

import (
	"context"
	"fmt"
	"io"

	"github.com/rayozzie/katrng/pkg/kat"
	"github.com/rayozzie/katrng/pkg/trace"
)

// DefaultRequestCount is the number of test cases the reference harness
// writes.
const DefaultRequestCount = 100

// RequestConfig holds configuration for writing a .req file.
type RequestConfig struct {
	Count  int
	Kind   kat.Kind
	Header string // optional "# ..." first line, usually the scheme name
	Output io.Writer
}

// WriteRequest writes a .req file with seeds filled in and scheme outputs
// left empty.
func WriteRequest(ctx context.Context, cfg RequestConfig) error {
	log := trace.FromContext(ctx).WithPrefix("REQUEST")
	if cfg.Output == nil {
		return fmt.Errorf("no output writer")
	}
	if cfg.Count < 1 {
		return fmt.Errorf("invalid count: %d", cfg.Count)
	}

	records, err := kat.RequestRecords(cfg.Count, cfg.Kind)
	if err != nil {
		return err
	}
	log.Debugf("Writing %d %s request records", len(records), cfg.Kind)

	w := kat.NewWriter(cfg.Output)
	if cfg.Header != "" {
		if err := w.Comment(cfg.Header); err != nil {
			return err
		}
	}
	return w.WriteAll(records)
}
