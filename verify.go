package katrng

import (
	"context"
	"fmt"
	"io"

	"github.com/rayozzie/katrng/pkg/kat"
	"github.com/rayozzie/katrng/pkg/trace"
)

// VerifyConfig holds configuration for checking a .req or .rsp file.
type VerifyConfig struct {
	Input io.Reader
}

// VerifyReport is the outcome of VerifyFile.
type VerifyReport struct {
	Records    int
	Kind       kat.Kind
	Mismatches []kat.Mismatch
}

// OK reports whether every seed and message matched.
func (r *VerifyReport) OK() bool {
	return len(r.Mismatches) == 0
}

// VerifyFile parses a KAT file and checks its seeds (and messages, for
// signature files) against the reference derivation.
func VerifyFile(ctx context.Context, cfg VerifyConfig) (*VerifyReport, error) {
	log := trace.FromContext(ctx).WithPrefix("VERIFY")
	if cfg.Input == nil {
		return nil, fmt.Errorf("no input reader")
	}

	records, err := kat.Parse(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse KAT file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("KAT file has no records")
	}

	report := &VerifyReport{Records: len(records), Kind: kat.KindOf(&records[0])}
	log.Debugf("Verifying %d %s records", len(records), report.Kind)

	report.Mismatches, err = kat.Verify(records)
	if err != nil {
		return nil, err
	}
	for _, m := range report.Mismatches {
		log.Debugf("%s", m)
	}
	return report, nil
}
