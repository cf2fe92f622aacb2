package kat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rayozzie/katrng/pkg/drbg"
)

// Mismatch describes a field whose value does not match the re-derived one.
type Mismatch struct {
	Count int
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("count %d: %s = %s, expected %s", m.Count, m.Field, m.Got, m.Want)
}

// Verify replays the harness's master generator over records, which must be
// sorted by count (as Parse returns them), and reports every seed, mlen or
// msg value that differs. Messages are always drawn at the harness length,
// whatever mlen the file claims. Missing counts are replayed with the
// harness defaults so later records still line up.
func Verify(records []Record) ([]Mismatch, error) {
	if len(records) == 0 {
		return nil, nil
	}

	kind := KindOf(&records[0])
	d := NewMasterDRBG()
	defer d.Erase()

	var mismatches []Mismatch
	next := 0
	for i := range records {
		r := &records[i]
		if r.Count < next {
			return nil, fmt.Errorf("records out of order at count %d", r.Count)
		}
		for ; next < r.Count; next++ {
			if err := skipCase(d, kind, MessageLen(next)); err != nil {
				return nil, err
			}
		}

		seed, err := d.Generate(drbg.SeedSize)
		if err != nil {
			return nil, err
		}
		mismatches = compareField(mismatches, r, "seed", seed)

		if kind == Sign {
			mlen := MessageLen(r.Count)
			if got, ok := r.Get("mlen"); ok {
				if n, err := r.Int("mlen"); err != nil || n != mlen {
					mismatches = append(mismatches, Mismatch{Count: r.Count, Field: "mlen", Want: strconv.Itoa(mlen), Got: got})
				}
			}
			msg, err := d.Generate(mlen)
			if err != nil {
				return nil, err
			}
			if _, ok := r.Get("msg"); ok {
				mismatches = compareField(mismatches, r, "msg", msg)
			}
		}
		next = r.Count + 1
	}
	return mismatches, nil
}

func skipCase(d *drbg.DRBG, kind Kind, mlen int) error {
	if _, err := d.Generate(drbg.SeedSize); err != nil {
		return err
	}
	if kind == Sign {
		_, err := d.Generate(mlen)
		return err
	}
	return nil
}

func compareField(ms []Mismatch, r *Record, name string, want []byte) []Mismatch {
	got, _ := r.Get(name)
	w := EncodeHex(want)
	if !strings.EqualFold(got, w) {
		ms = append(ms, Mismatch{Count: r.Count, Field: name, Want: w, Got: got})
	}
	return ms
}
