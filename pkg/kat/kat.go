// Package kat reads and writes the .req/.rsp known-answer test files of the
// NIST PQC submissions and re-derives their seeds.
//
// The reference harness seeds the KAT DRBG with the bytes 00 01 ... 2F and
// then, for each test case in order, draws a 48-byte seed (and for signature
// schemes a message of 33*(count+1) bytes). Each test case then re-seeds the
// generator from its own seed before running the scheme, which is outside the
// scope of this package.
package kat

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/rayozzie/katrng/pkg/drbg"
	"golang.org/x/exp/slices"
)

// Kind selects the field layout of a KAT file.
type Kind int

const (
	// KEM files carry seed, pk, sk, ct, ss.
	KEM Kind = iota
	// Sign files carry seed, mlen, msg, pk, sk, smlen, sm.
	Sign
)

func (k Kind) String() string {
	switch k {
	case KEM:
		return "kem"
	case Sign:
		return "sign"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts "kem" or "sign".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "kem":
		return KEM, nil
	case "sign", "sig":
		return Sign, nil
	}
	return 0, fmt.Errorf("unknown KAT kind %q (want kem or sign)", s)
}

var kindFields = map[Kind][]string{
	KEM:  {"seed", "pk", "sk", "ct", "ss"},
	Sign: {"seed", "mlen", "msg", "pk", "sk", "smlen", "sm"},
}

// Field is one "name = value" line.
type Field struct {
	Name  string
	Value string
}

// Record is one test case: a count line followed by its fields in file order.
type Record struct {
	Count  int
	Fields []Field
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (string, bool) {
	i := slices.IndexFunc(r.Fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return "", false
	}
	return r.Fields[i].Value, true
}

// Set replaces the named field's value or appends a new field.
func (r *Record) Set(name, value string) {
	i := slices.IndexFunc(r.Fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		r.Fields = append(r.Fields, Field{Name: name, Value: value})
		return
	}
	r.Fields[i].Value = value
}

// Bytes hex-decodes the named field. A missing or empty field is an error.
func (r *Record) Bytes(name string) ([]byte, error) {
	v, ok := r.Get(name)
	if !ok || v == "" {
		return nil, fmt.Errorf("count %d: field %q missing", r.Count, name)
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("count %d: field %q: %w", r.Count, name, err)
	}
	return b, nil
}

// Int parses the named field as a decimal integer.
func (r *Record) Int(name string) (int, error) {
	v, ok := r.Get(name)
	if !ok || v == "" {
		return 0, fmt.Errorf("count %d: field %q missing", r.Count, name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("count %d: field %q: %w", r.Count, name, err)
	}
	return n, nil
}

// KindOf guesses the layout of a record from its fields.
func KindOf(r *Record) Kind {
	if _, ok := r.Get("msg"); ok {
		return Sign
	}
	if _, ok := r.Get("mlen"); ok {
		return Sign
	}
	return KEM
}

// EncodeHex formats b the way the reference harness does: uppercase hex,
// with "00" standing in for an empty string.
func EncodeHex(b []byte) string {
	if len(b) == 0 {
		return "00"
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

// MessageLen is the signature harness's message length for a test case.
func MessageLen(count int) int {
	return 33 * (count + 1)
}

// MasterEntropy returns the fixed entropy input 00 01 ... 2F.
func MasterEntropy() [drbg.SeedSize]byte {
	var e [drbg.SeedSize]byte
	for i := range e {
		e[i] = byte(i)
	}
	return e
}

// NewMasterDRBG returns the generator the harness draws seeds from.
func NewMasterDRBG() *drbg.DRBG {
	return drbg.FromSeed(MasterEntropy())
}

// Seeds returns the first n KEM-harness seeds.
func Seeds(n int) ([][drbg.SeedSize]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative seed count %d", n)
	}
	d := NewMasterDRBG()
	defer d.Erase()

	seeds := make([][drbg.SeedSize]byte, n)
	for i := range seeds {
		if err := d.Fill(seeds[i][:]); err != nil {
			return nil, err
		}
	}
	return seeds, nil
}

// RequestRecords builds the contents of a .req file with n test cases:
// seeds (and messages for Sign) filled in, scheme outputs left empty.
func RequestRecords(n int, kind Kind) ([]Record, error) {
	fields, ok := kindFields[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported KAT kind %v", kind)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative record count %d", n)
	}

	d := NewMasterDRBG()
	defer d.Erase()

	records := make([]Record, n)
	for i := range records {
		r := Record{Count: i}
		seed, err := d.Generate(drbg.SeedSize)
		if err != nil {
			return nil, err
		}
		var msg []byte
		if kind == Sign {
			if msg, err = d.Generate(MessageLen(i)); err != nil {
				return nil, err
			}
		}

		for _, name := range fields {
			switch name {
			case "seed":
				r.Set(name, EncodeHex(seed))
			case "mlen":
				r.Set(name, strconv.Itoa(len(msg)))
			case "msg":
				r.Set(name, EncodeHex(msg))
			default:
				r.Set(name, "")
			}
		}
		records[i] = r
	}
	return records, nil
}
