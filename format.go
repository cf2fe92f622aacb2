package katrng

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Format names an output encoding.
type Format string

const (
	// FormatHex writes one uppercase hex line per generate call.
	FormatHex Format = "hex"
	// FormatBin writes raw bytes.
	FormatBin Format = "bin"

	DefaultFormat = FormatHex
)

// ParseFormat accepts "hex" or "bin" in any case; empty means DefaultFormat.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return DefaultFormat, nil
	case FormatHex, FormatBin:
		return f, nil
	}
	return "", fmt.Errorf("format must be 'hex' or 'bin', got '%s'", s)
}

// Formatter writes the output of successive generate calls.
type Formatter interface {
	WriteChunk(w io.Writer, index int, data []byte) error
}

// NewFormatter returns the formatter for f.
func NewFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatHex, "":
		return HexFormatter{}, nil
	case FormatBin:
		return BinFormatter{}, nil
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// BinFormatter writes raw bytes with no separators.
type BinFormatter struct{}

func (BinFormatter) WriteChunk(w io.Writer, _ int, data []byte) error {
	_, err := w.Write(data)
	return err
}

// HexFormatter writes each chunk as an uppercase hex line, matching the
// byte strings in .rsp files. An empty chunk is written as an empty line.
type HexFormatter struct{}

func (HexFormatter) WriteChunk(w io.Writer, _ int, data []byte) error {
	_, err := io.WriteString(w, strings.ToUpper(hex.EncodeToString(data))+"\n")
	return err
}
