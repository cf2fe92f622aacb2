package kat

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// maxLineBytes bounds a single line; signature .rsp files carry sm values
// of several hundred kilobytes of hex.
const maxLineBytes = 16 << 20

// Writer emits records in the .req/.rsp text format.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Comment writes a "# text" header line followed by a blank line, as the
// .rsp files start with the scheme name.
func (kw *Writer) Comment(text string) error {
	_, err := fmt.Fprintf(kw.w, "# %s\n\n", text)
	return err
}

// Write writes one record terminated by a blank line.
func (kw *Writer) Write(r Record) error {
	if _, err := fmt.Fprintf(kw.w, "count = %d\n", r.Count); err != nil {
		return err
	}
	for _, f := range r.Fields {
		var err error
		if f.Value == "" {
			_, err = fmt.Fprintf(kw.w, "%s =\n", f.Name)
		} else {
			_, err = fmt.Fprintf(kw.w, "%s = %s\n", f.Name, f.Value)
		}
		if err != nil {
			return err
		}
	}
	_, err := kw.w.WriteString("\n")
	return err
}

// WriteAll writes every record and flushes.
func (kw *Writer) WriteAll(records []Record) error {
	for _, r := range records {
		if err := kw.Write(r); err != nil {
			return err
		}
	}
	return kw.Flush()
}

// Flush flushes buffered output.
func (kw *Writer) Flush() error {
	return kw.w.Flush()
}

// Parse reads a .req or .rsp file. Comment lines, blank lines and CRLF line
// endings are accepted. Records are returned ordered by count.
func Parse(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var records []Record
	seen := make(map[int]bool)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"name = value\", got %q", lineNo, line)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			return nil, fmt.Errorf("line %d: empty field name", lineNo)
		}

		if name == "count" {
			count, err := strconv.Atoi(value)
			if err != nil || count < 0 {
				return nil, fmt.Errorf("line %d: invalid count %q", lineNo, value)
			}
			if seen[count] {
				return nil, fmt.Errorf("line %d: duplicate count %d", lineNo, count)
			}
			seen[count] = true
			records = append(records, Record{Count: count})
			continue
		}

		if len(records) == 0 {
			return nil, fmt.Errorf("line %d: field %q before first count", lineNo, name)
		}
		records[len(records)-1].Fields = append(records[len(records)-1].Fields, Field{Name: name, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Compare(a.Count, b.Count)
	})
	return records, nil
}
