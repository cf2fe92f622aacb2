package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rayozzie/katrng"
	"github.com/rayozzie/katrng/pkg/drbg"
	"github.com/rayozzie/katrng/pkg/kat"
	"github.com/rayozzie/katrng/pkg/rng"
	"github.com/rayozzie/katrng/pkg/trace"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  katrng gen [-seed HEX] [-pers HEX] [-n N] [-calls C] [-format hex|bin] [-out FILE] [-clear]
             [-state-in FILE] [-state-out FILE] [-entropy SOURCE] [-verbose] [-trace]
  katrng req [-count N] [-kind kem|sign] [-header TEXT] [-out FILE] [-clear] [-verbose]
  katrng verify <file> [-verbose]
  katrng expand -seed HEX -div HEX [-maxlen N] [-n N] [-format hex|bin] [-out FILE] [-clear] [-verbose]

Options:
  -seed HEX         48-byte entropy input (96 hex digits); for expand, a 32-byte seed
  -pers HEX         48-byte personalization string
  -n N              Number of output bytes (default: 48)
  -calls C          Split the output across C generate calls (default: 1)
  -format FORMAT    Output format: hex or bin (default: hex)
  -out FILE         Output file (default: stdout)
  -clear            Overwrite the output file if it exists
  -state-in FILE    Resume from a saved generator state instead of a seed
  -state-out FILE   Save the generator state after generating
  -entropy SOURCE   Draw a fresh seed from SOURCE (%s)
  -count N          Number of test cases in the request file (default: %d)
  -kind KIND        Request file layout: kem or sign (default: kem)
  -verbose          Enable detailed (debug) output
  -trace            Also log counter state after every generate call
`, strings.Join(rng.EntropySourceNames(), ", "), katrng.DefaultRequestCount)
	os.Exit(1)
}

func parseHex(name, s string) []byte {
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(strings.ReplaceAll(s, " ", ""), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		log.Fatalf("Error: -%s is not valid hex: %v", name, err)
	}
	return b
}

func newContext(verbose, traceOn bool) context.Context {
	tracer := trace.NewTracer("KATRNG", trace.LevelFor(verbose, traceOn))
	return trace.WithContext(context.Background(), tracer)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]

	switch cmd {
	case "gen":
		fs := flag.NewFlagSet("gen", flag.ExitOnError)
		seedVal := fs.String("seed", "", "48-byte entropy input as hex")
		persVal := fs.String("pers", "", "48-byte personalization string as hex")
		nVal := fs.Int("n", drbg.SeedSize, "number of output bytes")
		callsVal := fs.Int("calls", 1, "number of generate calls")
		formatVal := fs.String("format", "hex", "hex or bin")
		outVal := fs.String("out", "", "output file (default: stdout)")
		clearVal := fs.Bool("clear", false, "overwrite the output file if it exists")
		stateInVal := fs.String("state-in", "", "resume from a saved state file")
		stateOutVal := fs.String("state-out", "", "save state after generating")
		entropyVal := fs.String("entropy", "", "draw a fresh seed from this source")
		verboseVal := fs.Bool("verbose", false, "enable detailed (debug) output")
		traceVal := fs.Bool("trace", false, "log generator state after every call")
		fs.Parse(os.Args[2:])

		if *nVal < 0 {
			log.Fatalf("Error: -n must not be negative, got %d", *nVal)
		}
		if *callsVal < 1 {
			log.Printf("Warning: -calls value %d is too small, using 1", *callsVal)
			*callsVal = 1
		}
		format, err := katrng.ParseFormat(*formatVal)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		ctx := newContext(*verboseVal, *traceVal)
		out, err := katrng.OpenOutput(ctx, *outVal, *clearVal)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer out.Close()

		cfg := katrng.GenerateConfig{
			Seed:            parseHex("seed", *seedVal),
			Personalization: parseHex("pers", *persVal),
			StateIn:         *stateInVal,
			StateOut:        *stateOutVal,
			EntropySource:   *entropyVal,
			Length:          *nVal,
			Calls:           *callsVal,
			Format:          format,
			Output:          out,
		}
		res, err := katrng.Generate(ctx, cfg)
		if err != nil {
			out.Close()
			log.Fatalf("Error: Generate failed: %v", err)
		}
		trace.FromContext(ctx).Debugf("Wrote %d bytes in %d calls, generation count %d, hardware AES %v", res.Bytes, res.Calls, res.GenerationCount, res.HardwareAES)

	case "req":
		fs := flag.NewFlagSet("req", flag.ExitOnError)
		countVal := fs.Int("count", katrng.DefaultRequestCount, "number of test cases")
		kindVal := fs.String("kind", "kem", "kem or sign")
		headerVal := fs.String("header", "", "optional header comment, usually the scheme name")
		outVal := fs.String("out", "", "output file (default: stdout)")
		clearVal := fs.Bool("clear", false, "overwrite the output file if it exists")
		verboseVal := fs.Bool("verbose", false, "enable detailed (debug) output")
		fs.Parse(os.Args[2:])

		kind, err := kat.ParseKind(*kindVal)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if *countVal < 1 {
			log.Fatalf("Error: -count must be at least 1, got %d", *countVal)
		}

		ctx := newContext(*verboseVal, false)
		out, err := katrng.OpenOutput(ctx, *outVal, *clearVal)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer out.Close()

		cfg := katrng.RequestConfig{
			Count:  *countVal,
			Kind:   kind,
			Header: *headerVal,
			Output: out,
		}
		if err := katrng.WriteRequest(ctx, cfg); err != nil {
			out.Close()
			log.Fatalf("Error: Request failed: %v", err)
		}

	case "verify":
		if len(os.Args) < 3 {
			usage()
		}
		inputPath := os.Args[2]

		fs := flag.NewFlagSet("verify", flag.ExitOnError)
		verboseVal := fs.Bool("verbose", false, "enable detailed (debug) output")
		fs.Parse(os.Args[3:])

		f, err := os.Open(inputPath)
		if err != nil {
			if os.IsNotExist(err) {
				log.Fatalf("Error: Input file does not exist: %s", inputPath)
			}
			log.Fatalf("Error: Cannot access input file %s: %v", inputPath, err)
		}
		defer f.Close()

		ctx := newContext(*verboseVal, false)
		report, err := katrng.VerifyFile(ctx, katrng.VerifyConfig{Input: f})
		if err != nil {
			f.Close()
			log.Fatalf("Error: Verify failed: %v", err)
		}
		if !report.OK() {
			for _, m := range report.Mismatches {
				log.Printf("MISMATCH %s", m)
			}
			f.Close()
			log.Fatalf("Error: %d of %d records do not match the reference derivation", len(report.Mismatches), report.Records)
		}
		log.Printf("OK: %d %s records match the reference derivation", report.Records, report.Kind)

	case "expand":
		fs := flag.NewFlagSet("expand", flag.ExitOnError)
		seedVal := fs.String("seed", "", "32-byte seed as hex")
		divVal := fs.String("div", "", "8-byte diversifier as hex")
		maxLenVal := fs.Uint("maxlen", 0, "total output limit (default: n+1)")
		nVal := fs.Int("n", 32, "number of output bytes")
		formatVal := fs.String("format", "hex", "hex or bin")
		outVal := fs.String("out", "", "output file (default: stdout)")
		clearVal := fs.Bool("clear", false, "overwrite the output file if it exists")
		verboseVal := fs.Bool("verbose", false, "enable detailed (debug) output")
		fs.Parse(os.Args[2:])

		if *maxLenVal > 1<<32-1 {
			log.Fatalf("Error: -maxlen must fit in 32 bits, got %d", *maxLenVal)
		}
		format, err := katrng.ParseFormat(*formatVal)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		ctx := newContext(*verboseVal, false)
		out, err := katrng.OpenOutput(ctx, *outVal, *clearVal)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer out.Close()

		cfg := katrng.ExpandConfig{
			Seed:        parseHex("seed", *seedVal),
			Diversifier: parseHex("div", *divVal),
			MaxLen:      uint32(*maxLenVal),
			Length:      *nVal,
			Format:      format,
			Output:      out,
		}
		if err := katrng.Expand(ctx, cfg); err != nil {
			out.Close()
			log.Fatalf("Error: Expand failed: %v", err)
		}

	default:
		usage()
	}
}
