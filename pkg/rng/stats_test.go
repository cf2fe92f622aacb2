package rng

import (
	"fmt"
	"math"
	"testing"
)

// runRandomnessTests applies simple statistical checks to data. They are
// sanity checks for gross failures (stuck bytes, short reads filled with
// zeros), not a substitute for a real test suite.
func runRandomnessTests(t *testing.T, name string, data []byte) {
	t.Helper()

	if err := frequencyTest(data); err != nil {
		t.Errorf("%s failed frequency test: %v", name, err)
	}
	if err := runsTest(data); err != nil {
		t.Errorf("%s failed runs test: %v", name, err)
	}
	if err := byteDistributionTest(data); err != nil {
		t.Errorf("%s failed byte distribution test: %v", name, err)
	}

	entropy := calculateEntropy(data)
	t.Logf("%s entropy: %.6f bits per byte (ideal: 8.0)", name, entropy)
	if entropy < 7.9 {
		t.Errorf("%s has suspiciously low entropy: %.6f bits per byte", name, entropy)
	}

	if err := autocorrelationTest(data); err != nil {
		t.Errorf("%s failed autocorrelation test: %v", name, err)
	}
	if err := chiSquareTest(data); err != nil {
		t.Errorf("%s failed chi-square test: %v", name, err)
	}
}

func bitsOf(data []byte) []bool {
	bits := make([]bool, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = ((b >> j) & 1) == 1
		}
	}
	return bits
}

func byteCounts(data []byte) []int {
	counts := make([]int, 256)
	for _, b := range data {
		counts[b]++
	}
	return counts
}

// frequencyTest checks that ones make up about half of all bits (3 sigma).
func frequencyTest(data []byte) error {
	ones := 0
	for _, bit := range bitsOf(data) {
		if bit {
			ones++
		}
	}
	total := len(data) * 8
	proportion := float64(ones) / float64(total)
	maxDev := 3.0 * math.Sqrt(0.25/float64(total))
	if math.Abs(proportion-0.5) > maxDev {
		return fmt.Errorf("proportion of ones %.6f, expected 0.5±%.6f", proportion, maxDev)
	}
	return nil
}

// runsTest counts maximal runs of identical bits (3 sigma).
func runsTest(data []byte) error {
	bits := bitsOf(data)
	runs := 1
	for i := 1; i < len(bits); i++ {
		if bits[i] != bits[i-1] {
			runs++
		}
	}
	expected := float64(len(bits)/2) + 1
	maxDev := 3.0 * math.Sqrt(float64(len(bits)-1)/4)
	if math.Abs(float64(runs)-expected) > maxDev {
		return fmt.Errorf("%d runs, expected %.0f±%.1f", runs, expected, maxDev)
	}
	return nil
}

// byteDistributionTest checks every byte value's count (4 sigma).
func byteDistributionTest(data []byte) error {
	expected := float64(len(data)) / 256
	maxDev := 4.0 * math.Sqrt(expected)
	for value, count := range byteCounts(data) {
		if math.Abs(float64(count)-expected) > maxDev {
			return fmt.Errorf("byte 0x%02x seen %d times, expected %.1f±%.1f", value, count, expected, maxDev)
		}
	}
	return nil
}

// calculateEntropy returns the Shannon entropy in bits per byte.
func calculateEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	entropy := 0.0
	for _, count := range byteCounts(data) {
		if count > 0 {
			p := float64(count) / float64(len(data))
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// autocorrelationTest compares bits at several lags (4 sigma).
func autocorrelationTest(data []byte) error {
	bits := bitsOf(data)
	for _, lag := range []int{1, 2, 8, 16, 32, 64} {
		if lag >= len(bits) {
			continue
		}
		n := len(bits) - lag
		matches := 0
		for i := 0; i < n; i++ {
			if bits[i] == bits[i+lag] {
				matches++
			}
		}
		corr := float64(matches) / float64(n)
		maxDev := 4.0 * math.Sqrt(0.25/float64(n))
		if math.Abs(corr-0.5) > maxDev {
			return fmt.Errorf("lag %d: agreement %.6f, expected 0.5±%.6f", lag, corr, maxDev)
		}
	}
	return nil
}

// chiSquareTest checks byte frequencies against 255 degrees of freedom
// (5 sigma).
func chiSquareTest(data []byte) error {
	expected := float64(len(data)) / 256
	chi := 0.0
	for _, count := range byteCounts(data) {
		d := float64(count) - expected
		chi += d * d / expected
	}
	maxDev := 5.0 * math.Sqrt(2*255)
	if math.Abs(chi-255) > maxDev {
		return fmt.Errorf("chi-square %.2f, expected 255±%.2f", chi, maxDev)
	}
	return nil
}
