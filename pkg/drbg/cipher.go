package drbg

import (
	"crypto/aes"
	"crypto/cipher"
	"runtime"

	"golang.org/x/sys/cpu"
)

// newBlock returns the AES-256 block cipher for key. The key size is fixed
// by the type, so failure here is a programming error.
func newBlock(key *[KeySize]byte) cipher.Block {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		panic("drbg: " + err.Error())
	}
	return block
}

// HardwareAES reports whether the CPU provides AES instructions that the
// runtime's AES implementation can use. It only matters for throughput.
func HardwareAES() bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpu.X86.HasAES
	case "arm64":
		return cpu.ARM64.HasAES
	case "s390x":
		return cpu.S390X.HasAES
	case "ppc64", "ppc64le":
		return cpu.PPC64.IsPOWER8
	}
	return false
}
