// Package katrng reproduces the AES-256 CTR DRBG that NIST PQC submissions
// use to generate their known-answer tests, and wraps it in the operations
// behind the katrng command: raw output, .req file generation, KAT file
// verification and the companion seed expander.
package katrng
