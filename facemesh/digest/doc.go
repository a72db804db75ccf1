// Package digest turns an input string into the fixed-length lowercase hex
// digest that drives face generation.
//
// SHA-256 is the default algorithm; BLAKE3 (256-bit output) is available as
// an alternative with the same digest length. Fingerprint is a short,
// non-cryptographic hash used for cache validators only.
package digest
