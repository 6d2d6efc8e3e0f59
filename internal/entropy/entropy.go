// Package entropy implements the "entropy source" collaborator (spec §6):
// randomize_buffer(buffer, length).
package entropy

import "crypto/rand"

// Source fills a caller-provided buffer with unpredictable bytes.
type Source interface {
	Randomize(buf []byte) error
}

// CryptoRand is the default Source, backed by crypto/rand. It never falls
// back to a weaker generator: a failure to read from the OS CSPRNG is
// surfaced as an error rather than silently degrading pass quality.
type CryptoRand struct{}

func (CryptoRand) Randomize(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}
