package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes from the operating system's
// cryptographic randomness source. It returns ErrNoSecureRandom when the
// source fails; callers must treat that as fatal for any security-relevant
// operation rather than substituting a weaker source.
func GenerateRandByteArray(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, ErrNoSecureRandom
	}
	return b, nil
}
