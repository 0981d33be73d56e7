// Package cryptox implements the credential-hashing provider. The preferred
// primitive is argon2id; when it is reported unavailable the provider
// derives with PBKDF2-SHA256 at a configurable iteration count instead.
// Salts always come from the operating system's cryptographic randomness
// source; if that source fails, hashing fails hard rather than degrading.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/dmitrijs2005/authguard/internal/common"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2

	keyLen  = 32
	saltLen = 16

	// MinFallbackIterations is the hard floor for the PBKDF2 fallback.
	// Configured values below it are raised, never honored.
	MinFallbackIterations = 210000

	// DefaultFallbackIterations is used when no value is configured.
	DefaultFallbackIterations = 600000
)

// Probe reports whether the preferred primitive is usable. It must be
// idempotent and side-effect-free; the provider calls it on every Hash.
type Probe func() bool

// Result is the outcome of hashing a secret.
type Result struct {
	Encoded      string
	Alg          string
	FallbackUsed bool
}

// Provider selects the strongest available hashing primitive per call.
type Provider struct {
	probe              Probe
	fallbackIterations int
}

// NewProvider creates a Provider. fallbackIterations below the floor are
// clamped up; probe may be nil, in which case the preferred primitive is
// considered always available (argon2id is pure Go and has no runtime
// dependency, but constrained builds and tests can inject their own probe).
func NewProvider(fallbackIterations int, probe Probe) *Provider {
	if fallbackIterations <= 0 {
		fallbackIterations = DefaultFallbackIterations
	}
	if fallbackIterations < MinFallbackIterations {
		fallbackIterations = MinFallbackIterations
	}
	if probe == nil {
		probe = func() bool { return true }
	}
	return &Provider{probe: probe, fallbackIterations: fallbackIterations}
}

// PreferredAvailable reports whether the preferred primitive is usable
// right now. It mutates nothing.
func (p *Provider) PreferredAvailable() bool {
	return p.probe()
}

// Hash derives a digest for secret, probing primitive availability at call
// time. A failing randomness source aborts with common.ErrNoSecureRandom;
// an unavailable preferred primitive only switches to the fallback, which
// is signalled via Result.FallbackUsed.
func (p *Provider) Hash(secret []byte) (*Result, error) {
	salt, err := common.GenerateRandByteArray(saltLen)
	if err != nil {
		return nil, err
	}

	if p.probe() {
		d := &Digest{
			Alg:     AlgArgon2id,
			Salt:    salt,
			Hash:    argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, keyLen),
			Memory:  argonMemory,
			Time:    argonTime,
			Threads: argonThreads,
		}
		return &Result{Encoded: d.Encode(), Alg: AlgArgon2id}, nil
	}

	d := &Digest{
		Alg:        AlgPBKDF2,
		Salt:       salt,
		Hash:       pbkdf2.Key(secret, salt, p.fallbackIterations, keyLen, sha256.New),
		Iterations: p.fallbackIterations,
	}
	return &Result{Encoded: d.Encode(), Alg: AlgPBKDF2, FallbackUsed: true}, nil
}

// Verify re-derives secret using the algorithm and parameters stored in
// encoded and compares in constant time. A legitimate mismatch returns
// (false, nil); only a structurally broken digest returns an error.
func (p *Provider) Verify(secret []byte, encoded string) (bool, error) {
	d, err := ParseDigest(encoded)
	if err != nil {
		return false, err
	}

	var derived []byte
	switch d.Alg {
	case AlgArgon2id:
		derived = argon2.IDKey(secret, d.Salt, d.Time, d.Memory, d.Threads, uint32(len(d.Hash)))
	case AlgPBKDF2:
		derived = pbkdf2.Key(secret, d.Salt, d.Iterations, len(d.Hash), sha256.New)
	default:
		return false, common.ErrMalformedDigest
	}

	return subtle.ConstantTimeCompare(derived, d.Hash) == 1, nil
}
