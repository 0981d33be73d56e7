package cryptox

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/authguard/internal/common"
)

// Algorithm tags stored inside encoded digests. Verification always
// re-derives by the tag found in the digest, never by the provider's
// current preference.
const (
	AlgArgon2id = "argon2id"
	AlgPBKDF2   = "pbkdf2-sha256"
)

// Digest is the decoded form of a credential digest: algorithm tag, salt,
// derived key, and the parameters needed to re-derive it.
type Digest struct {
	Alg  string
	Salt []byte
	Hash []byte

	// argon2id parameters
	Memory  uint32
	Time    uint32
	Threads uint8

	// pbkdf2 parameters
	Iterations int
}

// Encode renders the digest in PHC string form:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
//	$pbkdf2-sha256$i=600000$<salt>$<hash>
func (d *Digest) Encode() string {
	salt := base64.RawStdEncoding.EncodeToString(d.Salt)
	hash := base64.RawStdEncoding.EncodeToString(d.Hash)

	switch d.Alg {
	case AlgArgon2id:
		return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
			AlgArgon2id, argon2.Version, d.Memory, d.Time, d.Threads, salt, hash)
	case AlgPBKDF2:
		return fmt.Sprintf("$%s$i=%d$%s$%s", AlgPBKDF2, d.Iterations, salt, hash)
	default:
		return ""
	}
}

// ParseDigest decodes a PHC-form digest string. Any structural problem
// yields common.ErrMalformedDigest; this is the only hard failure mode of
// verification.
func ParseDigest(encoded string) (*Digest, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) < 2 || parts[0] != "" {
		return nil, common.ErrMalformedDigest
	}

	switch parts[1] {
	case AlgArgon2id:
		return parseArgon2id(parts)
	case AlgPBKDF2:
		return parsePBKDF2(parts)
	default:
		return nil, common.ErrMalformedDigest
	}
}

func parseArgon2id(parts []string) (*Digest, error) {
	if len(parts) != 6 {
		return nil, common.ErrMalformedDigest
	}

	version, err := parseIntParam(parts[2], "v=")
	if err != nil || version != argon2.Version {
		return nil, common.ErrMalformedDigest
	}

	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return nil, common.ErrMalformedDigest
	}
	mem, err := parseIntParam(params[0], "m=")
	if err != nil || mem < 1 || int64(mem) > math.MaxUint32 {
		return nil, common.ErrMalformedDigest
	}
	timeCost, err := parseIntParam(params[1], "t=")
	if err != nil || timeCost < 1 || int64(timeCost) > math.MaxUint32 {
		return nil, common.ErrMalformedDigest
	}
	threads, err := parseIntParam(params[2], "p=")
	if err != nil || threads < 1 || threads > 255 {
		return nil, common.ErrMalformedDigest
	}

	salt, hash, err := decodeSaltHash(parts[4], parts[5])
	if err != nil {
		return nil, err
	}

	return &Digest{
		Alg:     AlgArgon2id,
		Salt:    salt,
		Hash:    hash,
		Memory:  uint32(mem),
		Time:    uint32(timeCost),
		Threads: uint8(threads),
	}, nil
}

func parsePBKDF2(parts []string) (*Digest, error) {
	if len(parts) != 5 {
		return nil, common.ErrMalformedDigest
	}

	iterations, err := parseIntParam(parts[2], "i=")
	if err != nil || iterations < 1 {
		return nil, common.ErrMalformedDigest
	}

	salt, hash, err := decodeSaltHash(parts[3], parts[4])
	if err != nil {
		return nil, err
	}

	return &Digest{Alg: AlgPBKDF2, Salt: salt, Hash: hash, Iterations: iterations}, nil
}

func parseIntParam(value, prefix string) (int, error) {
	if !strings.HasPrefix(value, prefix) {
		return 0, common.ErrMalformedDigest
	}
	return strconv.Atoi(strings.TrimPrefix(value, prefix))
}

func decodeSaltHash(saltPart, hashPart string) ([]byte, []byte, error) {
	salt, err := base64.RawStdEncoding.DecodeString(saltPart)
	if err != nil || len(salt) == 0 {
		return nil, nil, common.ErrMalformedDigest
	}
	hash, err := base64.RawStdEncoding.DecodeString(hashPart)
	if err != nil || len(hash) == 0 {
		return nil, nil, common.ErrMalformedDigest
	}
	return salt, hash, nil
}
