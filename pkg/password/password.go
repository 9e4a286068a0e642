// Package password hashes and verifies user credentials.
//
// Digests are self-describing: bcrypt digests start with "$2", argon2id
// digests with "$argon2id$". Verify picks the algorithm from the digest, so
// switching the configured algorithm keeps existing accounts working.
package password

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"

	argon2idPrefix = "$argon2id$"

	// MaxBytes is the longest credential bcrypt accepts. Both algorithms enforce it
	// so switching algorithms never changes which passwords are valid.
	MaxBytes = 72
)

var ErrTooLong = errors.New("password: longer than 72 bytes")

// Hasher hashes new credentials with the configured algorithm and verifies
// digests produced by any supported algorithm.
type Hasher struct {
	algorithm  string
	bcryptCost int
	argon      *argon2id.Params

	dummyOnce   sync.Once
	dummyDigest string
}

func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	switch algorithm {
	case "", AlgorithmBcrypt:
		algorithm = AlgorithmBcrypt
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("password: unsupported algorithm %q", algorithm)
	}

	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password: bcrypt cost %d out of range", bcryptCost)
	}

	return &Hasher{
		algorithm:  algorithm,
		bcryptCost: bcryptCost,
		argon:      argon2id.DefaultParams,
	}, nil
}

func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// Hash returns a salted digest of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxBytes {
		return "", ErrTooLong
	}
	if h.algorithm == AlgorithmArgon2id {
		return argon2id.CreateHash(plain, h.argon)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches digest. Unknown digest formats never match.
func (h *Hasher) Verify(plain, digest string) bool {
	switch {
	case strings.HasPrefix(digest, argon2idPrefix):
		ok, err := argon2id.ComparePasswordAndHash(plain, digest)
		return err == nil && ok
	case isBcrypt(digest):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
	default:
		return false
	}
}

// VerifyDummy spends the same work as a real comparison against a digest
// that never matches. Login uses it for unknown emails.
func (h *Hasher) VerifyDummy(plain string) {
	h.dummyOnce.Do(func() {
		h.dummyDigest, _ = h.Hash("promptmaster-dummy-credential")
	})
	if h.dummyDigest != "" {
		h.Verify(plain, h.dummyDigest)
	}
}

func isBcrypt(value string) bool {
	if !strings.HasPrefix(value, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}
