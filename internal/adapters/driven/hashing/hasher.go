// Package hashing provides the content-addressing functions that derive
// document ids from text.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure hashers implement the interface.
var (
	_ driven.ContentHasher = FNV64a{}
	_ driven.ContentHasher = SHA256{}
)

// FNV64a derives decimal ids from the 64-bit FNV-1a hash of the text.
type FNV64a struct{}

// ID returns the unsigned decimal digest.
func (FNV64a) ID(text string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return strconv.FormatUint(h.Sum64(), 10)
}

// Name returns "fnv64a".
func (FNV64a) Name() string { return string(domain.HashFNV64a) }

// SHA256 derives lowercase hex ids from the SHA-256 digest of the text.
type SHA256 struct{}

// ID returns the hex digest.
func (SHA256) ID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Name returns "sha256".
func (SHA256) Name() string { return string(domain.HashSHA256) }

// New returns the hasher for an algorithm.
func New(algorithm domain.HashAlgorithm) (driven.ContentHasher, error) {
	switch algorithm {
	case domain.HashFNV64a, "":
		return FNV64a{}, nil
	case domain.HashSHA256:
		return SHA256{}, nil
	default:
		return nil, fmt.Errorf("%w: hash algorithm %q", domain.ErrUnsupportedType, algorithm)
	}
}
