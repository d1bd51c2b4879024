// Package token mints capability tokens for share links. Two sources are
// provided: the name-hash source (a fixed substring of a bcrypt hash of
// the file's name) and the random source (crypto/rand hex with a
// uniqueness check against already-issued tokens). The random source is
// the default; the name-hash source performs no collision check.
package token

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/shareit/internal/common"
)

// Source derives a capability token for a file being shared. fileName is
// only an input to derived schemes; random schemes ignore it.
type Source interface {
	Mint(ctx context.Context, fileName string) (string, error)
}

const (
	// name-hash source: substring [nameHashOffset, nameHashOffset+TokenLength)
	// of the bcrypt hash output.
	nameHashOffset = 10

	// TokenLength is the length of every minted token, for both sources.
	TokenLength = 10
)

// NameHashSource hashes the file name with bcrypt and takes a fixed-length
// substring of the hash as the token. The bcrypt salt makes repeated mints
// of the same name differ, but nothing prevents two tokens from colliding.
type NameHashSource struct {
	cost int
}

func NewNameHashSource() *NameHashSource {
	return &NameHashSource{cost: bcrypt.DefaultCost}
}

func (s *NameHashSource) Mint(ctx context.Context, fileName string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(fileName), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing file name: %w", err)
	}
	return string(hash[nameHashOffset : nameHashOffset+TokenLength]), nil
}

// ExistsFunc reports whether a token is already registered.
type ExistsFunc func(ctx context.Context, token string) (bool, error)

// maxMintAttempts bounds the collision retry loop of RandomSource. At the
// token space in use, reaching it means the existence check is broken.
const maxMintAttempts = 5

// RandomSource draws tokens from crypto/rand and rejects candidates that
// already exist, making collisions practically impossible.
type RandomSource struct {
	exists ExistsFunc
}

func NewRandomSource(exists ExistsFunc) *RandomSource {
	return &RandomSource{exists: exists}
}

func (s *RandomSource) Mint(ctx context.Context, fileName string) (string, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		candidate, err := common.MakeRandHexString(TokenLength / 2)
		if err != nil {
			return "", fmt.Errorf("generating token: %w", err)
		}
		taken, err := s.exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking token uniqueness: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: could not mint a unique token", common.ErrorInternal)
}
