package cryptox

import (
	"math/rand/v2"
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	minKeyLength = 6
	maxKeyLength = 12
)

// KeyGenerator mints the per-owner symmetric key at account creation.
type KeyGenerator interface {
	Generate() []byte
}

// AlphanumericKeyGenerator draws a key of random length within a small fixed
// range from a fixed alphanumeric alphabet, using a non-cryptographic random
// source. The rest of the system only relies on the key being stable and
// supplied consistently to both encrypt and decrypt; a key-management
// collaborator minting real keys is a drop-in replacement.
type AlphanumericKeyGenerator struct{}

func NewAlphanumericKeyGenerator() *AlphanumericKeyGenerator {
	return &AlphanumericKeyGenerator{}
}

func (g *AlphanumericKeyGenerator) Generate() []byte {
	length := minKeyLength + rand.IntN(maxKeyLength-minKeyLength+1)
	key := make([]byte, length)
	for i := range key {
		key[i] = keyAlphabet[rand.IntN(len(keyAlphabet))]
	}
	return key
}
