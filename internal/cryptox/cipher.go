// Package cryptox implements the at-rest content encryption used by the
// storage engine: a self-inverse repeating-key stream cipher and the
// per-owner key generator. Both hide behind small interfaces so a stronger
// AEAD cipher and a real key-management backend are drop-in replacements.
package cryptox

import (
	"github.com/avolkov/shareit/internal/common"
)

// Cipher is a symmetric byte transform applied to file content before it
// reaches durable storage. Implementations must be length-preserving and
// satisfy Decrypt(Encrypt(b, k), k) == b for every b and non-empty k.
type Cipher interface {
	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(ciphertext, key []byte) ([]byte, error)
}

// XORStreamCipher combines each content byte with the repeating key stream.
// Encryption and decryption are the same transform, so the ciphertext has
// exactly the plaintext's length. It provides confidentiality against casual
// inspection only; substituting an authenticated cipher keeps the contract.
type XORStreamCipher struct{}

func NewXORStreamCipher() *XORStreamCipher {
	return &XORStreamCipher{}
}

func (c *XORStreamCipher) transform(data, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, common.ErrEmptyKey
	}
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out, nil
}

func (c *XORStreamCipher) Encrypt(plaintext, key []byte) ([]byte, error) {
	return c.transform(plaintext, key)
}

func (c *XORStreamCipher) Decrypt(ciphertext, key []byte) ([]byte, error) {
	return c.transform(ciphertext, key)
}
