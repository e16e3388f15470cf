package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

const tokenRawSize = 32

// NewToken generates an opaque one-shot token: 32 random bytes (256 bits)
// in unpadded base64url. It returns the plaintext alongside its SHA-256
// digest; only the digest is ever persisted.
func NewToken() (string, [32]byte, error) {
	var raw [tokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", [32]byte{}, err
	}

	plaintext := base64.RawURLEncoding.EncodeToString(raw[:])
	return plaintext, sha256.Sum256([]byte(plaintext)), nil
}

// HashToken digests a presented token value for storage lookup.
func HashToken(token string) [32]byte {
	return sha256.Sum256([]byte(token))
}
