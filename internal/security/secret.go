// Package security holds the random material used for signing keys.
package security

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// SecretAlphabet avoids characters that are easy to confuse when a key is
	// copied by hand.
	SecretAlphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	MinSecretKeyLength  = 32
	maxAlphabetSize     = 256
	randomReadChunkSize = 64
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errBadAlphabet    = errors.New("alphabet must hold between 1 and 256 characters")
)

// SecretKey returns a random signing key of at least MinSecretKeyLength
// characters drawn from SecretAlphabet.
func SecretKey(length int) (string, error) {
	if length < MinSecretKeyLength {
		length = MinSecretKeyLength
	}
	secret, err := RandomString(length, SecretAlphabet)
	if err != nil {
		return "", fmt.Errorf("generate secret key: %w", err)
	}
	return secret, nil
}

// RandomString draws length characters from alphabet using crypto/rand.
// Bytes above the largest multiple of the alphabet size are rejected, so every
// character is equally likely.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if len(alphabet) == 0 || len(alphabet) > maxAlphabetSize {
		return "", errBadAlphabet
	}

	size := len(alphabet)
	ceiling := maxAlphabetSize - maxAlphabetSize%size
	result := make([]byte, 0, length)
	buf := make([]byte, randomReadChunkSize)
	for len(result) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= ceiling {
				continue
			}
			result = append(result, alphabet[int(b)%size])
			if len(result) == length {
				break
			}
		}
	}
	return string(result), nil
}
