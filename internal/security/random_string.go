package security

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
)

const Digits = "0123456789"

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}
	return string(value), nil
}

// NumericCode returns a fixed-length decimal code; leading zeros are kept.
func NumericCode(length int) (string, error) {
	if length <= 0 {
		return "", errNegativeLength
	}
	return RandomString(length, Digits)
}

// EqualCodes compares two codes in constant time.
func EqualCodes(expected string, actual string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
