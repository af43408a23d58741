package security

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// GenerateVerificationCode returns a six-digit code drawn uniformly from
// 100000-999999 using crypto/rand. Codes are never zero-padded.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// CodesEqual compares a submitted code with the stored one in constant time.
func CodesEqual(submitted, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}
