package crypto

import (
	"crypto/rand"
	"math/big"
)

const UpperAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a string of n characters picked uniformly from charset.
func GenerateRandomString(charset string, n uint) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[RandIntn(len(charset))]
	}
	return string(b)
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}
