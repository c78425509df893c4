package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Digits is the length of generated one-time codes.
const Digits = 6

// Generate returns a zero-padded numeric one-time code.
func Generate() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < Digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", Digits, n), nil
}
