// Package otp generates one-time numeric codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

type numericGenerator struct {
	digits int
	max    *big.Int
}

// NewNumeric returns a generator of zero-padded decimal codes with the
// given number of digits, drawn from crypto/rand.
func NewNumeric(digits int) Generator {
	return &numericGenerator{
		digits: digits,
		max:    new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil),
	}
}

// Generate returns a new code.
func (g *numericGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", g.digits, n), nil
}

// Static always returns Code. Useful for tests.
type Static struct {
	Code string
	Err  error
}

// Generate returns the configured code or error.
func (s Static) Generate() (string, error) {
	return s.Code, s.Err
}
