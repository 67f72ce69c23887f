// Package codegen generates and validates short codes. Generation is a pure
// function of an injected random source so tests can seed it.
package codegen

import (
	"fmt"
	"math/rand"
	"regexp"
)

// Alphabet is the 62-character set short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Generate returns a random code of the given length, each character chosen
// independently and uniformly from Alphabet.
func Generate(length int, r *rand.Rand) string {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = Alphabet[r.Intn(len(Alphabet))]
	}
	return string(buf)
}

// Validate checks a candidate code against the alphanumeric pattern and the
// configured length bounds.
func Validate(code string, minLen, maxLen int) error {
	if len(code) < minLen || len(code) > maxLen {
		return fmt.Errorf("code must be between %d and %d characters", minLen, maxLen)
	}
	if !codePattern.MatchString(code) {
		return fmt.Errorf("code must contain only letters and digits")
	}
	return nil
}
