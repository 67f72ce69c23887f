package codegen

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for _, length := range []int{1, 4, 6, 8, 12} {
		code := Generate(length, r)
		if len(code) != length {
			t.Errorf("Generate(%d) = %q (len=%d)", length, code, len(code))
		}
	}
}

func TestGenerateAlphabet(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	valid := regexp.MustCompile(`^[A-Za-z0-9]+$`)

	for i := 0; i < 500; i++ {
		code := Generate(6, r)
		if !valid.MatchString(code) {
			t.Fatalf("Generate produced a character outside the alphabet: %q", code)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	// Same seed must yield the same sequence of codes.
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))

	for i := 0; i < 10; i++ {
		ca, cb := Generate(6, a), Generate(6, b)
		if ca != cb {
			t.Fatalf("seeded generation diverged: %q vs %q", ca, cb)
		}
	}
}

func TestGenerateCoversAlphabet(t *testing.T) {
	// With enough draws every alphabet character should appear at least once.
	r := rand.New(rand.NewSource(99))
	seen := make(map[byte]bool)

	for i := 0; i < 2000; i++ {
		for _, c := range []byte(Generate(6, r)) {
			seen[c] = true
		}
	}

	for i := 0; i < len(Alphabet); i++ {
		if !seen[Alphabet[i]] {
			t.Errorf("character %q never generated", Alphabet[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid lowercase", "promo1", false},
		{"valid mixed", "AbC123xY", false},
		{"minimum length", "abcd", false},
		{"too short", "abc", true},
		{"too long", "abcdefghi", true},
		{"empty", "", true},
		{"hyphen", "abc-def", true},
		{"underscore", "abc_def", true},
		{"space", "abc def", true},
		{"unicode", "abcdé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.code, 4, 8)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCustomBounds(t *testing.T) {
	if err := Validate("abc", 3, 20); err != nil {
		t.Errorf("expected 3-char code to pass with min 3, got %v", err)
	}
	if err := Validate(strings.Repeat("a", 20), 3, 20); err != nil {
		t.Errorf("expected 20-char code to pass with max 20, got %v", err)
	}
}
