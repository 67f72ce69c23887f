package validator

import "testing"

func TestValidateURL(t *testing.T) {
	v := New(4, 8)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid http", "http://example.com", false},
		{"valid https", "https://example.com/some/long/path?q=1", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"no scheme", "example.com", true},
		{"relative path", "/foo/bar", true},
		{"ftp scheme", "ftp://example.com", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"just text", "bad", true},
		{"scheme without host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURLTooLong(t *testing.T) {
	v := New(4, 8)

	long := "https://example.com/"
	for len(long) <= 2048 {
		long += "aaaaaaaaaa"
	}

	if err := v.ValidateURL(long); err == nil {
		t.Error("expected error for URL over 2048 characters")
	}
}

func TestValidateCustomCode(t *testing.T) {
	v := New(4, 8)

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"empty is allowed", "", false},
		{"valid", "promo1", false},
		{"min length", "abcd", false},
		{"max length", "abcdefgh", false},
		{"too short", "abc", true},
		{"too long", "abcdefghi", true},
		{"hyphen rejected", "my-code", true},
		{"reserved api", "api", true},
		{"reserved mixed case", "HEALTH", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCustomCode(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCustomCode(%q) = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}
