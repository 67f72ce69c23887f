package validator

import (
	"net/url"
	"strings"

	"github.com/coderedlink/coderedlink/internal/apperr"
	"github.com/coderedlink/coderedlink/internal/codegen"
)

// LinkValidator validates link creation inputs.
type LinkValidator struct {
	maxURLLength  int
	codeMinLength int
	codeMaxLength int
	reservedCodes []string
}

// New creates a validator with the given custom-code length bounds.
func New(codeMin, codeMax int) *LinkValidator {
	return &LinkValidator{
		maxURLLength:  2048,
		codeMinLength: codeMin,
		codeMaxLength: codeMax,
		reservedCodes: []string{"api", "health", "404"},
	}
}

// ValidateURL checks that the target is a well-formed absolute http(s) URL.
// Targets are validated once at creation and never re-checked on redirect.
func (v *LinkValidator) ValidateURL(rawURL string) *apperr.Error {
	if strings.TrimSpace(rawURL) == "" {
		return apperr.MissingField("url")
	}

	if len(rawURL) > v.maxURLLength {
		return apperr.InvalidURL("URL exceeds maximum length of 2048 characters")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apperr.InvalidURL("URL could not be parsed")
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return apperr.InvalidURL("URL must use http or https scheme")
	}

	if parsed.Host == "" {
		return apperr.InvalidURL("URL must have a valid host")
	}

	return nil
}

// ValidateCustomCode checks an optional user-supplied code. An empty code is
// valid: it means the caller wants a generated one.
func (v *LinkValidator) ValidateCustomCode(code string) *apperr.Error {
	if code == "" {
		return nil
	}

	for _, r := range v.reservedCodes {
		if strings.EqualFold(code, r) {
			return apperr.InvalidCode("this short code is reserved")
		}
	}

	if err := codegen.Validate(code, v.codeMinLength, v.codeMaxLength); err != nil {
		return apperr.InvalidCode(err.Error())
	}

	return nil
}
