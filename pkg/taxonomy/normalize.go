// Package taxonomy holds the canonical code rules shared by every taxonomy entity.
//
// Codes are join keys between categories, subcategories, groups, stickers and
// sticker-group links, and they also appear in public URLs and asset filenames.
// Normalize is the only way a code should reach storage.
package taxonomy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNormalization is matched by every *NormalizationError via errors.Is.
var ErrNormalization = errors.New("taxonomy code cannot be normalized")

var (
	canonicalCodeRe = regexp.MustCompile(`^[A-Z0-9]+(-[A-Z0-9]+)*$`)
	separatorRunRe  = regexp.MustCompile(`[_\s]+`)
	hyphenRunRe     = regexp.MustCompile(`-{2,}`)
)

// NormalizationError reports raw input that could not be reduced to a canonical code.
type NormalizationError struct {
	Input     string // original input
	Candidate string // result of the rewrite steps that failed validation
}

func (e *NormalizationError) Error() string {
	if e.Candidate == "" {
		return fmt.Sprintf("taxonomy: empty code from input %q", e.Input)
	}
	return fmt.Sprintf("taxonomy: invalid code %q from input %q: only A-Z, 0-9 and single inner hyphens are allowed", e.Candidate, e.Input)
}

func (e *NormalizationError) Is(target error) bool {
	return target == ErrNormalization
}

// Normalize turns arbitrary input into a canonical taxonomy code.
//
// It trims and uppercases, turns runs of underscores or whitespace into a single
// hyphen, collapses repeated hyphens and strips hyphens at both ends. Anything
// that still does not match the canonical pattern is rejected, never coerced.
func Normalize(input string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(input))
	code = separatorRunRe.ReplaceAllString(code, "-")
	code = hyphenRunRe.ReplaceAllString(code, "-")
	code = strings.Trim(code, "-")

	if !canonicalCodeRe.MatchString(code) {
		return "", &NormalizationError{Input: input, Candidate: code}
	}
	return code, nil
}

// MustNormalize is Normalize for compiled-in constants. It panics on failure.
func MustNormalize(input string) string {
	code, err := Normalize(input)
	if err != nil {
		panic(err)
	}
	return code
}

// IsCanonical reports whether code already has canonical form.
func IsCanonical(code string) bool {
	return canonicalCodeRe.MatchString(code)
}

// HasUnderscore flags codes that bypassed normalization.
func HasUnderscore(code string) bool {
	return strings.Contains(code, "_")
}
