// Package courses normalizes free-text course codes into canonical
// "SUBJECT NUMBER" form.
package courses

import (
	"regexp"
	"strings"

	"github.com/jonathan/coursemate/internal/types"
)

// codePattern matches a subject of 2-6 letters and a 3 digit number,
// optionally separated by whitespace.
var codePattern = regexp.MustCompile(`^([A-Z]{2,6})\s*(\d{3})$`)

// NormalizeCode rewrites a single token to canonical form. Tokens that do not
// look like a course code are trimmed and uppercased but otherwise left alone.
// The token is uppercased before matching: some non-ASCII letters (e.g. "ſ")
// uppercase to ASCII, and matching afterwards keeps the result stable.
func NormalizeCode(token string) types.CourseCode {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		return ""
	}

	if m := codePattern.FindStringSubmatch(token); m != nil {
		return types.CourseCode(m[1] + " " + m[2])
	}
	return types.CourseCode(token)
}

// Normalize splits comma-separated input and normalizes every token. Empty
// tokens are dropped; empty input yields an empty set.
func Normalize(raw string) types.CompletedCourses {
	return types.NewCompletedCourses(NormalizeList(raw)...)
}

// NormalizeList is Normalize without the set wrapper, keeping duplicates.
func NormalizeList(raw string) []types.CourseCode {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	tokens := strings.Split(raw, ",")
	codes := make([]types.CourseCode, 0, len(tokens))
	for _, token := range tokens {
		if code := NormalizeCode(token); !code.IsZero() {
			codes = append(codes, code)
		}
	}
	return codes
}

// Join renders codes back into the comma-separated input format.
func Join(codes []types.CourseCode) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = string(code)
	}
	return strings.Join(parts, ", ")
}

// Split returns the subject and number of a canonical code. ok is false when
// the code has no space separator.
func Split(code types.CourseCode) (subject, number string, ok bool) {
	subject, number, ok = strings.Cut(string(code), " ")
	if !ok || subject == "" || number == "" {
		return "", "", false
	}
	return subject, number, true
}
