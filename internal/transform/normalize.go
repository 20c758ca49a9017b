package transform

import "strings"

// noEmailIdioms are the normalized forms clerks typed instead of leaving the
// email field blank.
var noEmailIdioms = map[string]bool{
	"nao tem":    true,
	"n tem":      true,
	"ntem":       true,
	"nao possui": true,
	"nt":         true,
}

// ClearEmail decides whether an email-like value carries a real address.
// The value is normalized (lowercased, '/' and '_' stripped) only for the
// decision; when kept, the original value is returned untouched.
// Returns ok=false when the field should become null.
func ClearEmail(email string) (string, bool) {
	clean := strings.ToLower(email)
	clean = strings.ReplaceAll(clean, "/", "")
	clean = strings.ReplaceAll(clean, "_", "")

	if distinctRunes(clean) < 3 || noEmailIdioms[clean] {
		return "", false
	}
	return email, true
}

func distinctRunes(s string) int {
	seen := make(map[rune]bool, len(s))
	for _, r := range s {
		seen[r] = true
	}
	return len(seen)
}

// ClearCompanyName strips a trailing personal tax ID (CPF) from a name:
// the final 11-digit token, an optional preceding "CPF" label and an
// optional preceding "-" separator. Names that are entirely digits are not
// personal names and pass through unchanged.
func ClearCompanyName(name string) string {
	if isDigits(name) {
		return name
	}

	words := strings.Fields(name)
	if n := len(words); n > 0 && isDigits(words[n-1]) && len(words[n-1]) == 11 {
		words = words[:n-1]
	}
	if n := len(words); n > 0 && strings.EqualFold(words[n-1], "CPF") {
		words = words[:n-1]
	}
	if n := len(words); n > 0 && words[n-1] == "-" {
		words = words[:n-1]
	}
	return strings.Join(words, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
