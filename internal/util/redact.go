package util

import (
	"regexp"
	"strings"
)

var (
	// "Bearer <token>" shows up in HTTP error strings from downstream
	// clients; keep the match broad.
	bearerRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// key=value / key: value forms that leak API keys into error text.
	keyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|gemini[_-]?api[_-]?key|token)\b\s*[:=]\s*[^\s"']+`)
)

// RedactSecrets strips obvious secret-bearing substrings from a message
// before it lands in the event ledger or a log line. Safe to call on any
// string, including upstream error text.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := bearerRe.ReplaceAllString(s, "Bearer <redacted>")
	out = keyKVRe.ReplaceAllString(out, "<redacted>")
	return strings.TrimSpace(out)
}
