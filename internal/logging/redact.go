package logging

import (
	"io"
	"regexp"
)

// Patterns matching secrets that must never land in a log line: bearer
// headers, token pair values, and login credentials.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer)\s+([A-Za-z0-9._~+/-]+=*)`),
	regexp.MustCompile(`(?i)("?(?:access|refresh|auth)_token"?\s*[=:]\s*)"?([^\s",}]+)"?`),
	regexp.MustCompile(`(?i)("?(?:password|totp_secret|otp)"?\s*[=:]\s*)"?([^\s",}]+)"?`),
}

const mask = "***"

// Redact masks secret values embedded in a log line.
func Redact(line string) string {
	for _, p := range sensitivePatterns {
		line = p.ReplaceAllString(line, "${1}"+mask)
	}
	return line
}

// redactWriter masks secrets on every write before passing the line on.
// zerolog emits one complete event per Write call, so line-level masking is
// safe here.
type redactWriter struct {
	next io.Writer
}

// NewRedactWriter wraps w so that secrets are masked before reaching it.
func NewRedactWriter(w io.Writer) io.Writer {
	return &redactWriter{next: w}
}

func (r *redactWriter) Write(p []byte) (int, error) {
	masked := Redact(string(p))
	if _, err := r.next.Write([]byte(masked)); err != nil {
		return 0, err
	}
	return len(p), nil
}
