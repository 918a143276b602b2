// Package redact replaces patient identifiers in free text with [REDACTED]
// before it is logged or rendered.
package redact

import "regexp"

var patterns []*regexp.Regexp

func init() {
	raw := []string{
		// US social security numbers
		`\b\d{3}-\d{2}-\d{4}\b`,
		// Medical record numbers
		`\b(?i:mrn|medical record(?: number)?)\s*[:#=]?\s*[A-Za-z]{0,3}\d[\d-]{3,}`,
		// Dates of birth
		`(?i)\b(dob|date of birth|born)\s*[:=]?\s*\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}`,
		// Email addresses
		`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
		// Phone numbers
		`(\+1[\s.-]?)?\(?\b\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}\b`,
		// Labelled patient names
		`\b(?i:patient|name|pt)\s*[:=]\s*[A-Z][a-z]+(\s+[A-Z][a-z]+)*`,
	}
	for _, r := range raw {
		patterns = append(patterns, regexp.MustCompile(r))
	}
}

// Redact replaces identifier patterns in text with [REDACTED].
func Redact(text string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}
