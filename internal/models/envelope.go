package models

import (
	"strings"
	"unicode/utf8"
)

// Stored message content embeds the subject in a fixed prefix:
//
//	**Subject:** <subject>\n\n<body>
//
// Content written by older portal versions uses the same format, so the
// codec must stay byte-compatible with it.
const (
	subjectMarker  = "**Subject:** "
	defaultSubject = "No subject"
	previewLength  = 100
)

// EncodeEnvelope serializes subject and body into a single content string
func EncodeEnvelope(subject, body string) string {
	if subject == "" {
		subject = defaultSubject
	}
	return subjectMarker + subject + "\n\n" + body
}

// ParseEnvelope splits stored content back into subject and body. Content
// without the marker prefix is treated as a bare body with a default subject.
func ParseEnvelope(content string) (subject, body string) {
	if !strings.HasPrefix(content, subjectMarker) {
		return defaultSubject, content
	}
	rest := content[len(subjectMarker):]
	idx := strings.Index(rest, "\n\n")
	if idx < 0 {
		return defaultSubject, content
	}
	return rest[:idx], rest[idx+2:]
}

// Preview returns the first 100 characters of the body for list views.
// Truncation counts runes, not bytes, so multibyte content is never cut
// mid-character.
func Preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	return string([]rune(body)[:previewLength])
}
