package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
	}{
		{name: "Simple", subject: "Pain update", body: "Worse today"},
		{name: "Multiline body", subject: "Follow-up", body: "Line one\nLine two\n\nLine four"},
		{name: "Empty body", subject: "Just checking in", body: ""},
		{name: "Unicode", subject: "Prescripción", body: "Tomar 2 cápsulas al día"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := ParseEnvelope(EncodeEnvelope(tt.subject, tt.body))
			if subject != tt.subject {
				t.Errorf("subject = %q, want %q", subject, tt.subject)
			}
			if body != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestEncodeEnvelope_EmptySubject(t *testing.T) {
	subject, body := ParseEnvelope(EncodeEnvelope("", "hello"))
	if subject != "No subject" {
		t.Errorf("subject = %q, want %q", subject, "No subject")
	}
	if body != "hello" {
		t.Errorf("body = %q, want %q", body, "hello")
	}
}

func TestParseEnvelope_NoMarker(t *testing.T) {
	content := "a plain message stored by an older client"
	subject, body := ParseEnvelope(content)
	if subject != "No subject" {
		t.Errorf("subject = %q, want %q", subject, "No subject")
	}
	if body != content {
		t.Errorf("body = %q, want full content", body)
	}
}

func TestParseEnvelope_MarkerWithoutSeparator(t *testing.T) {
	content := "**Subject:** dangling subject with no body separator"
	subject, body := ParseEnvelope(content)
	if subject != "No subject" {
		t.Errorf("subject = %q, want %q", subject, "No subject")
	}
	if body != content {
		t.Errorf("body = %q, want full content", body)
	}
}

func TestPreview(t *testing.T) {
	short := "short body"
	if got := Preview(short); got != short {
		t.Errorf("Preview(short) = %q, want %q", got, short)
	}

	long := strings.Repeat("x", 250)
	got := Preview(long)
	if len(got) != 100 {
		t.Errorf("len(Preview(long)) = %d, want 100", len(got))
	}
	if !strings.HasPrefix(long, got) {
		t.Error("Preview should be a prefix of the body")
	}
}

func TestPreview_MultibyteBody(t *testing.T) {
	short := strings.Repeat("€", 40) // 40 characters, 120 bytes
	if got := Preview(short); got != short {
		t.Errorf("Preview(short multibyte) = %q, want body unchanged", got)
	}

	long := strings.Repeat("€", 150)
	got := Preview(long)
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("rune count of Preview = %d, want 100", n)
	}
	if !utf8.ValidString(got) {
		t.Error("Preview emitted invalid UTF-8")
	}
	if !strings.HasPrefix(long, got) {
		t.Error("Preview should be a prefix of the body")
	}
}
