package htmlsanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"plain text", "Khách hẹn lấy máy chiều thứ 7", "Khách hẹn lấy máy chiều thứ 7"},
		{"trims whitespace", "  pin 92%  \n", "pin 92%"},
		{"tags stripped", "<p>Hello <strong>World</strong></p>", "Hello World"},
		{"script removed with body", "ok<script>alert('xss')</script>", "ok"},
		{"attributes removed", `<b onclick="alert(1)">Click</b>`, "Click"},
		{"entity decoded", "a &amp; b", "a & b"},
		{"bare ampersand kept", "a & b", "a & b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlainText_NoMarkupSurvives(t *testing.T) {
	inputs := []string{
		`<a href="javascript:alert('xss')">Link</a>`,
		`<img src=x onerror=alert(1)>`,
		`<iframe src="https://evil.example.com"></iframe>text`,
	}
	for _, in := range inputs {
		got := PlainText(in)
		if strings.ContainsAny(got, "<>") || strings.Contains(got, "alert") {
			t.Errorf("PlainText(%q) = %q, still has markup", in, got)
		}
	}
}

func TestNote_Caps(t *testing.T) {
	long := strings.Repeat("ơ", MaxNoteLength+50)
	got := Note(long)
	if n := utf8.RuneCountInString(got); n != MaxNoteLength {
		t.Errorf("Note() length = %d runes, want %d", n, MaxNoteLength)
	}
	if !utf8.ValidString(got) {
		t.Error("Note() cut a rune in half")
	}
	if Note("short") != "short" {
		t.Error("Note() changed a short note")
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"just text", true},
		{"1 < 2", true},
		{"<b>bold</b>", false},
	}
	for _, tt := range tests {
		if got := IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
