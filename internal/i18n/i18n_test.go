package i18n

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Lang
		wantOK bool
	}{
		{"en", English, true},
		{"ar", Arabic, true},
		{"fr", English, false},
		{"", English, false},
		{"EN", English, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDir(t *testing.T) {
	if English.Dir() != "ltr" {
		t.Errorf("English.Dir() = %q", English.Dir())
	}
	if Arabic.Dir() != "rtl" {
		t.Errorf("Arabic.Dir() = %q", Arabic.Dir())
	}
}

func TestPick(t *testing.T) {
	if got := English.Pick("hello", "مرحبا"); got != "hello" {
		t.Errorf("English.Pick = %q", got)
	}
	if got := Arabic.Pick("hello", "مرحبا"); got != "مرحبا" {
		t.Errorf("Arabic.Pick = %q", got)
	}
	// Missing Arabic content falls back to English rather than showing
	// an empty page section.
	if got := Arabic.Pick("hello", ""); got != "hello" {
		t.Errorf("Arabic.Pick with empty ar = %q", got)
	}
}
