package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Food distribution, Kas!", "food-distribution-kas"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple   spaces", "multiple-spaces"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER Case", "upper-case"},
		{"dots.and/slashes", "dotsandslashes"},
		{"--hyphens--", "hyphens"},
		{"", ""},
		{"!!!", ""},
		{"نص عربي فقط", ""},
	}

	for _, tt := range tests {
		if got := Generate(tt.in); got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
