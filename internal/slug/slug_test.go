package slug

import "testing"

func TestAnchor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Getting Started!", "getting-started"},
		{"API Reference", "api-reference"},
		{"Simple", "simple"},
		{"Already-Hyphenated Title", "already-hyphenated-title"},
		{"Spaces   collapse    here", "spaces-collapse-here"},
		{"Symbols & Punctuation: (removed)?", "symbols-punctuation-removed"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Numbers 123 stay", "numbers-123-stay"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Anchor(c.in); got != c.want {
			t.Errorf("Anchor(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAnchor_Deterministic(t *testing.T) {
	in := "Some ~ Weird // Heading 42"
	if Anchor(in) != Anchor(in) {
		t.Fatal("Anchor must be pure and repeatable")
	}
}
