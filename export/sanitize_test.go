package export

import "testing"

func TestSanitizeFilenameIllegalChars(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Foo Series", "Foo Series"},
		{"a/b\\c:d", "a-b-c-d"},
		{`what? 100% *sure* |really| "yes" <no>`, "what- 100- -sure- -really- -yes- -no-"},
		{"tab\tand\x01ctl", "tab-and-ctl"},
		{"del\x7fchar", "del-char"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeFilenameReservedNames(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CON", "-"},
		{"con.txt", "-txt"},
		{" AUX rest", "-rest"},
		{"COM5.log", "-log"},
		{"NUL ", "-"},
		{"console", "console"}, // not followed by dot/space/end
		{"LPT11", "LPT11"},     // LPT1 followed by a digit is not reserved
		{"my CON", "my CON"},   // only anchored at the start
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeFilenameEdges(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" abc", "-abc"},
		{"abc.", "abc-"},
		{"abc ", "abc-"},
		{" abc.", "-abc-"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	inputs := []string{
		"", "Foo Series", "003 - A Book?", " CON.", "a/b\\c", "trailing. ",
		"x\x00y", "NUL", " leading and trailing ",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("SanitizeFilename not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
