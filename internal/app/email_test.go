package app

import "testing"

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "logo.png", "logo.png"},
		{"path stripped", "../../etc/passwd", "passwd"},
		{"separators removed", "b\\c:d.png", "bcd.png"},
		{"control chars removed", "re\x00port.pdf", "report.pdf"},
		{"whitespace trimmed", "  notes.txt  ", "notes.txt"},
		{"empty falls back", "", "fallback-id"},
		{"dot falls back", ".", "fallback-id"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := safeFilename(c.in, "fallback-id"); got != c.want {
				t.Errorf("safeFilename(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
