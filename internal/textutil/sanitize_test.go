package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"meeting.wav", "meeting.wav"},
		{"  team call.mp3 ", "team call.mp3"},
		{"../../etc/passwd", "passwd"},
		{`a/b\c:d*e?.wav`, "b-c-d-e.wav"},
		{"<weird>|name.ogg", "weirdname.ogg"},
		{"", ""},
		{"...", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("My File!"); got != "my_file" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("   "); got != "unknown" {
		t.Fatalf("SanitizeToken empty = %q", got)
	}
}
