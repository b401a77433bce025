package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText checks that truncation never grows text or exceeds the width.
func FuzzTruncateText(f *testing.F) {
	f.Add("Foundations of Artificial Intelligence", 15)
	f.Add("", 0)
	f.Add("日本語のテキスト", 5)

	f.Fuzz(func(t *testing.T, text string, width int) {
		got := TruncateText(text, width)
		n := utf8.RuneCountInString(got)
		if n > utf8.RuneCountInString(text) {
			t.Fatalf("truncation grew %q to %q", text, got)
		}
		if width > 3 && utf8.RuneCountInString(text) > width && n != width {
			t.Fatalf("TruncateText(%q, %d) has %d runes", text, width, n)
		}
	})
}
