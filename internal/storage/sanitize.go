package storage

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Characters that are unsafe in filenames on at least one supported platform.
var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFilename turns a post title into a filesystem-safe name.
// Sanitizing an already-sanitized string of equal or shorter length is a
// no-op.
func SanitizeFilename(title string, maxLength int, replaceSpaces bool) string {
	s := unsafeFilenameChars.ReplaceAllString(title, "_")
	if replaceSpaces {
		s = strings.ReplaceAll(s, " ", "_")
	}
	if maxLength > 0 && len(s) > maxLength {
		// Prefix cut, backing off so a multi-byte rune is never split.
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
