// Package textnorm holds the Turkish-aware case helpers shared by the
// prompt and reply parsers.
package textnorm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold lowercases s with Turkish rules and then maps dotless ı onto i so
// that "BAŞLIK", "Başlık" and "baslik"-style keywords compare equal to their
// ASCII-typed variants. Casers are not safe for concurrent use, so a new one
// is built per call.
func Fold(s string) string {
	lowered := cases.Lower(language.Turkish).String(s)
	return strings.ReplaceAll(lowered, "ı", "i")
}

// ContainsAny reports whether the folded s contains any folded keyword.
func ContainsAny(s string, keywords ...string) bool {
	folded := Fold(s)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, Fold(kw)) {
			return true
		}
	}
	return false
}

// Title capitalizes each word using Turkish rules.
func Title(s string) string {
	return cases.Title(language.Turkish).String(strings.TrimSpace(s))
}

// Truncate cuts s to at most limit runes, preferring the last word boundary.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(strings.TrimSpace(cut), ",;:-")
}
