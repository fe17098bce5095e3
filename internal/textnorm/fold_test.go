package textnorm

import (
	"testing"
	"unicode/utf8"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"BAŞLIK", "başlik"},
		{"Başlık", "başlik"},
		{"TITLE", "title"},
		{"Ürün Önerileri", "ürün önerileri"},
		{"İÇ MİMARİ", "iç mimari"},
	}
	for _, tc := range tests {
		if got := Fold(tc.in); got != tc.want {
			t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("**BAŞLIK**", "başlık", "title") {
		t.Fatalf("expected header keyword match")
	}
	if ContainsAny("Açıklama", "başlık", "title") {
		t.Fatalf("unexpected match")
	}
}

func TestTruncate(t *testing.T) {
	long := "Modern salon için sıcak tonlarda ahşap detaylı ve bol doğal ışıklı bir yaşam alanı önerisi"
	got := Truncate(long, 60)
	if n := utf8.RuneCountInString(got); n > 60 {
		t.Fatalf("Truncate length = %d, want <= 60", n)
	}
	if got == "" {
		t.Fatalf("Truncate returned empty string")
	}
	if Truncate("kısa", 60) != "kısa" {
		t.Fatalf("short input should be unchanged")
	}
}
