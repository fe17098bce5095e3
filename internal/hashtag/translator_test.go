package hashtag

import (
	"reflect"
	"testing"
)

func TestTranslateKnownAndUnknown(t *testing.T) {
	tr := NewTranslator()
	res := tr.Translate([]string{"#LivingRoom", "cozy", " #madeup "})

	wantCanonical := []string{"livingroom", "cozy", "madeup"}
	wantTranslated := []string{"salon", "sıcak", "madeup"}
	wantDisplay := []string{"#salon", "#sıcak", "#madeup"}
	if !reflect.DeepEqual(res.Canonical, wantCanonical) {
		t.Fatalf("Canonical = %v, want %v", res.Canonical, wantCanonical)
	}
	if !reflect.DeepEqual(res.Translated, wantTranslated) {
		t.Fatalf("Translated = %v, want %v", res.Translated, wantTranslated)
	}
	if !reflect.DeepEqual(res.Display, wantDisplay) {
		t.Fatalf("Display = %v, want %v", res.Display, wantDisplay)
	}
	if !reflect.DeepEqual(res.Unknown, []string{"madeup"}) {
		t.Fatalf("Unknown = %v, want [madeup]", res.Unknown)
	}
}

func TestTranslateIsIdempotent(t *testing.T) {
	tr := NewTranslator()
	tags := StockTags("Scandinavian", "yatak odası")
	first := tr.Translate(tags)
	second := tr.Translate(tags)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Translate not idempotent: %#v vs %#v", first, second)
	}
}

func TestTranslateSkipsBlankTags(t *testing.T) {
	res := NewTranslator().Translate([]string{"", "#", "  "})
	if len(res.Canonical) != 0 || len(res.Display) != 0 {
		t.Fatalf("expected empty result, got %#v", res)
	}
}

func TestStockTagsHasTenKnownTags(t *testing.T) {
	tr := NewTranslator()
	tags := StockTags("minimalist", "mutfak")
	if len(tags) != 10 {
		t.Fatalf("StockTags len = %d, want 10", len(tags))
	}
	for _, tag := range tags {
		if !tr.Known(tag) {
			t.Fatalf("stock tag %q missing from vocabulary", tag)
		}
	}
}
