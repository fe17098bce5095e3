package geoip

import (
	"errors"
	"testing"
)

func TestNilResolverUnavailable(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil || r != nil {
		t.Fatalf("NewResolver(empty) = %v, %v", r, err)
	}
	if _, err := r.CountryCode("1.2.3.4"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
	if LookupFunc(r) != nil {
		t.Fatalf("nil resolver should disable lookups")
	}
}

func TestNewResolverMissingFile(t *testing.T) {
	if _, err := NewResolver("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Fatalf("expected error for missing database")
	}
}

func TestStaticLookup(t *testing.T) {
	lookup := LookupFunc(Static{"85.105.0.1": "tr"})
	if lookup == nil {
		t.Fatalf("static resolver should enable lookups")
	}
	got, err := lookup("85.105.0.1")
	if err != nil || got != "TR" {
		t.Fatalf("lookup = %q, %v", got, err)
	}
	if got, _ := lookup("8.8.8.8"); got != "" {
		t.Fatalf("unknown ip resolved to %q", got)
	}
}
