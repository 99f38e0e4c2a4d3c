package pathplan

import (
	"testing"
	"time"
)

func TestResolveTemplateSubstitutesTokens(t *testing.T) {
	got := ResolveTemplate(`\Exports\[Manufacturer_Name]\[Series_Name]`, Bindings{
		Manufacturer: "Acme",
		Series:       "Alpha",
	})
	if got != `\Exports\Acme\Alpha` {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestResolveTemplateUnboundTokensResolveEmpty(t *testing.T) {
	got := ResolveTemplate(`[Marketplace]\[Series_Name]\x`, Bindings{})
	if got != `\\x` {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestResolveTemplateIsCaseSensitive(t *testing.T) {
	got := ResolveTemplate(`[manufacturer_name]`, Bindings{Manufacturer: "Acme"})
	if got != `[manufacturer_name]` {
		t.Fatalf("lowercased token should not match: %q", got)
	}
}

func TestResolveTemplatePreservesColonsAndSeparators(t *testing.T) {
	got := ResolveTemplate(`C:\Exp<or>ts\[Manufacturer_Name]?`, Bindings{Manufacturer: "Acme"})
	if got != `C:\Exports\Acme` {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestResolveTemplateDateToken(t *testing.T) {
	date := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	got := ResolveTemplate(`[Date]\[Manufacturer_Name]`, Bindings{Manufacturer: "Acme", Date: date})
	if got != `2026-08-26\Acme` {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestFileToken(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Acme Corp", "Acme_Corp"},
		{"  Acme   Corp  ", "Acme_Corp"},
		{"Acme", "Acme"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := fileToken(tc.input); got != tc.want {
			t.Errorf("fileToken(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
