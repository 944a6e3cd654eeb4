package i18n

import (
	"strings"
	"testing"
)

func TestMsgEnglish(t *testing.T) {
	got := Msg("en", "searchfn-error-empty-query")
	if got != "No search query was given." {
		t.Fatalf("got %q", got)
	}
}

func TestMsgGerman(t *testing.T) {
	got := Msg("de", "searchfn-error-empty-query")
	if !strings.Contains(got, "Suchanfrage") {
		t.Fatalf("got %q", got)
	}
}

func TestMsgFallsBackToEnglish(t *testing.T) {
	// Japanese isn't shipped; the matcher should land on English.
	got := Msg("ja", "searchfn-error-empty-query")
	if got != "No search query was given." {
		t.Fatalf("got %q", got)
	}

	// So should garbage.
	got = Msg("not a language", "searchfn-error-empty-query")
	if got != "No search query was given." {
		t.Fatalf("got %q", got)
	}
}

func TestMsgRegionalVariant(t *testing.T) {
	// Austrian German is closest to German.
	got := Msg("de-AT", "searchfn-error-empty-query")
	if !strings.Contains(got, "Suchanfrage") {
		t.Fatalf("got %q", got)
	}
}

func TestMsgPlaceholders(t *testing.T) {
	got := Msg("en", "searchfn-suggestion", "[[Special:Search|pears]]")
	if got != "Showing results for [[Special:Search|pears]] instead." {
		t.Fatalf("got %q", got)
	}
}

func TestMsgUnknownKey(t *testing.T) {
	got := Msg("en", "searchfn-no-such-message")
	if got != "⧼searchfn-no-such-message⧽" {
		t.Fatalf("got %q", got)
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	if len(langs) < 3 {
		t.Fatalf("got %v", langs)
	}
	if langs[0].String() != "en" {
		t.Fatalf("English must come first for fallback, got %v", langs)
	}
}
