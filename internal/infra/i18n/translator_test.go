//go:build !integration

package i18n

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte(
		"greeting: hello\nusers_count: \"Registered users: %d\"",
	))
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("resolves a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "hello" {
			t.Errorf("T(greeting) = %q", got)
		}
	})

	t.Run("returns the key when missing", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("T(nonexistent_key) = %q", got)
		}
	})

	t.Run("formats arguments", func(t *testing.T) {
		if got := translator.T("users_count", 7); got != "Registered users: 7" {
			t.Errorf("T(users_count, 7) = %q", got)
		}
	})
}

func TestEmbeddedLocales(t *testing.T) {
	// Every shipped locale must carry the full key set.
	for _, lang := range []string{"en", "ru"} {
		tr, err := NewTranslator(LocalesFS, lang)
		if err != nil {
			t.Fatalf("locale %s failed to load: %v", lang, err)
		}
		out := tr.T("mailing_stats", 3, 2, 1, 0.5)
		if strings.Contains(out, "%!") {
			t.Errorf("locale %s: mailing_stats format broken: %q", lang, out)
		}
	}
}

func TestMissingRequiredKeyFailsFast(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/xx.yaml": &fstest.MapFile{Data: []byte("users_count: \"%d\"")},
	}
	if _, err := NewTranslator(fsys, "xx"); err == nil {
		t.Fatal("expected incomplete locale to be rejected")
	}
}

func TestUnknownLocale(t *testing.T) {
	if _, err := NewTranslator(LocalesFS, "zz"); err == nil {
		t.Fatal("expected unknown locale to fail")
	}
}
