package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("id-ID") {
		t.Fatalf("expected locale id-ID")
	}

	if _, ok := bundle.Message("en-US", "core.validation.required"); !ok {
		t.Fatal("expected shared validation message in en-US")
	}
}

func TestLoadFromFSRejectsKeyOutsideItsNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/admin.yaml"), `locale: "en-US"
namespace: "admin"
messages:
  "core.bad": "nope"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.good": "ok"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsMismatchedPaths(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"locale directory": {
			"locales/en-US/core.yaml": {Data: []byte("locale: \"id-ID\"\nnamespace: \"core\"\nmessages:\n  \"core.a\": \"a\"\n")},
		},
		"namespace file": {
			"locales/en-US/core.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"admin\"\nmessages:\n  \"admin.a\": \"a\"\n")},
		},
		"unknown field": {
			"locales/en-US/core.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"core\"\nextra: 1\nmessages:\n  \"core.a\": \"a\"\n")},
		},
		"no base locale": {
			"locales/id-ID/core.yaml": {Data: []byte("locale: \"id-ID\"\nnamespace: \"core\"\nmessages:\n  \"core.a\": \"a\"\n")},
		},
	}
	for name, catalogFS := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromFS(catalogFS); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle, err := LoadFromFS(fstest.MapFS{
		"locales/en-US/core.yaml": {Data: []byte(`locale: "en-US"
namespace: "core"
messages:
  "core.only_base": "base"
  "core.shared": "en"
`)},
		"locales/id-ID/core.yaml": {Data: []byte(`locale: "id-ID"
namespace: "core"
messages:
  "core.shared": "id"
`)},
	})
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if got, ok := bundle.Message("id-ID", "core.shared"); !ok || got != "id" {
		t.Fatalf("Message(id-ID, core.shared) = %q, %v", got, ok)
	}
	if got, ok := bundle.Message("id-ID", "core.only_base"); !ok || got != "base" {
		t.Fatalf("Message(id-ID, core.only_base) = %q, %v", got, ok)
	}
	if missing := bundle.MissingKeys("id-ID"); len(missing) != 1 || missing[0] != "core.only_base" {
		t.Fatalf("MissingKeys(id-ID) = %v", missing)
	}
}

func TestEmbeddedLocalesTranslateEveryKey(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range bundle.Locales() {
		if missing := bundle.MissingKeys(locale); len(missing) > 0 {
			t.Fatalf("locale %s is missing %v", locale, missing)
		}
	}
}

func TestDefaultRegistersPrinters(t *testing.T) {
	_ = Default()
	if got := message.NewPrinter(language.Indonesian).Sprintf("admin.action.save"); got != "Simpan" {
		t.Fatalf("id printer = %q, want Simpan", got)
	}
	if got := message.NewPrinter(language.English).Sprintf("core.validation.max_length", 50); got != "Max length is 50 characters" {
		t.Fatalf("en printer = %q", got)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
