// Package catalog loads the console's YAML message catalogs and registers
// them with golang.org/x/text/message.
//
// Files live at locales/<locale>/<namespace>.yaml and every key must start
// with "<namespace>.", so page chrome ("admin.") and shared validation text
// ("core.") cannot collide.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other locale is checked against.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	locales map[string]map[string]string
}

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadAndRegisterEmbedded()

// Default returns the embedded bundle, already registered with x/text.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads every locales/*/*.yaml file in catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("no catalog files found")
	}
	slices.Sort(paths)

	bundle := &Bundle{locales: map[string]map[string]string{}}
	for _, filePath := range paths {
		data, err := fs.ReadFile(catalogFS, filePath)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", filePath, err)
		}
		file, err := decodeCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", filePath, err)
		}
		if err := bundle.add(filePath, file); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", filePath, err)
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

func (b *Bundle) add(filePath string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if dir := path.Base(path.Dir(filePath)); locale != dir {
		return fmt.Errorf("locale %q must match directory %q", locale, dir)
	}
	namespace := strings.TrimSpace(file.Namespace)
	if name := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath)); namespace != name {
		return fmt.Errorf("namespace %q must match file name %q", namespace, name)
	}

	messages, ok := b.locales[locale]
	if !ok {
		messages = map[string]string{}
		b.locales[locale] = messages
	}
	prefix := namespace + "."
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, prefix) || key == prefix {
			return fmt.Errorf("key %q must start with %q", key, prefix)
		}
		messages[key] = value
	}
	return nil
}

// Register publishes every message to x/text under the full locale tag and
// its base language, so both "id-ID" and "id" printers resolve.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag := language.Make(base.String()); baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		messages := b.locales[locale]
		for _, key := range slices.Sorted(maps.Keys(messages)) {
			for _, registerTag := range tags {
				if err := message.SetString(registerTag, key, messages[key]); err != nil {
					return fmt.Errorf("register %s %q: %w", registerTag, key, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locale identifiers in order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.locales))
}

// Message returns one message, falling back to BaseLocale.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if value, ok := b.locales[strings.TrimSpace(locale)][key]; ok {
		return value, true
	}
	value, ok := b.locales[BaseLocale][key]
	return value, ok
}

// MissingKeys lists base-locale keys that locale does not translate.
func (b *Bundle) MissingKeys(locale string) []string {
	if b == nil {
		return nil
	}
	target := b.locales[strings.TrimSpace(locale)]
	var missing []string
	for key := range b.locales[BaseLocale] {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	slices.Sort(missing)
	return missing
}

func mustLoadAndRegisterEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}

func decodeCatalog(data []byte) (catalogFile, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var out catalogFile
	if err := decoder.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return catalogFile{}, errors.New("empty catalog")
		}
		return catalogFile{}, err
	}
	switch {
	case strings.TrimSpace(out.Locale) == "":
		return catalogFile{}, errors.New("missing locale")
	case strings.TrimSpace(out.Namespace) == "":
		return catalogFile{}, errors.New("missing namespace")
	case len(out.Messages) == 0:
		return catalogFile{}, errors.New("missing messages")
	}
	return out, nil
}
