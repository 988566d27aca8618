package i18n

import (
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/yardconsole/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangCookieName stores the user's language preference.
const LangCookieName = "yard_lang"

// DefaultLocale is the path segment used when nothing else matches.
const DefaultLocale = "en"

// LanguageOption represents a supported language in the language switch.
type LanguageOption struct {
	Locale string
	Label  string
	Active bool
}

type locale struct {
	segment  string
	tag      language.Tag
	labelKey string
}

var locales = []locale{
	{segment: "en", tag: language.English, labelKey: "admin.lang.en"},
	{segment: "id", tag: language.Indonesian, labelKey: "admin.lang.id"},
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Indonesian})

func init() {
	// Registers embedded catalogs with x/text before any printer is built.
	_ = catalog.Default()
}

// Supported returns the supported locale path segments.
func Supported() []string {
	out := make([]string, 0, len(locales))
	for _, l := range locales {
		out = append(out, l.segment)
	}
	return out
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ParseLocale maps a path segment to its language tag.
func ParseLocale(segment string) (language.Tag, bool) {
	segment = strings.ToLower(strings.TrimSpace(segment))
	for _, l := range locales {
		if l.segment == segment {
			return l.tag, true
		}
	}
	return language.Tag{}, false
}

// Segment returns the path segment for tag, falling back to DefaultLocale.
func Segment(tag language.Tag) string {
	base, _ := tag.Base()
	for _, l := range locales {
		if lb, _ := l.tag.Base(); lb == base {
			return l.segment
		}
	}
	return DefaultLocale
}

// Preferred picks the locale for a request without one in its path: the
// language cookie, then Accept-Language, then DefaultLocale.
func Preferred(r *http.Request) string {
	if r == nil {
		return DefaultLocale
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if _, ok := ParseLocale(cookie.Value); ok {
			return strings.ToLower(strings.TrimSpace(cookie.Value))
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			matched, _, confidence := matcher.Match(tags...)
			if confidence != language.No {
				return Segment(matched)
			}
		}
	}
	return DefaultLocale
}

// SetLanguageCookie persists the selected locale on the response.
func SetLanguageCookie(w http.ResponseWriter, segment string) {
	if w == nil {
		return
	}
	if _, ok := ParseLocale(segment); !ok {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    segment,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// LanguageOptions lists the supported locales with the active one marked.
// label translates a catalog key.
func LanguageOptions(active string, label func(key string) string) []LanguageOption {
	out := make([]LanguageOption, 0, len(locales))
	for _, l := range locales {
		text := l.segment
		if label != nil {
			if resolved := strings.TrimSpace(label(l.labelKey)); resolved != "" {
				text = resolved
			}
		}
		out = append(out, LanguageOption{Locale: l.segment, Label: text, Active: l.segment == active})
	}
	return out
}

// SwapLocale replaces the locale segment of a console path.
func SwapLocale(path string, segment string) string {
	trimmed := strings.TrimPrefix(path, "/")
	first, rest, _ := strings.Cut(trimmed, "/")
	if _, ok := ParseLocale(first); !ok {
		return "/" + segment + "/" + trimmed
	}
	if rest == "" {
		return "/" + segment
	}
	return "/" + segment + "/" + rest
}
