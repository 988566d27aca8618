package workflow

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/message"
)

// Message keys resolved through Localizer.
const (
	KeyRequired         = "core.validation.required"
	KeyMaxLength        = "core.validation.max_length"
	KeyNumber           = "core.validation.number"
	KeyBoolean          = "core.validation.boolean"
	KeySelection        = "core.validation.selection"
	KeyCategoryRequired = "core.validation.category_required"
	KeyUnknownError     = "core.notice.unknown_error"
	KeySaved            = "core.notice.saved"
	KeyDeleted          = "core.notice.deleted"
)

var englishMessages = map[string]string{
	KeyRequired:         "Field is required",
	KeyMaxLength:        "Max length is %d characters",
	KeyNumber:           "Must be a number",
	KeyBoolean:          "Must be true or false",
	KeySelection:        "A selection is required.",
	KeyCategoryRequired: "Activity category must be chosen",
	KeyUnknownError:     "Unknown Error!",
	KeySaved:            "Saved",
	KeyDeleted:          "Deleted",
}

// Localizer resolves message keys. *message.Printer satisfies it.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

type englishLocalizer struct{}

func (englishLocalizer) Sprintf(key message.Reference, args ...any) string {
	name, _ := key.(string)
	if format, ok := englishMessages[name]; ok {
		return fmt.Sprintf(format, args...)
	}
	return fmt.Sprint(key)
}

func localizerOrDefault(loc Localizer) Localizer {
	if loc == nil {
		return englishLocalizer{}
	}
	return loc
}

// FieldErrors maps a field name to its violation messages. A nil map means
// the draft is valid.
type FieldErrors map[string][]string

// Has reports whether field has at least one violation.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Fields returns the names of fields with violations, sorted.
func (e FieldErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for name := range e {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (e FieldErrors) clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for key, messages := range e {
		out[key] = append([]string(nil), messages...)
	}
	return out
}

// Validate checks every schema field of draft independently.
func Validate(schema Schema, draft Draft, loc Localizer) FieldErrors {
	loc = localizerOrDefault(loc)
	var errs FieldErrors
	for _, field := range schema.fields {
		messages := checkField(field, draft[field.Name], loc)
		if len(messages) == 0 {
			continue
		}
		if errs == nil {
			errs = FieldErrors{}
		}
		errs[field.Name] = messages
	}
	return errs
}

func checkField(field Field, value any, loc Localizer) []string {
	requiredKey := field.RequiredKey
	if requiredKey == "" {
		requiredKey = KeyRequired
	}

	switch field.Kind {
	case KindString:
		text, _ := value.(string)
		if value != nil && !isString(value) {
			text = FormValue(value)
		}
		if text == "" {
			if field.Required {
				return []string{loc.Sprintf(requiredKey)}
			}
			return nil
		}
		if field.MaxLength > 0 && utf8.RuneCountInString(text) > field.MaxLength {
			return []string{loc.Sprintf(KeyMaxLength, field.MaxLength)}
		}
	case KindNumber:
		switch v := value.(type) {
		case nil:
			if field.Required {
				return []string{loc.Sprintf(requiredKey)}
			}
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return []string{loc.Sprintf(KeyNumber)}
			}
			if field.Positive && v <= 0 {
				return []string{loc.Sprintf(requiredKey)}
			}
		default:
			return []string{loc.Sprintf(KeyNumber)}
		}
	case KindBool:
		switch value.(type) {
		case nil:
			if field.Required {
				return []string{loc.Sprintf(requiredKey)}
			}
		case bool:
		default:
			return []string{loc.Sprintf(KeyBoolean)}
		}
	}
	return nil
}

func isString(value any) bool {
	_, ok := value.(string)
	return ok
}
