package workflow

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Kind is the semantic type of a form field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Field describes one validated value in a record schema.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// MaxLength caps string values in runes. Zero means no cap.
	MaxLength int
	// Positive rejects numbers <= 0, used for selections whose zero value means
	// "nothing chosen".
	Positive bool
	// RequiredKey overrides the message key used for a missing value.
	RequiredKey string
}

// Schema is an ordered set of fields for one record type.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema. Field names must be unique and non-blank.
func NewSchema(fields ...Field) (Schema, error) {
	schema := Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return Schema{}, fmt.Errorf("schema field name is required")
		}
		if _, exists := schema.index[name]; exists {
			return Schema{}, fmt.Errorf("schema field %q is duplicated", name)
		}
		field.Name = name
		schema.index[name] = len(schema.fields)
		schema.fields = append(schema.fields, field)
	}
	return schema, nil
}

// MustSchema is NewSchema for package-level schema tables.
func MustSchema(fields ...Field) Schema {
	schema, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return schema
}

// Fields returns the schema fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	idx, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[idx], true
}

// Len reports the number of fields.
func (s Schema) Len() int {
	return len(s.fields)
}

// Draft is the not-yet-persisted copy of a record. Values are string, float64,
// bool or nil; a string under a number field is an unparsed input.
type Draft map[string]any

// Clone returns a shallow copy of d.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for key, value := range d {
		out[key] = value
	}
	return out
}

// ZeroDraft returns the create-mode starting draft for schema.
func ZeroDraft(schema Schema) Draft {
	draft := make(Draft, schema.Len())
	for _, field := range schema.fields {
		switch field.Kind {
		case KindString:
			draft[field.Name] = ""
		default:
			draft[field.Name] = nil
		}
	}
	return draft
}

// DraftFrom seeds an update-mode draft from an upstream record, keeping only
// schema fields and coercing values to the schema kinds.
func DraftFrom(schema Schema, record map[string]any) Draft {
	draft := ZeroDraft(schema)
	for _, field := range schema.fields {
		value, ok := record[field.Name]
		if !ok || value == nil {
			continue
		}
		draft[field.Name] = coerce(field, value)
	}
	return draft
}

// ParseValue converts a raw form input into a draft value for field.
func ParseValue(field Field, raw string) any {
	switch field.Kind {
	case KindNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		number, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			return raw
		}
		return number
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "":
			return nil
		case "true", "on", "1", "yes":
			return true
		case "false", "off", "0", "no":
			return false
		default:
			return raw
		}
	default:
		return raw
	}
}

// ParseForm builds a draft from submitted form values.
func ParseForm(schema Schema, values url.Values) Draft {
	draft := make(Draft, schema.Len())
	for _, field := range schema.fields {
		draft[field.Name] = ParseValue(field, values.Get(field.Name))
	}
	return draft
}

// FormValue renders a draft value back into an input value.
func FormValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func coerce(field Field, value any) any {
	switch field.Kind {
	case KindString:
		if s, ok := value.(string); ok {
			return s
		}
		return FormValue(toFloat(value))
	case KindNumber:
		if s, ok := value.(string); ok {
			return ParseValue(field, s)
		}
		return toFloat(value)
	case KindBool:
		if s, ok := value.(string); ok {
			return ParseValue(field, s)
		}
		return value
	}
	return value
}

func toFloat(value any) any {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	default:
		return value
	}
}
