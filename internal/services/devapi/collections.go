package devapi

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// auditFields are stamped by the server and ignored on input.
var auditFields = []string{"createdBy", "createdAt", "updatedBy", "updatedAt"}

// lookup copies a display field from a referenced record.
type lookup struct {
	idField  string
	resource string
	field    string
	as       string
}

// reference guards deletes of records still pointed at by another collection.
type reference struct {
	resource string
	field    string
}

type collection struct {
	name      string
	keyFields []string
	required  []string
	lookups   []lookup
	// referencedBy lists collections holding ids of this one.
	referencedBy []reference
	// seq exposes the record id as "seq".
	seq bool
}

func defaultCollections() map[string]collection {
	list := []collection{
		{
			name:      "yards",
			keyFields: []string{"yardCode"},
			required:  []string{"yardCode", "yardName"},
			lookups:   []lookup{{idField: "parentYardId", resource: "yards", field: "yardCode", as: "parentYardCode"}},
			referencedBy: []reference{
				{resource: "yards", field: "parentYardId"},
				{resource: "yard-configsaps", field: "yardId"},
				{resource: "yard-cards", field: "yardId"},
			},
		},
		{
			name:      "yard-activities",
			keyFields: []string{"yardActivity"},
			required:  []string{"yardActivity"},
			lookups:   []lookup{{idField: "yardActivityCategoryId", resource: "yard-activity-categories", field: "yardActivityCategory", as: "yardActivityCategory"}},
		},
		{
			name:         "yard-activity-categories",
			keyFields:    []string{"yardActivityCategory"},
			required:     []string{"yardActivityCategory"},
			referencedBy: []reference{{resource: "yard-activities", field: "yardActivityCategoryId"}},
		},
		{name: "yard-events", keyFields: []string{"yardEvent"}, required: []string{"yardEvent"}},
		{name: "yard-scenarios", keyFields: []string{"scenarioCode"}, required: []string{"scenarioCode"}},
		{name: "settings", keyFields: []string{"settingId", "value"}, required: []string{"settingId", "value"}, seq: true},
		{name: "yard-configsaps", keyFields: []string{"yardId"}, required: []string{"yardId", "host"}},
		{name: "yard-cards", keyFields: []string{"yardId", "cardCode"}, required: []string{"yardId", "cardCode"}},
	}
	out := make(map[string]collection, len(list))
	for _, c := range list {
		out[c.name] = c
	}
	return out
}

// normalize checks raw is an object and drops server-owned fields.
func (c collection) normalize(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("record must be a JSON object")
	}
	owned := append([]string{"id", "seq"}, auditFields...)
	for _, lk := range c.lookups {
		owned = append(owned, lk.as)
	}
	out := append([]byte(nil), raw...)
	for _, field := range owned {
		var err error
		out, err = sjson.DeleteBytes(out, field)
		if err != nil {
			return nil, fmt.Errorf("drop %s: %w", field, err)
		}
	}
	return out, nil
}

// validate lists the required fields missing from doc.
func (c collection) validate(doc []byte) []string {
	var messages []string
	for _, field := range c.required {
		if blank(gjson.GetBytes(doc, field)) {
			messages = append(messages, field+" is required")
		}
	}
	return messages
}

// key joins the natural key parts; any blank part yields no key.
func (c collection) key(doc []byte) string {
	parts := make([]string, 0, len(c.keyFields))
	for _, field := range c.keyFields {
		value := gjson.GetBytes(doc, field)
		if blank(value) {
			return ""
		}
		parts = append(parts, strings.TrimSpace(value.String()))
	}
	return strings.Join(parts, "/")
}

func (c collection) duplicateMessage(doc []byte) string {
	return fmt.Sprintf("%s %s already exists", strings.Join(c.keyFields, "/"), c.key(doc))
}

func blank(value gjson.Result) bool {
	switch value.Type {
	case gjson.Null:
		return true
	case gjson.String:
		return strings.TrimSpace(value.Str) == ""
	default:
		return !value.Exists()
	}
}
