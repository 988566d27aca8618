package resource

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
)

// Widget selects how a form input renders.
type Widget string

const (
	WidgetText     Widget = "text"
	WidgetNumber   Widget = "number"
	WidgetPassword Widget = "password"
	WidgetSelect   Widget = "select"
	WidgetRadio    Widget = "radio"
)

// Input is one rendered form control bound to a schema field.
type Input struct {
	Field    string
	LabelKey string
	Widget   Widget
	// Source names the option source feeding a select input.
	Source string
}

// Column is one list-table column.
type Column struct {
	Field    string
	LabelKey string
	// Mask hides the value behind a fixed placeholder.
	Mask bool
}

// OptionSource describes the upstream list behind a reference field.
type OptionSource struct {
	Key   string
	Path  string
	Query url.Values
	// ValueField is read from each record for the option value.
	ValueField string
	// LabelFields are joined with " - " for the option label.
	LabelFields []string
}

// Target returns the upstream path including the query string.
func (s OptionSource) Target() string {
	if len(s.Query) == 0 {
		return s.Path
	}
	return s.Path + "?" + s.Query.Encode()
}

// Options maps upstream records into option entries, skipping records with no
// value.
func (s OptionSource) Options(records []map[string]any) []workflow.Option {
	out := make([]workflow.Option, 0, len(records))
	for _, record := range records {
		value := strings.TrimSpace(workflow.FormValue(record[s.ValueField]))
		if value == "" {
			continue
		}
		labels := make([]string, 0, len(s.LabelFields))
		for _, field := range s.LabelFields {
			if label := strings.TrimSpace(workflow.FormValue(record[field])); label != "" {
				labels = append(labels, label)
			}
		}
		label := strings.Join(labels, " - ")
		if label == "" {
			label = value
		}
		out = append(out, workflow.Option{Value: value, Label: label})
	}
	return out
}

// Definition is one upstream resource and, when it has pages, its console
// screens.
type Definition struct {
	// Key is the console route segment; empty for resources without pages.
	Key string
	// Resource is the upstream collection path and gateway segment.
	Resource string
	TitleKey string
	Schema   workflow.Schema
	Inputs   []Input
	Columns  []Column
	// ReturnsID reports that create replies carry the new record id.
	ReturnsID bool
}

// HasPages reports whether the console has list and form pages for d.
func (d Definition) HasPages() bool {
	return d.Key != ""
}

// Sources lists the option source keys used by d's inputs, in input order.
func (d Definition) Sources() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, input := range d.Inputs {
		if input.Source == "" {
			continue
		}
		if _, ok := seen[input.Source]; ok {
			continue
		}
		seen[input.Source] = struct{}{}
		out = append(out, input.Source)
	}
	return out
}

func (d Definition) validate(sources map[string]OptionSource) error {
	if strings.TrimSpace(d.Resource) == "" {
		return fmt.Errorf("resource is required")
	}
	if d.Schema.Len() == 0 {
		return fmt.Errorf("resource %s: schema is required", d.Resource)
	}
	for _, input := range d.Inputs {
		if _, ok := d.Schema.Field(input.Field); !ok {
			return fmt.Errorf("resource %s: input %q is not in the schema", d.Resource, input.Field)
		}
		if input.Widget == WidgetSelect {
			if _, ok := sources[input.Source]; !ok {
				return fmt.Errorf("resource %s: input %q uses unknown source %q", d.Resource, input.Field, input.Source)
			}
		}
	}
	if d.HasPages() && len(d.Columns) == 0 {
		return fmt.Errorf("resource %s: columns are required for pages", d.Resource)
	}
	return nil
}
