package resource

import (
	"fmt"
	"net/url"
	"sort"
)

// Upstream collections.
const (
	Yards                  = "yards"
	YardActivities         = "yard-activities"
	YardActivityCategories = "yard-activity-categories"
	YardEvents             = "yard-events"
	YardScenarios          = "yard-scenarios"
	Settings               = "settings"
	YardConfigurationSAPs  = "yard-configsaps"
	YardCards              = "yard-cards"
)

// Option source keys.
const (
	SourceCategories         = "categories"
	SourceEstates            = "estates"
	SourceYards              = "yards"
	SourceYardTypes          = "yard-types"
	SourceUTCTimes           = "utc-times"
	SourceLocations          = "source-locations"
	SourceScenarioCategories = "scenario-categories"
)

// Registry indexes definitions by route key and upstream resource.
type Registry struct {
	defs       []Definition
	byKey      map[string]int
	byResource map[string]int
	sources    map[string]OptionSource
}

// NewRegistry validates and indexes defs against sources.
func NewRegistry(sources []OptionSource, defs ...Definition) (*Registry, error) {
	reg := &Registry{
		byKey:      make(map[string]int, len(defs)),
		byResource: make(map[string]int, len(defs)),
		sources:    make(map[string]OptionSource, len(sources)),
	}
	for _, source := range sources {
		if source.Key == "" || source.Path == "" {
			return nil, fmt.Errorf("option source key and path are required")
		}
		if _, exists := reg.sources[source.Key]; exists {
			return nil, fmt.Errorf("option source %q is duplicated", source.Key)
		}
		reg.sources[source.Key] = source
	}
	for _, def := range defs {
		if err := def.validate(reg.sources); err != nil {
			return nil, err
		}
		if _, exists := reg.byResource[def.Resource]; exists {
			return nil, fmt.Errorf("resource %q is duplicated", def.Resource)
		}
		if def.HasPages() {
			if _, exists := reg.byKey[def.Key]; exists {
				return nil, fmt.Errorf("route key %q is duplicated", def.Key)
			}
			reg.byKey[def.Key] = len(reg.defs)
		}
		reg.byResource[def.Resource] = len(reg.defs)
		reg.defs = append(reg.defs, def)
	}
	return reg, nil
}

// ByKey returns the definition mounted at a console route segment.
func (r *Registry) ByKey(key string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	idx, ok := r.byKey[key]
	if !ok {
		return Definition{}, false
	}
	return r.defs[idx], true
}

// ByResource returns the definition for an upstream collection.
func (r *Registry) ByResource(resource string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	idx, ok := r.byResource[resource]
	if !ok {
		return Definition{}, false
	}
	return r.defs[idx], true
}

// Source returns a named option source.
func (r *Registry) Source(key string) (OptionSource, bool) {
	if r == nil {
		return OptionSource{}, false
	}
	source, ok := r.sources[key]
	return source, ok
}

// Pages returns definitions that have console pages, in declaration order.
func (r *Registry) Pages() []Definition {
	if r == nil {
		return nil
	}
	var out []Definition
	for _, def := range r.defs {
		if def.HasPages() {
			out = append(out, def)
		}
	}
	return out
}

// Resources returns every upstream collection name, sorted.
func (r *Registry) Resources() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def.Resource)
	}
	sort.Strings(out)
	return out
}

// Default returns the yard management registry.
func Default() *Registry {
	reg, err := NewRegistry(DefaultSources(), DefaultDefinitions()...)
	if err != nil {
		panic(err)
	}
	return reg
}

// DefaultSources returns the option sources used by the yard forms.
func DefaultSources() []OptionSource {
	return []OptionSource{
		{Key: SourceCategories, Path: YardActivityCategories, ValueField: "id", LabelFields: []string{"yardActivityCategory"}},
		{Key: SourceEstates, Path: Yards, Query: url.Values{"yardType": {"ESTATE"}}, ValueField: "id", LabelFields: []string{"yardCode"}},
		{Key: SourceYards, Path: Yards, ValueField: "id", LabelFields: []string{"yardCode", "yardName"}},
		settingSource(SourceYardTypes, "yard_type"),
		settingSource(SourceUTCTimes, "utc_time"),
		settingSource(SourceLocations, "source_loc"),
		settingSource(SourceScenarioCategories, "scenario_cat"),
	}
}

func settingSource(key, settingID string) OptionSource {
	return OptionSource{
		Key:         key,
		Path:        Settings,
		Query:       url.Values{"settingId": {settingID}},
		ValueField:  "value",
		LabelFields: []string{"value"},
	}
}
