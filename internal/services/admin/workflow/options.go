package workflow

import (
	"context"
	"errors"
	"sync"
)

// Option is one {value, label} choice for a reference field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionLoader fetches the authoritative option list.
type OptionLoader func(ctx context.Context) ([]Option, error)

// OptionList is a versioned snapshot of a reference field's choices.
//
// Add publishes a provisional entry right away; Refresh replaces the list with
// the upstream state. Entries added while a refresh is in flight survive it
// unless the refreshed list already contains their value.
type OptionList struct {
	load OptionLoader

	mu      sync.Mutex
	version uint64
	options []Option
	pending []pendingOption
}

type pendingOption struct {
	version uint64
	option  Option
}

// NewOptionList builds an empty list backed by load.
func NewOptionList(load OptionLoader) *OptionList {
	return &OptionList{load: load}
}

// Refresh re-fetches the list. On failure the current snapshot is kept.
func (l *OptionList) Refresh(ctx context.Context) error {
	if l.load == nil {
		return errors.New("option loader is required")
	}
	l.mu.Lock()
	started := l.version
	l.mu.Unlock()

	fetched, err := l.load(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	next := append([]Option(nil), fetched...)
	seen := make(map[string]struct{}, len(next))
	for _, option := range next {
		seen[option.Value] = struct{}{}
	}
	var keep []pendingOption
	for _, entry := range l.pending {
		if entry.version <= started {
			continue
		}
		if _, ok := seen[entry.option.Value]; ok {
			continue
		}
		next = append(next, entry.option)
		keep = append(keep, entry)
	}
	l.options = next
	l.pending = keep
	l.version++
	return nil
}

// Add appends option provisionally until the next refresh confirms it.
func (l *OptionList) Add(option Option) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.version++
	for idx, existing := range l.options {
		if existing.Value == option.Value {
			l.options[idx] = option
			return
		}
	}
	l.options = append(l.options, option)
	l.pending = append(l.pending, pendingOption{version: l.version, option: option})
}

// Snapshot returns a copy of the options and the version they belong to.
func (l *OptionList) Snapshot() ([]Option, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Option(nil), l.options...), l.version
}

// Version reports how many times the list changed.
func (l *OptionList) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}
