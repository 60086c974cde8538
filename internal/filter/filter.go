// Package filter narrows client and flight lists.
//
// A record passes when the free-text query matches AND, for every toggle
// group, either no toggle of the group is active or at least one active
// toggle accepts the record. Toggles inside a group are OR-combined.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownToggle = errors.New("unknown filter toggle")

// Predicate decides whether a record passes
type Predicate[T any] func(T) bool

// Toggle is a named predicate that can be switched on
type Toggle[T any] struct {
	Name    string
	Aliases []string
	Match   Predicate[T]
}

// Group is a set of toggles OR-combined among themselves
type Group[T any] struct {
	name    string
	toggles []Toggle[T]
	active  map[string]bool
}

// NewGroup creates a toggle group with nothing active
func NewGroup[T any](name string, toggles ...Toggle[T]) *Group[T] {
	return &Group[T]{
		name:    name,
		toggles: toggles,
		active:  make(map[string]bool),
	}
}

// Enable switches on the named toggles. Names are matched case-insensitively
// against toggle names and aliases.
func (g *Group[T]) Enable(names ...string) error {
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		t, ok := g.lookup(name)
		if !ok {
			return fmt.Errorf("%w: %s %q", ErrUnknownToggle, g.name, raw)
		}
		g.active[t.Name] = true
	}
	return nil
}

// Disable switches off the named toggle
func (g *Group[T]) Disable(name string) {
	if t, ok := g.lookup(name); ok {
		delete(g.active, t.Name)
	}
}

// Clear switches every toggle off
func (g *Group[T]) Clear() {
	g.active = make(map[string]bool)
}

// Active returns the names of the active toggles in declaration order
func (g *Group[T]) Active() []string {
	var names []string
	for _, t := range g.toggles {
		if g.active[t.Name] {
			names = append(names, t.Name)
		}
	}
	return names
}

// Names returns every toggle name in declaration order
func (g *Group[T]) Names() []string {
	names := make([]string, len(g.toggles))
	for i, t := range g.toggles {
		names[i] = t.Name
	}
	return names
}

// Match passes everything when nothing is active.
func (g *Group[T]) Match(record T) bool {
	if len(g.active) == 0 {
		return true
	}
	for _, t := range g.toggles {
		if g.active[t.Name] && t.Match(record) {
			return true
		}
	}
	return false
}

func (g *Group[T]) lookup(name string) (Toggle[T], bool) {
	for _, t := range g.toggles {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
		for _, alias := range t.Aliases {
			if strings.EqualFold(alias, name) {
				return t, true
			}
		}
	}
	return Toggle[T]{}, false
}

// Filter combines a text query over record fields with toggle groups
type Filter[T any] struct {
	query  string
	fields func(T) []string
	groups []*Group[T]
}

// New creates a filter. fields returns the searchable text of a record.
// The query is lower-cased but otherwise used as typed, surrounding spaces included.
func New[T any](query string, fields func(T) []string, groups ...*Group[T]) *Filter[T] {
	return &Filter[T]{
		query:  strings.ToLower(query),
		fields: fields,
		groups: groups,
	}
}

// Query returns the normalised search text
func (f *Filter[T]) Query() string {
	return f.query
}

// Groups returns the toggle groups in the order they were given to New
func (f *Filter[T]) Groups() []*Group[T] {
	return f.groups
}

// TextMatches reports whether any searchable field contains the query.
// An empty query matches every record.
func (f *Filter[T]) TextMatches(record T) bool {
	if f.query == "" {
		return true
	}
	for _, field := range f.fields(record) {
		if strings.Contains(strings.ToLower(field), f.query) {
			return true
		}
	}
	return false
}

// Matches applies the query and every group
func (f *Filter[T]) Matches(record T) bool {
	if !f.TextMatches(record) {
		return false
	}
	for _, g := range f.groups {
		if !g.Match(record) {
			return false
		}
	}
	return true
}

// Apply returns the matching records in their original order
func (f *Filter[T]) Apply(records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
