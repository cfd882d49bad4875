// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

// properties.go gives every component variant a uniform, string-keyed
// property table so the inspector can render any component without
// knowing its concrete type. Go has no ordered map literal, so Properties is
// a small insertion-ordered slice-backed table instead of map[string]T.

// PropertyType names the UI control a PropertyDescriptor should render as.
type PropertyType string

const (
	PropNumber   PropertyType = "number"
	PropRange    PropertyType = "range"
	PropSelect   PropertyType = "select"
	PropCheckbox PropertyType = "checkbox"
	PropText     PropertyType = "text"
)

// PropertyDescriptor describes one editable (or read-only) component
// attribute for the inspector.
type PropertyDescriptor struct {
	Value    any
	Label    string
	Type     PropertyType
	Options  []string
	Min      *float64
	Max      *float64
	Step     *float64
	ReadOnly bool
	Disabled bool
	Title    string
}

// Properties is an ordered name -> PropertyDescriptor table.
type Properties struct {
	names  []string
	byName map[string]PropertyDescriptor
}

// NewProperties returns an empty ordered property table.
func NewProperties() *Properties {
	return &Properties{byName: map[string]PropertyDescriptor{}}
}

// Set adds or overwrites the descriptor for name, preserving original
// insertion order for already-present names.
func (p *Properties) Set(name string, d PropertyDescriptor) *Properties {
	if _, exists := p.byName[name]; !exists {
		p.names = append(p.names, name)
	}
	p.byName[name] = d
	return p
}

// Get returns the descriptor for name and whether it was present.
func (p *Properties) Get(name string) (PropertyDescriptor, bool) {
	d, ok := p.byName[name]
	return d, ok
}

// Names returns the property names in insertion order.
func (p *Properties) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Range(f) calls f with each name/descriptor pair in order. Iteration
// stops early if f returns false.
func (p *Properties) Range(f func(name string, d PropertyDescriptor) bool) {
	for _, name := range p.names {
		if !f(name, p.byName[name]) {
			return
		}
	}
}

func numPtr(v float64) *float64 { return &v }
