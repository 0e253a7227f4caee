// Package directives implements the object domain behind documentation
// directives. A directive introduces named objects (configuration
// values, events) that pages can cross-reference with a role of the
// same kind.
package directives

import (
	"fmt"
	"sort"
	"strings"
)

// Object is one documented entity collected from a directive block.
type Object struct {
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	Page    string   `json:"page"`
	Anchor  string   `json:"anchor"`
	Default string   `json:"default,omitempty"`
	Params  []string `json:"params,omitempty"`
}

// ParseFunc turns a directive signature into an object skeleton. The
// returned object carries the parsed name plus any kind-specific fields;
// Page and Anchor are filled in by the domain.
type ParseFunc func(signature string) Object

// Directive pairs a block kind with its signature parser.
type Directive struct {
	Kind  string
	Label string
	Parse ParseFunc
}

// Domain holds registered directives and the object inventory built
// from them.
type Domain struct {
	directives map[string]Directive
	objects    map[string]Object
}

// NewDomain creates an empty domain.
func NewDomain() *Domain {
	return &Domain{
		directives: make(map[string]Directive),
		objects:    make(map[string]Object),
	}
}

// RegisterDirective adds a directive kind. Registering the same kind
// twice returns an error so extensions fail loudly on collisions.
func (d *Domain) RegisterDirective(dir Directive) error {
	if dir.Kind == "" {
		return fmt.Errorf("directive kind must not be empty")
	}
	if dir.Parse == nil {
		return fmt.Errorf("directive %q has no parser", dir.Kind)
	}
	if _, exists := d.directives[dir.Kind]; exists {
		return fmt.Errorf("directive %q already registered", dir.Kind)
	}
	d.directives[dir.Kind] = dir
	return nil
}

// Directive returns the registered directive for a kind.
func (d *Domain) Directive(kind string) (Directive, bool) {
	dir, ok := d.directives[kind]
	return dir, ok
}

// AddObject parses a directive signature and records the resulting
// object under (kind, name). When the pair is already present the first
// entry wins and AddObject returns the existing object with ok=false so
// the caller can warn.
func (d *Domain) AddObject(kind, signature, page string) (Object, bool) {
	dir, registered := d.directives[kind]
	if !registered {
		return Object{}, false
	}

	obj := dir.Parse(signature)
	obj.Kind = kind
	obj.Page = page
	obj.Anchor = anchor(kind, obj.Name)

	key := objectKey(kind, obj.Name)
	if existing, dup := d.objects[key]; dup {
		return existing, false
	}
	d.objects[key] = obj
	return obj, true
}

// ResetObjects clears the inventory while keeping registered
// directives. Called at the start of a rebuild.
func (d *Domain) ResetObjects() {
	d.objects = make(map[string]Object)
}

// Lookup resolves a role target against the inventory.
func (d *Domain) Lookup(kind, name string) (Object, bool) {
	obj, ok := d.objects[objectKey(kind, name)]
	return obj, ok
}

// Objects returns the full inventory sorted by kind then name.
func (d *Domain) Objects() []Object {
	out := make([]Object, 0, len(d.objects))
	for _, obj := range d.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func objectKey(kind, name string) string {
	return kind + "\x00" + name
}

// anchor builds an HTML fragment identifier for an object. Characters
// outside [a-zA-Z0-9_.-] become hyphens.
func anchor(kind, name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
	return kind + "-" + mapped
}
