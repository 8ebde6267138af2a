// Package roster holds the static author-attribute table: the set of known
// chat members, their aliases, and the per-author attributes joined onto the
// final table.
package roster

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Attributes are the static per-author columns.
type Attributes struct {
	Hometown  bool `toml:"hometown"`
	Technical bool `toml:"technical"`
}

// Member is one roster row as written in the TOML file.
type Member struct {
	Attributes
	Aliases []string `toml:"aliases"`
}

type fileFormat struct {
	Authors map[string]Member `toml:"authors"`
}

// Roster maps normalized author names to their canonical form and attributes.
type Roster struct {
	canonical map[string]string // folded name or alias -> canonical name
	attrs     map[string]Attributes
}

// Load reads a roster TOML file. Each `[authors."Name"]` table may carry
// hometown/technical attributes and an aliases list.
func Load(path string) (*Roster, error) {
	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(ff.Authors) == 0 {
		return nil, fmt.Errorf("roster %s: no authors defined", path)
	}
	return New(ff.Authors)
}

// New builds a Roster from a decoded author table.
func New(authors map[string]Member) (*Roster, error) {
	r := &Roster{
		canonical: make(map[string]string),
		attrs:     make(map[string]Attributes),
	}
	for name, e := range authors {
		r.attrs[name] = e.Attributes
		r.canonical[Fold(name)] = name
		for _, a := range e.Aliases {
			key := Fold(a)
			if prev, dup := r.canonical[key]; dup && prev != name {
				return nil, fmt.Errorf("roster: alias %q claimed by both %q and %q", a, prev, name)
			}
			r.canonical[key] = name
		}
	}
	return r, nil
}

// Canonical resolves a raw author name to its canonical form. The second
// return is false when the name is not a known member.
func (r *Roster) Canonical(name string) (string, bool) {
	c, ok := r.canonical[Fold(name)]
	return c, ok
}

// Attributes returns the attribute row for a canonical name.
func (r *Roster) Attributes(canonical string) (Attributes, bool) {
	a, ok := r.attrs[canonical]
	return a, ok
}

// Names returns all canonical names.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.attrs))
	for n := range r.attrs {
		names = append(names, n)
	}
	return names
}

// Fold normalizes an author name for lookup: trims surrounding space, strips
// the "~"+narrow-no-break-space prefix exports put on non-contact members,
// and lowercases.
func Fold(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "~ ")
	name = strings.TrimPrefix(name, "~")
	return strings.ToLower(strings.TrimSpace(name))
}
