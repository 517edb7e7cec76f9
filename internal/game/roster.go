package game

import "strings"

// FamilyRoster keeps characters in insertion order with a unique-name index.
type FamilyRoster struct {
	members []*Character
	byName  map[string]*Character
}

func NewFamilyRoster(members ...*Character) *FamilyRoster {
	r := &FamilyRoster{byName: make(map[string]*Character)}
	for _, c := range members {
		r.Add(c)
	}
	return r
}

// Add appends c unless it is nil, unnamed or its name is already taken.
func (r *FamilyRoster) Add(c *Character) bool {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return false
	}
	if r.byName == nil {
		r.byName = make(map[string]*Character)
	}
	if _, exists := r.byName[c.Name]; exists {
		return false
	}
	r.members = append(r.members, c)
	r.byName[c.Name] = c
	return true
}

func (r *FamilyRoster) ByName(name string) (*Character, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.byName[name]
	return c, ok
}

// All returns the members in roster order. The slice is a copy; the
// characters are shared.
func (r *FamilyRoster) All() []*Character {
	if r == nil {
		return nil
	}
	out := make([]*Character, len(r.members))
	copy(out, r.members)
	return out
}

func (r *FamilyRoster) Alive() []*Character {
	if r == nil {
		return nil
	}
	out := make([]*Character, 0, len(r.members))
	for _, c := range r.members {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

func (r *FamilyRoster) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.members))
	for _, c := range r.members {
		out = append(out, c.Name)
	}
	return out
}

func (r *FamilyRoster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.members)
}

func (r *FamilyRoster) AliveCount() int {
	return len(r.Alive())
}

// Replace swaps the whole membership, as a save-load does.
func (r *FamilyRoster) Replace(members []*Character) {
	r.members = nil
	r.byName = make(map[string]*Character, len(members))
	for _, c := range members {
		r.Add(c)
	}
}
