package keepass

import (
	"strings"

	"github.com/nvinuesa/bw2kp/internal/model"
)

// Group is a node of the database group tree. Every group except the root
// has exactly one parent.
type Group struct {
	name    string
	parent  *Group
	groups  []*Group
	entries []model.Entry
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Parent returns the parent group, or nil for the root.
func (g *Group) Parent() *Group {
	return g.parent
}

// IsRoot reports whether g is the root of its tree.
func (g *Group) IsRoot() bool {
	return g.parent == nil
}

// Groups returns the child groups in creation order.
func (g *Group) Groups() []*Group {
	return g.groups
}

// Entries returns a copy of the entries placed in this group.
func (g *Group) Entries() []model.Entry {
	out := make([]model.Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Path returns the names from the first level below the root down to g.
// The root has an empty path.
func (g *Group) Path() []string {
	var path []string
	for n := g; n != nil && n.parent != nil; n = n.parent {
		path = append([]string{n.name}, path...)
	}
	return path
}

// PathString returns Path joined with "/".
func (g *Group) PathString() string {
	return strings.Join(g.Path(), "/")
}

// Child returns the first direct child with the given name.
func (g *Group) Child(name string) *Group {
	for _, c := range g.groups {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Find walks down from g following names and returns nil if any is missing.
func (g *Group) Find(names ...string) *Group {
	n := g
	for _, name := range names {
		if n = n.Child(name); n == nil {
			return nil
		}
	}
	return n
}

// Entry returns the entry with the given title and username, if any.
func (g *Group) Entry(title, username string) (model.Entry, bool) {
	for _, e := range g.entries {
		if e.Title == title && e.Username == username {
			return e, true
		}
	}
	return model.Entry{}, false
}

// Walk calls fn for g and every descendant, parents before children.
func (g *Group) Walk(fn func(*Group)) {
	fn(g)
	for _, c := range g.groups {
		c.Walk(fn)
	}
}

// CountEntries returns the number of entries in g and all descendants.
func (g *Group) CountEntries() int {
	total := 0
	g.Walk(func(n *Group) {
		total += len(n.entries)
	})
	return total
}

func (g *Group) addChild(name string) *Group {
	child := &Group{name: name, parent: g}
	g.groups = append(g.groups, child)
	return child
}
