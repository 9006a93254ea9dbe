package model

import "strings"

// Placement records where an entry was written.
type Placement struct {
	Entry Entry

	// Kind is the vault item kind name, e.g. "login" or "ssh-key".
	Kind string

	// GroupPath lists the group names below the root; empty means the root.
	GroupPath []string

	// Renamed is set when the title received a disambiguating suffix.
	Renamed bool
}

// GroupPathString returns GroupPath joined with "/".
func (p Placement) GroupPathString() string {
	return strings.Join(p.GroupPath, "/")
}
