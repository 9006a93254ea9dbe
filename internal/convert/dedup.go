package convert

import "strconv"

// RootGroupID stands in for the folder id of items placed in the root group.
const RootGroupID = "root"

// Deduper assigns suffixes to titles so that (group, title, username)
// stays unique among written entries. It lives for one run.
type Deduper struct {
	seen map[string]int
}

// NewDeduper returns a Deduper with an empty seen-set.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]int)}
}

// Resolve returns the title to write. The key is the plain concatenation
// of groupID, title and username, so "ab"+"c" and "a"+"bc" collide.
// The first occurrence of a key keeps its title; the n-th becomes
// "title (n-1)".
func (d *Deduper) Resolve(groupID, title, username string) string {
	key := groupID + title + username
	d.seen[key]++

	count := d.seen[key]
	if count == 1 {
		return title
	}

	return title + " (" + strconv.Itoa(count-1) + ")"
}
