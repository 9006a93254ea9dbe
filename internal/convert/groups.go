package convert

import (
	"strings"

	"github.com/nvinuesa/bw2kp/internal/keepass"
	"github.com/nvinuesa/bw2kp/internal/vault"
)

// PathSeparator splits folder names into nested groups.
const PathSeparator = "/"

// GroupStore creates groups in the target store.
type GroupStore interface {
	Root() *keepass.Group
	AddGroup(parent *keepass.Group, name string) *keepass.Group
}

// BuildGroups creates one group per folder path segment and returns the
// group each folder id maps to.
//
// Segments are looked up by bare name in a cache shared by all folders, so
// "Work/Servers" and "Home/Servers" end up sharing one "Servers" group
// (under "Work", whichever came first). The "No Folder" folder maps to the
// root group and creates nothing.
func BuildGroups(store GroupStore, folders []vault.Folder) map[string]*keepass.Group {
	root := store.Root()
	byName := make(map[string]*keepass.Group)
	byID := make(map[string]*keepass.Group, len(folders))

	for _, f := range folders {
		node := root
		for _, segment := range strings.Split(f.Name, PathSeparator) {
			if segment == vault.NoFolder {
				node = root
				break
			}

			cached, ok := byName[segment]
			if !ok {
				cached = store.AddGroup(node, segment)
				byName[segment] = cached
			}
			node = cached
		}
		byID[f.ID] = node
	}

	return byID
}
