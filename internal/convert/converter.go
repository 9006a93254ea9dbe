package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvinuesa/bw2kp/internal/cxf"
	"github.com/nvinuesa/bw2kp/internal/keepass"
	"github.com/nvinuesa/bw2kp/internal/logger"
	"github.com/nvinuesa/bw2kp/internal/model"
	"github.com/nvinuesa/bw2kp/internal/vault"
)

// Store is the target credential store populated by a run.
type Store interface {
	GroupStore
	AddEntry(group *keepass.Group, entry model.Entry) error
	Save() error
}

// Options selects the optional steps of a run.
type Options struct {
	// Sync asks the source to refresh before fetching.
	Sync bool

	// MirrorPath, when set, receives the fetched folders and items as an
	// unencrypted export.
	MirrorPath string

	// CXFPath, when set, receives the placed entries in the credential
	// exchange format.
	CXFPath string

	// CXF configures the exchange format header.
	CXF cxf.GeneratorOptions
}

// Report summarizes a run.
type Report struct {
	Source  string
	Synced  bool
	Folders int
	Groups  int
	Items   int
	Kinds   map[vault.Kind]int
	Renamed int
	Placed  []model.Placement
}

// Converter moves one vault into one store.
type Converter struct {
	source vault.Source
	store  Store
	opts   Options
	log    *logger.Logger
}

// New creates a Converter. A nil logger discards messages.
func New(source vault.Source, store Store, opts Options, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Nop()
	}
	if opts.CXF.ExporterRpID == "" && opts.CXF.ExporterName == "" {
		opts.CXF = cxf.DefaultOptions()
	}
	return &Converter{
		source: source,
		store:  store,
		opts:   opts,
		log:    log,
	}
}

// Run fetches the vault, builds the group tree, places every item and
// saves the store. Nothing is saved if any item fails to convert.
func (c *Converter) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Source: c.source.Name(),
		Kinds:  make(map[vault.Kind]int),
	}

	if c.opts.Sync {
		c.log.Info().Str("source", c.source.Name()).Msg("Syncing vault")
		if err := c.source.Sync(ctx); err != nil {
			if errors.Is(err, vault.ErrSyncUnsupported) {
				return nil, err
			}
			c.log.Warn().Err(err).Msg("Sync failed, continuing with local data")
		} else {
			report.Synced = true
		}
	}

	c.log.Info().Msg("Fetching folders")
	folders, err := c.source.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching folders: %w", err)
	}
	report.Folders = len(folders)

	groups := BuildGroups(c.store, folders)
	c.store.Root().Walk(func(g *keepass.Group) {
		if !g.IsRoot() {
			report.Groups++
		}
	})
	c.log.Debug().Int("folders", len(folders)).Int("groups", report.Groups).Msg("Group tree built")

	c.log.Info().Msg("Fetching items")
	items, err := c.source.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}
	report.Items = len(items)

	dedup := NewDeduper()
	for _, item := range items {
		placement, err := c.place(item, groups, dedup)
		if err != nil {
			return nil, err
		}
		report.Kinds[item.Type]++
		if placement.Renamed {
			report.Renamed++
		}
		report.Placed = append(report.Placed, placement)
	}

	c.log.Info().Int("entries", len(report.Placed)).Msg("Saving database")
	if err := c.store.Save(); err != nil {
		return nil, fmt.Errorf("saving database: %w", err)
	}

	if c.opts.MirrorPath != "" {
		c.log.Info().Str("path", c.opts.MirrorPath).Msg("Writing plaintext export")
		if err := vault.WriteMirror(c.opts.MirrorPath, folders, items); err != nil {
			return nil, fmt.Errorf("writing plaintext export: %w", err)
		}
	}

	if c.opts.CXFPath != "" {
		c.log.Info().Str("path", c.opts.CXFPath).Msg("Writing CXF export")
		if err := cxf.Export(c.opts.CXFPath, report.Placed, c.opts.CXF); err != nil {
			return nil, fmt.Errorf("writing CXF export: %w", err)
		}
	}

	return report, nil
}

// place normalizes one item and writes it into its destination group.
func (c *Converter) place(item vault.Item, groups map[string]*keepass.Group, dedup *Deduper) (model.Placement, error) {
	group, ok := groups[item.FolderID]
	if !ok {
		if item.FolderID != "" {
			c.log.Debug().Str("item", item.ID).Str("folder", item.FolderID).Msg("Unknown folder, placing in root")
		}
		group = c.store.Root()
	}

	groupID := item.FolderID
	if group.IsRoot() {
		groupID = RootGroupID
	}

	entry, err := Normalize(item)
	if err != nil {
		return model.Placement{}, err
	}

	title := entry.Title
	for {
		entry.Title = dedup.Resolve(groupID, title, entry.Username)

		err := c.store.AddEntry(group, entry)
		if err == nil {
			break
		}
		if !keepass.IsDuplicate(err) {
			return model.Placement{}, fmt.Errorf("adding entry %q: %w", entry.Title, err)
		}
		// Two folder ids can share one group, or a suffixed title can
		// match an existing one. Take the next suffix.
		c.log.Debug().Str("title", entry.Title).Str("group", group.PathString()).Msg("Title taken, trying next suffix")
	}

	return model.Placement{
		Entry:     entry,
		Kind:      item.Type.String(),
		GroupPath: group.Path(),
		Renamed:   entry.Title != title,
	}, nil
}
