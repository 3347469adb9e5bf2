package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/registry"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"
)

const DefaultWorkers = 4

// Registry lists the published versions of a project.
type Registry interface {
	ProjectVersions(ctx context.Context, project string) ([]registry.Version, error)
}

// Resolver pins every content entry of a pack to a concrete registry file.
type Resolver struct {
	registry Registry
	workers  int
}

type Option func(*Resolver)

// WithWorkers bounds the number of concurrent registry lookups.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

func New(reg Registry, opts ...Option) *Resolver {
	r := &Resolver{registry: reg, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EntryError ties a resolution failure to the entry that caused it.
type EntryError struct {
	Entry config.ContentEntry
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s[%s] %s: %v", e.Entry.Kind, e.Entry.Category, e.Entry.Identifier, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Resolve returns one lock entry per content entry of kind, in declaration
// order. Every entry is attempted; if any fails, all failures are returned
// joined and no entries are returned.
func (r *Resolver) Resolve(ctx context.Context, cfg *config.PackConfig, kind config.ContentKind) ([]config.LockEntry, error) {
	entries := cfg.Entries(kind)
	results := make([]config.LockEntry, len(entries))
	errs := make([]error, len(entries))

	swg := sizedwaitgroup.New(r.workers)
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		if err := swg.AddWithContext(ctx); err != nil {
			errs[i] = err
			continue
		}
		go func(i int, entry config.ContentEntry) {
			defer swg.Done()
			results[i], errs[i] = r.resolveEntry(ctx, cfg.Dependencies, entry)
		}(i, entry)
	}
	swg.Wait()

	var failures []error
	seen := make(map[string]config.ContentEntry)
	for i, entry := range entries {
		if errs[i] != nil {
			failures = append(failures, &EntryError{Entry: entry, Err: errs[i]})
			continue
		}

		filename := strings.ToLower(results[i].Filename)
		if prev, ok := seen[filename]; ok {
			failures = append(failures, &EntryError{Entry: entry, Err: &config.ValidationError{
				Field:  entry.Field(),
				Reason: fmt.Sprintf("resolves to file %q already used by %s", results[i].Filename, prev.Field()),
			}})
			continue
		}
		seen[filename] = entry
		log.Infof("Resolved %s[%s] %s -> %s", kind, entry.Category, entry.Identifier, results[i].Filename)
	}

	if len(failures) > 0 {
		return nil, errors.Join(failures...)
	}
	return results, nil
}

func (r *Resolver) resolveEntry(ctx context.Context, deps config.Dependencies, e config.ContentEntry) (config.LockEntry, error) {
	versions, err := r.registry.ProjectVersions(ctx, e.Identifier)
	if err != nil {
		return config.LockEntry{}, err
	}

	loader := ""
	if e.Kind.RequiresLoader() {
		loader = deps.Loader
	}
	v, err := SelectVersion(versions, e.Identifier, e.Version, deps.Minecraft, loader)
	if err != nil {
		return config.LockEntry{}, err
	}
	log.Debugf("Selected %s %s (%s, published %s)", e.Identifier, v.VersionNumber, v.ID, v.DatePublished.Format(time.RFC3339))

	f, ok := v.PrimaryFile()
	if !ok {
		return config.LockEntry{}, badResponse(e.Identifier, "version %s has no files", v.VersionNumber)
	}

	hashes := make(map[string]string)
	for _, algo := range []string{"sha1", "sha512"} {
		if h := f.Hashes[algo]; h != "" {
			hashes[algo] = h
		}
	}

	switch {
	case f.Filename == "":
		return config.LockEntry{}, badResponse(e.Identifier, "missing filename in version %s", v.VersionNumber)
	case f.URL == "":
		return config.LockEntry{}, badResponse(e.Identifier, "missing download URL for %s", f.Filename)
	case f.Size <= 0:
		return config.LockEntry{}, badResponse(e.Identifier, "missing or invalid file size for %s", f.Filename)
	case len(hashes) == 0:
		return config.LockEntry{}, badResponse(e.Identifier, "no sha1/sha512 hash provided for %s", f.Filename)
	}

	return config.LockEntry{
		Category:      e.Category,
		Project:       e.Identifier,
		Name:          e.Name,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		Filename:      f.Filename,
		Side:          e.Side,
		Downloads:     []string{f.URL},
		Hashes:        hashes,
		FileSize:      f.Size,
	}, nil
}

// Wrap an unusable registry answer as a permanent error
func badResponse(project, format string, args ...interface{}) error {
	return &registry.RegistryError{Project: project, Err: fmt.Errorf(format, args...)}
}
