package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/packagetypes"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/resolver"
	log "github.com/sirupsen/logrus"
)

const (
	targetAll      = "all"
	targetTemplate = "template"
)

type outputPaths struct {
	Template string
	Locks    map[config.ContentKind]string
}

// parseTargets expands a --target value into the outputs to regenerate.
func parseTargets(raw string) ([]string, error) {
	switch raw {
	case targetAll:
		targets := []string{targetTemplate}
		for _, k := range config.ContentKinds {
			targets = append(targets, string(k))
		}
		return targets, nil
	case targetTemplate:
		return []string{targetTemplate}, nil
	}
	if _, err := config.ParseContentKind(raw); err != nil {
		return nil, fmt.Errorf("unknown target %q, expected all, template, mods, resourcepacks or shaderpacks", raw)
	}
	return []string{raw}, nil
}

// generator renders the derived outputs of one pack file. In check mode it
// only compares against what is on disk.
type generator struct {
	cfg      *config.PackConfig
	resolver *resolver.Resolver
	paths    outputPaths
	check    bool
}

func newGenerator(cfg *config.PackConfig, r *resolver.Resolver, paths outputPaths, check bool) *generator {
	return &generator{cfg: cfg, resolver: r, paths: paths, check: check}
}

// run processes every target even when an earlier one fails. It returns the
// targets whose on-disk output differs (check mode only) and the joined
// failures.
func (g *generator) run(ctx context.Context, targets []string) ([]string, error) {
	var stale []string
	var errs []error

	for _, target := range targets {
		var upToDate bool
		var err error
		if target == targetTemplate {
			upToDate, err = g.renderTemplate()
		} else {
			upToDate, err = g.resolveLock(ctx, config.ContentKind(target))
		}

		if err != nil {
			logFailure(target, err)
			errs = append(errs, fmt.Errorf("%s: %w", target, err))
			continue
		}
		if !upToDate {
			stale = append(stale, target)
		}
	}
	return stale, errors.Join(errs...)
}

func (g *generator) renderTemplate() (bool, error) {
	t := packagetypes.RenderTemplate(g.cfg)
	path := g.paths.Template

	if g.check {
		return g.compare(targetTemplate, path, t.UpToDate)
	}
	if err := t.Write(path); err != nil {
		return false, err
	}
	log.Infof("Rendered template -> %s", path)
	return true, nil
}

func (g *generator) resolveLock(ctx context.Context, kind config.ContentKind) (bool, error) {
	entries, err := g.resolver.Resolve(ctx, g.cfg, kind)
	if err != nil {
		return false, err
	}
	m := config.NewLockManifest(kind, entries)
	path := g.paths.Locks[kind]

	if g.check {
		return g.compare(string(kind), path, m.UpToDate)
	}
	if err := m.Write(path); err != nil {
		return false, err
	}
	log.Infof("Wrote %s lock -> %s (%d entries)", kind, path, len(m.Entries))
	return true, nil
}

func (g *generator) compare(target, path string, upToDate func(string) (bool, error)) (bool, error) {
	ok, err := upToDate(path)
	if err != nil {
		return false, err
	}
	if ok {
		log.Infof("Validated %s -> %s (up to date)", target, path)
	} else {
		log.Warnf("Validated %s -> %s (differs from generated output)", target, path)
	}
	return ok, nil
}

// logFailure prints every joined error on its own line so each unresolved
// entry is visible.
func logFailure(target string, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			log.Errorf("%s: %v", target, e)
		}
		return
	}
	log.Errorf("%s: %v", target, err)
}
