package resolver

import (
	"fmt"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/registry"
)

// Compatible keeps the versions built for minecraft and, when loader is not
// empty, for loader. Input order is preserved.
func Compatible(versions []registry.Version, minecraft, loader string) []registry.Version {
	var out []registry.Version
	for _, v := range versions {
		if isCompatible(v, minecraft, loader) {
			out = append(out, v)
		}
	}
	return out
}

// Match game version, and loader when one is given
func isCompatible(v registry.Version, minecraft, loader string) bool {
	if !v.SupportsGame(minecraft) {
		return false
	}
	return loader == "" || v.SupportsLoader(loader)
}

// SelectVersion picks the version to lock for a project.
//
// With a pin, the version whose version number (or ID) equals pin is used.
// A pin the registry does not know, or only knows for other game
// versions/loaders, is a NotFoundError. Without a pin, the most recently
// published compatible version wins. Equal publish dates are broken by the
// lowest version ID so the choice never depends on response order.
func SelectVersion(versions []registry.Version, project, pin, minecraft, loader string) (registry.Version, error) {
	if pin != "" {
		var matched []registry.Version
		known := false
		for _, v := range versions {
			if v.VersionNumber != pin && v.ID != pin {
				continue
			}
			known = true
			if isCompatible(v, minecraft, loader) {
				matched = append(matched, v)
			}
		}
		if !known {
			return registry.Version{}, &registry.NotFoundError{Project: project, Version: pin}
		}
		if len(matched) == 0 {
			return registry.Version{}, &registry.NotFoundError{
				Project: project,
				Version: pin,
				Reason:  "is not compatible with " + target(minecraft, loader),
			}
		}
		return latest(matched), nil
	}

	compatible := Compatible(versions, minecraft, loader)
	if len(compatible) == 0 {
		return registry.Version{}, &registry.NotFoundError{
			Project: project,
			Reason:  "no versions compatible with " + target(minecraft, loader),
		}
	}
	return latest(compatible), nil
}

// Pick newest by date_published, lowest ID on ties
func latest(versions []registry.Version) registry.Version {
	best := versions[0]
	for _, v := range versions[1:] {
		switch {
		case v.DatePublished.After(best.DatePublished):
			best = v
		case v.DatePublished.Equal(best.DatePublished) && v.ID < best.ID:
			best = v
		}
	}
	return best
}

// Describe the build target for error messages
func target(minecraft, loader string) string {
	if loader == "" {
		return fmt.Sprintf("minecraft %s", minecraft)
	}
	return fmt.Sprintf("minecraft %s on %s", minecraft, loader)
}
