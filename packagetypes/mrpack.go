package packagetypes

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/utils"
	"github.com/gobwas/glob"
	log "github.com/sirupsen/logrus"
)

// BuildOptions configures BuildPacks. Empty Side, Slug and DistDir fall back
// to the [build] table of the pack file; an empty Version keeps the template's.
type BuildOptions struct {
	Config       *config.PackConfig
	TemplatePath string
	LockPaths    map[config.ContentKind]string
	Side         string
	Version      string
	Slug         string
	DistDir      string
}

// BuildPacks writes one .mrpack per side and returns their paths.
func BuildPacks(opts BuildOptions) ([]string, error) {
	cfg := opts.Config

	side := cfg.Build.DefaultSide
	if opts.Side != "" {
		s, err := config.ParseSide(opts.Side)
		if err != nil {
			return nil, &config.ValidationError{Field: "side", Reason: err.Error()}
		}
		side = s
	}
	slug := firstNonEmpty(opts.Slug, cfg.Build.Slug)
	dist := firstNonEmpty(opts.DistDir, cfg.Build.DistDir)

	template, err := ReadTemplate(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	var locks []*config.LockManifest
	for _, kind := range config.ContentKinds {
		lock, err := config.ReadLockManifest(opts.LockPaths[kind], kind)
		if err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}

	var ignore []glob.Glob
	for _, pattern := range cfg.Build.IgnoreFiles {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		ignore = append(ignore, g)
	}

	sides := []config.Side{side}
	if side == config.SideBoth {
		sides = []config.Side{config.SideClient, config.SideServer}
	}

	var built []string
	for _, s := range sides {
		out, err := buildPack(template, locks, s, ignore, slug, dist, opts.Version)
		if err != nil {
			return built, err
		}
		built = append(built, out)
	}
	return built, nil
}

// Write the archive for one side
func buildPack(template *Template, locks []*config.LockManifest, side config.Side, ignore []glob.Glob, slug, dist, version string) (string, error) {
	label := "Client"
	if side == config.SideServer {
		label = "Server"
	}

	index := *template
	index.Name = fmt.Sprintf("%s (%s)", template.Name, label)
	index.Summary = fmt.Sprintf("%s [%s]", template.Summary, label)
	if version != "" {
		index.VersionID = version
	}

	index.Files = []PackFile{}
	counts := make(map[config.ContentKind]int)
	for _, lock := range locks {
		for _, entry := range lock.Entries {
			if !entry.Side.Includes(side) {
				continue
			}
			path := lock.Kind.Dir() + "/" + entry.Filename
			if matchesAny(ignore, path) {
				log.Infof("Skipping ignored file: %s", path)
				continue
			}
			index.Files = append(index.Files, PackFile{
				Path:      path,
				Hashes:    entry.Hashes,
				Env:       envFor(entry.Side),
				Downloads: entry.Downloads,
				FileSize:  entry.FileSize,
			})
			counts[lock.Kind]++
		}
	}

	if err := os.MkdirAll(dist, os.ModePerm); err != nil {
		return "", err
	}
	out := filepath.Join(dist, fmt.Sprintf("%s-%s-%s.mrpack", slug, side, index.VersionID))
	if err := writeArchive(out, &index); err != nil {
		return "", err
	}

	log.Infof("Built %s (mods: %d, resource packs: %d, shader packs: %d)",
		out, counts[config.KindMods], counts[config.KindResourcePacks], counts[config.KindShaderPacks])
	return out, nil
}

// Map a side to the index env block
func envFor(side config.Side) *Env {
	switch side {
	case config.SideClient:
		return &Env{Client: "required", Server: "unsupported"}
	case config.SideServer:
		return &Env{Client: "unsupported", Server: "required"}
	}
	return &Env{Client: "required", Server: "required"}
}

// Zip the index with fixed headers
func writeArchive(path string, index *Template) error {
	data, err := utils.EncodeJSON(index)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: IndexFile, Method: zip.Deflate})
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// Check ignore globs
func matchesAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
