package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

const (
	DefaultDistDir = "dist"
	DefaultSide    = SideBoth
)

// SupportedLoaders lists the mod loaders a pack may declare.
var SupportedLoaders = []string{"fabric", "forge", "quilt", "neoforge"}

// Side is the audience tag of a content entry.
type Side string

const (
	SideBoth   Side = "both"
	SideClient Side = "client"
	SideServer Side = "server"
)

var validSides = []string{string(SideBoth), string(SideClient), string(SideServer)}

// ParseSide accepts both, client and server, plus the client-only and
// server-only spellings.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "both":
		return SideBoth, nil
	case "client", "client-only":
		return SideClient, nil
	case "server", "server-only":
		return SideServer, nil
	}
	return "", fmt.Errorf("unknown side %q", raw)
}

// Includes reports whether content tagged s belongs in a pack built for target.
func (s Side) Includes(target Side) bool {
	return s == SideBoth || s == target
}

// ContentKind selects one of the content tables of a pack.
type ContentKind string

const (
	KindMods          ContentKind = "mods"
	KindResourcePacks ContentKind = "resourcepacks"
	KindShaderPacks   ContentKind = "shaderpacks"
)

// ContentKinds lists every kind in output order.
var ContentKinds = []ContentKind{KindMods, KindResourcePacks, KindShaderPacks}

// ParseContentKind maps a target name to a kind.
func ParseContentKind(raw string) (ContentKind, error) {
	for _, k := range ContentKinds {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q", raw)
}

// Dir is the folder the kind's files are installed to inside an instance.
func (k ContentKind) Dir() string {
	return string(k)
}

// RequiresLoader reports whether registry versions must match the pack loader.
// Only mods are loader specific; resource and shader packs are not.
func (k ContentKind) RequiresLoader() bool {
	return k == KindMods
}

func (k ContentKind) itemKey() string {
	if k == KindMods {
		return "mods"
	}
	return "packs"
}

// PackConfig is the validated pack file. It is built once by Load and must
// not be modified afterwards.
type PackConfig struct {
	Path         string
	Pack         PackMeta
	Dependencies Dependencies
	Build        BuildDefaults

	content map[ContentKind][]ContentEntry
}

type PackMeta struct {
	Name    string
	Summary string
	Version string
}

type Dependencies struct {
	Minecraft     string
	Loader        string
	LoaderVersion string
}

type BuildDefaults struct {
	Slug        string
	DefaultSide Side
	DistDir     string
	IgnoreFiles []string
}

// ContentEntry is one declared content reference.
type ContentEntry struct {
	Kind       ContentKind
	Category   string
	Index      int
	Identifier string
	URL        string
	Side       Side
	Name       string
	Version    string
}

// Field is the dotted path the entry was declared at.
func (e ContentEntry) Field() string {
	return fmt.Sprintf("%s.%s.%s[%d]", e.Kind, e.Category, e.Kind.itemKey(), e.Index)
}

// Pinned reports whether the entry requests an exact version.
func (e ContentEntry) Pinned() bool {
	return e.Version != ""
}

// Entries returns the entries of one kind, categories in name order and
// entries in declaration order within a category.
func (c *PackConfig) Entries(kind ContentKind) []ContentEntry {
	entries := c.content[kind]
	out := make([]ContentEntry, len(entries))
	copy(out, entries)
	return out
}

// Raw document shapes. Pointers mark tables that must be present. Extra
// collects unknown YAML keys; TOML rejects them while decoding.
type document struct {
	Pack          *packTable              `toml:"pack" yaml:"pack"`
	Dependencies  *dependenciesTable      `toml:"dependencies" yaml:"dependencies"`
	Build         *buildTable             `toml:"build" yaml:"build"`
	Mods          map[string]modCategory  `toml:"mods" yaml:"mods"`
	ResourcePacks map[string]packCategory `toml:"resourcepacks" yaml:"resourcepacks"`
	ShaderPacks   map[string]packCategory `toml:"shaderpacks" yaml:"shaderpacks"`
	Extra         map[string]interface{}  `toml:"-" yaml:",inline"`
}

type packTable struct {
	Name         scalar                 `toml:"name" yaml:"name"`
	Summary      scalar                 `toml:"summary" yaml:"summary"`
	Version      scalar                 `toml:"version" yaml:"version"`
	DebugVersion scalar                 `toml:"debug_version" yaml:"debug_version"`
	Extra        map[string]interface{} `toml:"-" yaml:",inline"`
}

type dependenciesTable struct {
	Minecraft     scalar                 `toml:"minecraft" yaml:"minecraft"`
	Loader        scalar                 `toml:"loader" yaml:"loader"`
	LoaderVersion scalar                 `toml:"loader_version" yaml:"loader_version"`
	Extra         map[string]interface{} `toml:"-" yaml:",inline"`
}

type buildTable struct {
	Slug        scalar                 `toml:"slug" yaml:"slug"`
	DefaultSide scalar                 `toml:"default_side" yaml:"default_side"`
	DistDir     scalar                 `toml:"dist_dir" yaml:"dist_dir"`
	IgnoreFiles []scalar               `toml:"ignore_files" yaml:"ignore_files"`
	Extra       map[string]interface{} `toml:"-" yaml:",inline"`
}

type entryTable struct {
	URL     scalar                 `toml:"url" yaml:"url"`
	Side    scalar                 `toml:"side" yaml:"side"`
	Name    scalar                 `toml:"name" yaml:"name"`
	Version scalar                 `toml:"version" yaml:"version"`
	Extra   map[string]interface{} `toml:"-" yaml:",inline"`
}

type modCategory struct {
	Mods  *[]entryTable          `toml:"mods" yaml:"mods"`
	Extra map[string]interface{} `toml:"-" yaml:",inline"`
}

type packCategory struct {
	Packs *[]entryTable          `toml:"packs" yaml:"packs"`
	Extra map[string]interface{} `toml:"-" yaml:",inline"`
}

// Load reads and validates the pack file at path. The decoder is picked by
// extension: .yaml and .yml use YAML, everything else TOML.
func Load(path string) (*PackConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pack config: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates pack file contents. path is only used to pick
// the format and in error messages.
func Parse(path string, data []byte) (*PackConfig, error) {
	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, &doc); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	default:
		if err := decodeTOML(path, data, &doc); err != nil {
			return nil, err
		}
	}

	c, err := doc.validate()
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}

// Decode TOML, mapping unknown keys to field errors
func decodeTOML(path string, data []byte, doc *document) error {
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	d.EnableUnmarshalerInterface()
	err := d.Decode(doc)
	if err == nil {
		return nil
	}

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		var errs []error
		for _, e := range strict.Errors {
			errs = append(errs, invalid(strings.Join(e.Key(), "."), "is not a recognized field"))
		}
		return errors.Join(errs...)
	}

	pe := &ParseError{Path: path, Err: err}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
	}
	return pe
}

func (d *document) validate() (*PackConfig, error) {
	var errs []error
	c := &PackConfig{content: make(map[ContentKind][]ContentEntry)}

	rejectUnknown(&errs, "", d.Extra)

	if d.Pack == nil {
		errs = append(errs, invalid("pack", "table is required"))
	} else {
		rejectUnknown(&errs, "pack", d.Pack.Extra)
		c.Pack.Name = requireString(&errs, "pack.name", d.Pack.Name)
		c.Pack.Summary = requireString(&errs, "pack.summary", d.Pack.Summary)
		version := d.Pack.Version
		if !version.set || (version.isStr && version.str == "") {
			version = d.Pack.DebugVersion
		}
		c.Pack.Version = requireString(&errs, "pack.version", version)
	}

	if d.Dependencies == nil {
		errs = append(errs, invalid("dependencies", "table is required"))
	} else {
		rejectUnknown(&errs, "dependencies", d.Dependencies.Extra)
		c.Dependencies.Minecraft = requireString(&errs, "dependencies.minecraft", d.Dependencies.Minecraft)
		c.Dependencies.Loader = requireString(&errs, "dependencies.loader", d.Dependencies.Loader)
		c.Dependencies.LoaderVersion = requireString(&errs, "dependencies.loader_version", d.Dependencies.LoaderVersion)
		if c.Dependencies.Loader != "" && !contains(SupportedLoaders, c.Dependencies.Loader) {
			errs = append(errs, invalid("dependencies.loader", "must be one of %v, got %q", SupportedLoaders, c.Dependencies.Loader))
		}
	}

	c.Build = BuildDefaults{Slug: slugify(c.Pack.Name), DefaultSide: DefaultSide, DistDir: DefaultDistDir}
	if d.Build != nil {
		rejectUnknown(&errs, "build", d.Build.Extra)
		if slug, _ := d.Build.Slug.text(&errs, "build.slug"); slug != "" {
			c.Build.Slug = slug
		}
		if dist, _ := d.Build.DistDir.text(&errs, "build.dist_dir"); dist != "" {
			c.Build.DistDir = dist
		}
		if raw, _ := d.Build.DefaultSide.text(&errs, "build.default_side"); raw != "" {
			side, err := ParseSide(raw)
			if err != nil {
				errs = append(errs, invalid("build.default_side", "must be one of %v", validSides))
			}
			c.Build.DefaultSide = side
		}
		for i, item := range d.Build.IgnoreFiles {
			field := fmt.Sprintf("build.ignore_files[%d]", i)
			pattern, ok := item.text(&errs, field)
			if !ok {
				continue
			}
			if _, err := glob.Compile(pattern, '/'); err != nil {
				errs = append(errs, invalid(field, "is not a valid glob: %v", err))
				continue
			}
			c.Build.IgnoreFiles = append(c.Build.IgnoreFiles, pattern)
		}
	}

	mods := make(map[string]*[]entryTable, len(d.Mods))
	for name, cat := range d.Mods {
		rejectUnknown(&errs, "mods."+name, cat.Extra)
		mods[name] = cat.Mods
	}
	c.content[KindMods] = collectEntries(&errs, KindMods, mods)

	for kind, table := range map[ContentKind]map[string]packCategory{
		KindResourcePacks: d.ResourcePacks,
		KindShaderPacks:   d.ShaderPacks,
	} {
		packs := make(map[string]*[]entryTable, len(table))
		for name, cat := range table {
			rejectUnknown(&errs, string(kind)+"."+name, cat.Extra)
			packs[name] = cat.Packs
		}
		c.content[kind] = collectEntries(&errs, kind, packs)
	}

	if len(errs) > 0 {
		sortErrors(errs)
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Flatten categories into entries, sorted by category name
func collectEntries(errs *[]error, kind ContentKind, categories map[string]*[]entryTable) []ContentEntry {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []ContentEntry
	seen := make(map[string]string)
	for _, name := range names {
		items := categories[name]
		if items == nil {
			*errs = append(*errs, invalid(fmt.Sprintf("%s.%s.%s", kind, name, kind.itemKey()), "must be an array"))
			continue
		}
		for i, item := range *items {
			e := ContentEntry{Kind: kind, Category: name, Index: i}
			field := e.Field()
			rejectUnknown(errs, field, item.Extra)

			if url := requireString(errs, field+".url", item.URL); strings.TrimSpace(url) != "" {
				if id, err := ParseProjectRef(url); err != nil {
					*errs = append(*errs, invalid(field+".url", "%v", err))
				} else {
					e.Identifier = id
					e.URL = ProjectURL(id)
				}
			}

			if raw := requireString(errs, field+".side", item.Side); strings.TrimSpace(raw) != "" {
				if side, err := ParseSide(raw); err != nil {
					*errs = append(*errs, invalid(field+".side", "must be one of %v, got %q", validSides, raw))
				} else {
					e.Side = side
				}
			}

			if label, ok := item.Name.text(errs, field+".name"); ok {
				e.Name = label
			}

			if item.Version.set {
				if !item.Version.isStr || item.Version.str == "" {
					*errs = append(*errs, invalid(field+".version", "must be a non-empty string when provided"))
				}
				e.Version = item.Version.str
			}

			if e.Identifier != "" {
				key := strings.ToLower(e.Identifier)
				if prev, ok := seen[key]; ok {
					*errs = append(*errs, invalid(field+".url", "duplicates %s (project %q)", prev, e.Identifier))
					continue
				}
				seen[key] = field
			}
			entries = append(entries, e)
		}
	}
	return entries
}

var (
	slugPattern  = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	projectPaths = []string{"project", "mod", "resourcepack", "shader", "datapack", "plugin"}
)

// ParseProjectRef extracts the project slug or ID from a Modrinth project URL
// such as https://modrinth.com/mod/sodium. A bare slug is accepted as is.
func ParseProjectRef(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		if !slugPattern.MatchString(raw) {
			return "", fmt.Errorf("%q is neither a project URL nor a project slug", raw)
		}
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid project URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid project URL %q: unsupported scheme", raw)
	}
	if u.Host != "modrinth.com" && u.Host != "www.modrinth.com" {
		return "", fmt.Errorf("unsupported host in URL %q", raw)
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) != 2 || !contains(projectPaths, parts[0]) || !slugPattern.MatchString(parts[1]) {
		return "", fmt.Errorf("invalid Modrinth project URL path %q", raw)
	}
	return parts[1], nil
}

// ProjectURL is the canonical URL of a project.
func ProjectURL(id string) string {
	return "https://modrinth.com/project/" + id
}

// Check list membership
func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Lowercase and hyphenate a pack name
func slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// Sort errors by message so reports are stable
func sortErrors(errs []error) {
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Error() < errs[j].Error()
	})
}
