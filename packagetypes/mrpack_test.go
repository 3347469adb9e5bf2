package packagetypes

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packTOML = `
[pack]
name = "Create Hardcore"
summary = "Hardcore survival with Create"
version = "1.2.0"

[dependencies]
minecraft = "1.20.1"
loader = "fabric"
loader_version = "0.15.11"

[build]
slug = "chuj"
ignore_files = ["mods/*-dev.jar"]
`

func testConfig(t *testing.T) *config.PackConfig {
	t.Helper()
	cfg, err := config.Parse("pack.toml", []byte(packTOML))
	require.NoError(t, err)
	return cfg
}

func TestRenderTemplate(t *testing.T) {
	tmpl := RenderTemplate(testConfig(t))

	data, err := tmpl.Encode()
	require.NoError(t, err)
	want := `{
  "formatVersion": 1,
  "game": "minecraft",
  "versionId": "1.2.0",
  "name": "Create Hardcore",
  "summary": "Hardcore survival with Create",
  "files": [],
  "dependencies": {
    "fabric": "0.15.11",
    "minecraft": "1.20.1"
  }
}
`
	assert.Equal(t, want, string(data))
}

func TestTemplateWriteAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.template.json")
	tmpl := RenderTemplate(testConfig(t))

	ok, err := tmpl.UpToDate(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tmpl.Write(path))
	ok, err = tmpl.UpToDate(path)
	require.NoError(t, err)
	assert.True(t, ok)

	read, err := ReadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, tmpl, read)
}

func TestReadTemplateMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.template.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"formatVersion": 1, "game": "minecraft", "name": "x"}`), 0o644))

	_, err := ReadTemplate(path)
	var ve *config.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "summary, versionId, dependencies")
}

func lockEntry(category, project, filename string, side config.Side) config.LockEntry {
	return config.LockEntry{
		Category:      category,
		Project:       project,
		VersionID:     project + "-id",
		VersionNumber: "1.0",
		Filename:      filename,
		Side:          side,
		Downloads:     []string{"https://cdn.modrinth.com/data/" + filename},
		Hashes:        map[string]string{"sha1": "sha1-" + project},
		FileSize:      100,
	}
}

type fixture struct {
	opts BuildOptions
	dist string
}

func writeFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := testConfig(t)

	templatePath := filepath.Join(dir, "pack.template.json")
	require.NoError(t, RenderTemplate(cfg).Write(templatePath))

	locks := map[config.ContentKind][]config.LockEntry{
		config.KindMods: {
			lockEntry("performance", "sodium", "sodium-0.5.8.jar", config.SideClient),
			lockEntry("library", "fabric-api", "fabric-api-0.92.0.jar", config.SideBoth),
			lockEntry("server", "ledger", "ledger-1.3.jar", config.SideServer),
			lockEntry("debug", "devtools", "devtools-dev.jar", config.SideBoth),
		},
		config.KindResourcePacks: {
			lockEntry("ui", "fresh-animations", "FreshAnimations.zip", config.SideClient),
		},
		config.KindShaderPacks: nil,
	}
	paths := make(map[config.ContentKind]string)
	for kind, entries := range locks {
		paths[kind] = filepath.Join(dir, string(kind)+".lock.json")
		require.NoError(t, config.NewLockManifest(kind, entries).Write(paths[kind]))
	}

	dist := filepath.Join(dir, "dist")
	return fixture{
		opts: BuildOptions{Config: cfg, TemplatePath: templatePath, LockPaths: paths, DistDir: dist},
		dist: dist,
	}
}

func readIndex(t *testing.T, path string) Template {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 1)
	assert.Equal(t, IndexFile, zr.File[0].Name)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)

	var index Template
	require.NoError(t, json.Unmarshal(data, &index))
	return index
}

func paths(files []PackFile) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestBuildPacksBothSides(t *testing.T) {
	fx := writeFixture(t)

	built, err := BuildPacks(fx.opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fx.dist, "chuj-client-1.2.0.mrpack"),
		filepath.Join(fx.dist, "chuj-server-1.2.0.mrpack"),
	}, built)

	client := readIndex(t, built[0])
	assert.Equal(t, "Create Hardcore (Client)", client.Name)
	assert.Equal(t, "Hardcore survival with Create [Client]", client.Summary)
	assert.Equal(t, map[string]string{"minecraft": "1.20.1", "fabric": "0.15.11"}, client.Dependencies)
	assert.Equal(t, []string{
		"mods/fabric-api-0.92.0.jar",
		"mods/sodium-0.5.8.jar",
		"resourcepacks/FreshAnimations.zip",
	}, paths(client.Files))
	assert.Equal(t, &Env{Client: "required", Server: "required"}, client.Files[0].Env)
	assert.Equal(t, &Env{Client: "required", Server: "unsupported"}, client.Files[1].Env)
	assert.Equal(t, int64(100), client.Files[1].FileSize)

	server := readIndex(t, built[1])
	assert.Equal(t, "Create Hardcore (Server)", server.Name)
	assert.Equal(t, []string{"mods/fabric-api-0.92.0.jar", "mods/ledger-1.3.jar"}, paths(server.Files))
	assert.Equal(t, &Env{Client: "unsupported", Server: "required"}, server.Files[1].Env)
}

func TestBuildPacksOverrides(t *testing.T) {
	fx := writeFixture(t)
	fx.opts.Side = "server-only"
	fx.opts.Version = "1.2.1-rc1"
	fx.opts.Slug = "hardcore"

	built, err := BuildPacks(fx.opts)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(fx.dist, "hardcore-server-1.2.1-rc1.mrpack")}, built)
	assert.Equal(t, "1.2.1-rc1", readIndex(t, built[0]).VersionID)
}

func TestBuildPacksIsReproducible(t *testing.T) {
	fx := writeFixture(t)

	first, err := BuildPacks(fx.opts)
	require.NoError(t, err)
	a, err := os.ReadFile(first[0])
	require.NoError(t, err)

	second, err := BuildPacks(fx.opts)
	require.NoError(t, err)
	b, err := os.ReadFile(second[0])
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildPacksErrors(t *testing.T) {
	fx := writeFixture(t)
	fx.opts.Side = "everyone"
	_, err := BuildPacks(fx.opts)
	var ve *config.ValidationError
	require.ErrorAs(t, err, &ve)

	fx = writeFixture(t)
	require.NoError(t, os.Remove(fx.opts.LockPaths[config.KindShaderPacks]))
	_, err = BuildPacks(fx.opts)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
