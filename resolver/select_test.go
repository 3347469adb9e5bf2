package resolver

import (
	"testing"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectVersion(t *testing.T) {
	versions := []registry.Version{
		version("a", "1.0.0", "2024-01-01", mc1201, fabric, "a.jar"),
		version("b", "1.1.0", "2024-03-01", mc1201, fabric, "b.jar"),
		version("c", "1.2.0", "2024-05-01", []string{"1.21"}, fabric, "c.jar"),
		version("d", "1.1.1", "2024-04-01", mc1201, []string{"forge"}, "d.jar"),
		version("e", "1.0.0", "2024-02-01", mc1201, fabric, "e.jar"),
		version("f", "0.9.0", "2023-01-01", nil, fabric, "f.jar"),
	}

	tests := []struct {
		name      string
		pin       string
		minecraft string
		loader    string
		want      string
	}{
		{name: "latest compatible", minecraft: "1.20.1", loader: "fabric", want: "b"},
		{name: "loader filter off", minecraft: "1.20.1", want: "d"},
		{name: "other game version", minecraft: "1.21", loader: "fabric", want: "c"},
		{name: "no game versions listed", minecraft: "1.19.2", loader: "fabric", want: "f"},
		{name: "pin by number", pin: "1.1.0", minecraft: "1.20.1", loader: "fabric", want: "b"},
		{name: "pin by id", pin: "a", minecraft: "1.20.1", loader: "fabric", want: "a"},
		{name: "repeated pin picks newest", pin: "1.0.0", minecraft: "1.20.1", loader: "fabric", want: "e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectVersion(versions, "proj", tt.pin, tt.minecraft, tt.loader)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestSelectVersionTieBreak(t *testing.T) {
	versions := []registry.Version{
		version("zz", "2.0.1", "2024-01-01", mc1201, fabric, "z.jar"),
		version("aa", "2.0.0", "2024-01-01", mc1201, fabric, "a.jar"),
		version("mm", "2.0.2", "2024-01-01", mc1201, fabric, "m.jar"),
	}
	got, err := SelectVersion(versions, "proj", "", "1.20.1", "fabric")
	require.NoError(t, err)
	assert.Equal(t, "aa", got.ID)

	reversed := []registry.Version{versions[2], versions[1], versions[0]}
	got, err = SelectVersion(reversed, "proj", "", "1.20.1", "fabric")
	require.NoError(t, err)
	assert.Equal(t, "aa", got.ID)
}

func TestSelectVersionNotFound(t *testing.T) {
	versions := []registry.Version{
		version("a", "1.0.0", "2024-01-01", mc1201, fabric, "a.jar"),
		version("c", "1.2.0", "2024-05-01", []string{"1.21"}, fabric, "c.jar"),
	}

	tests := []struct {
		name      string
		versions  []registry.Version
		pin       string
		minecraft string
		reason    string
	}{
		{name: "unknown pin", versions: versions, pin: "3.0.0", minecraft: "1.20.1", reason: "not found in registry"},
		{name: "incompatible pin", versions: versions, pin: "1.2.0", minecraft: "1.20.1", reason: "not compatible with minecraft 1.20.1 on fabric"},
		{name: "nothing compatible", versions: versions, minecraft: "1.16.5", reason: "no versions compatible"},
		{name: "no versions", minecraft: "1.20.1", reason: "no versions compatible"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectVersion(tt.versions, "proj", tt.pin, tt.minecraft, "fabric")
			var nf *registry.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "proj", nf.Project)
			assert.Equal(t, tt.pin, nf.Version)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestCompatible(t *testing.T) {
	versions := []registry.Version{
		version("a", "1", "2024-01-01", mc1201, fabric, "a.jar"),
		version("b", "2", "2024-01-02", mc1201, []string{"quilt"}, "b.jar"),
		version("c", "3", "2024-01-03", []string{"1.21"}, fabric, "c.jar"),
	}

	var ids []string
	for _, v := range Compatible(versions, "1.20.1", "fabric") {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"a"}, ids)
	assert.Len(t, Compatible(versions, "1.20.1", ""), 2)
}
