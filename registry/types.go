package registry

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
)

// Version is one published version of a Modrinth project, as returned by
// GET /v2/project/{id}/version.
type Version struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Name          string    `json:"name"`
	VersionNumber string    `json:"version_number"`
	GameVersions  []string  `json:"game_versions"`
	Loaders       []string  `json:"loaders"`
	DatePublished time.Time `json:"date_published"`
	Files         []File    `json:"files"`
}

// UnmarshalJSON reads a version, leaving DatePublished zero when the
// registry sends an empty or malformed date.
func (v *Version) UnmarshalJSON(data []byte) error {
	type plain Version
	var raw struct {
		plain
		DatePublished json.RawMessage `json:"date_published"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*v = Version(raw.plain)
	if len(raw.DatePublished) > 0 {
		if err := json.Unmarshal(raw.DatePublished, &v.DatePublished); err != nil {
			log.Debugf("Version %s has unreadable date_published %s", v.ID, raw.DatePublished)
			v.DatePublished = time.Time{}
		}
	}
	return nil
}

type File struct {
	Hashes   map[string]string `json:"hashes"`
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Size     int64             `json:"size"`
}

// SupportsGame reports whether the version targets the minecraft version.
// Versions that list no game versions are treated as compatible.
func (v Version) SupportsGame(minecraft string) bool {
	if len(v.GameVersions) == 0 {
		return true
	}
	for _, g := range v.GameVersions {
		if g == minecraft {
			return true
		}
	}
	return false
}

// SupportsLoader reports whether the version is built for loader.
func (v Version) SupportsLoader(loader string) bool {
	for _, l := range v.Loaders {
		if l == loader {
			return true
		}
	}
	return false
}

// PrimaryFile returns the file flagged primary, or the first file.
func (v Version) PrimaryFile() (File, bool) {
	if len(v.Files) == 0 {
		return File{}, false
	}
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	return v.Files[0], true
}
