package packagetypes

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
)

const (
	FormatVersion = 1
	Game          = "minecraft"
	IndexFile     = "modrinth.index.json"
)

// Template is the Modrinth index of a pack. The template rendered from the
// pack file carries no files; the builder fills them in per side.
type Template struct {
	FormatVersion uint32            `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Files         []PackFile        `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

type PackFile struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       *Env              `json:"env,omitempty"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize"`
}

type Env struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

var requiredTemplateKeys = []string{"formatVersion", "game", "name", "summary", "versionId", "dependencies"}

// ReadTemplate loads a rendered template and checks its required keys.
func ReadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, &config.ParseError{Path: path, Err: err}
	}
	var missing []string
	for _, k := range requiredTemplateKeys {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &config.ValidationError{Field: path, Reason: "is missing required keys: " + strings.Join(missing, ", ")}
	}

	t := &Template{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, &config.ParseError{Path: path, Err: err}
	}
	return t, nil
}
