package packagetypes

import (
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/utils"
)

// RenderTemplate builds the index template from the pack file alone.
func RenderTemplate(cfg *config.PackConfig) *Template {
	return &Template{
		FormatVersion: FormatVersion,
		Game:          Game,
		VersionID:     cfg.Pack.Version,
		Name:          cfg.Pack.Name,
		Summary:       cfg.Pack.Summary,
		Files:         []PackFile{},
		Dependencies: map[string]string{
			"minecraft":             cfg.Dependencies.Minecraft,
			cfg.Dependencies.Loader: cfg.Dependencies.LoaderVersion,
		},
	}
}

func (t *Template) Encode() ([]byte, error) {
	return utils.EncodeJSON(t)
}

// Write encodes the template to path.
func (t *Template) Write(path string) error {
	data, err := t.Encode()
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, data)
}

// UpToDate reports whether path already holds exactly this template.
func (t *Template) UpToDate(path string) (bool, error) {
	data, err := t.Encode()
	if err != nil {
		return false, err
	}
	return utils.SameContent(path, data)
}
