package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/utils"
)

// LockEntry is one resolved, pinned artifact as stored in a lock manifest.
type LockEntry struct {
	Category      string            `json:"category"`
	Project       string            `json:"project"`
	Name          string            `json:"name,omitempty"`
	VersionID     string            `json:"versionId"`
	VersionNumber string            `json:"versionNumber"`
	Filename      string            `json:"filename"`
	Side          Side              `json:"side"`
	Downloads     []string          `json:"downloads"`
	Hashes        map[string]string `json:"hashes"`
	FileSize      int64             `json:"fileSize"`
}

// Validate checks the fields the pack builder depends on.
func (e LockEntry) Validate() error {
	switch {
	case e.Filename == "":
		return fmt.Errorf("filename must be a non-empty string")
	case e.Side != SideBoth && e.Side != SideClient && e.Side != SideServer:
		return fmt.Errorf("side must be one of %v", validSides)
	case len(e.Downloads) == 0:
		return fmt.Errorf("downloads must be a non-empty array of URLs")
	case e.Hashes["sha1"] == "" && e.Hashes["sha512"] == "":
		return fmt.Errorf("hashes must include at least sha1 or sha512")
	case e.FileSize <= 0:
		return fmt.Errorf("fileSize must be an integer > 0")
	}
	for _, u := range e.Downloads {
		if u == "" {
			return fmt.Errorf("downloads must be a non-empty array of URLs")
		}
	}
	return nil
}

// LockManifest holds the resolved entries of one content kind.
type LockManifest struct {
	Kind    ContentKind
	Entries []LockEntry
}

// NewLockManifest copies entries and sorts them by category, then project,
// so the encoded manifest does not depend on resolution order.
func NewLockManifest(kind ContentKind, entries []LockEntry) *LockManifest {
	sorted := make([]LockEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if pa, pb := strings.ToLower(a.Project), strings.ToLower(b.Project); pa != pb {
			return pa < pb
		}
		return a.Filename < b.Filename
	})
	return &LockManifest{Kind: kind, Entries: sorted}
}

// Encode returns the manifest as an indented JSON array.
func (m *LockManifest) Encode() ([]byte, error) {
	entries := m.Entries
	if entries == nil {
		entries = []LockEntry{}
	}
	return utils.EncodeJSON(entries)
}

// Write encodes the manifest to path.
func (m *LockManifest) Write(path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, data)
}

// UpToDate reports whether path already holds exactly this manifest.
func (m *LockManifest) UpToDate(path string) (bool, error) {
	data, err := m.Encode()
	if err != nil {
		return false, err
	}
	return utils.SameContent(path, data)
}

// ReadLockManifest loads and validates a lock manifest written by Write.
func ReadLockManifest(path string, kind ContentKind) (*LockManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s lock: %w", kind, err)
	}

	var entries []LockEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, invalid(fmt.Sprintf("%s[%d]", path, i), "%v", err)
		}
	}
	return &LockManifest{Kind: kind, Entries: entries}, nil
}
