package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// manifest describes the excerpts to compose. Line numbers are
// zero-based and end-exclusive, matching the engine's coordinates.
type manifest struct {
	Excerpts []manifestExcerpt `toml:"excerpt"`
}

type manifestExcerpt struct {
	File      string `toml:"file"`
	StartLine uint32 `toml:"start_line"`
	EndLine   uint32 `toml:"end_line"`
	Context   uint32 `toml:"context"`
}

// loadManifest parses the manifest and resolves file paths relative to
// the manifest's directory.
func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Excerpts) == 0 {
		return nil, fmt.Errorf("manifest %s lists no excerpts", path)
	}

	dir := filepath.Dir(path)
	for i, e := range m.Excerpts {
		if e.File == "" {
			return nil, fmt.Errorf("manifest %s: excerpt %d has no file", path, i)
		}
		if e.EndLine <= e.StartLine {
			return nil, fmt.Errorf("manifest %s: excerpt %d has empty line range", path, i)
		}
		if !filepath.IsAbs(e.File) {
			m.Excerpts[i].File = filepath.Join(dir, e.File)
		}
	}
	return &m, nil
}
