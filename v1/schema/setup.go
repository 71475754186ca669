package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ReadSources reads the files named by cfg into SchemaSource values, sorted by
// name. A name given twice keeps the last file read.
func ReadSources(cfg Config) ([]SchemaSource, error) {
	paths := append([]string(nil), cfg.Files...)
	if cfg.Directory != "" {
		matches, err := filepath.Glob(filepath.Join(cfg.Directory, "*.proto"))
		if err != nil {
			return nil, fmt.Errorf("failed to list schema directory %q: %w", cfg.Directory, err)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}

	byName := make(map[string]SchemaSource, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %q: %w", path, err)
		}
		name := filepath.Base(path)
		byName[name] = SchemaSource{Name: name, Source: data}
	}

	out := make([]SchemaSource, 0, len(byName))
	for _, s := range byName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
