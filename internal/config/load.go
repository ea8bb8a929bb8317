package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Loaded captures the resolved drop-in directory, parsed values, and non-fatal warnings.
type Loaded struct {
	Dir      string
	Files    []string
	Config   Config
	Warnings []Warning
}

// Load resolves the drop-in directory, then parses and validates every regular
// file in it, in name order.
func Load(explicitDir string) (Loaded, error) {
	dir := ResolveDir(explicitDir)

	info, err := os.Stat(dir)
	if err != nil {
		return Loaded{}, fmt.Errorf("config dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return Loaded{}, fmt.Errorf("config dir %q is not a directory", dir)
	}

	files, err := dropIns(dir)
	if err != nil {
		return Loaded{}, err
	}

	cfg := Default()
	cfg.ConfDir = dir
	var warnings []Warning
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
		}

		var fileWarnings []Warning
		cfg, fileWarnings, err = Parse(string(content), cfg)
		for i := range fileWarnings {
			fileWarnings[i].File = path
		}
		warnings = append(warnings, fileWarnings...)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
		}
		if cfg.Disable {
			break
		}
	}

	validateWarnings, err := Validate(cfg)
	if err != nil {
		return Loaded{}, err
	}
	warnings = append(warnings, validateWarnings...)

	return Loaded{Dir: dir, Files: files, Config: cfg, Warnings: warnings}, nil
}

func dropIns(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read config dir %q: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
