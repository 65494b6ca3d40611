/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package page

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/suparena/dashboard/errors"
)

type document struct {
	Pages []*Page `yaml:"pages"`
}

// Parse decodes a YAML document holding a top-level "pages" list.
func Parse(data []byte) ([]*Page, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pages: %w", err)
	}

	seen := make(map[string]bool, len(doc.Pages))
	for _, p := range doc.Pages {
		if p == nil {
			return nil, errors.NewValidationError("pages", "empty page entry")
		}
		p.ApplyDefaults()
		if err := p.check(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, errors.NewAlreadyExistsError("page", p.Name)
		}
		seen[p.Name] = true
	}
	return doc.Pages, nil
}

// Load reads and parses a pages file.
func Load(fs afero.Fs, path string) ([]*Page, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if exists, _ := afero.Exists(fs, path); !exists {
			return nil, errors.NewNotFoundError("pages file", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}
