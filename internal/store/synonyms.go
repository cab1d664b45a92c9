// Package store provides YAML-backed persistence for the engine's
// configuration data: the column synonym table and learned vendor mappings.
package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/normalizer"
)

// synonymsFile is the on-disk shape of the synonym table.
type synonymsFile struct {
	Fields map[string][]string `yaml:"fields"`
}

// LoadSynonyms reads a synonym table from a YAML file. A missing file is not
// an error: the built-in defaults are returned, so a fresh install works
// without any config.
func LoadSynonyms(path string) (normalizer.SynonymTable, error) {
	if path == "" {
		return normalizer.DefaultSynonyms(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return normalizer.DefaultSynonyms(), nil
		}
		return nil, fmt.Errorf("error reading synonyms file: %w", err)
	}

	var file synonymsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing synonyms file: %w", err)
	}

	// User entries extend the defaults rather than replacing them, so a file
	// listing only extra amount synonyms keeps date/description discovery.
	table := normalizer.DefaultSynonyms()
	for name, syns := range file.Fields {
		field := models.CanonicalField(name)
		table[field] = append(table[field], syns...)
	}
	return table, nil
}

// SaveSynonyms writes a synonym table to a YAML file.
func SaveSynonyms(path string, table normalizer.SynonymTable) error {
	file := synonymsFile{Fields: make(map[string][]string, len(table))}
	for field, syns := range table {
		file.Fields[string(field)] = syns
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("error marshalling synonyms: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing synonyms file: %w", err)
	}
	return nil
}
