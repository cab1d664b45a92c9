package store

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
)

// vendorsFile is the on-disk shape of the vendor mapping database.
type vendorsFile struct {
	Vendors map[string]string `yaml:"vendors"`
}

// VendorStore holds learned vendor-to-category mappings. A hit lets the
// engine categorize without calling the labeling service, and accepted
// high-confidence results are written back so similar expenses never need
// recategorizing.
type VendorStore struct {
	path     string
	mappings map[string]string
	mu       sync.RWMutex
	dirty    bool
	logger   logging.Logger
}

// NewVendorStore creates a VendorStore backed by the given YAML file and
// loads any existing mappings. A missing file starts empty.
func NewVendorStore(path string, logger logging.Logger) (*VendorStore, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &VendorStore{
		path:     path,
		mappings: make(map[string]string),
		logger:   logger,
	}

	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("error reading vendors file: %w", err)
	}

	var file vendorsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing vendors file: %w", err)
	}
	// Lowercase keys give case-insensitive lookup.
	for vendor, category := range file.Vendors {
		s.mappings[strings.ToLower(vendor)] = category
	}
	s.logger.WithField("count", len(s.mappings)).Debug("Loaded vendor mappings")
	return s, nil
}

// Lookup returns the learned category for a vendor, if any.
func (s *VendorStore) Lookup(vendor string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, found := s.mappings[strings.ToLower(strings.TrimSpace(vendor))]
	return category, found
}

// Update records a vendor-to-category mapping and marks the store dirty.
func (s *VendorStore) Update(vendor, category string) {
	vendor = strings.ToLower(strings.TrimSpace(vendor))
	if vendor == "" || category == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mappings[vendor] == category {
		return
	}
	s.mappings[vendor] = category
	s.dirty = true
}

// Save writes the mappings back to disk if they changed since load.
func (s *VendorStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.path == "" {
		return nil
	}

	file := vendorsFile{Vendors: make(map[string]string, len(s.mappings))}
	for vendor, category := range s.mappings {
		file.Vendors[vendor] = category
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("error marshalling vendor mappings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("error writing vendors file: %w", err)
	}
	s.dirty = false
	return nil
}

// Len returns the number of learned mappings.
func (s *VendorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mappings)
}
