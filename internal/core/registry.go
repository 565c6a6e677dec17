package core

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ExtractOptions tunes table extraction. Sources ignore options that do not
// apply to them.
type ExtractOptions struct {
	RowTolerance float64 // max vertical distance, in points, between glyphs of one line
	CellGap      float64 // horizontal gap, in ems, that starts a new cell
	MinColumns   int     // lines with fewer cells are not part of the table
}

// SourceInfo describes a document format.
type SourceInfo struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Extensions []string `json:"extensions"`
	Magic      []byte   `json:"-"` // leading bytes identifying the format, if any
}

// SourceDefinition binds a format to its extractor.
type SourceDefinition struct {
	Info SourceInfo
	New  func(opts ExtractOptions, logger *slog.Logger) TableExtractor
}

var (
	registry   = make(map[string]SourceDefinition)
	registryMu sync.RWMutex
)

// Register adds a source definition to the registry.
// Panics if a source with the same key is already registered.
func Register(def SourceDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("source already registered: %s", def.Info.Key))
	}
	if def.New == nil {
		panic(fmt.Sprintf("source %s has no extractor", def.Info.Key))
	}

	for i, ext := range def.Info.Extensions {
		def.Info.Extensions[i] = strings.ToLower(ext)
	}

	registry[def.Info.Key] = def
}

// Get returns a source definition by key.
// Returns false if not found.
func Get(key string) (SourceDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered sources sorted by key.
func All() []SourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]SourceDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Detect picks the source for a document: magic bytes win over the file
// extension.
func Detect(name string, data []byte) (SourceDefinition, error) {
	all := All()

	for _, def := range all {
		if len(def.Info.Magic) > 0 && bytes.HasPrefix(data, def.Info.Magic) {
			return def, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		for _, def := range all {
			for _, e := range def.Info.Extensions {
				if e == ext {
					return def, nil
				}
			}
		}
	}

	return SourceDefinition{}, fmt.Errorf("unsupported document %q", name)
}

// SourceCount returns the number of registered sources.
func SourceCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered sources.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]SourceDefinition)
}
