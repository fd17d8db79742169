package resolvermodule

import (
	"fmt"

	"github.com/velora/medialog/internal/config"
)

// ProviderRankings holds the per-category ordered provider tables. The
// tables are configuration loaded at startup; working/broken status is
// flipped by editing the config and redeploying, never inferred at
// runtime.
type ProviderRankings struct {
	tables map[string][]config.ProviderEntry
}

// NewProviderRankings builds rankings from the configured tables.
func NewProviderRankings(tables map[string][]config.ProviderEntry) *ProviderRankings {
	copied := make(map[string][]config.ProviderEntry, len(tables))
	for category, entries := range tables {
		copied[category] = append([]config.ProviderEntry(nil), entries...)
	}
	return &ProviderRankings{tables: copied}
}

// Categories returns the configured media categories.
func (p *ProviderRankings) Categories() []string {
	categories := make([]string, 0, len(p.tables))
	for c := range p.tables {
		categories = append(categories, c)
	}
	return categories
}

// Table returns the raw ranking table for a category.
func (p *ProviderRankings) Table(category string) ([]config.ProviderEntry, bool) {
	entries, ok := p.tables[category]
	return entries, ok
}

// PrimaryProvider returns the first working provider for a category.
func (p *ProviderRankings) PrimaryProvider(category string) (string, error) {
	for _, entry := range p.tables[category] {
		if entry.Working {
			return entry.Name, nil
		}
	}
	return "", fmt.Errorf("no working provider for category %q", category)
}

// FallbackChain returns the working providers for a category in ranking
// order. When preferred names a working provider in the table it is
// promoted to the front: callers use this after a source fails even
// though metadata succeeded, so the already-confirmed provider is
// retried first.
func (p *ProviderRankings) FallbackChain(category, preferred string) []string {
	var chain []string
	preferredWorking := false

	for _, entry := range p.tables[category] {
		if !entry.Working {
			continue
		}
		if entry.Name == preferred {
			preferredWorking = true
			continue
		}
		chain = append(chain, entry.Name)
	}

	if preferredWorking {
		chain = append([]string{preferred}, chain...)
	}
	return chain
}
