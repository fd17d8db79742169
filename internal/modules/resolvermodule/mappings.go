package resolvermodule

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velora/medialog/internal/database"
)

// MappingStore is the durable tier of the resolution cache. At most one
// mapping exists per (reference, provider) pair; Put has
// create-or-update semantics on that pair.
type MappingStore interface {
	// Get returns the mapping for a reference on a provider, or
	// (nil, nil) when none exists.
	Get(ctx context.Context, ref Reference, provider string) (*database.ProviderMapping, error)

	// Put creates or replaces the mapping for (mapping.Reference,
	// mapping.Provider).
	Put(ctx context.Context, mapping *database.ProviderMapping) error

	// Delete removes the mapping for a reference on a provider.
	Delete(ctx context.Context, ref Reference, provider string) error

	// List returns all mappings for a reference across providers.
	List(ctx context.Context, ref Reference) ([]database.ProviderMapping, error)
}

// GormMappingStore persists provider mappings through gorm.
type GormMappingStore struct {
	db *gorm.DB
}

// NewGormMappingStore creates a mapping store on the given database.
func NewGormMappingStore(db *gorm.DB) *GormMappingStore {
	return &GormMappingStore{db: db}
}

// Get returns the stored mapping, or (nil, nil) when absent.
func (s *GormMappingStore) Get(ctx context.Context, ref Reference, provider string) (*database.ProviderMapping, error) {
	var mapping database.ProviderMapping
	err := s.db.WithContext(ctx).
		Where("reference = ? AND provider = ?", ref.String(), provider).
		First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	return &mapping, nil
}

// Put upserts a mapping keyed on (reference, provider).
func (s *GormMappingStore) Put(ctx context.Context, mapping *database.ProviderMapping) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "reference"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider_native_id", "provider_title", "confidence", "verified_by", "updated_at",
			}),
		}).
		Create(mapping).Error
	if err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

// Delete removes a mapping. Deleting a missing mapping is not an error.
func (s *GormMappingStore) Delete(ctx context.Context, ref Reference, provider string) error {
	err := s.db.WithContext(ctx).
		Where("reference = ? AND provider = ?", ref.String(), provider).
		Delete(&database.ProviderMapping{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	return nil
}

// List returns every provider mapping recorded for a reference.
func (s *GormMappingStore) List(ctx context.Context, ref Reference) ([]database.ProviderMapping, error) {
	var mappings []database.ProviderMapping
	err := s.db.WithContext(ctx).
		Where("reference = ?", ref.String()).
		Order("provider").
		Find(&mappings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return mappings, nil
}
