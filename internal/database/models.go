package database

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // Don't include password in JSON responses
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LibraryEntry is one tracked title in a user's library. The Reference
// is the canonical source:id identifier the entry was added from.
type LibraryEntry struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"index;not null" json:"user_id"`
	Reference string     `gorm:"index;not null" json:"reference"`
	Title     string     `gorm:"not null" json:"title"`
	MediaType string     `json:"media_type,omitempty"` // anime, movie, tv, manga, game
	Status    string     `json:"status,omitempty"`     // watching, completed, planned, dropped
	Progress  int        `json:"progress"`
	Rating    *float64   `json:"rating,omitempty"`
	Poster    string     `json:"poster,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ReferenceAlias links an additional canonical reference to an existing
// library entry. Created when the user merges a suspected duplicate
// instead of adding a second entry.
type ReferenceAlias struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EntryID   string    `gorm:"index;not null" json:"entry_id"`
	Reference string    `gorm:"uniqueIndex;not null" json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderMapping records that a canonical reference resolves to a
// specific provider's native id. At most one row exists per
// (reference, provider) pair; a later write for the same pair replaces
// the previous one. VerifiedBy is null for auto-detected mappings and
// holds the confirming user's id once a human has verified the match.
type ProviderMapping struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Reference       string    `gorm:"uniqueIndex:idx_reference_provider;not null" json:"reference"`
	Provider        string    `gorm:"uniqueIndex:idx_reference_provider;not null" json:"provider"`
	ProviderNativeID string   `gorm:"not null" json:"provider_native_id"`
	ProviderTitle   string    `json:"provider_title"`
	Confidence      float64   `json:"confidence"`
	VerifiedBy      *string   `json:"verified_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Verified reports whether a human confirmed this mapping.
func (m *ProviderMapping) Verified() bool {
	return m.VerifiedBy != nil
}
