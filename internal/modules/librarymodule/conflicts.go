package librarymodule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/velora/medialog/internal/database"
	"github.com/velora/medialog/internal/events"
	"github.com/velora/medialog/internal/modules/resolvermodule"
)

// ConflictAction is one of the terminal resolutions for a conflict.
type ConflictAction string

const (
	// ActionMerge links the new reference to the existing entry as an
	// alias instead of creating a second entry.
	ActionMerge ConflictAction = "merge"

	// ActionReplace substitutes the existing entry's identity with the
	// new title and reference. Tracking state (progress, rating) stays
	// on the entry.
	ActionReplace ConflictAction = "replace"

	// ActionKeepBoth adds the new item as an independent entry.
	ActionKeepBoth ConflictAction = "keep_both"
)

// LibraryConflict pairs an incoming item against an existing library
// entry that looks like the same title. It is transient: exactly one
// action resolves it and then it is discarded.
type LibraryConflict struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"user_id"`
	NewReference    resolvermodule.Reference `json:"-"`
	NewReferenceStr string                   `json:"new_reference"`
	NewTitle        string                   `json:"new_title"`
	NewMediaType    string                   `json:"new_media_type"`
	NewStatus       string                   `json:"new_status"`
	ExistingEntryID string                   `json:"existing_entry_id"`
	ExistingTitle   string                   `json:"existing_title"`
	Similarity      float64                  `json:"similarity"`
	SeasonMismatch  bool                     `json:"season_mismatch"`
	CreatedAt       time.Time                `json:"created_at"`
}

// conflictRegistry holds pending conflicts between the add request
// that detected them and the user's resolution. Conflicts never touch
// the database; an abandoned one simply ages out with the process.
type conflictRegistry struct {
	mu      sync.Mutex
	pending map[string]*LibraryConflict
}

func newConflictRegistry() *conflictRegistry {
	return &conflictRegistry{pending: make(map[string]*LibraryConflict)}
}

func (r *conflictRegistry) add(c *LibraryConflict) {
	c.NewReferenceStr = c.NewReference.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[c.ID] = c
}

// take removes and returns a pending conflict. The removal happens
// before the action runs so each conflict resolves at most once.
func (r *conflictRegistry) take(id string) (*LibraryConflict, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	return c, ok
}

func (r *conflictRegistry) list(userID string) []*LibraryConflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*LibraryConflict
	for _, c := range r.pending {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// PendingConflicts returns a user's unresolved conflicts.
func (m *Manager) PendingConflicts(userID string) []*LibraryConflict {
	return m.conflicts.list(userID)
}

// ResolveConflict applies the user's chosen action to a pending
// conflict. Exactly one of the actions fires; afterwards the conflict
// is gone regardless of which one.
func (m *Manager) ResolveConflict(ctx context.Context, conflictID string, action ConflictAction) (*database.LibraryEntry, error) {
	conflict, ok := m.conflicts.take(conflictID)
	if !ok {
		return nil, fmt.Errorf("conflict not found: %s", conflictID)
	}

	var (
		entry *database.LibraryEntry
		err   error
	)
	switch action {
	case ActionMerge:
		entry, err = m.mergeConflict(ctx, conflict)
	case ActionReplace:
		entry, err = m.replaceConflict(ctx, conflict)
	case ActionKeepBoth:
		entry, err = m.createEntry(ctx, conflict.UserID, conflict.NewReference, conflict.NewTitle, conflict.NewMediaType, conflict.NewStatus)
	default:
		err = fmt.Errorf("unknown conflict action: %s", action)
	}
	if err != nil {
		return nil, err
	}

	m.logger.Info("library conflict resolved", "conflict_id", conflictID, "action", string(action))
	if m.eventBus != nil {
		m.eventBus.Publish(events.Event{
			Type:    events.EventLibraryConflictClosed,
			Source:  "system.library",
			Title:   "Conflict resolved",
			Message: conflict.NewTitle,
			Data: map[string]interface{}{
				"conflict_id": conflictID,
				"action":      string(action),
			},
		})
	}
	return entry, nil
}

// mergeConflict records the new reference as an alias of the existing
// entry. Provider mappings are untouched: they are keyed by reference,
// and the alias keeps that reference alive.
func (m *Manager) mergeConflict(ctx context.Context, conflict *LibraryConflict) (*database.LibraryEntry, error) {
	var existing database.LibraryEntry
	if err := m.db.WithContext(ctx).Where("id = ?", conflict.ExistingEntryID).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("existing entry not found: %w", err)
	}

	alias := &database.ReferenceAlias{
		EntryID:   existing.ID,
		Reference: conflict.NewReference.String(),
	}
	if err := m.db.WithContext(ctx).Create(alias).Error; err != nil {
		return nil, fmt.Errorf("failed to create reference alias: %w", err)
	}
	return &existing, nil
}

// replaceConflict swaps the existing entry's identity for the new one.
// Progress and rating stay with the entry row.
func (m *Manager) replaceConflict(ctx context.Context, conflict *LibraryConflict) (*database.LibraryEntry, error) {
	var existing database.LibraryEntry
	if err := m.db.WithContext(ctx).Where("id = ?", conflict.ExistingEntryID).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("existing entry not found: %w", err)
	}

	existing.Reference = conflict.NewReference.String()
	existing.Title = conflict.NewTitle
	if conflict.NewMediaType != "" {
		existing.MediaType = conflict.NewMediaType
	}
	if err := m.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to replace entry: %w", err)
	}
	return &existing, nil
}
