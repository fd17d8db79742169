package librarymodule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/velora/medialog/internal/database"
	"github.com/velora/medialog/internal/events"
	"github.com/velora/medialog/internal/modules/resolvermodule"
)

// LibraryTitle is the narrow view of an entry the duplicate detector
// needs: just enough to compare an incoming title against the library.
type LibraryTitle struct {
	EntryID   string `json:"entry_id"`
	Title     string `json:"title"`
	MediaType string `json:"media_type"`
	Status    string `json:"status"`
}

// Manager owns library entries and the duplicate-detection workflow
// around adding new ones.
type Manager struct {
	db        *gorm.DB
	eventBus  events.EventBus
	logger    hclog.Logger
	conflicts *conflictRegistry

	// detectFloor is the similarity above which an incoming title is
	// surfaced as a suspected duplicate; matchFloor is the similarity
	// above which two titles are considered near-identical.
	detectFloor float64
	matchFloor  float64
}

// NewManager creates a library manager.
func NewManager(db *gorm.DB, bus events.EventBus, logger hclog.Logger, detectFloor, matchFloor float64) *Manager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Manager{
		db:          db,
		eventBus:    bus,
		logger:      logger.Named("library"),
		conflicts:   newConflictRegistry(),
		detectFloor: detectFloor,
		matchFloor:  matchFloor,
	}
}

// ListTitles returns the titles in a user's library.
func (m *Manager) ListTitles(ctx context.Context, userID string) ([]LibraryTitle, error) {
	var entries []database.LibraryEntry
	err := m.db.WithContext(ctx).
		Select("id", "title", "media_type", "status").
		Where("user_id = ?", userID).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list library titles: %w", err)
	}

	titles := make([]LibraryTitle, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, LibraryTitle{
			EntryID:   e.ID,
			Title:     e.Title,
			MediaType: e.MediaType,
			Status:    e.Status,
		})
	}
	return titles, nil
}

// ListEntries returns a user's full library entries.
func (m *Manager) ListEntries(ctx context.Context, userID string) ([]database.LibraryEntry, error) {
	var entries []database.LibraryEntry
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list library entries: %w", err)
	}
	return entries, nil
}

// AddEntry adds a title to a user's library. When an existing entry
// looks like the same title, no entry is created; the suspected
// duplicate comes back as a LibraryConflict for the user to resolve.
func (m *Manager) AddEntry(ctx context.Context, userID string, ref resolvermodule.Reference, title, mediaType, status string) (*database.LibraryEntry, *LibraryConflict, error) {
	if title == "" {
		return nil, nil, fmt.Errorf("title is required")
	}

	conflict, err := m.detectConflict(ctx, userID, ref, title, mediaType, status)
	if err != nil {
		return nil, nil, err
	}
	if conflict != nil {
		m.conflicts.add(conflict)
		m.logger.Info("library conflict detected",
			"user_id", userID, "title", title,
			"existing", conflict.ExistingTitle, "similarity", conflict.Similarity,
			"season_mismatch", conflict.SeasonMismatch)

		if m.eventBus != nil {
			m.eventBus.Publish(events.Event{
				Type:    events.EventLibraryConflictFound,
				Source:  "system.library",
				Title:   "Possible duplicate",
				Message: title,
				Data: map[string]interface{}{
					"conflict_id":     conflict.ID,
					"existing_entry":  conflict.ExistingEntryID,
					"similarity":      conflict.Similarity,
					"season_mismatch": conflict.SeasonMismatch,
				},
			})
		}
		return nil, conflict, nil
	}

	entry, err := m.createEntry(ctx, userID, ref, title, mediaType, status)
	if err != nil {
		return nil, nil, err
	}
	return entry, nil, nil
}

// detectConflict compares the incoming title against the user's library
// and returns a conflict for the closest match at or above the
// detection floor.
func (m *Manager) detectConflict(ctx context.Context, userID string, ref resolvermodule.Reference, title, mediaType, status string) (*LibraryConflict, error) {
	existing, err := m.ListTitles(ctx, userID)
	if err != nil {
		return nil, err
	}

	var best *LibraryTitle
	bestScore := 0.0
	for i := range existing {
		score := resolvermodule.Similarity(title, existing[i].Title)
		if score >= m.detectFloor && score > bestScore {
			best = &existing[i]
			bestScore = score
		}
	}
	if best == nil {
		return nil, nil
	}

	// Same declared type but titles that are not near-identical usually
	// means a different season or format of the same franchise.
	seasonMismatch := best.MediaType != "" && best.MediaType == mediaType && bestScore < m.matchFloor

	return &LibraryConflict{
		ID:              uuid.NewString(),
		UserID:          userID,
		NewReference:    ref,
		NewTitle:        title,
		NewMediaType:    mediaType,
		NewStatus:       status,
		ExistingEntryID: best.EntryID,
		ExistingTitle:   best.Title,
		Similarity:      bestScore,
		SeasonMismatch:  seasonMismatch,
		CreatedAt:       time.Now(),
	}, nil
}

func (m *Manager) createEntry(ctx context.Context, userID string, ref resolvermodule.Reference, title, mediaType, status string) (*database.LibraryEntry, error) {
	if status == "" {
		status = "planned"
	}
	entry := &database.LibraryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Reference: ref.String(),
		Title:     title,
		MediaType: mediaType,
		Status:    status,
	}
	if err := m.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create library entry: %w", err)
	}

	if m.eventBus != nil {
		m.eventBus.Publish(events.Event{
			Type:    events.EventLibraryEntryAdded,
			Source:  "system.library",
			Title:   "Added to library",
			Message: title,
			Data: map[string]interface{}{
				"entry_id":  entry.ID,
				"user_id":   userID,
				"reference": entry.Reference,
			},
		})
	}
	return entry, nil
}
