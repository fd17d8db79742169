package librarymodule

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velora/medialog/internal/database"
	"github.com/velora/medialog/internal/modules/resolvermodule"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.LibraryEntry{}, &database.ReferenceAlias{}))

	return NewManager(db, nil, nil, 0.3, 0.9)
}

func mustRef(t *testing.T, s string) resolvermodule.Reference {
	t.Helper()
	ref, err := resolvermodule.ParseReference(s)
	require.NoError(t, err)
	return ref
}

func TestAddEntry_NoConflict(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	entry, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:500"), "Attack on Titan", "anime", "")
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.NotNil(t, entry)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "catalog:500", entry.Reference)
	assert.Equal(t, "planned", entry.Status, "empty status defaults to planned")

	titles, err := m.ListTitles(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, titles, 1)
}

func TestAddEntry_DissimilarTitlesCoexist(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	_, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:1"), "Death Note", "anime", "completed")
	require.NoError(t, err)
	require.Nil(t, conflict)

	entry, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:2"), "Sword Art Online", "anime", "watching")
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.NotNil(t, entry)
}

func TestAddEntry_SeasonConflict(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	_, _, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:20"), "Naruto", "anime", "completed")
	require.NoError(t, err)

	entry, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:1735"), "Naruto Season 2", "anime", "")
	require.NoError(t, err)
	assert.Nil(t, entry, "no entry is created while the conflict is pending")
	require.NotNil(t, conflict)

	assert.Equal(t, "Naruto", conflict.ExistingTitle)
	assert.InDelta(t, 6.0/15.0, conflict.Similarity, 0.0001)
	assert.True(t, conflict.SeasonMismatch)
	assert.Equal(t, "catalog:1735", conflict.NewReferenceStr)

	pending := m.PendingConflicts("user-1")
	require.Len(t, pending, 1)
	assert.Equal(t, conflict.ID, pending[0].ID)
}

func TestAddEntry_ConflictScopedPerUser(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	_, _, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:20"), "Naruto", "anime", "")
	require.NoError(t, err)

	// Another user's library is not consulted.
	entry, conflict, err := m.AddEntry(ctx, "user-2", mustRef(t, "catalog:1735"), "Naruto Season 2", "anime", "")
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.NotNil(t, entry)
}

func TestResolveConflict_Merge(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	existing, _, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:20"), "Naruto", "anime", "watching")
	require.NoError(t, err)

	_, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:1735"), "Naruto Season 2", "anime", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	entry, err := m.ResolveConflict(ctx, conflict.ID, ActionMerge)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, entry.ID)

	// Merge records the new reference as an alias of the existing entry.
	var alias database.ReferenceAlias
	require.NoError(t, m.db.Where("reference = ?", "catalog:1735").First(&alias).Error)
	assert.Equal(t, existing.ID, alias.EntryID)

	// Still a single library entry
	titles, err := m.ListTitles(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, titles, 1)
}

func TestResolveConflict_Replace(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	existing, _, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:20"), "Naruto", "anime", "watching")
	require.NoError(t, err)

	// Simulate accumulated tracking state.
	require.NoError(t, m.db.Model(&database.LibraryEntry{}).
		Where("id = ?", existing.ID).Update("progress", 42).Error)

	_, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:1735"), "Naruto Season 2", "anime", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	entry, err := m.ResolveConflict(ctx, conflict.ID, ActionReplace)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, entry.ID)
	assert.Equal(t, "Naruto Season 2", entry.Title)
	assert.Equal(t, "catalog:1735", entry.Reference)
	assert.Equal(t, 42, entry.Progress, "progress survives an identity swap")
}

func TestResolveConflict_KeepBoth(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	_, _, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:20"), "Naruto", "anime", "")
	require.NoError(t, err)

	_, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:1735"), "Naruto Season 2", "anime", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	entry, err := m.ResolveConflict(ctx, conflict.ID, ActionKeepBoth)
	require.NoError(t, err)
	assert.Equal(t, "Naruto Season 2", entry.Title)

	titles, err := m.ListTitles(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, titles, 2)
}

func TestResolveConflict_Terminal(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	_, _, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:20"), "Naruto", "anime", "")
	require.NoError(t, err)

	_, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:1735"), "Naruto Season 2", "anime", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	_, err = m.ResolveConflict(ctx, conflict.ID, ActionKeepBoth)
	require.NoError(t, err)

	// A conflict resolves at most once.
	_, err = m.ResolveConflict(ctx, conflict.ID, ActionMerge)
	assert.Error(t, err)
	assert.Empty(t, m.PendingConflicts("user-1"))
}

func TestResolveConflict_UnknownAction(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	_, _, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:20"), "Naruto", "anime", "")
	require.NoError(t, err)

	_, conflict, err := m.AddEntry(ctx, "user-1", mustRef(t, "catalog:1735"), "Naruto Season 2", "anime", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	_, err = m.ResolveConflict(ctx, conflict.ID, ConflictAction("discard"))
	assert.Error(t, err)
}
