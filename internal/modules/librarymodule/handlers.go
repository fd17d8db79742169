package librarymodule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora/medialog/internal/modules/resolvermodule"
)

// addEntryRequest is the JSON body for POST /api/library.
type addEntryRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Reference string `json:"reference" binding:"required"`
	Title     string `json:"title" binding:"required"`
	MediaType string `json:"media_type"`
	Status    string `json:"status"`
}

// handleAddEntry adds a title to the user's library. When the title
// looks like a duplicate of an existing entry the response carries the
// conflict instead of a new entry and the client runs the
// disambiguation flow.
func (m *Module) handleAddEntry(c *gin.Context) {
	var body addEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref, err := resolvermodule.ParseReference(body.Reference)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, conflict, err := m.manager.AddEntry(c.Request.Context(), body.UserID, ref, body.Title, body.MediaType, body.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if conflict != nil {
		c.JSON(http.StatusConflict, gin.H{"conflict": conflict})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// handleListEntries lists a user's library.
func (m *Module) handleListEntries(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	entries, err := m.manager.ListEntries(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// handleListConflicts lists a user's pending conflicts.
func (m *Module) handleListConflicts(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conflicts": m.manager.PendingConflicts(userID)})
}

// resolveConflictRequest is the JSON body for resolving a conflict.
type resolveConflictRequest struct {
	Action ConflictAction `json:"action" binding:"required"`
}

// handleResolveConflict applies the user's chosen action to a conflict.
func (m *Module) handleResolveConflict(c *gin.Context) {
	conflictID := c.Param("id")

	var body resolveConflictRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := m.manager.ResolveConflict(c.Request.Context(), conflictID, body.Action)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry, "action": body.Action})
}
