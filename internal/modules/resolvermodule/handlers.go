package resolvermodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// resolveRequest is the JSON body for POST /api/resolve.
type resolveRequest struct {
	Reference string `json:"reference" binding:"required"`
	Provider  string `json:"provider"`
	Category  string `json:"category"`
	Title     string `json:"title" binding:"required"`
	TypeHint  string `json:"type_hint"`
	FetchInfo bool   `json:"fetch_info"`
	Fallback  bool   `json:"fallback"`
}

// handleResolve resolves a reference to a provider-native id.
func (m *Module) handleResolve(c *gin.Context) {
	var body resolveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref, err := ParseReference(body.Reference)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := m.resolver.Resolve(c.Request.Context(), Request{
		Reference: ref,
		Provider:  body.Provider,
		Category:  body.Category,
		Title:     body.Title,
		TypeHint:  body.TypeHint,
		FetchInfo: body.FetchInfo,
		Fallback:  body.Fallback,
	})
	if err != nil {
		status, payload := resolveErrorResponse(err)
		c.JSON(status, payload)
		return
	}

	c.JSON(http.StatusOK, res)
}

// resolveErrorResponse maps resolution failures onto API responses. A
// failed resolution is a "could not find this title" answer with a
// manual-search offer, not an internal error.
func resolveErrorResponse(err error) (int, gin.H) {
	var exhausted *ExhaustedError
	switch {
	case errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.As(err, &exhausted):
		return http.StatusNotFound, gin.H{
			"error":           "could not find this title on any source",
			"tried_providers": exhausted.Tried,
			"manual_search":   true,
		}
	case errors.Is(err, ErrNoAcceptableMatch):
		return http.StatusNotFound, gin.H{
			"error":         "could not find this title on this source",
			"manual_search": true,
		}
	default:
		var se *SearchError
		if errors.As(err, &se) {
			return http.StatusNotFound, gin.H{
				"error":         "could not find this title on this source",
				"provider":      se.Provider,
				"manual_search": true,
			}
		}
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
}

// confirmRequest is the JSON body for POST /api/resolve/confirm. It is
// used both to accept the best match and to pick one of the ranked
// alternatives; the client sends whichever candidate the user chose.
type confirmRequest struct {
	Reference string `json:"reference" binding:"required"`
	Provider  string `json:"provider" binding:"required"`
	NativeID  string `json:"native_id" binding:"required"`
	Title     string `json:"title"`
	UserID    string `json:"user_id" binding:"required"`
}

// handleConfirm upgrades a resolution to a human-verified mapping.
func (m *Module) handleConfirm(c *gin.Context) {
	var body confirmRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref, err := ParseReference(body.Reference)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := m.resolver.Confirm(c.Request.Context(), ref, body.Provider, body.NativeID, body.Title, body.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference": ref.String(),
		"provider":  body.Provider,
		"native_id": body.NativeID,
		"verified":  true,
	})
}

// handleListMappings returns all provider mappings for a reference.
func (m *Module) handleListMappings(c *gin.Context) {
	ref := Reference{Source: c.Param("source"), ID: c.Param("id")}
	if ref.Source == "" || ref.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidReference.Error()})
		return
	}

	store := NewGormMappingStore(m.db)
	mappings, err := store.List(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference": ref.String(),
		"mappings":  mappings,
	})
}

// handleDeleteMapping removes one mapping. This backs the explicit
// delete action in the management UI; mappings are never deleted
// automatically.
func (m *Module) handleDeleteMapping(c *gin.Context) {
	ref := Reference{Source: c.Param("source"), ID: c.Param("id")}
	provider := c.Param("provider")
	if ref.Source == "" || ref.ID == "" || provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference and provider are required"})
		return
	}

	store := NewGormMappingStore(m.db)
	if err := store.Delete(c.Request.Context(), ref, provider); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	m.cache.Delete(ref, provider)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// handleProviderTable returns the ranking table for a media category.
func (m *Module) handleProviderTable(c *gin.Context) {
	category := c.Param("category")

	table, ok := m.rankings.Table(category)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
		return
	}

	primary, err := m.rankings.PrimaryProvider(category)
	if err != nil {
		primary = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"primary":  primary,
		"table":    table,
	})
}
