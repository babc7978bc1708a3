package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/ranking"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/utils"
)

// Catalog is the engine surface the handlers drive.
type Catalog interface {
	Current() (ranking.Result, bool)
	SetQuery(query string) error
	Lookup(itemID string) (types.LaunchItem, bool)
	Counter(itemID string) types.Counter
	Hidden(itemID string) bool
	RecheckPermission() bool

	Activate(ctx context.Context, itemID string) error
	SecondaryActivate(ctx context.Context, itemID string) error
	ToggleDeprioritize(ctx context.Context, itemID string) (bool, error)
	ToggleIgnoreNotifications(ctx context.Context, itemID string) (bool, error)
	Rename(ctx context.Context, itemID, label string) error
	Hide(ctx context.Context, itemID string) error
	Unhide(ctx context.Context, itemID string) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	catalog Catalog
	clients func() int
}

// NewHandlers creates a new handler set. clients reports connected stream
// clients for the health endpoint and may be nil.
func NewHandlers(catalog Catalog, clients func() int) *Handlers {
	if clients == nil {
		clients = func() int { return 0 }
	}
	return &Handlers{catalog: catalog, clients: clients}
}

// Register mounts every endpoint on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	r.GET("/catalog", h.GetCatalog)
	r.PUT("/catalog/query", h.SetQuery)

	items := r.Group("/catalog/items/:id")
	items.GET("", h.GetItem)
	items.POST("/activate", h.Activate)
	items.POST("/secondary", h.SecondaryActivate)
	items.POST("/deprioritize", h.ToggleDeprioritize)
	items.POST("/ignore-notifications", h.ToggleIgnoreNotifications)
	items.PUT("/label", h.Rename)
	items.POST("/hide", h.Hide)
	items.DELETE("/hide", h.Unhide)

	r.POST("/notifications/recheck", h.RecheckPermission)
}

// Health handles health check
func (h *Handlers) Health(c *gin.Context) {
	_, loaded := h.catalog.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        "catalogd",
		"catalog_loaded": loaded,
		"stream_clients": h.clients(),
	})
}

// GetCatalog returns the latest ranked result
func (h *Handlers) GetCatalog(c *gin.Context) {
	result, ok := h.catalog.Current()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SetQuery replaces the filter query
func (h *Handlers) SetQuery(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := utils.ValidateQuery(req.Query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.SetQuery(req.Query); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": req.Query})
}

// GetItem returns one item of the latest catalog
func (h *Handlers) GetItem(c *gin.Context) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	item, found := h.catalog.Lookup(itemID)
	if !found {
		respondError(c, types.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":    item,
		"counter": h.catalog.Counter(itemID),
		"hidden":  h.catalog.Hidden(itemID),
	})
}

// Activate launches the primary target of an item
func (h *Handlers) Activate(c *gin.Context) {
	h.act(c, h.catalog.Activate)
}

// SecondaryActivate runs the secondary action of an item
func (h *Handlers) SecondaryActivate(c *gin.Context) {
	h.act(c, h.catalog.SecondaryActivate)
}

// Hide soft-deletes an item
func (h *Handlers) Hide(c *gin.Context) {
	h.act(c, h.catalog.Hide)
}

// Unhide restores a hidden item
func (h *Handlers) Unhide(c *gin.Context) {
	h.act(c, h.catalog.Unhide)
}

// ToggleDeprioritize flips the deprioritized state of an item
func (h *Handlers) ToggleDeprioritize(c *gin.Context) {
	h.toggle(c, "deprioritized", h.catalog.ToggleDeprioritize)
}

// ToggleIgnoreNotifications flips notification ordering for an application
func (h *Handlers) ToggleIgnoreNotifications(c *gin.Context) {
	h.toggle(c, "ignore_notifications", h.catalog.ToggleIgnoreNotifications)
}

// Rename sets or clears the label override of an item
func (h *Handlers) Rename(c *gin.Context) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	var req struct {
		Label string `json:"label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := utils.ValidateLabel(req.Label); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.Rename(c.Request.Context(), itemID, req.Label); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item_id": itemID, "label": req.Label})
}

// RecheckPermission samples the notification permission again
func (h *Handlers) RecheckPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"permission": h.catalog.RecheckPermission()})
}

func (h *Handlers) act(c *gin.Context, fn func(context.Context, string) error) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item_id": itemID})
}

func (h *Handlers) toggle(c *gin.Context, field string, fn func(context.Context, string) (bool, error)) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	state, err := fn(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item_id": itemID, field: state})
}

// itemParam reads and validates the :id parameter, responding on failure.
func itemParam(c *gin.Context) (string, bool) {
	itemID := c.Param("id")
	if err := utils.ValidateItemID(itemID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return itemID, true
}

// respondError maps domain errors onto status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrEmptyID):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrUnsupported):
		status = http.StatusConflict
	case errors.Is(err, types.ErrNoTarget):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
