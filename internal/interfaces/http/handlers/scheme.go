// internal/interfaces/http/handlers/scheme.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/distribution-backend/internal/domain/scheme"
)

// SchemeHandler handles promotional scheme endpoints
type SchemeHandler struct {
	schemeService *scheme.Service
}

// NewSchemeHandler creates a new scheme handler
func NewSchemeHandler(schemeService *scheme.Service) *SchemeHandler {
	return &SchemeHandler{schemeService: schemeService}
}

// Create handles POST /schemes
func (h *SchemeHandler) Create(c *gin.Context) {
	var req scheme.CreateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	sch, err := h.schemeService.Create(&req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Scheme created successfully",
		"data":    sch,
	})
}

// List handles GET /schemes
func (h *SchemeHandler) List(c *gin.Context) {
	schemes, err := h.schemeService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": schemes})
}

// Get handles GET /schemes/:id
func (h *SchemeHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	sch, err := h.schemeService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sch})
}

// Stop handles POST /schemes/:id/stop
func (h *SchemeHandler) Stop(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	sch, err := h.schemeService.Stop(id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheme stopped successfully",
		"data":    sch,
	})
}

// Reactivate handles POST /schemes/:id/reactivate
func (h *SchemeHandler) Reactivate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		EndDate time.Time `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New end date is required"})
		return
	}

	sch, err := h.schemeService.Reactivate(id, req.EndDate, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheme reactivated successfully",
		"data":    sch,
	})
}
