// internal/interfaces/http/handlers/distributor.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/distribution-backend/internal/domain/distributor"
)

// DistributorHandler handles distributor and store endpoints
type DistributorHandler struct {
	distributorService *distributor.Service
}

// NewDistributorHandler creates a new distributor handler
func NewDistributorHandler(distributorService *distributor.Service) *DistributorHandler {
	return &DistributorHandler{distributorService: distributorService}
}

// Onboard handles POST /distributors
func (h *DistributorHandler) Onboard(c *gin.Context) {
	var req distributor.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	dist, err := h.distributorService.Onboard(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Distributor onboarded successfully",
		"data":    dist,
	})
}

// List handles GET /distributors
func (h *DistributorHandler) List(c *gin.Context) {
	distributors, err := h.distributorService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": distributors})
}

// Get handles GET /distributors/:id
func (h *DistributorHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	dist, err := h.distributorService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dist})
}

// CreateStore handles POST /stores
func (h *DistributorHandler) CreateStore(c *gin.Context) {
	var req distributor.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, err := h.distributorService.CreateStore(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"data":    store,
	})
}

// GetStore handles GET /stores/:id
func (h *DistributorHandler) GetStore(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	store, err := h.distributorService.GetStore(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": store})
}
