// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/distribution-backend/internal/domain/catalog"
)

// CatalogHandler handles SKU and price tier endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateSKU handles POST /catalog/skus
func (h *CatalogHandler) CreateSKU(c *gin.Context) {
	var req catalog.CreateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	sku, err := h.catalogService.CreateSKU(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "SKU created successfully",
		"data":    sku,
	})
}

// GetSKUs handles GET /catalog/skus
func (h *CatalogHandler) GetSKUs(c *gin.Context) {
	skus, err := h.catalogService.GetSKUs()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": skus})
}

// GetSKU handles GET /catalog/skus/:id
func (h *CatalogHandler) GetSKU(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	sku, err := h.catalogService.GetSKU(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sku})
}

// UpdateSKU handles PUT /catalog/skus/:id
func (h *CatalogHandler) UpdateSKU(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	sku, err := h.catalogService.UpdateSKU(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "SKU updated successfully",
		"data":    sku,
	})
}

// CreateTier handles POST /catalog/tiers
func (h *CatalogHandler) CreateTier(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tier name is required"})
		return
	}

	tier, err := h.catalogService.CreateTier(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Price tier created successfully",
		"data":    tier,
	})
}

// GetTier handles GET /catalog/tiers/:id
func (h *CatalogHandler) GetTier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	tier, err := h.catalogService.GetTier(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tier})
}

// SetTierPrice handles PUT /catalog/tiers/:id/prices
func (h *CatalogHandler) SetTierPrice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req catalog.SetTierPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	item, err := h.catalogService.SetTierPrice(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tier price set successfully",
		"data":    item,
	})
}
