// internal/interfaces/http/handlers/stock.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/distribution-backend/internal/domain/stock"
)

// StockHandler handles stock level and ledger endpoints
type StockHandler struct {
	stockService *stock.Service
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *stock.Service) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Restock handles POST /stock/restock
func (h *StockHandler) Restock(c *gin.Context) {
	var req stock.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.stockService.Restock(&req, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Stock received successfully"})
}

// Ledger handles GET /stock/locations/:location_id/skus/:sku_id/ledger
func (h *StockHandler) Ledger(c *gin.Context) {
	locationID, ok := idParam(c, "location_id")
	if !ok {
		return
	}
	skuID, ok := idParam(c, "sku_id")
	if !ok {
		return
	}

	entries, err := h.stockService.Ledger(locationID, skuID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// Replay handles GET /stock/locations/:location_id/skus/:sku_id/replay.
// It derives the physical quantity from the ledger for reconciliation.
func (h *StockHandler) Replay(c *gin.Context) {
	locationID, ok := idParam(c, "location_id")
	if !ok {
		return
	}
	skuID, ok := idParam(c, "sku_id")
	if !ok {
		return
	}

	quantity, err := h.stockService.ReplayQuantity(locationID, skuID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"location_id":       locationID,
			"sku_id":            skuID,
			"replayed_quantity": quantity,
		},
	})
}
