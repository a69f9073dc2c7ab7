// internal/interfaces/http/handlers/transfer.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/distribution-backend/internal/domain/stock"
)

// TransferHandler handles plant-to-store transfer endpoints
type TransferHandler struct {
	transferEngine *stock.TransferEngine
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferEngine *stock.TransferEngine) *TransferHandler {
	return &TransferHandler{transferEngine: transferEngine}
}

// Create handles POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	var req stock.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	transfer, err := h.transferEngine.CreateTransfer(&req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Transfer created successfully",
		"data":    transfer,
	})
}

// List handles GET /transfers
func (h *TransferHandler) List(c *gin.Context) {
	transfers, err := h.transferEngine.ListTransfers()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transfers})
}

// Get handles GET /transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	transfer, err := h.transferEngine.GetTransfer(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transfer})
}

// Deliver handles POST /transfers/:id/deliver
func (h *TransferHandler) Deliver(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.transferEngine.MarkDelivered(id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer marked as delivered"})
}
