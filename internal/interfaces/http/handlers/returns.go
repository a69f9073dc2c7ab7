// internal/interfaces/http/handlers/returns.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/distribution-backend/internal/domain/order"
)

// ReturnHandler handles order return endpoints
type ReturnHandler struct {
	returnEngine *order.ReturnEngine
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(returnEngine *order.ReturnEngine) *ReturnHandler {
	return &ReturnHandler{returnEngine: returnEngine}
}

// Initiate handles POST /returns
func (h *ReturnHandler) Initiate(c *gin.Context) {
	var req order.InitiateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ret, err := h.returnEngine.InitiateReturn(&req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Return initiated successfully",
		"data":    ret,
	})
}

// Confirm handles POST /returns/:id/confirm
func (h *ReturnHandler) Confirm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnEngine.ConfirmReturn(id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return confirmed successfully",
		"data":    ret,
	})
}

// Get handles GET /returns/:id
func (h *ReturnHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnEngine.GetReturn(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ret})
}

// List handles GET /returns with an optional order_id filter
func (h *ReturnHandler) List(c *gin.Context) {
	var orderID *uint
	if raw := c.Query("order_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order_id parameter"})
			return
		}
		v := uint(id)
		orderID = &v
	}

	returns, err := h.returnEngine.ListReturns(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": returns})
}
