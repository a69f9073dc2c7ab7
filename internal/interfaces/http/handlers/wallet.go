// internal/interfaces/http/handlers/wallet.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/distribution-backend/internal/domain/wallet"
)

// WalletHandler handles wallet ledger endpoints
type WalletHandler struct {
	walletService *wallet.Service
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService *wallet.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// Recharge handles POST /wallets/recharge
func (h *WalletHandler) Recharge(c *gin.Context) {
	var req wallet.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	txn, err := h.walletService.Recharge(&req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Wallet recharged successfully",
		"data":    txn,
	})
}

// Balance handles GET /wallets/:account_type/:account_id/balance
func (h *WalletHandler) Balance(c *gin.Context) {
	accountType := wallet.AccountType(c.Param("account_type"))
	accountID, ok := idParam(c, "account_id")
	if !ok {
		return
	}

	balance, err := h.walletService.CachedBalance(accountType, accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"account_type": accountType,
			"account_id":   accountID,
			"balance":      balance,
		},
	})
}

// Statement handles GET /wallets/:account_type/:account_id/statement
func (h *WalletHandler) Statement(c *gin.Context) {
	accountType := wallet.AccountType(c.Param("account_type"))
	accountID, ok := idParam(c, "account_id")
	if !ok {
		return
	}

	transactions, err := h.walletService.Statement(accountType, accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transactions})
}

// Replay handles GET /wallets/:account_type/:account_id/replay.
// It derives the balance from the transaction history for reconciliation
// against the cached value.
func (h *WalletHandler) Replay(c *gin.Context) {
	accountType := wallet.AccountType(c.Param("account_type"))
	accountID, ok := idParam(c, "account_id")
	if !ok {
		return
	}

	balance, err := h.walletService.ReplayBalance(accountType, accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"account_type":     accountType,
			"account_id":       accountID,
			"replayed_balance": balance,
		},
	})
}
