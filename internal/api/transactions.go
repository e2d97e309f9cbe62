package api

import (
	"errors"   // Error taxonomy checks
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"github.com/Aditeya/smpl-payments/internal/domain" // Importing domain models
	"github.com/Aditeya/smpl-payments/internal/ledger" // Ledger engine
	"github.com/Aditeya/smpl-payments/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Arbitrary-precision decimals
)

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToUsername string          `json:"to_username" binding:"required"` // Target username
	Amount     decimal.Decimal `json:"amount"`                         // Transfer amount
}

// TransferHandler moves funds from the authenticated user's wallet to
// another user's wallet, atomically
func TransferHandler(l Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromUserID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TransferRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		entry, err := l.Transfer(c.Request.Context(), fromUserID, req.ToUsername, req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, ledger.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
			case errors.Is(err, ledger.ErrSelfTransfer):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot transfer to yourself"})
			case errors.Is(err, ledger.ErrInsufficientFunds):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
			default:
				writeServerError(c, err)
			}
			return
		}
		// Both sides' cached balances and histories are stale now.
		if rdb != nil {
			ids := []uint{fromUserID}
			if to, lookupErr := l.GetUserByUsername(c.Request.Context(), req.ToUsername); lookupErr == nil {
				ids = append(ids, to.ID)
			}
			invalidateUserCaches(c.Request.Context(), rdb, ids...)
		}
		c.JSON(http.StatusCreated, gin.H{"transaction": entry})
	}
}

// GetTransactionHandler returns one ledger entry with both usernames
// resolved. A transaction between two other users is reported exactly
// like a nonexistent one.
func GetTransactionHandler(l Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
			return
		}
		detail, err := l.GetTransaction(c.Request.Context(), userID, uint(id))
		if err != nil {
			writeServerError(c, err)
			return
		}
		if detail == nil {
			c.JSON(http.StatusGone, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"from_username": detail.FromUsername,
			"to_username":   detail.ToUsername,
			"amount":        detail.Transaction.Amount,
			"created_at":    detail.Transaction.CreatedAt,
		})
	}
}

// GetTransactionHistoryHandler returns all transactions for the
// authenticated user's wallet, newest first
func GetTransactionHistoryHandler(l Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := historyCacheKey(userID)
		if rdb != nil {
			var cached []domain.Transaction
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"transactions": cached, "cached": true})
				return
			}
		}
		transactions, err := l.ListTransactions(ctx, userID)
		if err != nil {
			writeServerError(c, err)
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, transactions, cacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"transactions": transactions, "cached": false})
	}
}
