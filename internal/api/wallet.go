package api

import (
	"errors"   // Error taxonomy checks
	"net/http" // HTTP status codes

	"github.com/Aditeya/smpl-payments/internal/domain" // Importing domain models
	"github.com/Aditeya/smpl-payments/internal/ledger" // Ledger engine
	"github.com/Aditeya/smpl-payments/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Arbitrary-precision decimals
)

// AmountRequest carries a deposit or withdrawal amount
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"` // Positive decimal amount
}

// CreateWalletHandler creates a wallet for a user (one wallet per user)
func CreateWalletHandler(l Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		wallet, err := l.CreateWallet(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, ledger.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Wallet already exists"})
				return
			}
			writeServerError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
	}
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(l Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := walletCacheKey(userID)
		if rdb != nil {
			var cached domain.Wallet
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"wallet": cached, "cached": true})
				return
			}
		}
		wallet, err := l.GetWallet(ctx, userID)
		if err != nil {
			// Every signed-up user has exactly one wallet; absence is an
			// internal-consistency fault, not a client error.
			writeServerError(c, err)
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, wallet, cacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false})
	}
}

// DepositHandler allows a user to deposit funds into their wallet
func DepositHandler(l Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive decimal"})
			return
		}
		wallet, err := l.Deposit(c.Request.Context(), userID, req.Amount)
		if err != nil {
			writeServerError(c, err)
			return
		}
		invalidateUserCaches(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusOK, gin.H{"wallet": wallet})
	}
}

// WithdrawHandler allows a user to withdraw funds from their wallet
func WithdrawHandler(l Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive decimal"})
			return
		}
		wallet, err := l.Withdraw(c.Request.Context(), userID, req.Amount)
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientFunds) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
				return
			}
			writeServerError(c, err)
			return
		}
		invalidateUserCaches(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusOK, gin.H{"wallet": wallet})
	}
}
