// Package api is the thin HTTP shell over the ledger engine. Handlers
// authenticate, parse and validate scalar inputs, call into the engine,
// and translate its error taxonomy into HTTP responses. No business rule
// lives here.
package api

import (
	"context" // Context for Redis operations
	"errors"  // Error taxonomy checks
	"net/http"
	"strconv" // String conversion
	"time"    // Time durations

	"github.com/Aditeya/smpl-payments/internal/domain" // Importing domain models
	"github.com/Aditeya/smpl-payments/internal/ledger" // Ledger engine
	"github.com/Aditeya/smpl-payments/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Arbitrary-precision decimals
)

// Ledger is the engine surface the HTTP shell calls into.
type Ledger interface {
	SignUp(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	UpdateUsername(ctx context.Context, id uint, username string) (*domain.User, error)
	CreateWallet(ctx context.Context, userID uint) (*domain.Wallet, error)
	GetWallet(ctx context.Context, userID uint) (*domain.Wallet, error)
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error)
	Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error)
	Transfer(ctx context.Context, fromUserID uint, toUsername string, amount decimal.Decimal) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID uint) (*ledger.TransactionDetail, error)
	ListTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error)
}

// Cached reads go stale for at most this long after a missed invalidation.
const cacheTTL = 60 * time.Second

// currentUserID pulls the authenticated user ID set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func walletCacheKey(userID uint) string {
	return "wallet:user:" + strconv.Itoa(int(userID))
}

func historyCacheKey(userID uint) string {
	return "txhistory:user:" + strconv.Itoa(int(userID))
}

// invalidateUserCaches drops the wallet and history cache entries after a
// balance mutation
func invalidateUserCaches(ctx context.Context, rdb *redis.Client, userIDs ...uint) {
	if rdb == nil {
		return
	}
	for _, id := range userIDs {
		_ = utils.DeleteCache(ctx, rdb, walletCacheKey(id))
		_ = utils.DeleteCache(ctx, rdb, historyCacheKey(id))
	}
}

// writeServerError maps non-business ledger failures onto HTTP responses
func writeServerError(c *gin.Context, err error) {
	if errors.Is(err, ledger.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
