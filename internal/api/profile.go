package api

import (
	"errors"   // Error taxonomy checks
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/Aditeya/smpl-payments/internal/ledger" // Ledger engine

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for profile updates
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required"` // New username
}

// GetProfileHandler returns the authenticated user's record; the
// password hash is never serialized
func GetProfileHandler(l Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := l.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			// An authenticated id without a user row is an
			// internal-consistency fault.
			writeServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateProfileHandler renames the authenticated user
func UpdateProfileHandler(l Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be alphabetic only"})
			return
		}
		user, err := l.UpdateUsername(c.Request.Context(), userID, strings.ToLower(req.Username))
		if err != nil {
			if errors.Is(err, ledger.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
				return
			}
			writeServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
