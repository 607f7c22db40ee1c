package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/service"
)

// Handlers contains the HTTP handlers for the auth and user endpoints.
type Handlers struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewHandlers creates the handler set.
func NewHandlers(auth *service.AuthService, users *service.UserService) *Handlers {
	return &Handlers{auth: auth, users: users}
}

// RequestChallenge handles POST /auth/challenge.
func (h *Handlers) RequestChallenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	grant, err := h.auth.RequestChallenge(c.Request.Context(), req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		}
		return
	}

	c.JSON(http.StatusOK, grant)
}

// VerifySignature handles POST /auth/verify. All verification failures map
// to a single generic 401 body; which check failed is never revealed.
func (h *Handlers) VerifySignature(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		Message       string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.auth.VerifySignature(c.Request.Context(), req.WalletAddress, req.Signature, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		case errors.Is(err, core.ErrTooManyAttempts):
			c.JSON(http.StatusForbidden, gin.H{"error": "too many failed login attempts, please try again later"})
		case errors.Is(err, core.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid challenge or signature"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Profile handles GET /auth/profile.
func (h *Handlers) Profile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// UpdateProfile handles PATCH /users/profile.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		FullName *string `json:"fullName"`
		Email    *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrProfileConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already in use"})
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": updated.Public()})
}
