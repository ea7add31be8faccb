package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/auth"
)

type AuthHandler struct {
	pinHash    string
	hasher     auth.SecretHasher
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthHandler(pinHash string, hasher auth.SecretHasher, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		pinHash:    pinHash,
		hasher:     hasher,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

//
// POST /v1/auth/login
//

// Login exchanges the admin PIN for an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.hasher.Compare(h.pinHash, req.PIN); err != nil {
		h.logger.Warn("admin login rejected", zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid pin"})
		return
	}

	token, err := h.jwtManager.GenerateAccessToken("admin", auth.RoleAdmin)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}
