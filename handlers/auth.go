package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gigagreen/vertraege-service/internal/auth"
)

// AuthHandler exposes the login probe the admin panel uses to validate
// credentials before unlocking the UI. No state is written.
type AuthHandler struct {
	checker *auth.Checker
}

func NewAuthHandler(checker *auth.Checker) *AuthHandler {
	return &AuthHandler{checker: checker}
}

func (h *AuthHandler) Register(r *gin.Engine) {
	r.POST("/api/auth", h.Login)
}

func (h *AuthHandler) Login(c *gin.Context) {
	if !h.checker.Check(c.Request.Header) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}
