package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigagreen/vertraege-service/internal/auth"
)

func TestLoginProbe(t *testing.T) {
	g := gin.New()
	NewAuthHandler(auth.NewChecker(testUser, testPass)).Register(g)

	// valid credentials
	w := httptest.NewRecorder()
	g.ServeHTTP(w, withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/auth", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	// missing credentials
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
}

func TestLoginProbeFailsClosedWithoutSecrets(t *testing.T) {
	g := gin.New()
	NewAuthHandler(auth.NewChecker("", "")).Register(g)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/auth", nil)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
