package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gigagreen/vertraege-service/pkg/logger"
)

// Checker validates admin Basic-Auth credentials against the two configured
// secrets. It is stateless; mutating routes call Check per request.
type Checker struct {
	username string
	password string
}

func NewChecker(username, password string) *Checker {
	return &Checker{username: username, password: password}
}

// Check extracts and decodes an `Authorization: Basic <base64>` header and
// compares it against the configured secrets. When the secrets are not
// configured it fails closed: every request is rejected and a configuration
// error is logged.
func (c *Checker) Check(h http.Header) bool {
	if c.username == "" || c.password == "" {
		logger.Errorf("auth: ADMIN_USERNAME/ADMIN_PASSWORD not configured, rejecting request")
		return false
	}

	header := h.Get("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return false
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) == 1
	return userOK && passOK
}
