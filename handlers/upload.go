package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gigagreen/vertraege-service/internal/auth"
	"github.com/gigagreen/vertraege-service/internal/drive"
	"github.com/gigagreen/vertraege-service/pkg/logger"
	"github.com/gigagreen/vertraege-service/pkg/metrics"
)

// DriveUploader is the handshake surface of internal/drive the handler
// depends on; tests substitute a fake.
type DriveUploader interface {
	CreateResumableSession(ctx context.Context, filename, mimeType, origin string) (*drive.Session, error)
	UploadFile(ctx context.Context, filename, mimeType string, r io.Reader) (*drive.UploadedFile, error)
}

// UploadHandler hands large files off to a Drive resumable-upload session
// (bypassing this service's own request-size limits) and streams small
// multipart uploads through directly.
//
// The uploader is constructed per request so a missing or malformed
// service-account credential surfaces as a 500 on use, not a crash at boot.
type UploadHandler struct {
	checker   *auth.Checker
	newClient func() (DriveUploader, error)
}

func NewUploadHandler(checker *auth.Checker, newClient func() (DriveUploader, error)) *UploadHandler {
	return &UploadHandler{checker: checker, newClient: newClient}
}

func (h *UploadHandler) Register(r *gin.Engine) {
	r.POST("/api/upload", h.Upload)
}

// Upload branches on content type: multipart bodies take the direct flow,
// JSON bodies request a resumable session.
func (h *UploadHandler) Upload(c *gin.Context) {
	if !h.checker.Check(c.Request.Header) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	client, err := h.newClient()
	if err != nil {
		logger.Errorf("upload: drive client: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.direct(c, client)
		return
	}
	h.resumable(c, client)
}

func (h *UploadHandler) resumable(c *gin.Context, client DriveUploader) {
	var req struct {
		Filename string `json:"filename"`
		MimeType string `json:"mimeType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename required"})
		return
	}

	session, err := client.CreateResumableSession(c.Request.Context(), req.Filename, req.MimeType, c.GetHeader("Origin"))
	if err != nil {
		metrics.Uploads.WithLabelValues("resumable", "error").Inc()
		uploadError(c, err)
		return
	}
	metrics.Uploads.WithLabelValues("resumable", "ok").Inc()
	c.JSON(http.StatusOK, session)
}

func (h *UploadHandler) direct(c *gin.Context, client DriveUploader) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload fehlgeschlagen: " + err.Error()})
		return
	}
	defer f.Close()

	uploaded, err := client.UploadFile(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		metrics.Uploads.WithLabelValues("direct", "error").Inc()
		uploadError(c, err)
		return
	}
	metrics.Uploads.WithLabelValues("direct", "ok").Inc()
	c.JSON(http.StatusOK, uploaded)
}

// uploadError maps handshake failures to JSON 500s, keeping the provider
// status and body in the message for diagnosability.
func uploadError(c *gin.Context, err error) {
	logger.Errorf("upload: %v", err)
	var cfgErr *drive.ConfigError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": cfgErr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload fehlgeschlagen: " + err.Error()})
}
