package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigagreen/vertraege-service/internal/auth"
	"github.com/gigagreen/vertraege-service/internal/drive"
)

type fakeUploader struct {
	session    *drive.Session
	sessionErr error
	uploaded   *drive.UploadedFile
	uploadErr  error

	gotFilename string
	gotMime     string
	gotOrigin   string
	gotBytes    []byte
}

func (f *fakeUploader) CreateResumableSession(ctx context.Context, filename, mimeType, origin string) (*drive.Session, error) {
	f.gotFilename, f.gotMime, f.gotOrigin = filename, mimeType, origin
	return f.session, f.sessionErr
}

func (f *fakeUploader) UploadFile(ctx context.Context, filename, mimeType string, r io.Reader) (*drive.UploadedFile, error) {
	f.gotFilename, f.gotMime = filename, mimeType
	f.gotBytes, _ = io.ReadAll(r)
	return f.uploaded, f.uploadErr
}

func newUploadEngine(uploader DriveUploader, clientErr error) *gin.Engine {
	g := gin.New()
	h := NewUploadHandler(auth.NewChecker(testUser, testPass), func() (DriveUploader, error) {
		if clientErr != nil {
			return nil, clientErr
		}
		return uploader, nil
	})
	h.Register(g)
	return g
}

func TestUploadResumableSession(t *testing.T) {
	fake := &fakeUploader{session: &drive.Session{UploadURL: "https://upload.example/session", Token: "tok-1"}}
	g := newUploadEngine(fake, nil)

	body := `{"filename":"vertrag.docx","mimeType":"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}`
	req := withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://example.org")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://upload.example/session", resp["uploadUrl"])
	assert.Equal(t, "tok-1", resp["token"])

	assert.Equal(t, "vertrag.docx", fake.gotFilename)
	assert.Equal(t, "https://example.org", fake.gotOrigin)
}

func TestUploadResumableRequiresFilename(t *testing.T) {
	g := newUploadEngine(&fakeUploader{}, nil)

	req := withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"mimeType":"application/pdf"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "filename required")
}

func TestUploadRequiresAuth(t *testing.T) {
	g := newUploadEngine(&fakeUploader{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"filename":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadDirectFlow(t *testing.T) {
	fake := &fakeUploader{uploaded: &drive.UploadedFile{
		ID:   "file-1",
		Name: "vertrag.pdf",
		Link: "https://drive.google.com/uc?export=download&id=file-1",
	}}
	g := newUploadEngine(fake, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "vertrag.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/upload", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "file-1", resp["id"])
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=file-1", resp["link"])

	assert.Equal(t, "vertrag.pdf", fake.gotFilename)
	assert.Equal(t, []byte("%PDF-1.4 test"), fake.gotBytes)
}

func TestUploadDirectFlowRequiresFilePart(t *testing.T) {
	g := newUploadEngine(&fakeUploader{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/upload", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file required")
}

func TestUploadConfigErrorIsA500(t *testing.T) {
	g := newUploadEngine(nil, &drive.ConfigError{Reason: "Service Account JSON enthält keine client_email"})

	req := withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"filename":"x.pdf"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "client_email")
}

func TestUploadUpstreamErrorKeepsProviderStatus(t *testing.T) {
	fake := &fakeUploader{sessionErr: &drive.UpstreamError{Status: 403, Body: "insufficient permissions"}}
	g := newUploadEngine(fake, nil)

	req := withBasicAuth(httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"filename":"x.pdf"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Upload fehlgeschlagen")
	assert.Contains(t, w.Body.String(), "403")
}
