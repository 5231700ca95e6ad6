package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/gigagreen/vertraege-service/pkg/logger"
)

// DefaultFolderID is the Drive folder all uploads land in.
const DefaultFolderID = "1qoE0Exyw1wgYWtwtGrQOVLpUyNppujm8"

const (
	defaultUploadEndpoint = "https://www.googleapis.com/upload/drive/v3/files"
	defaultOrigin         = "https://gigagreen-vertraege.vercel.app"
)

// ConfigError marks a missing or malformed service-account credential.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// UpstreamError carries the provider's status and body so failed Drive
// calls stay diagnosable from the admin panel.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Google API error: %d %s", e.Status, e.Body)
}

// Session is a provider-issued resumable upload capability. The client
// transfers the file bytes directly to UploadURL using Token; the server
// never sees them.
type Session struct {
	UploadURL string `json:"uploadUrl"`
	Token     string `json:"token"`
	FileID    string `json:"fileId,omitempty"`
}

// UploadedFile describes a file created through the direct (small file) flow.
type UploadedFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Link     string `json:"link"`
	ViewLink string `json:"viewLink,omitempty"`
}

// Config holds the service-account credential and destination folder.
type Config struct {
	ServiceAccountKey string
	FolderID          string
}

// Client performs the upload handshake against Google Drive using a
// service-account credential.
type Client struct {
	folderID string
	jwtConf  *jwt.Config

	// overridable in tests
	uploadEndpoint string
	httpClient     *http.Client
	tokenSource    func(ctx context.Context) oauth2.TokenSource
	clientOptions  []option.ClientOption
}

// NewClient parses the service-account JSON and prepares a Drive client.
// A missing or malformed credential is a *ConfigError.
func NewClient(cfg *Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.ServiceAccountKey)
	if raw == "" {
		return nil, &ConfigError{Reason: "GOOGLE_SERVICE_ACCOUNT_KEY ist nicht gesetzt"}
	}
	jwtConf, err := google.JWTConfigFromJSON([]byte(raw), drivev3.DriveScope)
	if err != nil {
		return nil, &ConfigError{Reason: "GOOGLE_SERVICE_ACCOUNT_KEY ist kein gültiges Service Account JSON: " + err.Error()}
	}
	if jwtConf.Email == "" {
		return nil, &ConfigError{Reason: "Service Account JSON enthält keine client_email"}
	}

	folder := cfg.FolderID
	if folder == "" {
		folder = DefaultFolderID
	}
	c := &Client{
		folderID:       folder,
		jwtConf:        jwtConf,
		uploadEndpoint: defaultUploadEndpoint,
		httpClient:     http.DefaultClient,
	}
	c.tokenSource = func(ctx context.Context) oauth2.TokenSource {
		return c.jwtConf.TokenSource(ctx)
	}
	return c, nil
}

// CreateResumableSession requests a resumable upload session scoped to the
// destination folder and returns its URL together with the bearer token, so
// the browser can push the bytes straight to Drive. The raw HTTP call is
// deliberate: the Drive SDK does not expose the session Location URL.
func (c *Client) CreateResumableSession(ctx context.Context, filename, mimeType, origin string) (*Session, error) {
	tok, err := c.tokenSource(ctx).Token()
	if err != nil {
		return nil, fmt.Errorf("drive token: %w", err)
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if origin == "" {
		origin = defaultOrigin
	}
	payload, err := json.Marshal(map[string]any{
		"name":    filename,
		"parents": []string{c.folderID},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.uploadEndpoint+"?uploadType=resumable&supportsAllDrives=true", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Upload-Content-Type", mimeType)
	req.Header.Set("Origin", origin)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	session := &Session{
		UploadURL: resp.Header.Get("Location"),
		Token:     tok.AccessToken,
	}
	// a resumable session usually has no body; pick up the file id when present
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err == nil {
		session.FileID = created.ID
	}
	return session, nil
}

// UploadFile streams small files directly into the destination folder and
// sets a public-read permission on the result. Permission failures are
// swallowed: when the folder already inherits sharing the file is usable
// regardless.
func (c *Client) UploadFile(ctx context.Context, filename, mimeType string, r io.Reader) (*UploadedFile, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	created, err := svc.Files.Create(&drivev3.File{
		Name:    filename,
		Parents: []string{c.folderID},
	}).
		Media(r, googleapi.ContentType(mimeType)).
		SupportsAllDrives(true).
		Fields("id", "name", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstreamError(err)
	}

	_, err = svc.Permissions.Create(created.Id, &drivev3.Permission{
		Type: "anyone",
		Role: "reader",
	}).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		logger.Warnf("drive: setting public permission on %s failed: %v", created.Id, err)
	}

	return &UploadedFile{
		ID:       created.Id,
		Name:     created.Name,
		Link:     "https://drive.google.com/uc?export=download&id=" + created.Id,
		ViewLink: created.WebViewLink,
	}, nil
}

func (c *Client) service(ctx context.Context) (*drivev3.Service, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(c.tokenSource(ctx))}, c.clientOptions...)
	return drivev3.NewService(ctx, opts...)
}

func upstreamError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &UpstreamError{Status: gerr.Code, Body: gerr.Message}
	}
	return err
}
