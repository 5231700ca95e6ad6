package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/gigagreen/vertraege-service/internal/auth"
	"github.com/gigagreen/vertraege-service/internal/vertrag"
)

const (
	maxNameLen      = 200
	maxLinkLen      = 500
	driveLinkPrefix = "https://drive.google.com"
)

// VertraegeHandler serves the public listing and the admin create/delete
// operations for contract records.
type VertraegeHandler struct {
	store   *vertrag.Store
	checker *auth.Checker
}

func NewVertraegeHandler(store *vertrag.Store, checker *auth.Checker) *VertraegeHandler {
	return &VertraegeHandler{store: store, checker: checker}
}

// Register wires the routes. listMiddleware is applied to the public GET
// only (the rate limiter, when enabled).
func (h *VertraegeHandler) Register(r *gin.Engine, listMiddleware ...gin.HandlerFunc) {
	r.GET("/api/vertraege", append(listMiddleware, h.List)...)
	r.POST("/api/vertraege", h.Create)
	r.DELETE("/api/vertraege", h.Delete)
}

// List is public: the embed widget on third-party sites calls it without
// credentials.
func (h *VertraegeHandler) List(c *gin.Context) {
	cat, err := vertrag.ParseCategory(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unbekannte Kategorie"})
		return
	}
	records, err := h.store.Get(c.Request.Context(), cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fehler beim Laden der Verträge"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *VertraegeHandler) Create(c *gin.Context) {
	if !h.checker.Check(c.Request.Header) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Name      string `json:"name"`
		DriveLink string `json:"driveLink"`
		Category  string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name und Link sind erforderlich"})
		return
	}
	cat, err := vertrag.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unbekannte Kategorie"})
		return
	}

	name := strings.TrimSpace(req.Name)
	link := strings.TrimSpace(req.DriveLink)
	switch {
	case name == "" || link == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name und Link sind erforderlich"})
		return
	case utf8.RuneCountInString(name) > maxNameLen:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name ist zu lang"})
		return
	case utf8.RuneCountInString(link) > maxLinkLen:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Link ist zu lang"})
		return
	case !strings.HasPrefix(link, driveLinkPrefix):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nur Google Drive Links sind erlaubt"})
		return
	}

	ctx := c.Request.Context()
	records, err := h.store.Get(ctx, cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fehler beim Erstellen"})
		return
	}
	record := vertrag.Record{
		ID:        vertrag.NewID(),
		Name:      name,
		DriveLink: link,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := h.store.Save(ctx, cat, append(records, record)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fehler beim Erstellen"})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *VertraegeHandler) Delete(c *gin.Context) {
	if !h.checker.Check(c.Request.Header) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID ist erforderlich"})
		return
	}
	cat, err := vertrag.ParseCategory(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unbekannte Kategorie"})
		return
	}

	ctx := c.Request.Context()
	records, err := h.store.Get(ctx, cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fehler beim Löschen"})
		return
	}
	remaining := make([]vertrag.Record, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			remaining = append(remaining, r)
		}
	}
	if len(remaining) == len(records) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vertrag nicht gefunden"})
		return
	}
	if _, err := h.store.Save(ctx, cat, remaining); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fehler beim Löschen"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
