package main

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gigagreen/vertraege-service/handlers"
	"github.com/gigagreen/vertraege-service/internal/auth"
	"github.com/gigagreen/vertraege-service/internal/config"
	"github.com/gigagreen/vertraege-service/internal/drive"
	"github.com/gigagreen/vertraege-service/internal/storage"
	"github.com/gigagreen/vertraege-service/internal/vertrag"
	"github.com/gigagreen/vertraege-service/pkg/logger"
	"github.com/gigagreen/vertraege-service/pkg/metrics"
	"github.com/gigagreen/vertraege-service/pkg/middleware"
)

var startTime = time.Now()

// the widget is compiled in so the route works regardless of the
// working directory the binary is launched from
//
//go:embed public/embed.js
var embedJS []byte

func registerEmbedWidget(r *gin.Engine) {
	r.GET("/embed.js", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/javascript; charset=utf-8", embedJS)
	})
}

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: admin_set=%v drive_key_set=%v", cfg.Admin.Username != "", cfg.Drive.ServiceAccountKey != "")

	r := gin.New()
	r.Use(middleware.CORS())
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// durable blob store behind the category cache
	var blobs vertrag.BlobStore
	minioCfg := storage.LoadMinIOConfig()
	if minioCfg.Endpoint != "" {
		ms, err := storage.NewMinIOStorage(minioCfg)
		if err != nil {
			logger.Warnf("minio unavailable, records stay in-memory only: %v", err)
		} else {
			blobs = ms
			logger.Infof("connected to MinIO at %s (bucket %s)", minioCfg.Endpoint, minioCfg.Bucket)
		}
	} else {
		logger.Warnf("MINIO_ENDPOINT not set, records stay in-memory only")
	}
	store := vertrag.NewStore(blobs)

	checker := auth.NewChecker(cfg.Admin.Username, cfg.Admin.Password)

	// readiness: durable storage is the only hard dependency
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"storage": blobs != nil,
			"admin":   cfg.Admin.Username != "" && cfg.Admin.Password != "",
		}
		status := http.StatusOK
		state := "ready"
		if !deps["storage"] {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.NewAuthHandler(checker).Register(r)

	var listMiddleware []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		listMiddleware = append(listMiddleware, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	handlers.NewVertraegeHandler(store, checker).Register(r, listMiddleware...)

	driveCfg := cfg.Drive
	handlers.NewUploadHandler(checker, func() (handlers.DriveUploader, error) {
		return drive.NewClient(&drive.Config{
			ServiceAccountKey: driveCfg.ServiceAccountKey,
			FolderID:          driveCfg.FolderID,
		})
	}).Register(r)

	// widget served to third-party sites
	registerEmbedWidget(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting vertraege service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
