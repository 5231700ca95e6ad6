package config

import (
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "gigagreen2024")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY", `{"type":"service_account"}`)
	t.Setenv("DRIVE_FOLDER_ID", "folder-123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Admin.Username != "admin" || cfg.Admin.Password != "gigagreen2024" {
		t.Fatalf("unexpected admin config: %+v", cfg.Admin)
	}
	if cfg.Drive.FolderID != "folder-123" || cfg.Drive.ServiceAccountKey == "" {
		t.Fatalf("unexpected drive config: %+v", cfg.Drive)
	}
	if cfg.Server.Port == "" || cfg.Server.Host == "" {
		t.Fatalf("server defaults missing: %+v", cfg.Server)
	}
	if cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0 {
		t.Fatalf("rate limit defaults missing: %+v", cfg.RateLimit)
	}
}
