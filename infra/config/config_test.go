package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reconciler.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite3
  dsn: /tmp/reconciler.db
worker:
  poll_interval: 90s
  max_retry: 12
  fail_fast_after: 3
item_source:
  query: '{"pageSize": 25}'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != "sqlite3" || cfg.Database.DSN != "/tmp/reconciler.db" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Worker.PollInterval != 90*time.Second {
		t.Fatalf("poll interval = %s, want 90s", cfg.Worker.PollInterval)
	}
	if cfg.Worker.MaxRetry != 12 || cfg.Worker.FailFastAfter != 3 {
		t.Fatalf("worker = %+v", cfg.Worker)
	}
	if cfg.Worker.DegradedThreshold != consts.DefaultDegradedThreshold {
		t.Fatalf("degraded threshold = %s, want default", cfg.Worker.DegradedThreshold)
	}
	if cfg.HTTP.Port != consts.DefaultHTTPPort {
		t.Fatalf("port = %q, want default", cfg.HTTP.Port)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("config path = %q, want %q", cfg.ConfigPath, path)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: host=db\n")
	t.Setenv("RECONCILER_HTTP_PORT", "9090")
	t.Setenv("RECONCILER_ITEM_SOURCE_KIND", "http")
	t.Setenv("RECONCILER_ITEM_SOURCE_BASE_URL", "https://ledger.example")
	t.Setenv("RECONCILER_AUTH_TOKEN", "static-token")
	t.Setenv("RECONCILER_WORKER_DEGRADED_THRESHOLD", "6h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != "9090" {
		t.Fatalf("port = %q, want 9090", cfg.HTTP.Port)
	}
	if cfg.ItemSource.Kind != consts.ItemSourceHTTP || cfg.ItemSource.BaseURL != "https://ledger.example" {
		t.Fatalf("item source = %+v", cfg.ItemSource)
	}
	if cfg.Auth.Token != "static-token" {
		t.Fatalf("token = %q", cfg.Auth.Token)
	}
	if cfg.Worker.DegradedThreshold != 6*time.Hour {
		t.Fatalf("degraded threshold = %s, want 6h", cfg.Worker.DegradedThreshold)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing dsn", "database:\n  driver: postgres\n", "dsn"},
		{"bad driver", "database:\n  driver: mysql\n  dsn: x\n", "driver"},
		{"http without url", "database:\n  dsn: x\nitem_source:\n  kind: http\n", "base_url"},
		{"http without auth", "database:\n  dsn: x\nitem_source:\n  kind: http\n  base_url: https://ledger\n", "auth"},
		{"zero fail fast", "database:\n  dsn: x\nworker:\n  fail_fast_after: 0\n", "fail_fast_after"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}
