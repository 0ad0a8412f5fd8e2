package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "SAVE_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_FILE"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline || c.HTTPAddr != ":8080" || c.DBDriver != "sqlite" {
		t.Fatalf("defaults: %+v", c)
	}
	if c.SaveTimeout != 15*time.Second || c.RateLimitRPS != 5 || c.RateLimitBurst != 10 {
		t.Fatalf("limits: %+v", c)
	}
	if !reflect.DeepEqual(c.CORSOrigins(), c.CORSOriginsOffline) {
		t.Fatalf("offline origins")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("SAVE_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_BURST", "oops")
	t.Setenv("ENABLE_LOCAL_AUTH", "no")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	c := FromEnv()
	if c.SaveTimeout != 3*time.Second || c.RateLimitBurst != 10 || c.EnableLocalAuth {
		t.Fatalf("overrides: %+v", c)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(c.CORSOrigins(), want) {
		t.Fatalf("origins %v", c.CORSOrigins())
	}
}

func TestLoadFile(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "SAVE_TIMEOUT", "RATE_LIMIT_BURST", "CORS_ORIGINS_OFFLINE", "ENABLE_LOCAL_AUTH"} {
		t.Setenv(k, "")
	}
	t.Setenv("HTTP_ADDR", ":9999")
	p := filepath.Join(t.TempDir(), "gradescaled.yaml")
	body := `
mode: online
http_addr: ":7000"
db_driver: postgres
save_timeout: 4s
rate_limit_burst: 3
enable_local_auth: false
cors_origins_online:
  - https://one.example
cors_origins_offline: "http://a.local, http://b.local"
`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.HTTPAddr != ":9999" {
		t.Fatalf("env should win: %s", c.HTTPAddr)
	}
	if c.Mode != ModeOnline || c.DBDriver != "postgres" || c.SaveTimeout != 4*time.Second || c.RateLimitBurst != 3 || c.EnableLocalAuth {
		t.Fatalf("file values: %+v", c)
	}
	if !reflect.DeepEqual(c.CORSOrigins(), []string{"https://one.example"}) {
		t.Fatalf("online origins %v", c.CORSOrigins())
	}
	if !reflect.DeepEqual(c.CORSOriginsOffline, []string{"http://a.local", "http://b.local"}) {
		t.Fatalf("offline origins %v", c.CORSOriginsOffline)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
