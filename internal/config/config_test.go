package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCfg(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeCfg(t, "app:\n  env: dev\n"))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr default: %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver default: %q", cfg.Storage.Driver)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("access_ttl default: %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 0 {
		t.Fatalf("refresh_ttl default: %v", cfg.RefreshTTL())
	}
	if cfg.JWT.Issuer != cfg.Server.PublicBaseURL {
		t.Fatalf("issuer default debió ser la base URL: %q", cfg.JWT.Issuer)
	}
}

func TestLoad_RefreshTTL(t *testing.T) {
	cfg, err := Load(writeCfg(t, "jwt:\n  refresh_ttl: \"720h\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RefreshTTL() != 720*time.Hour {
		t.Fatalf("refresh_ttl: %v", cfg.RefreshTTL())
	}
}

func TestLoad_InvalidAccessTTL(t *testing.T) {
	for _, ttl := range []string{"-5m", "0s", "banana"} {
		if _, err := Load(writeCfg(t, "jwt:\n  access_ttl: \""+ttl+"\"\n")); err == nil {
			t.Fatalf("access_ttl %q debió fallar la validación", ttl)
		}
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	if _, err := Load(writeCfg(t, "storage:\n  driver: postgres\n")); err == nil {
		t.Fatal("postgres sin dsn debió fallar")
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	if _, err := Load(writeCfg(t, "storage:\n  driver: mongo\n")); err == nil {
		t.Fatal("driver desconocido debió fallar")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REDDGATE_ADDR", ":9999")
	t.Setenv("REDDGATE_JWT_ACCESS_TTL", "5m")
	t.Setenv("REDDGATE_KEYSTORE_KEY", "clave-por-env")

	cfg, err := Load(writeCfg(t, "server:\n  addr: \":8080\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("env no pisó addr: %q", cfg.Server.Addr)
	}
	if cfg.AccessTTL() != 5*time.Minute {
		t.Fatalf("env no pisó access_ttl: %v", cfg.AccessTTL())
	}
	if cfg.Keystore.Key != "clave-por-env" {
		t.Fatalf("env no pisó keystore.key: %q", cfg.Keystore.Key)
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.example.yaml")
	if err != nil {
		t.Fatalf("el config de ejemplo no carga: %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver del ejemplo: %q", cfg.Storage.Driver)
	}
}
