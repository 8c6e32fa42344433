package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.AdminMarker != "admin" {
		t.Fatalf("expected admin marker, got %q", cfg.Auth.AdminMarker)
	}
	if cfg.Store.Driver != DriverMongo {
		t.Fatalf("expected mongo driver, got %s", cfg.Store.Driver)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("revocation must be off by default, got %q", cfg.Redis.Addr)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development env by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":            "s3cret",
		"TOKEN_TTL":             "2h",
		"ADMIN_USERNAME_MARKER": "staff",
		"STORE_DRIVER":          "postgres",
		"DATABASE_URL":          "postgres://u:p@localhost:5432/shop?sslmode=disable",
		"REDIS_ADDR":            "localhost:6379",
		"ENV":                   "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour || cfg.Auth.AdminMarker != "staff" {
		t.Fatalf("overrides not applied: %+v", cfg.Auth)
	}
	if cfg.Store.Driver != DriverPostgres || cfg.SQL.DSN == "" {
		t.Fatalf("store overrides not applied: %+v %+v", cfg.Store, cfg.SQL)
	}
	if cfg.IsDevelopment() {
		t.Fatal("production must not be development")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":     {},
		"unknown driver":     {"JWT_SECRET": "x", "STORE_DRIVER": "cassandra"},
		"sql without dsn":    {"JWT_SECRET": "x", "STORE_DRIVER": "mysql"},
		"non-positive ttl":   {"JWT_SECRET": "x", "TOKEN_TTL": "0s"},
		"malformed duration": {"JWT_SECRET": "x", "TOKEN_TTL": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("expected config-prefixed error, got %v", err)
			}
		})
	}
}
