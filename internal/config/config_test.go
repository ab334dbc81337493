// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_HOST", "APP_PORT", "APP_ENV", "STORE_DRIVER",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"JWT_SECRET", "JWT_TTL", "AUTH_RATE_LIMIT",
	"SEED_ADMIN_EMAIL", "SEED_ADMIN_PASSWORD",
}

// clearEnv sets every key Load reads to "", which envOrDefault treats as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s: got %q, want %q", field, got, want)
		}
	}
	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("StoreDriver", cfg.StoreDriver, DriverPostgres)
	check("DBUser", cfg.DBUser, "blogapi")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("DBName", cfg.DBName, "blogapi")
	check("ValkeyHost", cfg.ValkeyHost, "localhost")
	check("SeedAdminEmail", cfg.SeedAdminEmail, "admin@test.com")
	check("JWTSecret", cfg.JWTSecret, devJWTSecret)

	if cfg.JWTTTL != 60*time.Minute {
		t.Errorf("JWTTTL: got %v, want 60m", cfg.JWTTTL)
	}
	if cfg.AuthRateLimit != 10 {
		t.Errorf("AuthRateLimit: got %d, want 10", cfg.AuthRateLimit)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() should be true by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("AUTH_RATE_LIMIT", "3")
	t.Setenv("VALKEY_HOST", "cache")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr: got %q", cfg.Addr())
	}
	if cfg.StoreDriver != DriverMemory {
		t.Errorf("StoreDriver: got %q", cfg.StoreDriver)
	}
	if cfg.JWTSecret != "s3cret" || cfg.JWTTTL != 15*time.Minute {
		t.Errorf("jwt: got %q %v", cfg.JWTSecret, cfg.JWTTTL)
	}
	if cfg.AuthRateLimit != 3 {
		t.Errorf("AuthRateLimit: got %d", cfg.AuthRateLimit)
	}
	if cfg.ValkeyHost != "cache" {
		t.Errorf("ValkeyHost: got %q", cfg.ValkeyHost)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad ttl", map[string]string{"JWT_TTL": "soon"}, "JWT_TTL"},
		{"negative ttl", map[string]string{"JWT_TTL": "-1m"}, "JWT_TTL"},
		{"bad rate limit", map[string]string{"AUTH_RATE_LIMIT": "many"}, "AUTH_RATE_LIMIT"},
		{"zero rate limit", map[string]string{"AUTH_RATE_LIMIT": "0"}, "AUTH_RATE_LIMIT"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{
			"production default password",
			map[string]string{"APP_ENV": "production", "JWT_SECRET": "x"},
			"POSTGRES_PASSWORD",
		},
		{
			"production missing secret",
			map[string]string{"APP_ENV": "production", "POSTGRES_PASSWORD": "strong"},
			"JWT_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Production(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("POSTGRES_PASSWORD", "strong")
	t.Setenv("JWT_SECRET", "prod-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDev() {
		t.Error("production config reports IsDev")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "d"}
	want := "postgres://u:p@h:1/d?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
