package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.DBTxRetries != 3 || cfg.DBLockTimeout != 5*time.Second || cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("redis should be disabled by default, got %q", cfg.RedisAddr)
	}
	if !cfg.DBMigrate {
		t.Fatal("schema should be applied by default")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{"STORAGE_DRIVER": "memory"},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "postgres without database url",
			env:     map[string]string{"JWT_SECRET": "s"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "sqlite"},
			wantErr: "STORAGE_DRIVER",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "CACHE_TTL": "ten"},
			wantErr: "CACHE_TTL",
		},
		{
			name:    "bad bool",
			env:     map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "DB_MIGRATE": "maybe"},
			wantErr: "DB_MIGRATE",
		},
		{
			name:    "bad integer",
			env:     map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "DB_TX_RETRIES": "x"},
			wantErr: "DB_TX_RETRIES",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("STORAGE_DRIVER", "")
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
