package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d", cfg.Server.Port)
	}
	if cfg.Engine.MinConfidence != 0.65 || cfg.Engine.MinFiltersRequired != 4 {
		t.Fatalf("engine defaults wrong: %+v", cfg.Engine)
	}
	if cfg.Weights.MinSample != 5 {
		t.Fatalf("weights defaults wrong: %+v", cfg.Weights)
	}
	if cfg.Persistence.Backend != "file" {
		t.Fatalf("persistence default = %s", cfg.Persistence.Backend)
	}
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "environment: test\npersistence:\n  backend: etcd\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for backend")
	}
}

func TestLoadRejectsRedisWithoutAddr(t *testing.T) {
	path := writeConfig(t, "environment: test\npersistence:\n  backend: redis\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for missing redis addr")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Fatalf("brokers override wrong: %v", cfg.Kafka.Brokers)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("port override wrong: %d", cfg.Server.Port)
	}
}
