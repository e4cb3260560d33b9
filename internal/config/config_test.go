package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Values(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if c.MinGainPerTon != 1 {
		t.Errorf("MinGainPerTon = %v, want 1", c.MinGainPerTon)
	}
	if c.Credits != 1000 {
		t.Errorf("Credits = %v, want 1000", c.Credits)
	}
	if c.Capacity != 100 {
		t.Errorf("Capacity = %v, want 100", c.Capacity)
	}
	if c.Hops != 2 {
		t.Errorf("Hops = %v, want 2", c.Hops)
	}
	if c.Store != "sqlite" {
		t.Errorf("Store = %q, want sqlite", c.Store)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Credits != Default().Credits {
		t.Errorf("Credits = %v, want default %v", c.Credits, Default().Credits)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfarer.yaml")
	c := Default()
	c.Credits = 54321
	c.MaxJumpsPer = 7

	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Credits != 54321 {
		t.Errorf("Credits = %v, want 54321", loaded.Credits)
	}
	if loaded.MaxJumpsPer != 7 {
		t.Errorf("MaxJumpsPer = %v, want 7", loaded.MaxJumpsPer)
	}
}

func TestLoad_EnvOverridesSQLitePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfarer.yaml")
	if err := Default().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("WAYFARER_SQLITE_PATH", "/tmp/override.db")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SQLitePath != "/tmp/override.db" {
		t.Errorf("SQLitePath = %q, want /tmp/override.db", c.SQLitePath)
	}
}

func TestLoad_EnvOverridePostgresDSNSwitchesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfarer.yaml")
	if err := Default().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("WAYFARER_POSTGRES_DSN", "postgres://localhost/wayfarer")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Store != "postgres" {
		t.Errorf("Store = %q, want postgres", c.Store)
	}
	if c.PostgresDSN != "postgres://localhost/wayfarer" {
		t.Errorf("PostgresDSN = %q, want postgres://localhost/wayfarer", c.PostgresDSN)
	}
}

func TestLoad_CorruptYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("not: valid: yaml: [["), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to error on corrupt YAML")
	}
}
