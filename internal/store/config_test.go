package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if c.Mode != "DRY_RUN" {
		t.Errorf("expected DRY_RUN default, got %s", c.Mode)
	}
	if c.Resolver.Threshold != 0.60 || c.Resolver.Margin != 0.15 {
		t.Errorf("unexpected resolver defaults: %+v", c.Resolver)
	}
	if c.Confirmation.TTLSeconds != 60 {
		t.Errorf("expected 60s confirmation TTL, got %d", c.Confirmation.TTLSeconds)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `mode: LIVE
server:
  addr: ":8080"
resolver:
  threshold: 0.7
confirmation:
  ttl_seconds: 30
kis:
  real: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mode != "LIVE" || c.Server.Addr != ":8080" {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.Resolver.Threshold != 0.7 {
		t.Errorf("expected threshold 0.7, got %f", c.Resolver.Threshold)
	}
	if c.Resolver.Margin != 0.15 {
		t.Error("unset fields should fall back to defaults")
	}
	if !c.KIS.Real {
		t.Error("expected real trading endpoints")
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	c := Default()
	c.Mode = "PAPER"
	if err := c.Validate(); err == nil {
		t.Error("unknown mode should fail validation")
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	c := Default()
	c.Resolver.Threshold = 1.5
	if err := c.Validate(); err == nil {
		t.Error("threshold above 1 should fail validation")
	}
}

func TestValidateRejectsZeroTTL(t *testing.T) {
	c := Default()
	c.Confirmation.TTLSeconds = -1
	if err := c.Validate(); err == nil {
		t.Error("non-positive TTL should fail validation")
	}
}
