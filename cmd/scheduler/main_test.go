package main

import (
	"testing"

	"github.com/example/appointment-scheduler/internal/config"
)

func TestGridFromConfig(t *testing.T) {
	grid, err := gridFromConfig(config.Config{
		GridStartHour:   7,
		GridEndHour:     19,
		GridSlotMinutes: 30,
	})
	if err != nil {
		t.Fatalf("gridFromConfig returned error: %v", err)
	}
	if got := len(grid.Slots()); got != 24 {
		t.Fatalf("expected 24 slots for a 7-19 grid at 30 minutes, got %d", got)
	}
}

func TestGridFromConfigRejectsInvalid(t *testing.T) {
	if _, err := gridFromConfig(config.Config{GridStartHour: 19, GridEndHour: 7, GridSlotMinutes: 30}); err == nil {
		t.Fatal("expected error for inverted grid hours")
	}
}

func TestLoadConfigToleratesMissingEnvFile(t *testing.T) {
	cfg, err := loadConfig("does-not-exist.env")
	if err != nil {
		t.Fatalf("missing dotenv file should not fail: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port, got %d", cfg.HTTPPort)
	}
}
