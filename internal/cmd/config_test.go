package cmd

import (
	"errors"
	"testing"

	"github.com/salmonumbrella/famtree/internal/config"
)

func TestConfigApplyAndClear(t *testing.T) {
	cfg := &config.Config{}

	if err := applyConfigValue(cfg, "input", "trees/family.txt"); err != nil {
		t.Fatalf("apply input: %v", err)
	}
	if cfg.Input != "trees/family.txt" {
		t.Fatalf("expected input set, got %q", cfg.Input)
	}

	if err := clearConfigValue(cfg, "input"); err != nil {
		t.Fatalf("clear input: %v", err)
	}
	if cfg.Input != "" {
		t.Fatalf("expected input cleared, got %q", cfg.Input)
	}

	if err := applyConfigValue(cfg, "unknown", "x"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestConfigApplyIntegers(t *testing.T) {
	cfg := &config.Config{}

	if err := applyConfigValue(cfg, "indent", "2"); err != nil {
		t.Fatalf("apply indent: %v", err)
	}
	if cfg.Indent != 2 {
		t.Fatalf("expected indent 2, got %d", cfg.Indent)
	}
	if err := applyConfigValue(cfg, "indent_width", "3"); err != nil {
		t.Fatalf("apply indent_width: %v", err)
	}
	if cfg.IndentWidth != 3 {
		t.Fatalf("expected indent_width 3, got %d", cfg.IndentWidth)
	}

	for _, bad := range []string{"-1", "four", ""} {
		err := applyConfigValue(cfg, "indent", bad)
		var validation ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("indent %q: expected ValidationError, got %v", bad, err)
		}
	}
}

func TestConfigApplyValidatesEnums(t *testing.T) {
	cfg := &config.Config{}

	if err := applyConfigValue(cfg, "level_mode", "column"); err != nil {
		t.Fatalf("apply level_mode: %v", err)
	}
	if err := applyConfigValue(cfg, "level_mode", "depth"); err == nil {
		t.Fatalf("expected error for unknown level mode")
	}
	if err := applyConfigValue(cfg, "output_format", "yaml"); err != nil {
		t.Fatalf("apply output_format: %v", err)
	}
	if err := applyConfigValue(cfg, "output_format", "xml"); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
	if cfg.LevelMode != "column" || cfg.OutputFormat != "yaml" {
		t.Fatalf("rejected values must not be stored: %+v", cfg)
	}
}

func TestSupportedConfigKeys(t *testing.T) {
	keys := supportedConfigKeys()
	if len(keys) == 0 {
		t.Fatalf("expected supported keys")
	}

	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
		if err := clearConfigValue(&config.Config{}, k); err != nil {
			t.Fatalf("key %s cannot be cleared: %v", k, err)
		}
	}

	for _, k := range []string{"input", "output", "indent", "level_mode", "listen_addr", "keyring_backend", "output_format"} {
		if !seen[k] {
			t.Fatalf("missing key %s", k)
		}
	}
}

func TestConfigOutputCoversKeys(t *testing.T) {
	out := configOutput(&config.Config{Indent: 2, ListenAddr: ":9000"})
	for _, k := range supportedConfigKeys() {
		if _, ok := out[k]; !ok {
			t.Fatalf("configOutput missing %s", k)
		}
	}
	if out["indent"] != 2 || out["listen_addr"] != ":9000" {
		t.Fatalf("unexpected output: %v", out)
	}
}
