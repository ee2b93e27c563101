// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %q, want %q", cfg.APIBase, DefaultAPIBase)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.DevMode {
		t.Error("DevMode must default off")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "api_base: https://api.example.com\ntimeout_ms: 5000\nrate_limit: 2.5\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBase != "https://api.example.com" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("RateLimit = %v, want 2.5", cfg.RateLimit)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_base: https://file.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XORDON_API_BASE", "https://env.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBase != "https://env.example.com" {
		t.Fatalf("APIBase = %q, environment must win over the file", cfg.APIBase)
	}
}

func TestLoadDevModeRaisesTimeoutFloor(t *testing.T) {
	t.Setenv("XORDON_DEV_MODE", "true")
	t.Setenv("XORDON_API_TIMEOUT_MS", "1000")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout != DevMinTimeout {
		t.Fatalf("Timeout = %v, want the dev floor %v", cfg.Timeout, DevMinTimeout)
	}
}

func TestLoadDevModeKeepsGenerousTimeout(t *testing.T) {
	t.Setenv("XORDON_DEV_MODE", "1")
	t.Setenv("XORDON_API_TIMEOUT_MS", "120000")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Fatalf("Timeout = %v, a timeout above the floor must survive", cfg.Timeout)
	}
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("an explicitly named missing config file must fail loudly")
	}
}

func TestParseIntRejectsGarbage(t *testing.T) {
	t.Setenv("XORDON_TEST_INT", "abc")
	if got := ParseInt("XORDON_TEST_INT", 7); got != 7 {
		t.Fatalf("ParseInt = %d, want the default on garbage", got)
	}
}

func TestParseBoolForms(t *testing.T) {
	for _, v := range []string{"1", "t", "TRUE"} {
		t.Setenv("XORDON_TEST_BOOL", v)
		if !ParseBool("XORDON_TEST_BOOL", false) {
			t.Errorf("ParseBool(%q) = false", v)
		}
	}
	t.Setenv("XORDON_TEST_BOOL", "not-a-bool")
	if ParseBool("XORDON_TEST_BOOL", true) != true {
		t.Error("garbage must resolve to the default")
	}
}
