package config

import (
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults = %v, want nil", err)
	}
	if cfg.Proxy.Exe != "cidx" {
		t.Errorf("default exe = %q, want cidx", cfg.Proxy.Exe)
	}
	if cfg.Runtime.Concurrency != 10 {
		t.Errorf("default concurrency = %d, want 10", cfg.Runtime.Concurrency)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty exe", func(c *Config) { c.Proxy.Exe = "  " }, "--exe"},
		{"empty marker", func(c *Config) { c.Proxy.Marker = "" }, "--marker"},
		{"marker with separator", func(c *Config) { c.Proxy.Marker = "a/b" }, "--marker"},
		{"negative limit", func(c *Config) { c.Query.Limit = -1 }, "--limit"},
		{"zero concurrency", func(c *Config) { c.Runtime.Concurrency = 0 }, "--concurrency"},
		{"excess concurrency", func(c *Config) { c.Runtime.Concurrency = 11 }, "--concurrency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %q, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateTrimsExe(t *testing.T) {
	cfg := New()
	cfg.Proxy.Exe = "  cidx  "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Proxy.Exe != "cidx" {
		t.Errorf("exe not trimmed: %q", cfg.Proxy.Exe)
	}
}
