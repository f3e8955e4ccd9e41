package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/qos"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Mode != ModePeer {
		t.Errorf("Mode = %q, want peer", cfg.Mode)
	}
	if !cfg.Scouting.Enabled {
		t.Error("scouting should be enabled by default")
	}

	q := cfg.DefaultQoS()
	if q.Priority() != qos.PriorityData || q.CongestionControl() != qos.CongestionControlDrop {
		t.Errorf("DefaultQoS() = %v/%v", q.Priority(), q.CongestionControl())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zlink.yaml")
	content := `
mode: client
connect:
  - tcp/router.local:7447
scouting:
  enabled: false
  timeout: 5s
default_priority: 4
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != ModeClient {
		t.Errorf("Mode = %q, want client", cfg.Mode)
	}
	if len(cfg.Connect) != 1 || cfg.Connect[0] != "tcp/router.local:7447" {
		t.Errorf("Connect = %v", cfg.Connect)
	}
	if cfg.Scouting.Enabled {
		t.Error("scouting should be disabled")
	}
	if cfg.Scouting.Timeout != 5*time.Second {
		t.Errorf("Scouting.Timeout = %v, want 5s", cfg.Scouting.Timeout)
	}
	if cfg.DefaultPriority != qos.PriorityDataHigh {
		t.Errorf("DefaultPriority = %v, want DATA_HIGH", cfg.DefaultPriority)
	}
	// Unset fields keep defaults.
	if cfg.DefaultCongestionControl != qos.CongestionControlDrop {
		t.Errorf("DefaultCongestionControl = %v, want DROP", cfg.DefaultCongestionControl)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load on a missing file should fail")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "router" }},
		{"bad priority", func(c *Config) { c.DefaultPriority = 0 }},
		{"bad congestion control", func(c *Config) { c.DefaultCongestionControl = 7 }},
		{"client with listen", func(c *Config) {
			c.Mode = ModeClient
			c.Listen = []string{"tcp/0.0.0.0:7447"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
