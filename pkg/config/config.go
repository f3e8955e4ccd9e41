// Package config holds session configuration: engine endpoints, scouting
// settings and publication defaults. Configurations can be built in code
// starting from Default or loaded from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zlink-protocol/zlink-go/pkg/qos"
)

// ErrInvalidConfig is returned by Validate for malformed configurations.
var ErrInvalidConfig = errors.New("invalid configuration")

// Mode selects how the session participates in the network.
type Mode string

const (
	// ModePeer connects directly to other peers and routers.
	ModePeer Mode = "peer"

	// ModeClient connects through a router only.
	ModeClient Mode = "client"
)

// IsValid reports whether m is a defined mode.
func (m Mode) IsValid() bool {
	return m == ModePeer || m == ModeClient
}

// ScoutingConfig controls mDNS discovery of routers.
type ScoutingConfig struct {
	// Enabled turns multicast scouting on.
	Enabled bool `yaml:"enabled"`

	// Timeout bounds a single scouting round.
	Timeout time.Duration `yaml:"timeout"`
}

// UnmarshalYAML decodes the timeout from a duration string such as "5s".
func (s *ScoutingConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled *bool  `yaml:"enabled"`
		Timeout string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Enabled != nil {
		s.Enabled = *raw.Enabled
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("scouting timeout: %w", err)
		}
		s.Timeout = d
	}
	return nil
}

// Config configures a Session.
type Config struct {
	// Mode selects peer or client participation.
	Mode Mode `yaml:"mode"`

	// Connect lists engine endpoints to connect to, e.g.
	// "tcp/192.168.1.1:7447".
	Connect []string `yaml:"connect"`

	// Listen lists endpoints to accept connections on (peer mode).
	Listen []string `yaml:"listen"`

	// Scouting configures router discovery.
	Scouting ScoutingConfig `yaml:"scouting"`

	// DefaultPriority is the priority used by publishers declared
	// without an explicit QoS.
	DefaultPriority qos.Priority `yaml:"default_priority"`

	// DefaultCongestionControl is the congestion control mode used by
	// publishers declared without an explicit QoS.
	DefaultCongestionControl qos.CongestionControl `yaml:"default_congestion_control"`

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger `yaml:"-"`
}

// Default returns a Config with sensible defaults: peer mode, scouting
// enabled, default publication QoS.
func Default() Config {
	return Config{
		Mode: ModePeer,
		Scouting: ScoutingConfig{
			Enabled: true,
			Timeout: 3 * time.Second,
		},
		DefaultPriority:          qos.PriorityData,
		DefaultCongestionControl: qos.CongestionControlDrop,
	}
}

// Load reads a YAML configuration file. Fields absent from the file keep
// their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if !c.DefaultPriority.IsValid() {
		return fmt.Errorf("%w: priority %d", ErrInvalidConfig, c.DefaultPriority)
	}
	if !c.DefaultCongestionControl.IsValid() {
		return fmt.Errorf("%w: congestion control %d", ErrInvalidConfig, c.DefaultCongestionControl)
	}
	if c.Mode == ModeClient && len(c.Listen) > 0 {
		return fmt.Errorf("%w: client mode cannot listen", ErrInvalidConfig)
	}
	return nil
}

// DefaultQoS returns the QoS applied to publishers declared without an
// explicit QoS.
func (c *Config) DefaultQoS() qos.QoS {
	return qos.NewBuilder().
		Priority(c.DefaultPriority).
		CongestionControl(c.DefaultCongestionControl).
		Build()
}
