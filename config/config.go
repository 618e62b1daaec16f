package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Hub      HubConfig      `yaml:"hub"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Pushover PushoverConfig `yaml:"pushover"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

type HubConfig struct {
	Address  string `yaml:"address"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Scheme   string `yaml:"scheme"`
	Timeout  string `yaml:"timeout"`
	// InsecureSkipVerify disables TLS certificate checks for hubs behind
	// HTTPS with self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

type LookupConfig struct {
	Paths []string `yaml:"paths"`
}

type DispatchConfig struct {
	CallDelay   string `yaml:"call_delay"`
	DeviceDelay string `yaml:"device_delay"`
}

type BreakerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MaxFailures uint32 `yaml:"max_failures"`
	OpenTimeout string `yaml:"open_timeout"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file, expanding ${VAR} references from the
// environment. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Hub.Port == 0 {
		c.Hub.Port = 25105
	}
	if c.Hub.Scheme == "" {
		c.Hub.Scheme = "http"
	}
	if c.Hub.Timeout == "" {
		c.Hub.Timeout = "5s"
	}
	if len(c.Lookup.Paths) == 0 {
		c.Lookup.Paths = []string{
			"lookups/insteon_devices.csv",
			"/etc/insteon-alert/insteon_devices.csv",
		}
	}
	if c.Dispatch.CallDelay == "" {
		c.Dispatch.CallDelay = "1s"
	}
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = 3
	}
	if c.Breaker.OpenTimeout == "" {
		c.Breaker.OpenTimeout = "30s"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "insteon-alert"
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "insteon/alerts"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	durations := map[string]string{
		"hub.timeout":          c.Hub.Timeout,
		"dispatch.call_delay":  c.Dispatch.CallDelay,
		"breaker.open_timeout": c.Breaker.OpenTimeout,
	}
	if c.Dispatch.DeviceDelay != "" {
		durations["dispatch.device_delay"] = c.Dispatch.DeviceDelay
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	}

	if c.Hub.Scheme != "http" && c.Hub.Scheme != "https" {
		return fmt.Errorf("invalid hub.scheme %q: want http or https", c.Hub.Scheme)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt.qos %d: want 0, 1 or 2", c.MQTT.QoS)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}

	return nil
}

// Durations are validated by Load, so the errors are ignored here.

func (c HubConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c DispatchConfig) CallDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallDelay)
	return d
}

// DeviceDelayDuration returns zero when unset, which means twice the call delay.
func (c DispatchConfig) DeviceDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.DeviceDelay)
	return d
}

func (c BreakerConfig) OpenTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.OpenTimeout)
	return d
}
