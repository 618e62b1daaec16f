package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 25105, cfg.Hub.Port)
	assert.Equal(t, "http", cfg.Hub.Scheme)
	assert.Equal(t, 5*time.Second, cfg.Hub.TimeoutDuration())
	assert.False(t, cfg.Hub.InsecureSkipVerify)
	assert.Len(t, cfg.Lookup.Paths, 2)
	assert.Equal(t, time.Second, cfg.Dispatch.CallDelayDuration())
	assert.Zero(t, cfg.Dispatch.DeviceDelayDuration())
	assert.False(t, cfg.Breaker.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_FileWithEnv(t *testing.T) {
	t.Setenv("INSTEON_HUB_PASSWORD", "s3cret")

	path := writeConfig(t, `
hub:
  address: 10.0.0.20
  port: 25106
  username: admin
  password: ${INSTEON_HUB_PASSWORD}
  insecure_skip_verify: true
lookup:
  paths: [devices.csv]
dispatch:
  call_delay: 500ms
  device_delay: 3s
breaker:
  enabled: true
  max_failures: 5
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.20", cfg.Hub.Address)
	assert.Equal(t, 25106, cfg.Hub.Port)
	assert.Equal(t, "s3cret", cfg.Hub.Password)
	assert.True(t, cfg.Hub.InsecureSkipVerify)
	assert.Equal(t, []string{"devices.csv"}, cfg.Lookup.Paths)
	assert.Equal(t, 500*time.Millisecond, cfg.Dispatch.CallDelayDuration())
	assert.Equal(t, 3*time.Second, cfg.Dispatch.DeviceDelayDuration())
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Breaker.OpenTimeoutDuration())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad duration": "dispatch:\n  call_delay: soon\n",
		"bad scheme":   "hub:\n  scheme: ftp\n",
		"bad qos":      "mqtt:\n  qos: 3\n",
		"mqtt broker":  "mqtt:\n  enabled: true\n",
		"bad yaml":     "hub: [\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
