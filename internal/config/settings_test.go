package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TELEMETRY_API_URL", "https://api.example.com/v1")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, 8080, settings.Port)
	assert.Equal(t, 8888, settings.MonPort)
	assert.Equal(t, 20*time.Second, settings.RequestTimeout)
	assert.Equal(t, time.Minute, settings.CacheTTL)
	assert.Equal(t, 5*time.Minute, settings.CacheCleanupInterval)
	assert.Equal(t, 10*time.Second, settings.PollInterval)
	assert.Equal(t, []string{"1 Phase"}, settings.DeviceTags)
	assert.Equal(t, 10, settings.DevicePageSize)
	assert.Equal(t, time.UTC, settings.Location())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
telemetryApiUrl: https://yaml.example.com
apiKey: from-yaml
pollInterval: 30s
deviceTags: ["3 Phase", "Meter"]
devicePageSize: 25
displayTimezone: Europe/Berlin
`)
	t.Setenv("API_KEY", "from-env")
	t.Setenv("PORT", "9090")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.example.com", settings.TelemetryAPIURL)
	assert.Equal(t, "from-env", settings.APIKey)
	assert.Equal(t, 9090, settings.Port)
	assert.Equal(t, 30*time.Second, settings.PollInterval)
	assert.Equal(t, []string{"3 Phase", "Meter"}, settings.DeviceTags)
	assert.Equal(t, 25, settings.DevicePageSize)
	assert.Equal(t, "Europe/Berlin", settings.Location().String())
}

func TestLoadEnvList(t *testing.T) {
	t.Setenv("TELEMETRY_API_URL", "https://api.example.com")
	t.Setenv("DEVICE_TAGS", "1 Phase,3 Phase")

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"1 Phase", "3 Phase"}, settings.DeviceTags)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing base url", env: map[string]string{}},
		{name: "relative base url", env: map[string]string{"TELEMETRY_API_URL": "/v1"}},
		{name: "poll too fast", env: map[string]string{"TELEMETRY_API_URL": "https://a.example", "POLL_INTERVAL": "500ms"}},
		{name: "poll too slow", env: map[string]string{"TELEMETRY_API_URL": "https://a.example", "POLL_INTERVAL": "10m"}},
		{name: "bad timezone", env: map[string]string{"TELEMETRY_API_URL": "https://a.example", "DISPLAY_TIMEZONE": "Mars/Olympus"}},
		{name: "negative page size", env: map[string]string{"TELEMETRY_API_URL": "https://a.example", "DEVICE_PAGE_SIZE": "-1"}},
		{name: "bad duration", env: map[string]string{"TELEMETRY_API_URL": "https://a.example", "CACHE_TTL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEMETRY_API_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
