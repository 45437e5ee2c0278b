package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverrides_TLS(t *testing.T) {
	t.Setenv("TLS_CERT_FILE", "/etc/ssl/app.crt")
	t.Setenv("TLS_KEY_FILE", "/etc/ssl/app.key")

	var c AppConfig
	applyEnvOverrides(&c)
	assert.Equal(t, "/etc/ssl/app.crt", c.TLSCertFile)
	assert.Equal(t, "/etc/ssl/app.key", c.TLSKeyFile)
}

func TestLoadJSONConfig_AppSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"app": {
			"AppPort": "9090",
			"TLSCertFile": "cert.pem",
			"TLSKeyFile": "key.pem"
		}
	}`), 0o644))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))
	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, "cert.pem", c.TLSCertFile)
	assert.Equal(t, "key.pem", c.TLSKeyFile)
}

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	assert.Equal(t, "8080", c.AppPort)
	assert.Empty(t, c.TLSCertFile, "TLS stays off unless configured")
	assert.Equal(t, 3, c.FreeScansPerWeek)
	assert.Equal(t, 30, c.PlusDurationDays)
}
