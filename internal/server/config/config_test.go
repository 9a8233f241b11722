package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 10*time.Minute, cfg.ForwardTimeout)
	assert.Equal(t, int64(500<<20), cfg.MaxUploadBytes)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.NotEmpty(t, cfg.S3Bucket)
}

func TestParseEnv_Primary(t *testing.T) {
	t.Setenv(EnvEncryptionKey, "primary-pass")
	t.Setenv(EnvEncryptionKeyFallback, "fallback-pass")

	cfg := &Config{}
	parseEnv(cfg)
	assert.Equal(t, "primary-pass", cfg.EncryptionPassphrase)
}

func TestParseEnv_Fallback(t *testing.T) {
	t.Setenv(EnvEncryptionKey, "")
	t.Setenv(EnvEncryptionKeyFallback, "fallback-pass")

	cfg := &Config{}
	parseEnv(cfg)
	assert.Equal(t, "fallback-pass", cfg.EncryptionPassphrase)
}

func TestParseEnv_Unset(t *testing.T) {
	t.Setenv(EnvEncryptionKey, "")
	t.Setenv(EnvEncryptionKeyFallback, "")

	cfg := &Config{}
	parseEnv(cfg)
	assert.Empty(t, cfg.EncryptionPassphrase)
}

func TestParseJson_Overlay(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "conf-*.json")
	require.NoError(t, err)

	_, err = f.WriteString(`{
		"endpoint_addr_http": ":9090",
		"database_dsn": "postgres://x",
		"secret_key": "json-secret",
		"access_token_validity_duration": "30m",
		"refresh_token_validity_duration": "168h",
		"forward_timeout": "5m",
		"max_upload_bytes": 1048576,
		"s3_root_user": "ju",
		"s3_root_password": "jp",
		"s3_bucket": "jb",
		"s3_region": "jr",
		"s3_base_endpoint": "http://localhost:9000/"
	}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-c", f.Name()}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 5*time.Minute, cfg.ForwardTimeout)
	assert.Equal(t, int64(1048576), cfg.MaxUploadBytes)
	assert.Equal(t, "jb", cfg.S3Bucket)
}

func TestParseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-a", ":7070", "-d", "postgres://flag", "-t", "5", "-f", "2"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://flag", cfg.DatabaseDSN)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 2*time.Minute, cfg.ForwardTimeout)
}
