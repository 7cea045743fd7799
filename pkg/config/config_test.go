package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/client"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/fetch"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/sync"
)

func TestDefaultMatchesPackageDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, client.HalfLife, cfg.HalfLife)
	assert.Equal(t, fetch.DefaultCapacity, cfg.FetchWindow)
	assert.Equal(t, fetch.DefaultTimeout, cfg.FetchTimeout)
	assert.Equal(t, sync.HeartbeatInterval, cfg.SyncHeartbeat)
	assert.Equal(t, sync.StallTimeout, cfg.SyncStallTimeout)
	assert.Equal(t, -1, cfg.MinSuffixComponents)
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ccnx.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverlaysFileValues(t *testing.T) {
	path := writeConfigFile(t, `
[client]
SocketPath = /tmp/.alt.sock
MinSuffixComponents = 1
HalfLife = 2s

[fetch]
Window = 32
Timeout = 5s

[sync]
Heartbeat = 500ms
StallTimeout = 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/.alt.sock", cfg.SocketPath)
	assert.Equal(t, 1, cfg.MinSuffixComponents)
	assert.Equal(t, 2e9, float64(cfg.HalfLife))
	assert.Equal(t, 32, cfg.FetchWindow)
	assert.Equal(t, 5e9, float64(cfg.FetchTimeout))
	assert.Equal(t, 500e6, float64(cfg.SyncHeartbeat))
	assert.Equal(t, 10e9, float64(cfg.SyncStallTimeout))
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestEnvLocalPortClearsFileSocketPath(t *testing.T) {
	path := writeConfigFile(t, "[client]\nSocketPath = /tmp/.alt.sock\n")
	t.Setenv("CCN_LOCAL_PORT", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.SocketPath, "CCN_LOCAL_PORT overrides a configured socket path")
}

func TestEnvDebugEnablesDebug(t *testing.T) {
	t.Setenv("CCN_DEBUG", "1")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestCCNConfigEnvSelectsFile(t *testing.T) {
	path := writeConfigFile(t, "[fetch]\nWindow = 4\n")
	t.Setenv("CCN_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.FetchWindow)
}

func TestTemplateCarriesMinSuffixComponents(t *testing.T) {
	cfg := Default()
	cfg.MinSuffixComponents = 2
	tmpl := cfg.Template()
	assert.Equal(t, 2, tmpl.MinSuffixComponents)
	assert.Equal(t, -1, tmpl.MaxSuffixComponents)
}
