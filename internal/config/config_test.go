package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "none")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers)
	assert.Equal(t, 2, cfg.RoomSize)
	assert.Equal(t, int64(524288), cfg.ReadLimit)
	assert.Equal(t, 30*time.Second, cfg.PingPeriod)
	assert.Equal(t, 8, cfg.JoinLimit)
	assert.Equal(t, time.Minute, cfg.JoinWindow)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := `mode: debug
port: 9090
log_level: debug
ice_servers:
  - stun:stun.example.org:3478
  - turn:turn.example.org:3478
ping_period: 5s
room_size: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644))
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"stun:stun.example.org:3478", "turn:turn.example.org:3478"}, cfg.ICEServers)
	assert.Equal(t, 5*time.Second, cfg.PingPeriod)
	assert.Equal(t, 4, cfg.RoomSize)
	assert.Equal(t, 8, cfg.JoinLimit)
}
