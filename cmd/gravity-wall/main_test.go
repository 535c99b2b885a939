package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gravity-wall/config"
)

func TestFlagsCompleteFileConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "wall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  source: websocket\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.NoError(t, flag.CommandLine.Set("url", "ws://feed.local/ws"))
	require.NoError(t, flag.CommandLine.Set("feed", "wedding"))
	applyFlags(cfg)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ws://feed.local/ws", cfg.Feed.URL)
	assert.Equal(t, "wedding", cfg.Feed.ID)
	assert.Equal(t, config.SourceWebsocket, cfg.Feed.Source)
}
