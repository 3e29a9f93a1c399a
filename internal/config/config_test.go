package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the file and fills defaults", func(t *testing.T) {
		// Given
		path := writeConfig(t, "game-url: http://localhost:5000/games/1\nrenderer: log\nredis:\n  enabled: true\n  port: \"6380\"\n")

		// When
		conf, err := Load(path)

		// Then
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5000/games/1", conf.GameURL)
		assert.Equal(t, RendererLog, conf.Renderer)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 10*time.Second, conf.HandshakeTimeout)
		assert.True(t, conf.Redis.Enabled)
		assert.Equal(t, "localhost:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, "voro", conf.Redis.ChannelPrefix)
		assert.Empty(t, conf.Cookie)
		assert.False(t, conf.SkipBootstrap)
		assert.NoError(t, conf.Validate())
	})

	t.Run("Env overrides the file", func(t *testing.T) {
		// Given
		path := writeConfig(t, "game-url: http://localhost:5000/games/1\nwrite-timeout: 3s\n")
		t.Setenv("VORO_GAME_URL", "https://example.com/games/9")
		t.Setenv("VORO_REDIS_CHANNEL_PREFIX", "spectate")

		// When
		conf, err := Load(path)

		// Then
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/games/9", conf.GameURL)
		assert.Equal(t, 3*time.Second, conf.WriteTimeout)
		assert.Equal(t, "spectate", conf.Redis.ChannelPrefix)
	})

	t.Run("Reads the session cookie and bootstrap switch", func(t *testing.T) {
		// Given
		path := writeConfig(t, "game-url: http://localhost:5000/games/1\nskip-bootstrap: true\n")
		t.Setenv("VORO_COOKIE", "session=abc")

		// When
		conf, err := Load(path)

		// Then
		require.NoError(t, err)
		assert.Equal(t, "session=abc", conf.Cookie)
		assert.True(t, conf.SkipBootstrap)
	})

	t.Run("Missing file falls back to env", func(t *testing.T) {
		t.Setenv("VORO_GAME_URL", "http://localhost/games/2")

		conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.NoError(t, err)
		assert.Equal(t, "http://localhost/games/2", conf.GameURL)
		assert.Equal(t, RendererTUI, conf.Renderer)
	})

	t.Run("MustLoad panics on a broken file", func(t *testing.T) {
		path := writeConfig(t, "game-url: [unterminated\n")

		assert.Panics(t, func() {
			MustLoad(path)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		conf Config
	}{
		{name: "no game url", conf: Config{Renderer: RendererTUI}},
		{name: "unknown renderer", conf: Config{GameURL: "http://localhost/games/1", Renderer: "web"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.conf.Validate(), apperror.ErrInvalidConfig)
		})
	}
}
