package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
)

const (
	RendererTUI = "tui"
	RendererLog = "log"
)

type Config struct {
	LogLevel         string        `yaml:"log-level" env:"VORO_LOG_LEVEL" env-default:"info"`
	LogFile          string        `yaml:"log-file" env:"VORO_LOG_FILE" env-default:"voro.log"`
	GameURL          string        `yaml:"game-url" env:"VORO_GAME_URL"`
	Cookie           string        `yaml:"cookie" env:"VORO_COOKIE"`
	SkipBootstrap    bool          `yaml:"skip-bootstrap" env:"VORO_SKIP_BOOTSTRAP" env-default:"false"`
	Renderer         string        `yaml:"renderer" env:"VORO_RENDERER" env-default:"tui"`
	HandshakeTimeout time.Duration `yaml:"handshake-timeout" env:"VORO_HANDSHAKE_TIMEOUT" env-default:"10s"`
	WriteTimeout     time.Duration `yaml:"write-timeout" env:"VORO_WRITE_TIMEOUT" env-default:"10s"`
	Redis            Redis         `yaml:"redis" env-prefix:"VORO_REDIS_"`
}

type Redis struct {
	Enabled       bool   `yaml:"enabled" env:"ENABLED" env-default:"false"`
	Host          string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"PORT" env-default:"6379"`
	ChannelPrefix string `yaml:"channel-prefix" env:"CHANNEL_PREFIX" env-default:"voro"`
}

// Load - reads the config file and applies env overrides.
// A missing file is not an error; the config then comes from env and defaults only.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from env: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", statErr)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Validate - checks the settings the client can't start without.
func (that *Config) Validate() error {
	if that.GameURL == "" {
		return fmt.Errorf("game-url is required: %w", apperror.ErrInvalidConfig)
	}

	if that.Renderer != RendererTUI && that.Renderer != RendererLog {
		return fmt.Errorf("unknown renderer %q: %w", that.Renderer, apperror.ErrInvalidConfig)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
