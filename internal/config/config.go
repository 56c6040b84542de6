// Package config loads the ambient operational settings around the
// storage core: pool size, data directory, and the direct-I/O toggle.
// None of this is persisted state the core itself reads back — it is the
// operator-facing surface the CLI wires the core up with.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the ambient configuration surrounding the storage core.
type Config struct {
	Buffer struct {
		PoolSize    int `mapstructure:"pool_size"`
		FrameSize   int `mapstructure:"frame_size"` // parsed but not read anywhere; frames are always page.FrameSize
	} `mapstructure:"buffer"`
	Storage struct {
		DataDir     string `mapstructure:"data_dir"`
		UseDirectIO bool   `mapstructure:"use_direct_io"`
	} `mapstructure:"storage"`
}

// Default returns the configuration used when no file or flags override
// it: a 128-frame pool (MAX_BUFFER_SIZE) over ./data, no direct I/O.
func Default() *Config {
	cfg := &Config{}
	cfg.Buffer.PoolSize = 128
	cfg.Storage.DataDir = "./data"
	return cfg
}

// Load reads path as YAML via viper and overlays it onto Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("buffer.pool_size", cfg.Buffer.PoolSize)
	v.SetDefault("storage.data_dir", cfg.Storage.DataDir)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
