package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/clubsync/clubsync/internal/xtime"
	"github.com/clubsync/clubsync/supabase"
)

func LoadConfig(cfgPath string) (Config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cfg := defaultConfig()
	if _, err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:     slog.LevelInfo,
			Format:    LogFormatText,
			AddSource: false,
			Requests:  false,
		},
		Supabase: supabase.Config{
			Every: xtime.Duration(100 * time.Millisecond),
			Burst: 10,
		},
	}
}

type Config struct {
	Dev      bool            `toml:"dev"`
	Log      LogConfig       `toml:"log"`
	Supabase supabase.Config `toml:"supabase"`
}

func (c Config) String() string {
	return fmt.Sprintf("Dev: %t\nLog: %s\nSupabase: %s",
		c.Dev,
		c.Log,
		c.Supabase,
	)
}

type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    LogFormat  `toml:"format"`
	AddSource bool       `toml:"add_source"`
	Requests  bool       `toml:"requests"`
}

func (c LogConfig) String() string {
	return fmt.Sprintf("\n Level: %s\n Format: %s\n AddSource: %t\n Requests: %t",
		c.Level,
		c.Format,
		c.AddSource,
		c.Requests,
	)
}
