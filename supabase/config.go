package supabase

import (
	"fmt"
	"strings"

	"github.com/clubsync/clubsync/internal/xtime"
)

type Config struct {
	BaseURL      string         `toml:"base_url"`
	AnonKey      string         `toml:"anon_key"`
	RefreshToken string         `toml:"refresh_token"`
	Every        xtime.Duration `toml:"every"`
	Burst        int            `toml:"burst"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n BaseURL: %s\n AnonKey: %s\n RefreshToken: %s\n Every: %s\n Burst: %d",
		c.BaseURL,
		strings.Repeat("*", len(c.AnonKey)),
		strings.Repeat("*", len(c.RefreshToken)),
		c.Every,
		c.Burst,
	)
}
