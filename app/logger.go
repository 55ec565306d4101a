package app

import (
	"log/slog"
	"os"

	"github.com/clubsync/clubsync/internal/xslog"
)

// SetupLogger configures the default slog logger. Per-request debug records
// from the supabase client carry a request_id attr and are dropped unless
// request logging is enabled.
func SetupLogger(cfg LogConfig) {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	if !cfg.Requests {
		handler = xslog.NewFilterHandler(handler, xslog.DropAttr("request_id"))
	}

	slog.SetDefault(slog.New(handler))
}
