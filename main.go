package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clubsync/clubsync/app"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CLUBSYNC_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.toml"
	}

	cfg, err := app.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	app.SetupLogger(cfg.Log)
	slog.Info("Starting clubsync", slog.String("config", cfg.String()))

	a := app.New(cfg)
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err = a.Initialize(ctx); err != nil {
		slog.Error("Failed to initialize session", slog.Any("err", err))
	}
	slog.Info("Session resolved", slog.String("state", a.Session.State().String()))

	user, ok := a.Session.User()
	if !ok {
		return
	}
	slog.Info("Signed in", slog.String("user_id", user.ID), slog.String("email", user.Email))

	clubs, err := a.Clubs.FetchUserClubs(ctx)
	if err != nil {
		slog.Error("Failed to fetch clubs", slog.Any("err", err))
		os.Exit(1)
	}
	for _, club := range clubs {
		role, _ := a.Clubs.UserRole(club.ID)
		slog.Info("Club",
			slog.String("club_id", club.ID),
			slog.String("name", club.Name),
			slog.String("role", string(role)),
			slog.Int("members", club.MemberCount),
		)
		if err = a.RefreshClub(ctx, club.ID); err != nil {
			slog.Error("Failed to refresh club", slog.String("club_id", club.ID), slog.Any("err", err))
		}
	}

	outstanding, err := a.Payments.FetchUserOutstandingPayments(ctx)
	if err != nil {
		slog.Error("Failed to fetch outstanding payments", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("Outstanding payments", slog.Int("count", len(outstanding)))
}
