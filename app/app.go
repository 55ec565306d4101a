package app

import (
	"context"
	"net/http"

	"github.com/clubsync/clubsync/internal/tsync"
	"github.com/clubsync/clubsync/store"
	"github.com/clubsync/clubsync/supabase"
)

// New wires the supabase client and the five domain stores. Stores are
// explicitly constructed with injected dependencies; there is no process-wide
// state.
func New(cfg Config) *App {
	client := supabase.New(cfg.Supabase, &http.Client{})

	session := store.NewSession(client)
	clubs := store.NewClubs(client, session)

	a := &App{
		Client:        client,
		Session:       session,
		Clubs:         clubs,
		Events:        store.NewEvents(client, session, clubs),
		Payments:      store.NewPayments(client, session, clubs),
		Announcements: store.NewAnnouncements(client, session, clubs),
	}

	client.OnSessionChange(func(session *supabase.Session) {
		if session == nil {
			a.reset()
		}
	})

	return a
}

type App struct {
	Client        *supabase.Client
	Session       *store.Session
	Clubs         *store.Clubs
	Events        *store.Events
	Payments      *store.Payments
	Announcements *store.Announcements
}

func (a *App) Initialize(ctx context.Context) error {
	return a.Session.Initialize(ctx)
}

// RefreshClub fans out the fetches for everything a club screen shows. All
// failures are collected and joined.
func (a *App) RefreshClub(ctx context.Context, clubID string) error {
	g, ctx := tsync.GroupWithContext(ctx)

	g.Go(func() error {
		_, err := a.Clubs.FetchClubMembers(ctx, clubID)
		return err
	})
	g.Go(func() error {
		_, err := a.Events.FetchClubEvents(ctx, clubID)
		return err
	})
	g.Go(func() error {
		_, err := a.Payments.FetchClubPayments(ctx, clubID)
		return err
	})
	g.Go(func() error {
		_, err := a.Announcements.FetchClubAnnouncements(ctx, clubID)
		return err
	})

	return g.Wait()
}

// reset drops all cached domain state once the identity is gone.
func (a *App) reset() {
	a.Clubs.Reset()
	a.Events.Reset()
	a.Payments.Reset()
	a.Announcements.Reset()
}

func (a *App) Close() {
	a.Session.Close()
}
