package store

import (
	"context"
	"slices"

	"github.com/clubsync/clubsync/internal/keyed"
	"github.com/clubsync/clubsync/supabase"
)

type AnnouncementsRemote interface {
	ClubAnnouncements(ctx context.Context, clubID string) ([]supabase.Announcement, error)
	InsertAnnouncement(ctx context.Context, announcement supabase.AnnouncementCreate) (supabase.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id string, update supabase.AnnouncementUpdate) error
	DeleteAnnouncement(ctx context.Context, id string) error
}

// Announcements caches each club's feed, newest first. Unlike events and
// payments there is no derived aggregate that could drift, so create and
// delete patch the cached list locally instead of refetching.
func NewAnnouncements(remote AnnouncementsRemote, session *Session, clubs *Clubs) *Announcements {
	return &Announcements{
		remote:  remote,
		session: session,
		clubs:   clubs,
		feed:    keyed.New[string, supabase.Announcement](),
	}
}

type Announcements struct {
	remote  AnnouncementsRemote
	session *Session
	clubs   *Clubs

	feed *keyed.Cache[string, supabase.Announcement] // by club id
}

func (a *Announcements) FetchClubAnnouncements(ctx context.Context, clubID string) ([]supabase.Announcement, error) {
	token := a.feed.Begin(clubID)

	announcements, err := a.remote.ClubAnnouncements(ctx, clubID)
	if err != nil {
		return nil, remoteErr("fetch club announcements", err)
	}

	a.feed.Commit(clubID, token, announcements)
	return announcements, nil
}

// CreateAnnouncement prepends the server-confirmed record, author resolved,
// to the cached feed. A feed that was never fetched stays absent so the next
// fetch starts fresh.
func (a *Announcements) CreateAnnouncement(ctx context.Context, clubID string, title string, content string) (supabase.Announcement, error) {
	userID, ok := a.session.UserID()
	if !ok {
		return supabase.Announcement{}, ErrNotAuthenticated
	}

	announcement, err := a.remote.InsertAnnouncement(ctx, supabase.AnnouncementCreate{
		ClubID:    clubID,
		Title:     title,
		Content:   content,
		CreatedBy: userID,
	})
	if err != nil {
		return supabase.Announcement{}, remoteErr("create announcement", err)
	}

	a.feed.Patch(clubID, func(announcements []supabase.Announcement) []supabase.Announcement {
		return append([]supabase.Announcement{announcement}, announcements...)
	})
	return announcement, nil
}

// UpdateAnnouncement edits the record remotely and invalidates the club's
// cached feed so the next read refetches it.
func (a *Announcements) UpdateAnnouncement(ctx context.Context, clubID string, announcementID string, update supabase.AnnouncementUpdate) error {
	if err := a.remote.UpdateAnnouncement(ctx, announcementID, update); err != nil {
		return remoteErr("update announcement", err)
	}

	a.feed.Invalidate(clubID)
	return nil
}

// DeleteAnnouncement removes the record remotely, then drops it from the
// cached feed by id.
func (a *Announcements) DeleteAnnouncement(ctx context.Context, clubID string, announcementID string) error {
	if err := a.remote.DeleteAnnouncement(ctx, announcementID); err != nil {
		return remoteErr("delete announcement", err)
	}

	a.feed.Patch(clubID, func(announcements []supabase.Announcement) []supabase.Announcement {
		return slices.DeleteFunc(announcements, func(announcement supabase.Announcement) bool {
			return announcement.ID == announcementID
		})
	})
	return nil
}

// CanManage reports whether the identity's role in the club allows posting
// announcements.
func (a *Announcements) CanManage(clubID string) bool {
	role, ok := a.clubs.UserRole(clubID)
	return ok && role.CanPost()
}

func (a *Announcements) Announcements(clubID string) ([]supabase.Announcement, bool) {
	return a.feed.Get(clubID)
}

func (a *Announcements) Reset() {
	a.feed.Clear()
}
