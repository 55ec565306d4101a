package supabase

import (
	"context"
	"net/url"
)

func (c *Client) ClubAnnouncements(ctx context.Context, clubID string) ([]Announcement, error) {
	return selectRows[Announcement](ctx, c, "announcements", url.Values{
		"select":  {"*,author:profiles(id,name,avatar_url)"},
		"club_id": {"eq." + clubID},
		"order":   {"created_at.desc"},
	})
}

// InsertAnnouncement creates the announcement and returns the stored row with
// the author already resolved, so callers can patch it into a cached feed
// without a refetch.
func (c *Client) InsertAnnouncement(ctx context.Context, announcement AnnouncementCreate) (Announcement, error) {
	return insertRow[Announcement](ctx, c, "announcements", url.Values{
		"select": {"*,author:profiles(id,name,avatar_url)"},
	}, announcement)
}

func (c *Client) UpdateAnnouncement(ctx context.Context, id string, update AnnouncementUpdate) error {
	_, err := updateRow[Announcement](ctx, c, "announcements", url.Values{
		"id": {"eq." + id},
	}, update)
	return err
}

func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	return deleteRows(ctx, c, "announcements", url.Values{
		"id": {"eq." + id},
	})
}
