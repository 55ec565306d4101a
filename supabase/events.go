package supabase

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

func (c *Client) ClubEvents(ctx context.Context, clubID string) ([]EventWithCounts, error) {
	return selectRows[EventWithCounts](ctx, c, "events_with_rsvp_counts", url.Values{
		"select":  {"*"},
		"club_id": {"eq." + clubID},
		"order":   {"start_time.asc"},
	})
}

func (c *Client) Event(ctx context.Context, id string) (EventWithCounts, error) {
	return selectRow[EventWithCounts](ctx, c, "events_with_rsvp_counts", url.Values{
		"select": {"*"},
		"id":     {"eq." + id},
	})
}

func (c *Client) UpcomingEvents(ctx context.Context, clubIDs []string, after time.Time, limit int) ([]EventWithCounts, error) {
	return selectRows[EventWithCounts](ctx, c, "events_with_rsvp_counts", url.Values{
		"select":     {"*"},
		"club_id":    {inFilter(clubIDs)},
		"start_time": {"gte." + after.UTC().Format(time.RFC3339)},
		"order":      {"start_time.asc"},
		"limit":      {strconv.Itoa(limit)},
	})
}

func (c *Client) InsertEvent(ctx context.Context, event EventCreate) (Event, error) {
	return insertRow[Event](ctx, c, "events", nil, event)
}

func (c *Client) UpdateEvent(ctx context.Context, id string, update EventUpdate) error {
	_, err := updateRow[Event](ctx, c, "events", url.Values{
		"id": {"eq." + id},
	}, update)
	return err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return deleteRows(ctx, c, "events", url.Values{
		"id": {"eq." + id},
	})
}

// UserRsvps returns the user's RSVPs limited to the given event ids.
func (c *Client) UserRsvps(ctx context.Context, userID string, eventIDs []string) ([]Rsvp, error) {
	return selectRows[Rsvp](ctx, c, "rsvps", url.Values{
		"select":   {"event_id,user_id,status,responded_at"},
		"user_id":  {"eq." + userID},
		"event_id": {inFilter(eventIDs)},
	})
}

func (c *Client) EventRsvps(ctx context.Context, eventID string) ([]Rsvp, error) {
	return selectRows[Rsvp](ctx, c, "rsvps", url.Values{
		"select":   {"*,user:profiles(*)"},
		"event_id": {"eq." + eventID},
		"order":    {"responded_at.desc"},
	})
}

// UpsertRsvp inserts or overwrites the (event, user) RSVP. At most one row
// per pair ever exists.
func (c *Client) UpsertRsvp(ctx context.Context, rsvp RsvpUpsert) error {
	return upsertRow(ctx, c, "rsvps", "event_id,user_id", rsvp)
}
