package supabase

import (
	"context"
	"net/url"
)

func (c *Client) Profile(ctx context.Context, userID string) (Profile, error) {
	return selectRow[Profile](ctx, c, "profiles", url.Values{
		"select": {"*"},
		"id":     {"eq." + userID},
	})
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (Profile, error) {
	return updateRow[Profile](ctx, c, "profiles", url.Values{
		"id": {"eq." + userID},
	}, update)
}
