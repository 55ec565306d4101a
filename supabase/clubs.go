package supabase

import (
	"context"
	"net/url"
)

func (c *Client) UserMemberships(ctx context.Context, userID string) ([]Membership, error) {
	return selectRows[Membership](ctx, c, "memberships", url.Values{
		"select":  {"*"},
		"user_id": {"eq." + userID},
	})
}

func (c *Client) ClubMembers(ctx context.Context, clubID string) ([]Membership, error) {
	return selectRows[Membership](ctx, c, "memberships", url.Values{
		"select":  {"*,user:profiles(*)"},
		"club_id": {"eq." + clubID},
		"order":   {"joined_at.asc"},
	})
}

func (c *Client) InsertMembership(ctx context.Context, membership MembershipCreate) error {
	return insertRowMinimal(ctx, c, "memberships", membership)
}

func (c *Client) UpdateMembershipRole(ctx context.Context, clubID string, userID string, role Role) error {
	_, err := updateRow[Membership](ctx, c, "memberships", url.Values{
		"club_id": {"eq." + clubID},
		"user_id": {"eq." + userID},
	}, map[string]Role{"role": role})
	return err
}

func (c *Client) DeleteMembership(ctx context.Context, clubID string, userID string) error {
	return deleteRows(ctx, c, "memberships", url.Values{
		"club_id": {"eq." + clubID},
		"user_id": {"eq." + userID},
	})
}

// ClubsByID reads the clubs_with_member_count view for exactly the given ids,
// newest first.
func (c *Client) ClubsByID(ctx context.Context, ids []string) ([]Club, error) {
	return selectRows[Club](ctx, c, "clubs_with_member_count", url.Values{
		"select": {"*"},
		"id":     {inFilter(ids)},
		"order":  {"created_at.desc"},
	})
}

func (c *Client) Club(ctx context.Context, id string) (Club, error) {
	return selectRow[Club](ctx, c, "clubs_with_member_count", url.Values{
		"select": {"*"},
		"id":     {"eq." + id},
	})
}

// ClubByInviteCode looks a club up by its invite code. Codes are stored
// uppercase; callers normalize before calling.
func (c *Client) ClubByInviteCode(ctx context.Context, code string) (Club, error) {
	return selectRow[Club](ctx, c, "clubs", url.Values{
		"select":      {"*"},
		"invite_code": {"eq." + code},
	})
}

func (c *Client) InsertClub(ctx context.Context, club ClubCreate) (Club, error) {
	return insertRow[Club](ctx, c, "clubs", nil, club)
}

func (c *Client) UpdateClub(ctx context.Context, id string, update ClubUpdate) error {
	_, err := updateRow[Club](ctx, c, "clubs", url.Values{
		"id": {"eq." + id},
	}, update)
	return err
}

func (c *Client) DeleteClub(ctx context.Context, id string) error {
	return deleteRows(ctx, c, "clubs", url.Values{
		"id": {"eq." + id},
	})
}
