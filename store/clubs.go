package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/clubsync/clubsync/internal/keyed"
	"github.com/clubsync/clubsync/supabase"
)

type ClubsRemote interface {
	UserMemberships(ctx context.Context, userID string) ([]supabase.Membership, error)
	ClubMembers(ctx context.Context, clubID string) ([]supabase.Membership, error)
	InsertMembership(ctx context.Context, membership supabase.MembershipCreate) error
	UpdateMembershipRole(ctx context.Context, clubID string, userID string, role supabase.Role) error
	DeleteMembership(ctx context.Context, clubID string, userID string) error
	ClubsByID(ctx context.Context, ids []string) ([]supabase.Club, error)
	Club(ctx context.Context, id string) (supabase.Club, error)
	ClubByInviteCode(ctx context.Context, code string) (supabase.Club, error)
	InsertClub(ctx context.Context, club supabase.ClubCreate) (supabase.Club, error)
	UpdateClub(ctx context.Context, id string, update supabase.ClubUpdate) error
	DeleteClub(ctx context.Context, id string) error
}

// Clubs is the directory of the current identity's clubs, their membership
// lists and the identity's role per club.
func NewClubs(remote ClubsRemote, session *Session) *Clubs {
	return &Clubs{
		remote:  remote,
		session: session,
		members: keyed.New[string, supabase.Membership](),
	}
}

type Clubs struct {
	remote  ClubsRemote
	session *Session

	mu      sync.Mutex
	seq     uint64
	clubs   []supabase.Club
	roles   map[string]supabase.Role
	current *supabase.Club

	members *keyed.Cache[string, supabase.Membership]
}

// FetchUserClubs loads the identity's memberships, derives the role table and
// fetches the club records for exactly those ids. Zero memberships is
// success: an empty directory, not an error. Clubs and roles commit together,
// guarded by a sequence token so overlapping fetches resolve to the newest.
func (c *Clubs) FetchUserClubs(ctx context.Context) ([]supabase.Club, error) {
	userID, ok := c.session.UserID()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	c.mu.Lock()
	c.seq++
	token := c.seq
	c.mu.Unlock()

	memberships, err := c.remote.UserMemberships(ctx, userID)
	if err != nil {
		return nil, remoteErr("fetch memberships", err)
	}

	roles := make(map[string]supabase.Role, len(memberships))
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		roles[m.ClubID] = m.Role
		ids = append(ids, m.ClubID)
	}

	var clubs []supabase.Club
	if len(ids) > 0 {
		if clubs, err = c.remote.ClubsByID(ctx, ids); err != nil {
			return nil, remoteErr("fetch clubs", err)
		}
	}

	c.mu.Lock()
	if token == c.seq {
		c.clubs = clubs
		c.roles = roles
	}
	c.mu.Unlock()

	return slices.Clone(clubs), nil
}

func (c *Clubs) FetchClubByID(ctx context.Context, clubID string) (supabase.Club, error) {
	club, err := c.remote.Club(ctx, clubID)
	if err != nil {
		return supabase.Club{}, remoteErr("fetch club", err)
	}

	c.mu.Lock()
	c.current = &club
	c.mu.Unlock()
	return club, nil
}

// FetchClubByInviteCode normalizes the code to uppercase before the lookup.
// No matching club is an absent result, not an error.
func (c *Clubs) FetchClubByInviteCode(ctx context.Context, code string) (supabase.Club, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	club, err := c.remote.ClubByInviteCode(ctx, code)
	if err != nil {
		err = remoteErr("fetch club by invite code", err)
		if errors.Is(err, ErrNotFound) {
			return supabase.Club{}, false, nil
		}
		return supabase.Club{}, false, err
	}
	return club, true, nil
}

// CreateClub creates the club and refreshes the directory so the creator's
// new membership and admin role are immediately visible.
func (c *Clubs) CreateClub(ctx context.Context, name string, description string) (supabase.Club, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return supabase.Club{}, errors.New("club name must not be empty")
	}

	userID, ok := c.session.UserID()
	if !ok {
		return supabase.Club{}, ErrNotAuthenticated
	}

	create := supabase.ClubCreate{
		Name:      name,
		CreatedBy: userID,
	}
	if description != "" {
		create.Description = &description
	}

	club, err := c.remote.InsertClub(ctx, create)
	if err != nil {
		return supabase.Club{}, remoteErr("create club", err)
	}

	if _, err = c.FetchUserClubs(ctx); err != nil {
		return club, err
	}
	return club, nil
}

func (c *Clubs) UpdateClub(ctx context.Context, clubID string, update supabase.ClubUpdate) error {
	if err := c.remote.UpdateClub(ctx, clubID, update); err != nil {
		return remoteErr("update club", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.clubs {
		if c.clubs[i].ID == clubID {
			applyClubUpdate(&c.clubs[i], update)
		}
	}
	if c.current != nil && c.current.ID == clubID {
		applyClubUpdate(c.current, update)
	}
	return nil
}

func applyClubUpdate(club *supabase.Club, update supabase.ClubUpdate) {
	club.Name = update.Name.Or(club.Name)
	club.Description = update.Description.Or(club.Description)
	club.LogoURL = update.LogoURL.Or(club.LogoURL)
}

func (c *Clubs) DeleteClub(ctx context.Context, clubID string) error {
	if err := c.remote.DeleteClub(ctx, clubID); err != nil {
		return remoteErr("delete club", err)
	}

	c.mu.Lock()
	c.clubs = slices.DeleteFunc(c.clubs, func(club supabase.Club) bool {
		return club.ID == clubID
	})
	delete(c.roles, clubID)
	if c.current != nil && c.current.ID == clubID {
		c.current = nil
	}
	c.mu.Unlock()

	c.members.Invalidate(clubID)
	return nil
}

// JoinClub creates a membership with role member. Joining a club the identity
// is already a member of is a recognized condition and surfaces as
// ErrDuplicate.
func (c *Clubs) JoinClub(ctx context.Context, clubID string) error {
	userID, ok := c.session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	if err := c.remote.InsertMembership(ctx, supabase.MembershipCreate{
		UserID: userID,
		ClubID: clubID,
		Role:   supabase.RoleMember,
	}); err != nil {
		return remoteErr("join club", err)
	}

	_, err := c.FetchUserClubs(ctx)
	return err
}

func (c *Clubs) LeaveClub(ctx context.Context, clubID string) error {
	userID, ok := c.session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	if err := c.remote.DeleteMembership(ctx, clubID, userID); err != nil {
		return remoteErr("leave club", err)
	}

	c.mu.Lock()
	c.clubs = slices.DeleteFunc(c.clubs, func(club supabase.Club) bool {
		return club.ID == clubID
	})
	delete(c.roles, clubID)
	if c.current != nil && c.current.ID == clubID {
		c.current = nil
	}
	c.mu.Unlock()

	c.members.Invalidate(clubID)
	return nil
}

func (c *Clubs) FetchClubMembers(ctx context.Context, clubID string) ([]supabase.Membership, error) {
	token := c.members.Begin(clubID)

	members, err := c.remote.ClubMembers(ctx, clubID)
	if err != nil {
		return nil, remoteErr("fetch club members", err)
	}

	c.members.Commit(clubID, token, members)
	return members, nil
}

// UpdateMemberRole changes a member's role. Authorization is enforced by the
// remote service; an unauthorized update matches no rows and is reported as
// an error rather than assumed to have succeeded.
func (c *Clubs) UpdateMemberRole(ctx context.Context, clubID string, userID string, role supabase.Role) error {
	if err := c.remote.UpdateMembershipRole(ctx, clubID, userID, role); err != nil {
		return remoteErr("update member role", err)
	}

	_, err := c.FetchClubMembers(ctx, clubID)
	return err
}

func (c *Clubs) RemoveMember(ctx context.Context, clubID string, userID string) error {
	if err := c.remote.DeleteMembership(ctx, clubID, userID); err != nil {
		return remoteErr("remove member", err)
	}

	_, err := c.FetchClubMembers(ctx, clubID)
	return err
}

// UserRole is a pure lookup against the cached role table. Absent means
// unknown until a directory fetch has completed, not "not a member".
func (c *Clubs) UserRole(clubID string) (supabase.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	role, ok := c.roles[clubID]
	return role, ok
}

func (c *Clubs) Clubs() []supabase.Club {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.clubs)
}

func (c *Clubs) Members(clubID string) ([]supabase.Membership, bool) {
	return c.members.Get(clubID)
}

func (c *Clubs) CurrentClub() (supabase.Club, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return supabase.Club{}, false
	}
	return *c.current, true
}

func (c *Clubs) SetCurrentClub(club *supabase.Club) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = club
}

// Reset drops all cached directory state, e.g. when the identity signs out.
func (c *Clubs) Reset() {
	c.mu.Lock()
	c.clubs = nil
	c.roles = nil
	c.current = nil
	c.mu.Unlock()

	c.members.Clear()
}
