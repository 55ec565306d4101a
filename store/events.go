package store

import (
	"context"
	"sync"
	"time"

	"github.com/clubsync/clubsync/internal/keyed"
	"github.com/clubsync/clubsync/supabase"
)

type EventsRemote interface {
	UserMemberships(ctx context.Context, userID string) ([]supabase.Membership, error)
	ClubEvents(ctx context.Context, clubID string) ([]supabase.EventWithCounts, error)
	Event(ctx context.Context, id string) (supabase.EventWithCounts, error)
	UpcomingEvents(ctx context.Context, clubIDs []string, after time.Time, limit int) ([]supabase.EventWithCounts, error)
	InsertEvent(ctx context.Context, event supabase.EventCreate) (supabase.Event, error)
	UpdateEvent(ctx context.Context, id string, update supabase.EventUpdate) error
	DeleteEvent(ctx context.Context, id string) error
	UserRsvps(ctx context.Context, userID string, eventIDs []string) ([]supabase.Rsvp, error)
	EventRsvps(ctx context.Context, eventID string) ([]supabase.Rsvp, error)
	UpsertRsvp(ctx context.Context, rsvp supabase.RsvpUpsert) error
}

type RsvpCounts struct {
	Going    int
	Maybe    int
	NotGoing int
}

// Event is an event row joined with its server-computed RSVP aggregate and
// the current identity's own status ("" when the identity has not responded).
type Event struct {
	supabase.Event
	RsvpCounts RsvpCounts
	UserRsvp   supabase.RsvpStatus
}

// Past reports whether the event's start lies strictly before now. This is
// recomputed on every read, never stored.
func (e Event) Past(now time.Time) bool {
	return e.StartTime.Before(now)
}

const upcomingEventsLimit = 20

// Events caches each club's events together with RSVP aggregates. Aggregate
// counts come exclusively from the remote view; they are never recomputed
// from raw RSVP rows, and every mutation is followed by a refetch of the
// affected view instead of a local patch.
func NewEvents(remote EventsRemote, session *Session, clubs *Clubs) *Events {
	return &Events{
		remote:  remote,
		session: session,
		clubs:   clubs,
		events:  keyed.New[string, Event](),
		rsvps:   keyed.New[string, supabase.Rsvp](),
	}
}

type Events struct {
	remote  EventsRemote
	session *Session
	clubs   *Clubs

	mu      sync.Mutex
	current *Event

	events *keyed.Cache[string, Event]         // by club id
	rsvps  *keyed.Cache[string, supabase.Rsvp] // by event id
}

// FetchClubEvents loads the club's events sorted by start time ascending and,
// when an identity is present, merges that identity's RSVP statuses for
// exactly the fetched event ids.
func (e *Events) FetchClubEvents(ctx context.Context, clubID string) ([]Event, error) {
	token := e.events.Begin(clubID)

	rows, err := e.remote.ClubEvents(ctx, clubID)
	if err != nil {
		return nil, remoteErr("fetch club events", err)
	}

	events, err := e.withUserRsvps(ctx, rows)
	if err != nil {
		return nil, err
	}

	e.events.Commit(clubID, token, events)
	return events, nil
}

func (e *Events) withUserRsvps(ctx context.Context, rows []supabase.EventWithCounts) ([]Event, error) {
	statuses := make(map[string]supabase.RsvpStatus)
	if userID, ok := e.session.UserID(); ok && len(rows) > 0 {
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		rsvps, err := e.remote.UserRsvps(ctx, userID, ids)
		if err != nil {
			return nil, remoteErr("fetch user rsvps", err)
		}
		for _, rsvp := range rsvps {
			statuses[rsvp.EventID] = rsvp.Status
		}
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, Event{
			Event: row.Event,
			RsvpCounts: RsvpCounts{
				Going:    row.GoingCount,
				Maybe:    row.MaybeCount,
				NotGoing: row.NotGoingCount,
			},
			UserRsvp: statuses[row.ID],
		})
	}
	return events, nil
}

func (e *Events) FetchEventByID(ctx context.Context, eventID string) (Event, error) {
	row, err := e.remote.Event(ctx, eventID)
	if err != nil {
		return Event{}, remoteErr("fetch event", err)
	}

	events, err := e.withUserRsvps(ctx, []supabase.EventWithCounts{row})
	if err != nil {
		return Event{}, err
	}
	event := events[0]

	e.mu.Lock()
	e.current = &event
	e.mu.Unlock()
	return event, nil
}

// FetchUpcomingEvents returns the next events across all of the identity's
// clubs, soonest first. The result is not cached.
func (e *Events) FetchUpcomingEvents(ctx context.Context) ([]Event, error) {
	userID, ok := e.session.UserID()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	memberships, err := e.remote.UserMemberships(ctx, userID)
	if err != nil {
		return nil, remoteErr("fetch memberships", err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	clubIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		clubIDs = append(clubIDs, m.ClubID)
	}

	rows, err := e.remote.UpcomingEvents(ctx, clubIDs, time.Now(), upcomingEventsLimit)
	if err != nil {
		return nil, remoteErr("fetch upcoming events", err)
	}
	return e.withUserRsvps(ctx, rows)
}

func (e *Events) CreateEvent(ctx context.Context, create supabase.EventCreate) (Event, error) {
	userID, ok := e.session.UserID()
	if !ok {
		return Event{}, ErrNotAuthenticated
	}
	create.CreatedBy = userID

	inserted, err := e.remote.InsertEvent(ctx, create)
	if err != nil {
		return Event{}, remoteErr("create event", err)
	}

	if _, err = e.FetchClubEvents(ctx, create.ClubID); err != nil {
		return Event{Event: inserted}, err
	}
	return Event{Event: inserted}, nil
}

func (e *Events) UpdateEvent(ctx context.Context, eventID string, update supabase.EventUpdate) error {
	if err := e.remote.UpdateEvent(ctx, eventID, update); err != nil {
		return remoteErr("update event", err)
	}

	event, err := e.FetchEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	e.events.Invalidate(event.ClubID)
	return nil
}

func (e *Events) DeleteEvent(ctx context.Context, eventID string) error {
	e.mu.Lock()
	var clubID string
	if e.current != nil && e.current.ID == eventID {
		clubID = e.current.ClubID
	}
	e.mu.Unlock()

	if err := e.remote.DeleteEvent(ctx, eventID); err != nil {
		return remoteErr("delete event", err)
	}

	e.mu.Lock()
	if e.current != nil && e.current.ID == eventID {
		e.current = nil
	}
	e.mu.Unlock()
	e.rsvps.Invalidate(eventID)

	if clubID != "" {
		if _, err := e.FetchClubEvents(ctx, clubID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Events) FetchEventRsvps(ctx context.Context, eventID string) ([]supabase.Rsvp, error) {
	token := e.rsvps.Begin(eventID)

	rsvps, err := e.remote.EventRsvps(ctx, eventID)
	if err != nil {
		return nil, remoteErr("fetch event rsvps", err)
	}

	e.rsvps.Commit(eventID, token, rsvps)
	return rsvps, nil
}

// SubmitRsvp upserts the identity's response: repeated calls overwrite, never
// duplicate. The event is then refetched in full so the aggregate counts stay
// server-authoritative.
func (e *Events) SubmitRsvp(ctx context.Context, eventID string, status supabase.RsvpStatus) error {
	userID, ok := e.session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	if err := e.remote.UpsertRsvp(ctx, supabase.RsvpUpsert{
		EventID:     eventID,
		UserID:      userID,
		Status:      status,
		RespondedAt: time.Now().UTC(),
	}); err != nil {
		return remoteErr("submit rsvp", err)
	}

	event, err := e.FetchEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	e.events.Invalidate(event.ClubID)
	e.rsvps.Invalidate(eventID)
	return nil
}

// CanManage reports whether the identity's role in the club allows creating
// and editing events. Enforcement happens remotely; this only gates UI.
func (e *Events) CanManage(clubID string) bool {
	role, ok := e.clubs.UserRole(clubID)
	return ok && role.CanPost()
}

func (e *Events) Events(clubID string) ([]Event, bool) {
	return e.events.Get(clubID)
}

func (e *Events) Rsvps(eventID string) ([]supabase.Rsvp, bool) {
	return e.rsvps.Get(eventID)
}

func (e *Events) CurrentEvent() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return Event{}, false
	}
	return *e.current, true
}

func (e *Events) SetCurrentEvent(event *Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = event
}

func (e *Events) Reset() {
	e.mu.Lock()
	e.current = nil
	e.mu.Unlock()

	e.events.Clear()
	e.rsvps.Clear()
}
