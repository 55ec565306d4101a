package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/clubsync/clubsync/supabase"
)

// fakeRemote is an in-memory stand-in for the supabase client. It recomputes
// the server-side view aggregates (member counts, RSVP counts, paid/total
// counts) from its raw rows so the stores see the same shapes the real views
// return.
func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		profiles:      map[string]supabase.Profile{},
		passwords:     map[string]string{},
		clubs:         map[string]supabase.Club{},
		events:        map[string]supabase.Event{},
		rsvps:         map[string]supabase.Rsvp{},
		requests:      map[string]supabase.PaymentRequest{},
		records:       map[string]supabase.PaymentRecord{},
		announcements: map[string]supabase.Announcement{},
		listeners:     map[int]func(*supabase.Session){},
		fail:          map[string]error{},
	}
}

type fakeRemote struct {
	mu sync.Mutex

	session      *supabase.Session
	listeners    map[int]func(*supabase.Session)
	nextListener int

	profiles      map[string]supabase.Profile
	passwords     map[string]string // by email
	memberships   []supabase.Membership
	clubs         map[string]supabase.Club
	events        map[string]supabase.Event
	rsvps         map[string]supabase.Rsvp // by event id + user id
	requests      map[string]supabase.PaymentRequest
	records       map[string]supabase.PaymentRecord
	announcements map[string]supabase.Announcement

	nextID int

	// fail injects an error per remote operation name.
	fail map[string]error
	// clubEventsHook runs inside ClubEvents before the rows are read, to
	// interleave concurrent fetches deterministically.
	clubEventsHook func(clubID string)
}

func notFoundErr() error {
	return &supabase.Error{Status: 404, Code: "PGRST116", Message: "no rows returned"}
}

func duplicateErr() error {
	return &supabase.Error{Status: 409, Code: "23505", Message: "duplicate key value violates unique constraint"}
}

func (r *fakeRemote) failure(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fail[op]
}

func (r *fakeRemote) setFailure(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, op)
		return
	}
	r.fail[op] = err
}

func (r *fakeRemote) id(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

// notify simulates an externally observed session change, e.g. a token
// refresh or a remote revocation.
func (r *fakeRemote) notify(session *supabase.Session) {
	r.mu.Lock()
	r.session = session
	listeners := make([]func(*supabase.Session), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}

// Seed helpers. All return the created row so tests can reference ids.

func (r *fakeRemote) addUser(email string, name string) supabase.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile := supabase.Profile{
		ID:        r.id("user"),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	r.profiles[profile.ID] = profile
	r.passwords[email] = "password"
	return profile
}

func (r *fakeRemote) signInAs(userID string) *supabase.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := &supabase.Session{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiresAt:    time.Now().Add(time.Hour),
		UserID:       userID,
		Email:        r.profiles[userID].Email,
	}
	r.session = session
	return session
}

func (r *fakeRemote) addClub(name string, createdBy string) supabase.Club {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addClubLocked(name, createdBy)
}

func (r *fakeRemote) addClubLocked(name string, createdBy string) supabase.Club {
	club := supabase.Club{
		ID:         r.id("club"),
		Name:       name,
		InviteCode: strings.ToUpper(r.id("code")),
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}
	r.clubs[club.ID] = club
	r.memberships = append(r.memberships, supabase.Membership{
		UserID:   createdBy,
		ClubID:   club.ID,
		Role:     supabase.RoleAdmin,
		JoinedAt: time.Now(),
	})
	return club
}

func (r *fakeRemote) addMember(clubID string, userID string, role supabase.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberships = append(r.memberships, supabase.Membership{
		UserID:   userID,
		ClubID:   clubID,
		Role:     role,
		JoinedAt: time.Now(),
	})
}

func (r *fakeRemote) addEvent(clubID string, title string, startTime time.Time) supabase.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	event := supabase.Event{
		ID:        r.id("event"),
		ClubID:    clubID,
		Title:     title,
		StartTime: startTime,
		CreatedAt: time.Now(),
	}
	r.events[event.ID] = event
	return event
}

func (r *fakeRemote) addRsvp(eventID string, userID string, status supabase.RsvpStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rsvps[eventID+"/"+userID] = supabase.Rsvp{
		EventID:     eventID,
		UserID:      userID,
		Status:      status,
		RespondedAt: time.Now(),
	}
}

func (r *fakeRemote) addPaymentRequest(clubID string, title string, amount int64) supabase.PaymentRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addPaymentRequestLocked(clubID, title, amount)
}

// addPaymentRequestLocked creates the request plus a pending record per
// current club member, mirroring the backend trigger.
func (r *fakeRemote) addPaymentRequestLocked(clubID string, title string, amount int64) supabase.PaymentRequest {
	request := supabase.PaymentRequest{
		ID:        r.id("request"),
		ClubID:    clubID,
		Title:     title,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	r.requests[request.ID] = request

	for _, m := range r.memberships {
		if m.ClubID == clubID {
			record := supabase.PaymentRecord{
				ID:        r.id("record"),
				RequestID: request.ID,
				UserID:    m.UserID,
				Status:    supabase.PaymentPending,
			}
			r.records[record.ID] = record
		}
	}
	return request
}

func (r *fakeRemote) recordFor(requestID string, userID string) (supabase.PaymentRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.records {
		if record.RequestID == requestID && record.UserID == userID {
			return record, true
		}
	}
	return supabase.PaymentRecord{}, false
}

func (r *fakeRemote) addAnnouncement(clubID string, title string, content string, createdBy string) supabase.Announcement {
	r.mu.Lock()
	defer r.mu.Unlock()

	announcement := supabase.Announcement{
		ID:        r.id("announcement"),
		ClubID:    clubID,
		Title:     title,
		Content:   content,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	r.announcements[announcement.ID] = announcement
	return announcement
}

// View reconstruction.

func (r *fakeRemote) clubViewLocked(club supabase.Club) supabase.Club {
	club.MemberCount = 0
	for _, m := range r.memberships {
		if m.ClubID == club.ID {
			club.MemberCount++
		}
	}
	return club
}

func (r *fakeRemote) eventViewLocked(event supabase.Event) supabase.EventWithCounts {
	row := supabase.EventWithCounts{Event: event}
	for _, rsvp := range r.rsvps {
		if rsvp.EventID != event.ID {
			continue
		}
		switch rsvp.Status {
		case supabase.RsvpGoing:
			row.GoingCount++
		case supabase.RsvpMaybe:
			row.MaybeCount++
		case supabase.RsvpNotGoing:
			row.NotGoingCount++
		}
	}
	return row
}

func (r *fakeRemote) requestViewLocked(request supabase.PaymentRequest) supabase.PaymentRequest {
	request.PaidCount = 0
	request.TotalCount = 0
	for _, record := range r.records {
		if record.RequestID != request.ID {
			continue
		}
		request.TotalCount++
		if record.Status == supabase.PaymentPaid {
			request.PaidCount++
		}
	}
	return request
}

// SessionRemote

func (r *fakeRemote) RestoreSession(ctx context.Context) (*supabase.Session, error) {
	if err := r.failure("RestoreSession"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session, nil
}

func (r *fakeRemote) SignUp(ctx context.Context, email string, password string, name string) (*supabase.Session, error) {
	if err := r.failure("SignUp"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, profile := range r.profiles {
		if profile.Email == email {
			return nil, duplicateErr()
		}
	}
	profile := supabase.Profile{
		ID:        r.id("user"),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	r.profiles[profile.ID] = profile
	r.passwords[email] = password

	r.session = &supabase.Session{
		AccessToken:  "access-" + profile.ID,
		RefreshToken: "refresh-" + profile.ID,
		ExpiresAt:    time.Now().Add(time.Hour),
		UserID:       profile.ID,
		Email:        email,
	}
	return r.session, nil
}

func (r *fakeRemote) SignIn(ctx context.Context, email string, password string) (*supabase.Session, error) {
	if err := r.failure("SignIn"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.passwords[email] != password {
		return nil, fmt.Errorf("%w: invalid login credentials", supabase.ErrInvalidCredentials)
	}
	for _, profile := range r.profiles {
		if profile.Email == email {
			r.session = &supabase.Session{
				AccessToken:  "access-" + profile.ID,
				RefreshToken: "refresh-" + profile.ID,
				ExpiresAt:    time.Now().Add(time.Hour),
				UserID:       profile.ID,
				Email:        email,
			}
			return r.session, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid login credentials", supabase.ErrInvalidCredentials)
}

func (r *fakeRemote) SignOut(ctx context.Context) error {
	r.mu.Lock()
	r.session = nil
	r.mu.Unlock()
	return r.failure("SignOut")
}

func (r *fakeRemote) OnSessionChange(fn func(*supabase.Session)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *fakeRemote) Profile(ctx context.Context, userID string) (supabase.Profile, error) {
	if err := r.failure("Profile"); err != nil {
		return supabase.Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return supabase.Profile{}, notFoundErr()
	}
	return profile, nil
}

// UpdateProfile trims the submitted name, standing in for whatever
// normalization the real backend applies. Tests rely on the confirmed row
// differing from the submitted one.
func (r *fakeRemote) UpdateProfile(ctx context.Context, userID string, update supabase.ProfileUpdate) (supabase.Profile, error) {
	if err := r.failure("UpdateProfile"); err != nil {
		return supabase.Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return supabase.Profile{}, notFoundErr()
	}
	if !update.Name.IsZero() {
		profile.Name = strings.TrimSpace(update.Name.Or(profile.Name))
	}
	profile.AvatarURL = update.AvatarURL.Or(profile.AvatarURL)
	profile.Phone = update.Phone.Or(profile.Phone)
	r.profiles[userID] = profile
	return profile, nil
}

// ClubsRemote

func (r *fakeRemote) UserMemberships(ctx context.Context, userID string) ([]supabase.Membership, error) {
	if err := r.failure("UserMemberships"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var memberships []supabase.Membership
	for _, m := range r.memberships {
		if m.UserID == userID {
			memberships = append(memberships, m)
		}
	}
	return memberships, nil
}

func (r *fakeRemote) ClubMembers(ctx context.Context, clubID string) ([]supabase.Membership, error) {
	if err := r.failure("ClubMembers"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var members []supabase.Membership
	for _, m := range r.memberships {
		if m.ClubID == clubID {
			profile := r.profiles[m.UserID]
			m.User = &profile
			members = append(members, m)
		}
	}
	slices.SortFunc(members, func(a, b supabase.Membership) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})
	return members, nil
}

func (r *fakeRemote) InsertMembership(ctx context.Context, membership supabase.MembershipCreate) error {
	if err := r.failure("InsertMembership"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.memberships {
		if m.ClubID == membership.ClubID && m.UserID == membership.UserID {
			return duplicateErr()
		}
	}
	r.memberships = append(r.memberships, supabase.Membership{
		UserID:   membership.UserID,
		ClubID:   membership.ClubID,
		Role:     membership.Role,
		JoinedAt: time.Now(),
	})
	return nil
}

func (r *fakeRemote) UpdateMembershipRole(ctx context.Context, clubID string, userID string, role supabase.Role) error {
	if err := r.failure("UpdateMembershipRole"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.memberships {
		if m.ClubID == clubID && m.UserID == userID {
			r.memberships[i].Role = role
			return nil
		}
	}
	return notFoundErr()
}

func (r *fakeRemote) DeleteMembership(ctx context.Context, clubID string, userID string) error {
	if err := r.failure("DeleteMembership"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.memberships = slices.DeleteFunc(r.memberships, func(m supabase.Membership) bool {
		return m.ClubID == clubID && m.UserID == userID
	})
	return nil
}

func (r *fakeRemote) ClubsByID(ctx context.Context, ids []string) ([]supabase.Club, error) {
	if err := r.failure("ClubsByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var clubs []supabase.Club
	for _, id := range ids {
		if club, ok := r.clubs[id]; ok {
			clubs = append(clubs, r.clubViewLocked(club))
		}
	}
	slices.SortFunc(clubs, func(a, b supabase.Club) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return clubs, nil
}

func (r *fakeRemote) Club(ctx context.Context, id string) (supabase.Club, error) {
	if err := r.failure("Club"); err != nil {
		return supabase.Club{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	club, ok := r.clubs[id]
	if !ok {
		return supabase.Club{}, notFoundErr()
	}
	return r.clubViewLocked(club), nil
}

func (r *fakeRemote) ClubByInviteCode(ctx context.Context, code string) (supabase.Club, error) {
	if err := r.failure("ClubByInviteCode"); err != nil {
		return supabase.Club{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, club := range r.clubs {
		if club.InviteCode == code {
			return r.clubViewLocked(club), nil
		}
	}
	return supabase.Club{}, notFoundErr()
}

func (r *fakeRemote) InsertClub(ctx context.Context, create supabase.ClubCreate) (supabase.Club, error) {
	if err := r.failure("InsertClub"); err != nil {
		return supabase.Club{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	club := r.addClubLocked(create.Name, create.CreatedBy)
	if create.Description != nil {
		club.Description = create.Description
		r.clubs[club.ID] = club
	}
	return club, nil
}

func (r *fakeRemote) UpdateClub(ctx context.Context, id string, update supabase.ClubUpdate) error {
	if err := r.failure("UpdateClub"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	club, ok := r.clubs[id]
	if !ok {
		return notFoundErr()
	}
	club.Name = update.Name.Or(club.Name)
	club.Description = update.Description.Or(club.Description)
	club.LogoURL = update.LogoURL.Or(club.LogoURL)
	r.clubs[id] = club
	return nil
}

func (r *fakeRemote) DeleteClub(ctx context.Context, id string) error {
	if err := r.failure("DeleteClub"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clubs, id)
	r.memberships = slices.DeleteFunc(r.memberships, func(m supabase.Membership) bool {
		return m.ClubID == id
	})
	return nil
}

// EventsRemote

func (r *fakeRemote) ClubEvents(ctx context.Context, clubID string) ([]supabase.EventWithCounts, error) {
	if err := r.failure("ClubEvents"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	hook := r.clubEventsHook
	r.mu.Unlock()
	if hook != nil {
		hook(clubID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []supabase.EventWithCounts
	for _, event := range r.events {
		if event.ClubID == clubID {
			rows = append(rows, r.eventViewLocked(event))
		}
	}
	slices.SortFunc(rows, func(a, b supabase.EventWithCounts) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return rows, nil
}

func (r *fakeRemote) Event(ctx context.Context, id string) (supabase.EventWithCounts, error) {
	if err := r.failure("Event"); err != nil {
		return supabase.EventWithCounts{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return supabase.EventWithCounts{}, notFoundErr()
	}
	return r.eventViewLocked(event), nil
}

func (r *fakeRemote) UpcomingEvents(ctx context.Context, clubIDs []string, after time.Time, limit int) ([]supabase.EventWithCounts, error) {
	if err := r.failure("UpcomingEvents"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []supabase.EventWithCounts
	for _, event := range r.events {
		if slices.Contains(clubIDs, event.ClubID) && !event.StartTime.Before(after) {
			rows = append(rows, r.eventViewLocked(event))
		}
	}
	slices.SortFunc(rows, func(a, b supabase.EventWithCounts) int {
		return a.StartTime.Compare(b.StartTime)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeRemote) InsertEvent(ctx context.Context, create supabase.EventCreate) (supabase.Event, error) {
	if err := r.failure("InsertEvent"); err != nil {
		return supabase.Event{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	event := supabase.Event{
		ID:          r.id("event"),
		ClubID:      create.ClubID,
		Title:       create.Title,
		Description: create.Description,
		Location:    create.Location,
		LocationLat: create.LocationLat,
		LocationLng: create.LocationLng,
		StartTime:   create.StartTime,
		EndTime:     create.EndTime,
		CreatedBy:   create.CreatedBy,
		CreatedAt:   time.Now(),
	}
	r.events[event.ID] = event
	return event, nil
}

func (r *fakeRemote) UpdateEvent(ctx context.Context, id string, update supabase.EventUpdate) error {
	if err := r.failure("UpdateEvent"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return notFoundErr()
	}
	event.Title = update.Title.Or(event.Title)
	event.Description = update.Description.Or(event.Description)
	event.Location = update.Location.Or(event.Location)
	event.LocationLat = update.LocationLat.Or(event.LocationLat)
	event.LocationLng = update.LocationLng.Or(event.LocationLng)
	event.StartTime = update.StartTime.Or(event.StartTime)
	event.EndTime = update.EndTime.Or(event.EndTime)
	r.events[id] = event
	return nil
}

func (r *fakeRemote) DeleteEvent(ctx context.Context, id string) error {
	if err := r.failure("DeleteEvent"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, id)
	for key, rsvp := range r.rsvps {
		if rsvp.EventID == id {
			delete(r.rsvps, key)
		}
	}
	return nil
}

func (r *fakeRemote) UserRsvps(ctx context.Context, userID string, eventIDs []string) ([]supabase.Rsvp, error) {
	if err := r.failure("UserRsvps"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var rsvps []supabase.Rsvp
	for _, rsvp := range r.rsvps {
		if rsvp.UserID == userID && slices.Contains(eventIDs, rsvp.EventID) {
			rsvps = append(rsvps, rsvp)
		}
	}
	return rsvps, nil
}

func (r *fakeRemote) EventRsvps(ctx context.Context, eventID string) ([]supabase.Rsvp, error) {
	if err := r.failure("EventRsvps"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var rsvps []supabase.Rsvp
	for _, rsvp := range r.rsvps {
		if rsvp.EventID == eventID {
			profile := r.profiles[rsvp.UserID]
			rsvp.User = &profile
			rsvps = append(rsvps, rsvp)
		}
	}
	slices.SortFunc(rsvps, func(a, b supabase.Rsvp) int {
		return b.RespondedAt.Compare(a.RespondedAt)
	})
	return rsvps, nil
}

func (r *fakeRemote) UpsertRsvp(ctx context.Context, rsvp supabase.RsvpUpsert) error {
	if err := r.failure("UpsertRsvp"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rsvps[rsvp.EventID+"/"+rsvp.UserID] = supabase.Rsvp{
		EventID:     rsvp.EventID,
		UserID:      rsvp.UserID,
		Status:      rsvp.Status,
		RespondedAt: rsvp.RespondedAt,
	}
	return nil
}

// PaymentsRemote

func (r *fakeRemote) ClubPaymentRequests(ctx context.Context, clubID string) ([]supabase.PaymentRequest, error) {
	if err := r.failure("ClubPaymentRequests"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var requests []supabase.PaymentRequest
	for _, request := range r.requests {
		if request.ClubID == clubID {
			requests = append(requests, r.requestViewLocked(request))
		}
	}
	slices.SortFunc(requests, func(a, b supabase.PaymentRequest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return requests, nil
}

func (r *fakeRemote) PaymentRequest(ctx context.Context, id string) (supabase.PaymentRequest, error) {
	if err := r.failure("PaymentRequest"); err != nil {
		return supabase.PaymentRequest{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return supabase.PaymentRequest{}, notFoundErr()
	}
	return r.requestViewLocked(request), nil
}

func (r *fakeRemote) InsertPaymentRequest(ctx context.Context, create supabase.PaymentRequestCreate) (supabase.PaymentRequest, error) {
	if err := r.failure("InsertPaymentRequest"); err != nil {
		return supabase.PaymentRequest{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	request := r.addPaymentRequestLocked(create.ClubID, create.Title, create.Amount)
	request.Description = create.Description
	request.DueDate = create.DueDate
	request.CreatedBy = create.CreatedBy
	r.requests[request.ID] = request
	return r.requestViewLocked(request), nil
}

func (r *fakeRemote) UpdatePaymentRequest(ctx context.Context, id string, update supabase.PaymentRequestUpdate) error {
	if err := r.failure("UpdatePaymentRequest"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return notFoundErr()
	}
	request.Title = update.Title.Or(request.Title)
	request.Description = update.Description.Or(request.Description)
	request.Amount = update.Amount.Or(request.Amount)
	request.DueDate = update.DueDate.Or(request.DueDate)
	r.requests[id] = request
	return nil
}

func (r *fakeRemote) DeletePaymentRequest(ctx context.Context, id string) error {
	if err := r.failure("DeletePaymentRequest"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.requests, id)
	for key, record := range r.records {
		if record.RequestID == id {
			delete(r.records, key)
		}
	}
	return nil
}

func (r *fakeRemote) PaymentRecords(ctx context.Context, requestID string) ([]supabase.PaymentRecord, error) {
	if err := r.failure("PaymentRecords"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []supabase.PaymentRecord
	for _, record := range r.records {
		if record.RequestID == requestID {
			profile := r.profiles[record.UserID]
			record.User = &profile
			records = append(records, record)
		}
	}
	slices.SortFunc(records, func(a, b supabase.PaymentRecord) int {
		return strings.Compare(string(a.Status), string(b.Status))
	})
	return records, nil
}

func (r *fakeRemote) PendingPaymentRecords(ctx context.Context, userID string) ([]supabase.PaymentRecord, error) {
	if err := r.failure("PendingPaymentRecords"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []supabase.PaymentRecord
	for _, record := range r.records {
		if record.UserID == userID && record.Status == supabase.PaymentPending {
			if request, ok := r.requests[record.RequestID]; ok {
				view := r.requestViewLocked(request)
				record.Request = &view
			}
			records = append(records, record)
		}
	}
	return records, nil
}

func (r *fakeRemote) UpdatePaymentRecord(ctx context.Context, recordID string, update supabase.PaymentRecordUpdate) (supabase.PaymentRecord, error) {
	if err := r.failure("UpdatePaymentRecord"); err != nil {
		return supabase.PaymentRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordID]
	if !ok {
		return supabase.PaymentRecord{}, notFoundErr()
	}
	record.Status = update.Status
	record.PaidAt = update.PaidAt.Or(record.PaidAt)
	record.ConfirmedBy = update.ConfirmedBy.Or(record.ConfirmedBy)
	record.TransactionRef = update.TransactionRef.Or(record.TransactionRef)
	r.records[recordID] = record
	return record, nil
}

// AnnouncementsRemote

func (r *fakeRemote) ClubAnnouncements(ctx context.Context, clubID string) ([]supabase.Announcement, error) {
	if err := r.failure("ClubAnnouncements"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var announcements []supabase.Announcement
	for _, announcement := range r.announcements {
		if announcement.ClubID == clubID {
			profile := r.profiles[announcement.CreatedBy]
			announcement.Author = &profile
			announcements = append(announcements, announcement)
		}
	}
	slices.SortFunc(announcements, func(a, b supabase.Announcement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return announcements, nil
}

func (r *fakeRemote) InsertAnnouncement(ctx context.Context, create supabase.AnnouncementCreate) (supabase.Announcement, error) {
	if err := r.failure("InsertAnnouncement"); err != nil {
		return supabase.Announcement{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	announcement := supabase.Announcement{
		ID:        r.id("announcement"),
		ClubID:    create.ClubID,
		Title:     create.Title,
		Content:   create.Content,
		CreatedBy: create.CreatedBy,
		CreatedAt: time.Now(),
	}
	r.announcements[announcement.ID] = announcement

	profile := r.profiles[create.CreatedBy]
	announcement.Author = &profile
	return announcement, nil
}

func (r *fakeRemote) UpdateAnnouncement(ctx context.Context, id string, update supabase.AnnouncementUpdate) error {
	if err := r.failure("UpdateAnnouncement"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	announcement, ok := r.announcements[id]
	if !ok {
		return notFoundErr()
	}
	announcement.Title = update.Title.Or(announcement.Title)
	announcement.Content = update.Content.Or(announcement.Content)
	r.announcements[id] = announcement
	return nil
}

func (r *fakeRemote) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := r.failure("DeleteAnnouncement"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.announcements, id)
	return nil
}
