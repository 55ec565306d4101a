package supabase

import (
	"time"

	"github.com/clubsync/clubsync/internal/omit"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCommittee Role = "committee"
	RoleMember    Role = "member"
)

// Rank orders roles by authority: admin first, committee second, member last.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 0
	case RoleCommittee:
		return 1
	case RoleMember:
		return 2
	default:
		return 3
	}
}

// CanManageClub reports whether the role may edit the club itself and manage
// its members. The remote service enforces this server-side; clients use it
// only to decide what to expose.
func (r Role) CanManageClub() bool {
	return r == RoleAdmin
}

// CanPost reports whether the role may create events, payment requests and
// announcements.
func (r Role) CanPost() bool {
	return r == RoleAdmin || r == RoleCommittee
}

type RsvpStatus string

const (
	RsvpGoing    RsvpStatus = "going"
	RsvpMaybe    RsvpStatus = "maybe"
	RsvpNotGoing RsvpStatus = "not_going"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type ProfileUpdate struct {
	Name      omit.Omit[string]  `json:"name,omitzero"`
	AvatarURL omit.Omit[*string] `json:"avatar_url,omitzero"`
	Phone     omit.Omit[*string] `json:"phone,omitzero"`
}

type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	LogoURL     *string   `json:"logo_url"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}

type ClubCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedBy   string  `json:"created_by"`
}

type ClubUpdate struct {
	Name        omit.Omit[string]  `json:"name,omitzero"`
	Description omit.Omit[*string] `json:"description,omitzero"`
	LogoURL     omit.Omit[*string] `json:"logo_url,omitzero"`
}

type Membership struct {
	UserID   string    `json:"user_id"`
	ClubID   string    `json:"club_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	User     *Profile  `json:"user,omitempty"`
}

type MembershipCreate struct {
	UserID string `json:"user_id"`
	ClubID string `json:"club_id"`
	Role   Role   `json:"role"`
}

type Event struct {
	ID          string     `json:"id"`
	ClubID      string     `json:"club_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	LocationLat *float64   `json:"location_lat"`
	LocationLng *float64   `json:"location_lng"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventWithCounts is a row of the events_with_rsvp_counts view. The counts
// are server-computed and treated as read-only by clients.
type EventWithCounts struct {
	Event
	GoingCount    int `json:"going_count"`
	MaybeCount    int `json:"maybe_count"`
	NotGoingCount int `json:"not_going_count"`
}

type EventCreate struct {
	ClubID      string     `json:"club_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	LocationLat *float64   `json:"location_lat,omitempty"`
	LocationLng *float64   `json:"location_lng,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedBy   string     `json:"created_by"`
}

type EventUpdate struct {
	Title       omit.Omit[string]     `json:"title,omitzero"`
	Description omit.Omit[*string]    `json:"description,omitzero"`
	Location    omit.Omit[*string]    `json:"location,omitzero"`
	LocationLat omit.Omit[*float64]   `json:"location_lat,omitzero"`
	LocationLng omit.Omit[*float64]   `json:"location_lng,omitzero"`
	StartTime   omit.Omit[time.Time]  `json:"start_time,omitzero"`
	EndTime     omit.Omit[*time.Time] `json:"end_time,omitzero"`
}

type Rsvp struct {
	EventID     string     `json:"event_id"`
	UserID      string     `json:"user_id"`
	Status      RsvpStatus `json:"status"`
	RespondedAt time.Time  `json:"responded_at"`
	User        *Profile   `json:"user,omitempty"`
}

type RsvpUpsert struct {
	EventID     string     `json:"event_id"`
	UserID      string     `json:"user_id"`
	Status      RsvpStatus `json:"status"`
	RespondedAt time.Time  `json:"responded_at"`
}

// PaymentRequest is a row of the payment_requests_with_status view. Amount is
// in currency minor units (e.g. cents). PaidCount and TotalCount are
// server-computed.
type PaymentRequest struct {
	ID          string     `json:"id"`
	ClubID      string     `json:"club_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Amount      int64      `json:"amount"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	PaidCount   int        `json:"paid_count"`
	TotalCount  int        `json:"total_count"`
}

type PaymentRequestCreate struct {
	ClubID      string     `json:"club_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Amount      int64      `json:"amount"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   string     `json:"created_by"`
}

type PaymentRequestUpdate struct {
	Title       omit.Omit[string]     `json:"title,omitzero"`
	Description omit.Omit[*string]    `json:"description,omitzero"`
	Amount      omit.Omit[int64]      `json:"amount,omitzero"`
	DueDate     omit.Omit[*time.Time] `json:"due_date,omitzero"`
}

type PaymentRecord struct {
	ID             string          `json:"id"`
	RequestID      string          `json:"request_id"`
	UserID         string          `json:"user_id"`
	Status         PaymentStatus   `json:"status"`
	PaidAt         *time.Time      `json:"paid_at"`
	TransactionRef *string         `json:"transaction_ref"`
	ConfirmedBy    *string         `json:"confirmed_by"`
	User           *Profile        `json:"user,omitempty"`
	Request        *PaymentRequest `json:"payment_request,omitempty"`
}

// PaymentRecordUpdate carries a status change together with the paid
// timestamp and confirming identity, so the three always change in one
// request.
type PaymentRecordUpdate struct {
	Status         PaymentStatus         `json:"status"`
	PaidAt         omit.Omit[*time.Time] `json:"paid_at,omitzero"`
	ConfirmedBy    omit.Omit[*string]    `json:"confirmed_by,omitzero"`
	TransactionRef omit.Omit[*string]    `json:"transaction_ref,omitzero"`
}

type Announcement struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"club_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Profile  `json:"author,omitempty"`
}

type AnnouncementCreate struct {
	ClubID    string `json:"club_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedBy string `json:"created_by"`
}

type AnnouncementUpdate struct {
	Title   omit.Omit[string] `json:"title,omitzero"`
	Content omit.Omit[string] `json:"content,omitzero"`
}
