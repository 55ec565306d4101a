package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/clubsync/clubsync/internal/keyed"
	"github.com/clubsync/clubsync/internal/omit"
	"github.com/clubsync/clubsync/supabase"
)

type PaymentsRemote interface {
	ClubPaymentRequests(ctx context.Context, clubID string) ([]supabase.PaymentRequest, error)
	PaymentRequest(ctx context.Context, id string) (supabase.PaymentRequest, error)
	InsertPaymentRequest(ctx context.Context, request supabase.PaymentRequestCreate) (supabase.PaymentRequest, error)
	UpdatePaymentRequest(ctx context.Context, id string, update supabase.PaymentRequestUpdate) error
	DeletePaymentRequest(ctx context.Context, id string) error
	PaymentRecords(ctx context.Context, requestID string) ([]supabase.PaymentRecord, error)
	PendingPaymentRecords(ctx context.Context, userID string) ([]supabase.PaymentRecord, error)
	UpdatePaymentRecord(ctx context.Context, recordID string, update supabase.PaymentRecordUpdate) (supabase.PaymentRecord, error)
}

// Payments caches payment requests per club and payment records per request.
// The paid/total aggregate comes from the remote view and is refetched, never
// patched, after every status change.
func NewPayments(remote PaymentsRemote, session *Session, clubs *Clubs) *Payments {
	return &Payments{
		remote:   remote,
		session:  session,
		clubs:    clubs,
		requests: keyed.New[string, supabase.PaymentRequest](),
		records:  keyed.New[string, supabase.PaymentRecord](),
	}
}

type Payments struct {
	remote  PaymentsRemote
	session *Session
	clubs   *Clubs

	mu             sync.Mutex
	current        *supabase.PaymentRequest
	outstandingSeq uint64
	outstanding    []supabase.PaymentRecord

	requests *keyed.Cache[string, supabase.PaymentRequest] // by club id
	records  *keyed.Cache[string, supabase.PaymentRecord]  // by request id
}

func (p *Payments) FetchClubPayments(ctx context.Context, clubID string) ([]supabase.PaymentRequest, error) {
	token := p.requests.Begin(clubID)

	requests, err := p.remote.ClubPaymentRequests(ctx, clubID)
	if err != nil {
		return nil, remoteErr("fetch club payments", err)
	}

	p.requests.Commit(clubID, token, requests)
	return requests, nil
}

func (p *Payments) FetchPaymentByID(ctx context.Context, requestID string) (supabase.PaymentRequest, error) {
	request, err := p.remote.PaymentRequest(ctx, requestID)
	if err != nil {
		return supabase.PaymentRequest{}, remoteErr("fetch payment request", err)
	}

	p.mu.Lock()
	p.current = &request
	p.mu.Unlock()
	return request, nil
}

// FetchUserOutstandingPayments loads the identity's pending records across
// all clubs. The result is independent of the per-club caches.
func (p *Payments) FetchUserOutstandingPayments(ctx context.Context) ([]supabase.PaymentRecord, error) {
	userID, ok := p.session.UserID()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	p.mu.Lock()
	p.outstandingSeq++
	token := p.outstandingSeq
	p.mu.Unlock()

	records, err := p.remote.PendingPaymentRecords(ctx, userID)
	if err != nil {
		return nil, remoteErr("fetch outstanding payments", err)
	}

	p.mu.Lock()
	if token == p.outstandingSeq {
		p.outstanding = records
	}
	p.mu.Unlock()
	return slices.Clone(records), nil
}

func (p *Payments) CreatePaymentRequest(ctx context.Context, create supabase.PaymentRequestCreate) (supabase.PaymentRequest, error) {
	userID, ok := p.session.UserID()
	if !ok {
		return supabase.PaymentRequest{}, ErrNotAuthenticated
	}
	create.CreatedBy = userID

	request, err := p.remote.InsertPaymentRequest(ctx, create)
	if err != nil {
		return supabase.PaymentRequest{}, remoteErr("create payment request", err)
	}

	if _, err = p.FetchClubPayments(ctx, create.ClubID); err != nil {
		return request, err
	}
	return request, nil
}

func (p *Payments) UpdatePaymentRequest(ctx context.Context, requestID string, update supabase.PaymentRequestUpdate) error {
	if err := p.remote.UpdatePaymentRequest(ctx, requestID, update); err != nil {
		return remoteErr("update payment request", err)
	}

	request, err := p.FetchPaymentByID(ctx, requestID)
	if err != nil {
		return err
	}
	p.requests.Invalidate(request.ClubID)
	return nil
}

func (p *Payments) DeletePaymentRequest(ctx context.Context, requestID string) error {
	p.mu.Lock()
	var clubID string
	if p.current != nil && p.current.ID == requestID {
		clubID = p.current.ClubID
	}
	p.mu.Unlock()

	if err := p.remote.DeletePaymentRequest(ctx, requestID); err != nil {
		return remoteErr("delete payment request", err)
	}

	p.mu.Lock()
	if p.current != nil && p.current.ID == requestID {
		p.current = nil
	}
	p.mu.Unlock()
	p.records.Invalidate(requestID)

	if clubID != "" {
		if _, err := p.FetchClubPayments(ctx, clubID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Payments) FetchPaymentRecords(ctx context.Context, requestID string) ([]supabase.PaymentRecord, error) {
	token := p.records.Begin(requestID)

	records, err := p.remote.PaymentRecords(ctx, requestID)
	if err != nil {
		return nil, remoteErr("fetch payment records", err)
	}

	p.records.Commit(requestID, token, records)
	return records, nil
}

// UpdatePaymentStatus changes a record's status in a single remote update:
// marking paid sets the paid timestamp and the confirming identity together,
// any non-paid status clears both. Partial states cannot be produced. The
// request's records and aggregate view are refetched afterwards.
func (p *Payments) UpdatePaymentStatus(ctx context.Context, recordID string, status supabase.PaymentStatus, transactionRef string) error {
	userID, ok := p.session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	update := supabase.PaymentRecordUpdate{Status: status}
	if status == supabase.PaymentPaid {
		now := time.Now().UTC()
		update.PaidAt = omit.New(&now)
		update.ConfirmedBy = omit.New(&userID)
		if transactionRef != "" {
			update.TransactionRef = omit.New(&transactionRef)
		}
	} else {
		update.PaidAt = omit.New[*time.Time](nil)
		update.ConfirmedBy = omit.New[*string](nil)
	}

	record, err := p.remote.UpdatePaymentRecord(ctx, recordID, update)
	if err != nil {
		return remoteErr("update payment status", err)
	}

	if _, err = p.FetchPaymentRecords(ctx, record.RequestID); err != nil {
		return err
	}
	request, err := p.FetchPaymentByID(ctx, record.RequestID)
	if err != nil {
		return err
	}
	p.requests.Invalidate(request.ClubID)
	return nil
}

// CanManage reports whether the identity's role in the club allows issuing
// and editing payment requests.
func (p *Payments) CanManage(clubID string) bool {
	role, ok := p.clubs.UserRole(clubID)
	return ok && role.CanPost()
}

func (p *Payments) Requests(clubID string) ([]supabase.PaymentRequest, bool) {
	return p.requests.Get(clubID)
}

func (p *Payments) Records(requestID string) ([]supabase.PaymentRecord, bool) {
	return p.records.Get(requestID)
}

func (p *Payments) Outstanding() []supabase.PaymentRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.outstanding)
}

func (p *Payments) CurrentRequest() (supabase.PaymentRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return supabase.PaymentRequest{}, false
	}
	return *p.current, true
}

func (p *Payments) SetCurrentRequest(request *supabase.PaymentRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = request
}

func (p *Payments) Reset() {
	p.mu.Lock()
	p.current = nil
	p.outstanding = nil
	p.mu.Unlock()

	p.requests.Clear()
	p.records.Clear()
}
