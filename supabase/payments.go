package supabase

import (
	"context"
	"net/url"
)

func (c *Client) ClubPaymentRequests(ctx context.Context, clubID string) ([]PaymentRequest, error) {
	return selectRows[PaymentRequest](ctx, c, "payment_requests_with_status", url.Values{
		"select":  {"*"},
		"club_id": {"eq." + clubID},
		"order":   {"created_at.desc"},
	})
}

func (c *Client) PaymentRequest(ctx context.Context, id string) (PaymentRequest, error) {
	return selectRow[PaymentRequest](ctx, c, "payment_requests_with_status", url.Values{
		"select": {"*"},
		"id":     {"eq." + id},
	})
}

func (c *Client) InsertPaymentRequest(ctx context.Context, request PaymentRequestCreate) (PaymentRequest, error) {
	return insertRow[PaymentRequest](ctx, c, "payment_requests", nil, request)
}

func (c *Client) UpdatePaymentRequest(ctx context.Context, id string, update PaymentRequestUpdate) error {
	_, err := updateRow[PaymentRequest](ctx, c, "payment_requests", url.Values{
		"id": {"eq." + id},
	}, update)
	return err
}

func (c *Client) DeletePaymentRequest(ctx context.Context, id string) error {
	return deleteRows(ctx, c, "payment_requests", url.Values{
		"id": {"eq." + id},
	})
}

func (c *Client) PaymentRecords(ctx context.Context, requestID string) ([]PaymentRecord, error) {
	return selectRows[PaymentRecord](ctx, c, "payment_records", url.Values{
		"select":     {"*,user:profiles(*)"},
		"request_id": {"eq." + requestID},
		"order":      {"status.asc"},
	})
}

// PendingPaymentRecords returns the user's unpaid records across all clubs,
// each with its owning request embedded.
func (c *Client) PendingPaymentRecords(ctx context.Context, userID string) ([]PaymentRecord, error) {
	return selectRows[PaymentRecord](ctx, c, "payment_records", url.Values{
		"select":  {"*,payment_request:payment_requests(*)"},
		"user_id": {"eq." + userID},
		"status":  {"eq." + string(PaymentPending)},
		"order":   {"created_at.desc"},
	})
}

func (c *Client) UpdatePaymentRecord(ctx context.Context, recordID string, update PaymentRecordUpdate) (PaymentRecord, error) {
	return updateRow[PaymentRecord](ctx, c, "payment_records", url.Values{
		"id": {"eq." + recordID},
	}, update)
}
