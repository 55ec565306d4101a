package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	restPath = "/rest/v1"
	authPath = "/auth/v1"
)

func New(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(cfg.Every.Std()), cfg.Burst),
		oauth: &oauth2.Config{
			ClientID: "clubsync",
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimSuffix(cfg.BaseURL, "/") + authPath + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		listeners: make(map[int]func(*Session)),
	}
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	oauth      *oauth2.Config

	mu           sync.Mutex
	session      *Session
	source       oauth2.TokenSource
	listeners    map[int]func(*Session)
	nextListener int
}

type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s (status %d, code %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether the error means the requested row is absent.
// PGRST116 is PostgREST's "zero rows with a single-object response" code.
func (e *Error) IsNotFound() bool {
	return e.Status == http.StatusNotFound || e.Status == http.StatusNotAcceptable || e.Code == "PGRST116"
}

// IsDuplicate reports a Postgres unique-constraint violation.
func (e *Error) IsDuplicate() bool {
	return e.Code == "23505"
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, prefer string, body any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = buf
	}

	rawURL := strings.TrimSuffix(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	rq, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	rq.Header.Set("X-Request-Id", requestID)
	rq.Header.Set("apikey", c.cfg.AnonKey)
	rq.Header.Set("Accept", "application/json")
	if body != nil {
		rq.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		rq.Header.Set("Prefer", prefer)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access token: %w", err)
	}
	rq.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	rs, err := c.httpClient.Do(rq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	slog.DebugContext(ctx, "Supabase request",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status_code", rs.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if rs.StatusCode < http.StatusOK || rs.StatusCode >= http.StatusMultipleChoices {
		defer rs.Body.Close()
		data, _ := io.ReadAll(rs.Body)

		apiErr := &Error{Status: rs.StatusCode}
		if err = json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(data)
		}
		if !apiErr.IsNotFound() {
			slog.ErrorContext(ctx, "Supabase request failed",
				slog.String("request_id", requestID),
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status_code", rs.StatusCode),
				slog.String("response", string(data)),
			)
		}
		return nil, apiErr
	}

	return rs, nil
}

// accessToken returns the current session's access token, refreshing it when
// expired, or the anon key when no session is active.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	source := c.source
	c.mu.Unlock()

	if source == nil {
		return c.cfg.AnonKey, nil
	}
	token, err := source.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func decodeBody[T any](rs *http.Response) (T, error) {
	defer rs.Body.Close()

	logBuf := new(bytes.Buffer)
	bodyReader := io.TeeReader(rs.Body, logBuf)

	var v T
	if err := json.NewDecoder(bodyReader).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode response: %q: %w", logBuf.String(), err)
	}
	return v, nil
}

func selectRows[T any](ctx context.Context, c *Client, table string, query url.Values) ([]T, error) {
	rs, err := c.do(ctx, http.MethodGet, restPath+"/"+table, query, "", nil)
	if err != nil {
		return nil, err
	}
	return decodeBody[[]T](rs)
}

// selectRow fetches exactly one row. Zero matching rows surface as an *Error
// for which IsNotFound reports true.
func selectRow[T any](ctx context.Context, c *Client, table string, query url.Values) (T, error) {
	var v T
	query = cloneValues(query)
	query.Set("limit", "1")

	rows, err := selectRows[T](ctx, c, table, query)
	if err != nil {
		return v, err
	}
	if len(rows) == 0 {
		return v, &Error{Status: http.StatusNotFound, Code: "PGRST116", Message: fmt.Sprintf("no rows in %s", table)}
	}
	return rows[0], nil
}

func insertRow[T any](ctx context.Context, c *Client, table string, query url.Values, body any) (T, error) {
	var v T
	rs, err := c.do(ctx, http.MethodPost, restPath+"/"+table, query, "return=representation", body)
	if err != nil {
		return v, err
	}
	rows, err := decodeBody[[]T](rs)
	if err != nil {
		return v, err
	}
	if len(rows) == 0 {
		return v, &Error{Status: http.StatusNotFound, Code: "PGRST116", Message: fmt.Sprintf("insert into %s returned no rows", table)}
	}
	return rows[0], nil
}

func insertRowMinimal(ctx context.Context, c *Client, table string, body any) error {
	rs, err := c.do(ctx, http.MethodPost, restPath+"/"+table, nil, "return=minimal", body)
	if err != nil {
		return err
	}
	return rs.Body.Close()
}

func upsertRow(ctx context.Context, c *Client, table string, onConflict string, body any) error {
	query := url.Values{}
	if onConflict != "" {
		query.Set("on_conflict", onConflict)
	}
	rs, err := c.do(ctx, http.MethodPost, restPath+"/"+table, query, "resolution=merge-duplicates,return=minimal", body)
	if err != nil {
		return err
	}
	return rs.Body.Close()
}

// updateRows patches the rows matched by query and returns the updated rows.
// Callers that require an affected row must check for an empty result: with
// row-level security an unauthorized update silently matches nothing.
func updateRows[T any](ctx context.Context, c *Client, table string, query url.Values, body any) ([]T, error) {
	rs, err := c.do(ctx, http.MethodPatch, restPath+"/"+table, query, "return=representation", body)
	if err != nil {
		return nil, err
	}
	return decodeBody[[]T](rs)
}

func updateRow[T any](ctx context.Context, c *Client, table string, query url.Values, body any) (T, error) {
	var v T
	rows, err := updateRows[T](ctx, c, table, query, body)
	if err != nil {
		return v, err
	}
	if len(rows) == 0 {
		return v, &Error{Status: http.StatusNotFound, Code: "PGRST116", Message: fmt.Sprintf("update of %s matched no rows", table)}
	}
	return rows[0], nil
}

func deleteRows(ctx context.Context, c *Client, table string, query url.Values) error {
	rs, err := c.do(ctx, http.MethodDelete, restPath+"/"+table, query, "", nil)
	if err != nil {
		return err
	}
	return rs.Body.Close()
}

func cloneValues(query url.Values) url.Values {
	cloned := make(url.Values, len(query))
	for k, vs := range query {
		cloned[k] = append([]string(nil), vs...)
	}
	return cloned
}

func inFilter(ids []string) string {
	return "in.(" + strings.Join(ids, ",") + ")"
}
