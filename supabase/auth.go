package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrInvalidCredentials is returned by SignIn when the token endpoint rejects
// the email/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is the resolved remote session: tokens plus the identity claims
// carried by the access token.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Email        string
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func newSession(token *oauth2.Token) (*Session, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject claim")
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
		UserID:       claims.Subject,
		Email:        claims.Email,
	}, nil
}

func (c *Client) SignUp(ctx context.Context, email string, password string, name string) (*Session, error) {
	rs, err := c.do(ctx, http.MethodPost, authPath+"/signup", nil, "", map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]any{
			"name": name,
		},
	})
	if err != nil {
		return nil, err
	}

	body, err := decodeBody[struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}](rs)
	if err != nil {
		return nil, err
	}

	return c.setToken(&oauth2.Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	})
}

func (c *Client) SignIn(ctx context.Context, email string, password string) (*Session, error) {
	token, err := c.oauth.PasswordCredentialsToken(c.oauthContext(ctx), email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) &&
			(retrieveErr.Response.StatusCode == http.StatusBadRequest || retrieveErr.Response.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, retrieveErr.ErrorDescription)
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return c.setToken(token)
}

// SignOut revokes the remote session. The local session is cleared even when
// the revocation call fails.
func (c *Client) SignOut(ctx context.Context) error {
	rs, err := c.do(ctx, http.MethodPost, authPath+"/logout", nil, "", nil)
	if rs != nil {
		_ = rs.Body.Close()
	}

	c.mu.Lock()
	c.session = nil
	c.source = nil
	c.mu.Unlock()
	c.notify(nil)

	if err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// RestoreSession resolves the current session: the active one if present,
// otherwise a fresh session from the configured refresh token. It returns
// (nil, nil) when there is nothing to restore.
func (c *Client) RestoreSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session != nil {
		return session, nil
	}

	if c.cfg.RefreshToken == "" {
		return nil, nil
	}

	source := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: c.cfg.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return c.setToken(token)
}

func (c *Client) CurrentSession() (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, false
	}
	return c.session, true
}

// OnSessionChange registers fn to be called with the new session on sign-in,
// sign-out (nil) and token refresh. It returns an unsubscribe func.
func (c *Client) OnSessionChange(fn func(*Session)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) setToken(token *oauth2.Token) (*Session, error) {
	session, err := newSession(token)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = session
	c.source = &notifySource{
		client: c,
		source: oauth2.ReuseTokenSource(token, c.oauth.TokenSource(c.oauthContext(context.Background()), token)),
		last:   token.AccessToken,
	}
	c.mu.Unlock()

	c.notify(session)
	return session, nil
}

func (c *Client) notify(session *Session) {
	c.mu.Lock()
	listeners := make([]func(*Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}

// oauthContext makes the oauth2 package use the client's http.Client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// notifySource refreshes tokens transparently and fires the session-change
// listeners whenever a refresh yields a new access token, so out-of-band
// session changes propagate to subscribers.
type notifySource struct {
	client *Client
	source oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (s *notifySource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := token.AccessToken != s.last
	if changed {
		s.last = token.AccessToken
	}
	s.mu.Unlock()
	if !changed {
		return token, nil
	}

	session, err := newSession(token)
	if err != nil {
		return nil, err
	}
	s.client.mu.Lock()
	s.client.session = session
	s.client.mu.Unlock()
	s.client.notify(session)

	return token, nil
}
