// Package client implements the session and earnings-sync logic a front end
// runs against the smartlabs API: local session cache, login bridge,
// bootstrap reconciliation and the two earnings actions. All figures shown
// to the user are server-confirmed; nothing is incremented locally.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCacheTTL is how long a cached session is trusted without a server
// round-trip on bootstrap. Zero disables the shortcut entirely.
const DefaultCacheTTL = 15 * time.Minute

// sessionCookie mirrors the cookie name the API sets on login.
const sessionCookie = "smartlabs_session"

type Client struct {
	baseURL  string
	http     *http.Client
	cache    *Cache
	cacheTTL time.Duration
	minDwell time.Duration
	now      func() time.Time

	withdrawing atomic.Bool
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCacheTTL sets how long a cached session skips server reconfirmation.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithMinDwell overrides the minimum ad-viewing time (tests shrink it).
func WithMinDwell(d time.Duration) Option {
	return func(c *Client) { c.minDwell = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, cache *Cache, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Jar: jar, Timeout: 30 * time.Second},
		cache:    cache,
		cacheTTL: DefaultCacheTTL,
		minDwell: MinAdDwell,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	// A token saved by a previous process resumes the session, the same way
	// a browser's cookie store carries it across page loads.
	if s := c.cache.Read(); s != nil && s.Token != "" {
		c.setToken(s.Token)
	}
	return c
}

func (c *Client) token() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) setToken(tok string) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	c.http.Jar.SetCookies(u, []*http.Cookie{{Name: sessionCookie, Value: tok, Path: "/"}})
}

// Cache exposes the session cache for callers that render from it.
func (c *Client) Cache() *Cache { return c.cache }

// profile is the wire shape of the user object in API responses.
type profile struct {
	ID           string          `json:"id"`
	TelegramID   int64           `json:"telegram_id"`
	FirstName    string          `json:"first_name"`
	Username     string          `json:"username"`
	Earnings     decimal.Decimal `json:"earnings"`
	AdsViewed    int64           `json:"adsViewed"`
	ReferralLink string          `json:"referralLink"`
}

func (p profile) session(now time.Time) Session {
	return Session{
		ID:           p.ID,
		TelegramID:   p.TelegramID,
		FirstName:    p.FirstName,
		Username:     p.Username,
		Earnings:     p.Earnings,
		AdsViewed:    p.AdsViewed,
		ReferralLink: p.ReferralLink,
		SavedAt:      now,
	}
}

// Login forwards an identity assertion verbatim to the backend. On success
// the returned profile becomes the cached session; on failure the cache is
// left exactly as it was.
func (c *Client) Login(ctx context.Context, assertion json.RawMessage) (*Session, error) {
	var resp struct {
		envelope
		User *profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", assertion, &resp, "login"); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{Op: "login", Err: errMissingUser}
	}
	s := resp.User.session(c.now())
	s.Token = c.token()
	if err := c.cache.Write(s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout clears the cache first so a failed network call still leaves the
// client signed out locally.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.cache.Clear(); err != nil {
		return err
	}
	var resp envelope
	return c.do(ctx, http.MethodPost, "/api/logout", nil, &resp, "logout")
}

// fetchUserData asks the server who the session cookie belongs to.
func (c *Client) fetchUserData(ctx context.Context) (*Session, error) {
	var resp struct {
		envelope
		User *profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user_data", nil, &resp, "user_data"); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{Op: "user_data", Err: errMissingUser}
	}
	s := resp.User.session(c.now())
	s.Token = c.token()
	return &s, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// do runs one JSON round-trip and maps failures onto the error taxonomy:
// 401 → ErrNotAuthenticated, other non-success envelopes and transport
// faults → *APIError. out must embed envelope.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, op string) error {
	var reader io.Reader
	if body != nil {
		var b []byte
		switch v := body.(type) {
		case json.RawMessage:
			b = v
		default:
			var err error
			b, err = json.Marshal(v)
			if err != nil {
				return &APIError{Op: op, Err: err}
			}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Op: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if !env.Success {
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrNotAuthenticated, env.Message)
		}
		return &APIError{Op: op, Message: env.Message}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
