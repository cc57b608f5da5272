package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// Session is the locally cached belief about the signed-in user. Everything
// numeric in it is a server-confirmed figure, never a local computation.
type Session struct {
	ID           string          `json:"id"`
	TelegramID   int64           `json:"telegram_id"`
	FirstName    string          `json:"first_name"`
	Username     string          `json:"username"`
	Earnings     decimal.Decimal `json:"earnings"`
	AdsViewed    int64           `json:"adsViewed"`
	ReferralLink string          `json:"referralLink"`
	// Token is the session cookie value, persisted so a new process can
	// resume the authenticated session the way a browser's cookie store does.
	Token   string    `json:"token,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// DisplayName prefers the first name, falling back to the username.
func (s *Session) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName
	}
	return s.Username
}

// Cache persists one Session as a JSON file. Writes are total overwrites,
// last write wins, no expiry; the bootstrap decides how much to trust it.
type Cache struct {
	path string
}

func NewCache(path string) *Cache { return &Cache{path: path} }

// DefaultCachePath places the session file under the user config dir.
func DefaultCachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "smartlabs", "session.json"), nil
}

// Read returns the cached session, or nil when there is none. A corrupted
// file counts as absent.
func (c *Cache) Read() *Session {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil || s.ID == "" {
		return nil
	}
	return &s
}

func (c *Cache) Write(s Session) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func (c *Cache) Clear() error {
	err := os.Remove(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
