package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrBadSignature = errors.New("invalid telegram data hash")
	ErrStaleAuth    = errors.New("telegram data is too old")
	ErrNoIdentity   = errors.New("assertion missing id")
)

// MaxAssertionAge bounds auth_date freshness.
const MaxAssertionAge = 24 * time.Hour

// Assertion is the raw login-widget payload. It is forwarded by clients
// verbatim and treated as untrusted until Verify passes.
type Assertion map[string]any

// ParseAssertion decodes a widget payload keeping numbers as json.Number so
// the signature check-string reproduces the original formatting.
func ParseAssertion(raw []byte) (Assertion, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var a Assertion
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}
	return a, nil
}

func (a Assertion) str(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// TelegramID returns the asserted account id.
func (a Assertion) TelegramID() (int64, error) {
	n, ok := a["id"].(json.Number)
	if !ok {
		return 0, ErrNoIdentity
	}
	return n.Int64()
}

func (a Assertion) FirstName() string { return a.str("first_name") }
func (a Assertion) LastName() string  { return a.str("last_name") }
func (a Assertion) Username() string  { return a.str("username") }
func (a Assertion) PhotoURL() string  { return a.str("photo_url") }

// AuthDate returns the unix timestamp the widget signed.
func (a Assertion) AuthDate() int64 {
	n, ok := a["auth_date"].(json.Number)
	if !ok {
		return 0
	}
	d, _ := n.Int64()
	return d
}

// ReferrerID is a custom field injected by the landing page, excluded from
// the signature like the hash itself.
func (a Assertion) ReferrerID() string { return a.str("referrer_id") }

// Verifier checks login-widget signatures per the Telegram contract: the
// check-string is the sorted key=value lines (hash and our custom
// referrer_id excluded), keyed with SHA256(bot token).
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(botToken string) *Verifier {
	sum := sha256.Sum256([]byte(botToken))
	return &Verifier{secret: sum[:], now: time.Now}
}

func (v *Verifier) Verify(a Assertion) error {
	if !hmac.Equal([]byte(v.Sign(a)), []byte(a.str("hash"))) {
		return ErrBadSignature
	}
	if v.now().Unix()-a.AuthDate() > int64(MaxAssertionAge.Seconds()) {
		return ErrStaleAuth
	}
	return nil
}

// Sign computes the widget hash for an assertion. Verify compares against
// it; tests and local tooling use it to forge well-formed assertions.
func (v *Verifier) Sign(a Assertion) string {
	keys := make([]string, 0, len(a))
	for k := range a {
		if k == "hash" || k == "referrer_id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k + "=" + a.str(k))
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
