package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedAssertion(t *testing.T, v *Verifier, authDate int64) Assertion {
	t.Helper()
	raw := []byte(`{"id":42,"first_name":"Omar","username":"omar42","auth_date":` +
		strconv.FormatInt(authDate, 10) + `,"referrer_id":"REF7"}`)
	a, err := ParseAssertion(raw)
	require.NoError(t, err)
	a["hash"] = v.Sign(a)
	return a
}

func TestVerifier_Verify(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := NewVerifier("test-bot-token")
	v.now = func() time.Time { return now }

	t.Run("valid assertion passes", func(t *testing.T) {
		a := signedAssertion(t, v, now.Unix()-60)
		assert.NoError(t, v.Verify(a))
	})

	t.Run("tampered field fails", func(t *testing.T) {
		a := signedAssertion(t, v, now.Unix()-60)
		a["username"] = "mallory"
		assert.ErrorIs(t, v.Verify(a), ErrBadSignature)
	})

	t.Run("wrong bot token fails", func(t *testing.T) {
		other := NewVerifier("другой-token")
		a := signedAssertion(t, other, now.Unix()-60)
		assert.ErrorIs(t, v.Verify(a), ErrBadSignature)
	})

	t.Run("stale auth_date fails", func(t *testing.T) {
		a := signedAssertion(t, v, now.Add(-25*time.Hour).Unix())
		assert.ErrorIs(t, v.Verify(a), ErrStaleAuth)
	})

	t.Run("referrer_id is excluded from the check string", func(t *testing.T) {
		a := signedAssertion(t, v, now.Unix()-60)
		a["referrer_id"] = "REF99999"
		assert.NoError(t, v.Verify(a))
	})
}

func TestAssertion_Fields(t *testing.T) {
	a, err := ParseAssertion([]byte(`{"id":123456789,"first_name":"Aisha","auth_date":1700000000}`))
	require.NoError(t, err)

	id, err := a.TelegramID()
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)
	assert.Equal(t, "Aisha", a.FirstName())
	assert.Equal(t, int64(1700000000), a.AuthDate())
	assert.Empty(t, a.Username())
}

func TestAssertion_MissingID(t *testing.T) {
	a, err := ParseAssertion([]byte(`{"first_name":"ghost"}`))
	require.NoError(t, err)
	_, err = a.TelegramID()
	assert.ErrorIs(t, err, ErrNoIdentity)
}
