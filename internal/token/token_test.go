package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec(map[Kind]KindConfig{
		KindAccess:         {Secret: []byte("access-secret"), TTL: 15 * time.Minute},
		KindRefresh:        {Secret: []byte("refresh-secret"), TTL: 7 * 24 * time.Hour},
		KindForgotPassword: {Secret: []byte("forgot-secret"), TTL: time.Hour},
		KindVerifyEmail:    {Secret: []byte("verify-secret"), TTL: 24 * time.Hour},
		KindAccountRestore: {Secret: []byte("restore-secret"), TTL: time.Hour},
	})
}

func TestIssuePairRoundTrip(t *testing.T) {
	t.Parallel()

	c := testCodec()
	payload := Payload{UserID: "u1", Name: "John Doe", IsVerified: true}

	pair, err := c.IssuePair(payload)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	got, err := c.Verify(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	got, err = c.Verify(pair.RefreshToken, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestVerifyRejectsCrossKind(t *testing.T) {
	t.Parallel()

	c := testCodec()
	pair, err := c.IssuePair(Payload{UserID: "u1"})
	require.NoError(t, err)

	// The access token must not verify under the refresh secret and vice versa.
	_, err = c.Verify(pair.AccessToken, KindRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = c.Verify(pair.RefreshToken, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueActionRoundTrip(t *testing.T) {
	t.Parallel()

	c := testCodec()
	payload := Payload{UserID: "u2", Name: "Jane"}

	for _, kind := range []Kind{KindForgotPassword, KindVerifyEmail, KindAccountRestore} {
		tok, err := c.IssueAction(payload, kind)
		require.NoError(t, err)

		got, err := c.Verify(tok, kind)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestIssueActionRejectsSessionKinds(t *testing.T) {
	t.Parallel()

	c := testCodec()

	_, err := c.IssueAction(Payload{UserID: "u1"}, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidKind)
	_, err = c.IssueAction(Payload{UserID: "u1"}, KindRefresh)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	c := testCodec()
	tok, err := c.IssueAction(Payload{UserID: "u1"}, KindForgotPassword)
	require.NoError(t, err)

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = c.Verify(tok, KindForgotPassword)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	c := testCodec()

	_, err := c.Verify("not.a.jwt", KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = c.Verify("", KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	c := testCodec()
	other := NewCodec(map[Kind]KindConfig{
		KindAccess: {Secret: []byte("different-secret"), TTL: time.Hour},
	})

	pair, err := c.IssuePair(Payload{UserID: "u1"})
	require.NoError(t, err)

	_, err = other.Verify(pair.AccessToken, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
