package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup map[int64]Principal

func (s stubLookup) LookupPrincipal(_ context.Context, id int64) (Principal, error) {
	if id == 500 {
		return Principal{}, errors.New("connection refused")
	}
	p, ok := s[id]
	if !ok {
		return Principal{}, apperrors.ErrUserNotFound
	}
	return p, nil
}

func newAuthenticator(t *testing.T) (*Authenticator, *TokenCodec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
	codec := newCodec(t, clock)
	users := stubLookup{
		1: {ID: 1, Username: "a"},
		2: {ID: 2, Username: "root", IsAdmin: true},
	}
	return NewAuthenticator(codec, users), codec, clock
}

func TestAuthenticateHeaderShapes(t *testing.T) {
	a, codec, _ := newAuthenticator(t)
	token, _, err := codec.Issue(1, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		header  string
		outcome Outcome
	}{
		{"", Anonymous},
		{"Bearer", Anonymous},
		{"Token " + token, Anonymous},
		{"Bearer " + token + " extra", Anonymous},
		{token, Anonymous},
		{"Bearer " + token, Authenticated},
		{"bearer " + token, Authenticated},
		{"BEARER \t " + token, Authenticated},
		{"Bearer garbage", Rejected},
	}
	for _, tc := range cases {
		res := a.Authenticate(context.Background(), tc.header)
		assert.Equal(t, tc.outcome, res.Outcome, "header %q", tc.header)
	}
}

func TestAuthenticateResolvesPrincipal(t *testing.T) {
	a, codec, _ := newAuthenticator(t)
	token, _, err := codec.Issue(2, time.Hour)
	require.NoError(t, err)

	res := a.Authenticate(context.Background(), "Bearer "+token)
	require.Equal(t, Authenticated, res.Outcome)
	require.NotNil(t, res.Principal)
	assert.Equal(t, "root", res.Principal.Username)
	assert.True(t, res.Principal.IsAdmin)
	assert.NoError(t, res.Err)
}

func TestAuthenticateRejections(t *testing.T) {
	a, codec, clock := newAuthenticator(t)

	expired, _, err := codec.Issue(1, time.Minute)
	require.NoError(t, err)
	deleted, _, err := codec.Issue(99, time.Hour)
	require.NoError(t, err)
	broken, _, err := codec.Issue(500, time.Hour)
	require.NoError(t, err)

	res := a.Authenticate(context.Background(), "Bearer "+deleted)
	assert.Equal(t, Rejected, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrUnknownPrincipal)
	assert.ErrorIs(t, res.Err, apperrors.ErrInvalidCredentials)
	assert.EqualError(t, res.Err, "user not found")

	res = a.Authenticate(context.Background(), "Bearer "+broken)
	assert.Equal(t, Rejected, res.Outcome)
	assert.Equal(t, apperrors.CodeGeneral, apperrors.KindOf(res.Err).Code)

	clock.t = clock.t.Add(2 * time.Minute)
	res = a.Authenticate(context.Background(), "Bearer "+expired)
	assert.Equal(t, Rejected, res.Outcome)
	assert.EqualError(t, res.Err, "authentication failed")
	assert.Nil(t, res.Principal)
}
