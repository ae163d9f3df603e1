package session

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/store"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSetTokenDecodesUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s, err := New(ctx, st)
	require.NoError(t, err)

	_, ok := s.CurrentUser()
	assert.False(t, ok)

	tok := signToken(t, jwt.MapClaims{"userId": 42, "name": "Dr. Diallo", "role": "MEDECIN"})
	require.NoError(t, s.SetToken(ctx, tok))

	user, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, 42, user.ID)
	assert.Equal(t, "Dr. Diallo", user.Name)
	assert.Equal(t, "MEDECIN", user.Role)

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestTokenRestoredFromStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	tok := signToken(t, jwt.MapClaims{"userId": 7, "name": "Awa", "role": "SECRETAIRE"})
	require.NoError(t, st.Set(ctx, store.KeyToken, []byte(tok)))

	s, err := New(ctx, st)
	require.NoError(t, err)

	user, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, 7, user.ID)
}

func TestSubjectFallback(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, store.NewMemoryStore())
	require.NoError(t, err)

	tok := signToken(t, jwt.MapClaims{"sub": "13", "name": "Moussa"})
	require.NoError(t, s.SetToken(ctx, tok))

	user, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, 13, user.ID)
}

func TestClearDropsTokenEverywhere(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s, err := New(ctx, st)
	require.NoError(t, err)

	tok := signToken(t, jwt.MapClaims{"userId": 5})
	require.NoError(t, s.SetToken(ctx, tok))
	require.NoError(t, s.Clear(ctx))

	_, err = s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = st.Get(ctx, store.KeyToken)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCorruptStoredTokenDiscarded(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyToken, []byte("not-a-jwt")))

	s, err := New(ctx, st)
	require.NoError(t, err)

	_, err = s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = st.Get(ctx, store.KeyToken)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRejectsTokenWithoutUserID(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, store.NewMemoryStore())
	require.NoError(t, err)

	tok := signToken(t, jwt.MapClaims{"name": "anonymous"})
	assert.Error(t, s.SetToken(ctx, tok))
}
