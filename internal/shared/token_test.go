package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewTokenStore(client, time.Hour), mr
}

func TestTokenIssueLookupRevoke(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tok, err := store.Issue(ctx, 7, "admin@justines.local", true)
	require.NoError(t, err)
	require.NotEmpty(t, tok.ID)

	got, err := store.Lookup(ctx, tok.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)
	require.Equal(t, "admin@justines.local", got.Email)
	require.True(t, got.Admin)

	require.NoError(t, store.Revoke(ctx, tok.ID))
	_, err = store.Lookup(ctx, tok.ID)
	require.ErrorIs(t, err, ErrTokenRequired)
}

func TestTokenLookupMissing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Lookup(ctx, "")
	require.ErrorIs(t, err, ErrTokenRequired)

	_, err = store.Lookup(ctx, "nope")
	require.ErrorIs(t, err, ErrTokenRequired)
}

func TestTokenExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	tok, err := store.Issue(ctx, 1, "clerk@justines.local", false)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Lookup(ctx, tok.ID)
	require.ErrorIs(t, err, ErrTokenRequired)
}
