package session_test

import (
	"os"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreCode(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		want      string
		wantError string
	}{
		{
			name: "bare slug: ok",
			code: "techgadget-12345",
			want: "techgadget-12345",
		},
		{
			name: "qr payload: ok",
			code: "store://techgadget-12345",
			want: "techgadget-12345",
		},
		{
			name: "qr payload with upper case and spaces: ok",
			code: "  STORE://TechGadget-12345/ ",
			want: "techgadget-12345",
		},
		{
			name:      "empty code: error",
			code:      "store://",
			wantError: "store code is empty",
		},
		{
			name:      "invalid characters: error",
			code:      "tech gadget",
			wantError: "store code[tech gadget] is not valid",
		},
		{
			name:      "too long: error",
			code:      strings.Repeat("a", 101),
			wantError: "store code is too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := session.ParseStoreCode(tt.code)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := session.ParseStoreCode(session.QRPayload(got))
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestStore(t *testing.T) {
	ctx := t.Context()

	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state.StoreSlug)
	assert.False(t, state.SignedIn())

	_, err = store.StoreSlug(ctx)
	require.ErrorIs(t, err, session.ErrNoStore)

	customer := domain.Customer{
		ID:        gofakeit.UUID(),
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}
	token := gofakeit.UUID()

	_, err = store.Update(func(s *session.State) {
		s.StoreSlug = "techgadget-12345"
		s.AccessToken = token
		s.Customer = &customer
	})
	require.NoError(t, err)

	slug, err := store.StoreSlug(ctx)
	require.NoError(t, err)
	assert.Equal(t, "techgadget-12345", slug)

	gotToken, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, gotToken)

	state, err = store.Load()
	require.NoError(t, err)
	require.True(t, state.SignedIn())
	assert.Equal(t, customer, *state.Customer)
	assert.False(t, state.UpdatedAt.IsZero())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewStore_EmptyDir(t *testing.T) {
	_, err := session.NewStore("")
	require.EqualError(t, err, "dir is empty")
}
