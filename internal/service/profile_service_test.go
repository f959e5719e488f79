package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alo-api/internal/dto"
)

func TestProfileServiceSyncCreatesThenRefreshes(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store.profiles, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Sync(ctx, dto.Identity{Subject: "user_a", FirstName: "Aysel", LastName: "Mammadova", Username: "aysel"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "user_a", created.UserID)
	require.Equal(t, "Aysel Mammadova", created.Name)
	require.Empty(t, created.Email)

	refreshed, err := svc.Sync(ctx, dto.Identity{Subject: "user_a", Name: "Aysel M", Email: "aysel@example.com", ImageURL: "https://img.example.com/a.png"})
	require.NoError(t, err)
	require.Equal(t, created.ID, refreshed.ID)
	require.Equal(t, "Aysel M", refreshed.Name)
	require.Equal(t, "aysel@example.com", refreshed.Email)
	require.Equal(t, "https://img.example.com/a.png", refreshed.ImageURL)

	again, err := svc.Sync(ctx, dto.Identity{Subject: "user_a", Name: "Aysel M", Email: "other@example.com"})
	require.NoError(t, err)
	require.Equal(t, "aysel@example.com", again.Email)

	stored, err := store.profiles.FindByUserID(ctx, "user_a")
	require.NoError(t, err)
	require.NotEmpty(t, stored.Metadata["synced_at"])
}

func TestProfileServiceSyncKeepsLockedName(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store.profiles, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Sync(ctx, dto.Identity{Subject: "user_a", Name: "Provider Name"})
	require.NoError(t, err)

	updated, err := svc.UpdateDisplayName(ctx, "user_a", dto.ProfileUpdateRequest{Name: "  Aysel  "})
	require.NoError(t, err)
	require.Equal(t, "Aysel", updated.Name)

	synced, err := svc.Sync(ctx, dto.Identity{Subject: "user_a", Name: "Provider Name"})
	require.NoError(t, err)
	require.Equal(t, "Aysel", synced.Name)
}

func TestProfileServiceNamesAreStoredUnescaped(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store.profiles, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	synced, err := svc.Sync(ctx, dto.Identity{Subject: "user_a", Name: "Tom & Jerry"})
	require.NoError(t, err)
	require.Equal(t, "Tom & Jerry", synced.Name)

	updated, err := svc.UpdateDisplayName(ctx, "user_a", dto.ProfileUpdateRequest{Name: "O'Neil & <b>Co</b>"})
	require.NoError(t, err)
	require.Equal(t, "O'Neil & Co", updated.Name)
}

func TestProfileServiceSyncCapsProviderName(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store.profiles, newTestValidator(), zerolog.Nop())

	profile, err := svc.Sync(context.Background(), dto.Identity{Subject: "user_a", Name: strings.Repeat("ə", 80)})
	require.NoError(t, err)
	require.Len(t, []rune(profile.Name), providerNameMaxRunes)
}

func TestProfileServiceSyncRequiresSubject(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store.profiles, newTestValidator(), zerolog.Nop())

	_, err := svc.Sync(context.Background(), dto.Identity{Subject: "   ", Name: "Nobody"})
	require.ErrorIs(t, err, ErrIdentityRequired)
}

func TestProfileServiceGetAndUpdateErrors(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store.profiles, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Get(ctx, "user_missing")
	require.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.UpdateDisplayName(ctx, "user_missing", dto.ProfileUpdateRequest{Name: "Aysel"})
	require.ErrorIs(t, err, ErrProfileNotFound)

	store.createProfile(t, "user_a", "Aysel")
	for _, name := range []string{"", "a", "<b>a</b>", strings.Repeat("x", 33)} {
		_, err = svc.UpdateDisplayName(ctx, "user_a", dto.ProfileUpdateRequest{Name: name})
		require.ErrorIs(t, err, ErrDisplayNameInvalid, "name %q", name)
	}

	profile, err := svc.Get(ctx, "user_a")
	require.NoError(t, err)
	require.Equal(t, "Aysel", profile.Name)
}

func TestMaskEmailAddress(t *testing.T) {
	require.Equal(t, "", maskEmailAddress(""))
	require.Equal(t, "***", maskEmailAddress("not-an-email"))
	require.Equal(t, "***@example.com", maskEmailAddress("@example.com"))
	require.Equal(t, "a***@example.com", maskEmailAddress("ab@example.com"))
	require.Equal(t, "a***l@example.com", maskEmailAddress("Aysel@Example.com"))
}
