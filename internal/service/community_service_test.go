package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/models"
	"github.com/noah-isme/alo-api/internal/repository"
)

var storeSeq atomic.Int64

type testStore struct {
	db          *gorm.DB
	profiles    repository.ProfileRepository
	communities repository.CommunityRepository
	rooms       repository.RoomRepository
	messages    repository.MessageRepository
}

func newTestStore(t *testing.T) testStore {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, storeSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Community{}, &models.Room{}, &models.Message{}))

	return testStore{
		db:          db,
		profiles:    repository.NewProfileRepository(db),
		communities: repository.NewCommunityRepository(db),
		rooms:       repository.NewRoomRepository(db),
		messages:    repository.NewMessageRepository(db),
	}
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func (s testStore) createProfile(t *testing.T, userID, name string) models.Profile {
	t.Helper()
	profile := models.Profile{UserID: userID, Name: name}
	created, err := s.profiles.CreateIfAbsent(context.Background(), &profile)
	require.NoError(t, err)
	require.True(t, created)
	return profile
}

func TestCommunityServiceCreateAssignsCallerAsOwner(t *testing.T) {
	store := newTestStore(t)
	owner := store.createProfile(t, "user_a", "Aysel")
	svc := NewCommunityService(store.communities, store.profiles, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, "user_a", dto.CommunityCreateRequest{Name: "Older"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	created, err := svc.Create(ctx, "user_a", dto.CommunityCreateRequest{Name: "  <b>Dizayn</b>  "})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Dizayn", created.Name)

	stored, err := store.communities.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, owner.ID, stored.OwnerID)

	owned, err := svc.ListOwned(ctx, "user_a")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	require.Equal(t, created.ID, owned[0].ID)
	require.Equal(t, first.ID, owned[1].ID)
}

func TestCommunityServiceCreateKeepsPlainTextName(t *testing.T) {
	store := newTestStore(t)
	store.createProfile(t, "user_a", "Aysel")
	svc := NewCommunityService(store.communities, store.profiles, newTestValidator(), zerolog.Nop())

	created, err := svc.Create(context.Background(), "user_a", dto.CommunityCreateRequest{Name: "R&D <i>\"lab\"</i>"})
	require.NoError(t, err)
	require.Equal(t, `R&D "lab"`, created.Name)

	stored, err := store.communities.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, `R&D "lab"`, stored.Name)
}

func TestCommunityServiceCreateValidation(t *testing.T) {
	store := newTestStore(t)
	store.createProfile(t, "user_a", "Aysel")
	svc := NewCommunityService(store.communities, store.profiles, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "user_a", dto.CommunityCreateRequest{Name: "   "})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, "user_a", dto.CommunityCreateRequest{Name: "<b></b>"})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, "user_a", dto.CommunityCreateRequest{Name: strings.Repeat("x", 101)})
	require.Error(t, err)
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)

	_, err = svc.Create(ctx, "user_unknown", dto.CommunityCreateRequest{Name: "Dizayn"})
	require.ErrorIs(t, err, ErrProfileNotFound)

	var count int64
	require.NoError(t, store.db.Model(&models.Community{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCommunityServiceListOwnedWithoutProfile(t *testing.T) {
	store := newTestStore(t)
	svc := NewCommunityService(store.communities, store.profiles, newTestValidator(), zerolog.Nop())

	owned, err := svc.ListOwned(context.Background(), "user_missing")
	require.NoError(t, err)
	require.NotNil(t, owned)
	require.Empty(t, owned)
}

func TestRoomDirectoryResolveRoomIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	owner := store.createProfile(t, "user_a", "Aysel")
	community := models.Community{Name: "Dizayn", OwnerID: owner.ID}
	require.NoError(t, store.communities.Create(context.Background(), &community))

	directory := NewRoomDirectory(store.communities, store.rooms)
	ctx := context.Background()

	first, err := directory.ResolveRoom(ctx, community.ID)
	require.NoError(t, err)
	require.Equal(t, models.DefaultRoomName, first.Name)
	require.Equal(t, community.ID, first.CommunityID)

	second, err := directory.ResolveRoom(ctx, " "+community.ID+" ")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, store.db.Model(&models.Room{}).Where("community_id = ?", community.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRoomDirectoryResolveRoomErrors(t *testing.T) {
	store := newTestStore(t)
	directory := NewRoomDirectory(store.communities, store.rooms)

	_, err := directory.ResolveRoom(context.Background(), "  ")
	require.ErrorIs(t, err, ErrCommunityIDRequired)

	_, err = directory.ResolveRoom(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCommunityNotFound)
}
