package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/alo-api/internal/models"
)

func TestProfileRepositoryCreateIfAbsentKeepsExistingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	first := models.Profile{UserID: "user_1", Name: "Aysel"}
	created, err := repo.CreateIfAbsent(ctx, &first)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, first.ID)

	second := models.Profile{UserID: "user_1", Name: "Someone Else"}
	created, err = repo.CreateIfAbsent(ctx, &second)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Aysel", second.Name)

	second.Email = "aysel@example.com"
	require.NoError(t, repo.Update(ctx, &second))

	stored, err := repo.FindByUserID(ctx, "user_1")
	require.NoError(t, err)
	require.Equal(t, "aysel@example.com", stored.Email)
}

func TestCommunityRepositoryListByOwnerNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	owner := createProfile(t, db, "owner")
	other := createProfile(t, db, "other")
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	now := time.Now()
	older := models.Community{Name: "Older", OwnerID: owner.ID, CreatedAt: now.Add(-time.Hour)}
	newer := models.Community{Name: "Newer", OwnerID: owner.ID, CreatedAt: now}
	foreign := models.Community{Name: "Foreign", OwnerID: other.ID, CreatedAt: now}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))
	require.NoError(t, repo.Create(ctx, &foreign))

	items, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Newer", items[0].Name, "expected newest community first")
	require.Equal(t, "Older", items[1].Name)

	found, err := repo.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	require.Equal(t, other.ID, found.OwnerID)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoomRepositoryGetOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	owner := createProfile(t, db, "owner")
	community := createCommunity(t, db, owner.ID, "Dizayn")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, community.ID, models.DefaultRoomName)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, community.ID, models.DefaultRoomName)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Room{}).Where("community_id = ?", community.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRoomRepositoryGetOrCreateConcurrentFirstAccess(t *testing.T) {
	db := setupTestDB(t)
	owner := createProfile(t, db, "owner")
	community := createCommunity(t, db, owner.ID, "Race")
	repo := NewRoomRepository(db)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{})
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room, err := repo.GetOrCreate(context.Background(), community.ID, models.DefaultRoomName)
			if err != nil {
				return
			}
			mu.Lock()
			ids[room.ID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.Room{}).Where("community_id = ?", community.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
	require.LessOrEqual(t, len(ids), 1)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Community{}, &models.Room{}, &models.Message{}))
	return db
}

func createProfile(t *testing.T, db *gorm.DB, userID string) models.Profile {
	t.Helper()
	profile := models.Profile{UserID: userID, Name: userID}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func createCommunity(t *testing.T, db *gorm.DB, ownerID, name string) models.Community {
	t.Helper()
	community := models.Community{Name: name, OwnerID: ownerID}
	require.NoError(t, db.Omit("Owner").Create(&community).Error)
	return community
}
