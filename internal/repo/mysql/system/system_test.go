package system

import (
	"context"
	"testing"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&system.User{}, &system.Profile{}))
	return db
}

func TestProfileRepository_Upsert(t *testing.T) {
	repo := NewProfileRepository(newTestDB(t))
	ctx := context.Background()
	key := listview.ProfileKey{UserID: 5, ViewID: "hosts"}

	data, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, repo.Put(ctx, key, []byte(`{"page":1}`)))
	require.NoError(t, repo.Put(ctx, key, []byte(`{"page":2}`)))

	data, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"page":2}`, string(data))

	var count int64
	require.NoError(t, repo.db.Model(&system.Profile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "one row per (user, view)")

	other := listview.ProfileKey{UserID: 5, ViewID: "templates"}
	require.NoError(t, repo.Put(ctx, other, []byte(`{}`)))

	require.NoError(t, repo.Delete(ctx, key))
	data, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = repo.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestProfileRepository_DeleteUser(t *testing.T) {
	repo := NewProfileRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, listview.ProfileKey{UserID: 3, ViewID: "hosts"}, []byte(`{}`)))
	require.NoError(t, repo.Put(ctx, listview.ProfileKey{UserID: 3, ViewID: "graphs"}, []byte(`{}`)))
	require.NoError(t, repo.Put(ctx, listview.ProfileKey{UserID: 4, ViewID: "hosts"}, []byte(`{}`)))

	require.NoError(t, repo.DeleteUser(ctx, 3))

	var count int64
	require.NoError(t, repo.db.Model(&system.Profile{}).Where("user_id = ?", 3).Count(&count).Error)
	assert.Zero(t, count)
	data, err := repo.Get(ctx, listview.ProfileKey{UserID: 4, ViewID: "hosts"})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &system.User{Username: "Admin", Password: "hash", UserType: system.UserTypeSuperAdmin, Status: system.UserStatusEnabled}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	found, err := repo.GetUserByUsername(ctx, "Admin")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, system.UserTypeSuperAdmin, found.UserType)

	missing, err := repo.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "newhash"))
	found, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.Password)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, 999, "x"), system.ErrNotFound)
}
