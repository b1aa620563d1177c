package main

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	authPkg "neomonitor/internal/pkg/auth"
	"neomonitor/internal/repo/memory"
	systemRepo "neomonitor/internal/repo/mysql/system"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestPerformMigration(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, performMigration(db, &MigrateOptions{Environment: "test"}))
	assert.True(t, db.Migrator().HasTable(&system.User{}))
	assert.True(t, db.Migrator().HasTable("hosts"))

	require.NoError(t, performMigration(db, &MigrateOptions{Environment: "test", DropFirst: true}))
	assert.Error(t, performMigration(db, &MigrateOptions{Environment: "production", DropFirst: true}))
}

func TestSeedAndResetPassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, performMigration(db, &MigrateOptions{Environment: "test"}))

	require.NoError(t, seedUsers(ctx, db))
	require.NoError(t, seedUsers(ctx, db))

	var count int64
	require.NoError(t, db.Model(&system.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, resetPassword(ctx, db, "guest", "n3w-pass"))
	user, err := systemRepo.NewUserRepository(db).GetUserByUsername(ctx, "guest")
	require.NoError(t, err)
	ok, err := authPkg.NewPasswordManager(authPkg.DefaultPasswordConfig).VerifyPassword("n3w-pass", user.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, resetPassword(ctx, db, "nobody", "x"), system.ErrNotFound)
	assert.True(t, system.IsValidationError(resetPassword(ctx, db, "guest", "")))
}

func TestResetViews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, performMigration(db, &MigrateOptions{Environment: "test"}))
	require.NoError(t, seedUsers(ctx, db))

	users := systemRepo.NewUserRepository(db)
	guest, err := users.GetUserByUsername(ctx, "guest")
	require.NoError(t, err)
	admin, err := users.GetUserByUsername(ctx, "Admin")
	require.NoError(t, err)

	for _, store := range []listview.ProfileStore{memory.NewProfileRepository(), systemRepo.NewProfileRepository(db)} {
		require.NoError(t, store.Put(ctx, listview.ProfileKey{UserID: guest.ID, ViewID: "hosts"}, []byte(`{"page":2}`)))
		require.NoError(t, store.Put(ctx, listview.ProfileKey{UserID: guest.ID, ViewID: "graphs"}, []byte(`{}`)))
		require.NoError(t, store.Put(ctx, listview.ProfileKey{UserID: admin.ID, ViewID: "hosts"}, []byte(`{}`)))

		require.NoError(t, resetViews(ctx, db, store, "guest"))

		data, err := store.Get(ctx, listview.ProfileKey{UserID: guest.ID, ViewID: "hosts"})
		require.NoError(t, err)
		assert.Nil(t, data)
		data, err = store.Get(ctx, listview.ProfileKey{UserID: admin.ID, ViewID: "hosts"})
		require.NoError(t, err)
		assert.NotNil(t, data)
	}

	assert.ErrorIs(t, resetViews(ctx, db, memory.NewProfileRepository(), "nobody"), system.ErrNotFound)
}
