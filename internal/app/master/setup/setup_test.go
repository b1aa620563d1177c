package setup

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neomonitor/internal/config"
	"neomonitor/internal/repo/memory"
	systemRepo "neomonitor/internal/repo/mysql/system"
	redisRepo "neomonitor/internal/repo/redis"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestBuildProfileStore(t *testing.T) {
	db := newDB(t)

	store, err := BuildProfileStore(db, nil, &config.Config{View: config.ViewConfig{ProfileStore: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &memory.ProfileRepository{}, store)

	store, err = BuildProfileStore(db, nil, &config.Config{View: config.ViewConfig{ProfileStore: "mysql"}})
	require.NoError(t, err)
	assert.IsType(t, &systemRepo.ProfileRepository{}, store)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err = BuildProfileStore(db, client, &config.Config{View: config.ViewConfig{ProfileStore: "redis"}})
	require.NoError(t, err)
	assert.IsType(t, &redisRepo.ProfileRepository{}, store)

	_, err = BuildProfileStore(db, nil, &config.Config{View: config.ViewConfig{ProfileStore: "etcd"}})
	assert.Error(t, err)
}

func TestBuildModules(t *testing.T) {
	db := newDB(t)
	cfg := &config.Config{
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: "unit_test_secret_key_at_least_32_chars!!", Issuer: "neomonitor"}},
		View:     config.ViewConfig{ProfileStore: "memory", SearchLimit: 100, RowsPerPage: 50},
		App:      config.AppConfig{Environment: "test"},
	}

	auth, err := BuildAuthModule(db, cfg)
	require.NoError(t, err)
	assert.NotNil(t, auth.LoginHandler)
	assert.NotNil(t, auth.SessionService)

	mon, err := BuildMonitorModule(db, nil, cfg)
	require.NoError(t, err)
	assert.NotNil(t, mon.ListHandler)
	assert.NotNil(t, mon.ConfigHandler)
	assert.Equal(t, 100, mon.Settings.SearchLimit())
}
