package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neomonitor/internal/config"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/auth"
	"neomonitor/internal/pkg/utils"
	systemrepo "neomonitor/internal/repo/mysql/system"
	authService "neomonitor/internal/service/auth"
)

func newTestManager(t *testing.T, sec *config.SecurityConfig) (*MiddlewareManager, *auth.JWTManager, *system.User, *systemrepo.UserRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&system.User{}))

	repo := systemrepo.NewUserRepository(db)
	pm := auth.NewPasswordManager(auth.LightPasswordConfig)
	jwtManager := auth.NewJWTManager("unit_test_secret_key_at_least_32_chars!!", "neomonitor-test", time.Hour)
	user, _, err := authService.NewUserService(repo, pm).EnsureUser(context.Background(), "guest", "guest123", system.UserTypeUser)
	require.NoError(t, err)

	return NewMiddlewareManager(authService.NewSessionService(repo, pm, jwtManager), sec), jwtManager, user, repo
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGinJWTAuthMiddleware(t *testing.T) {
	m, jwtManager, user, repo := newTestManager(t, &config.SecurityConfig{})

	r := gin.New()
	r.GET("/me", m.GinJWTAuthMiddleware(), func(c *gin.Context) {
		userType, _ := c.Get("user_type")
		c.JSON(http.StatusOK, gin.H{
			"user_id":   utils.GetCurrentUserID(c),
			"username":  c.GetString("username"),
			"user_type": userType,
		})
	})
	r.POST("/config", m.GinJWTAuthMiddleware(), m.GinEditorMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := jwtManager.GenerateAccessToken(user.ID, user.Username, int(user.UserType))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":1,"username":"guest","user_type":1}`, w.Body.String())

	// 普通用户不能修改配置
	req = httptest.NewRequest(http.MethodPost, "/config", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	require.NoError(t, repo.SetStatus(context.Background(), user.ID, system.UserStatusDisabled))
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestGinCORSMiddleware(t *testing.T) {
	m, _, _, _ := newTestManager(t, &config.SecurityConfig{CORS: config.CORSConfig{
		Enabled:      true,
		AllowOrigins: []string{"https://ui.example.com"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       time.Hour,
	}})

	r := gin.New()
	r.Use(m.GinCORSMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.OPTIONS("/ping", func(c *gin.Context) { c.String(http.StatusOK, "handler reached") })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ui.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGinRequestIDMiddleware(t *testing.T) {
	m, _, _, _ := newTestManager(t, &config.SecurityConfig{})

	r := gin.New()
	r.Use(m.GinRequestIDMiddleware(), m.GinSecurityHeadersMiddleware())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetHeader("X-Request-ID")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/id", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	assert.Equal(t, "upstream-id", serve(r, req).Body.String())
}

func TestGinRateLimitMiddleware(t *testing.T) {
	m, _, _, _ := newTestManager(t, &config.SecurityConfig{RateLimit: config.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstSize:         2,
		SkipPaths:         []string{"/health"},
	}})

	r := gin.New()
	r.Use(m.GinRateLimitMiddleware())
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/api", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	}
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(limiterIdleTimeout + time.Second)
	assert.True(t, l.Allow("b"))
	assert.Len(t, l.entries, 1)

	l.Reset("b")
	assert.Empty(t, l.entries)
}
