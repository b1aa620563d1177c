package utils

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain v4", "192.168.1.10", "192.168.1.10"},
		{"v4 with port", "10.0.0.1:8080", "10.0.0.1"},
		{"forwarded list", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"mapped v6", "::ffff:192.0.2.1", "192.0.2.1"},
		{"v6 with port", "[2001:db8::1]:443", "2001:db8::1"},
		{"not an ip", "localhost", "localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIP(tt.input))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, "198.51.100.4", GetClientIP(c))

	c.Request.Header.Set("X-Real-IP", "198.51.100.9")
	assert.Equal(t, "198.51.100.9", GetClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.9")
	assert.Equal(t, "203.0.113.1", GetClientIP(c))
}

func TestContextHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint64(0), GetCurrentUserID(c))
	c.Set("user_id", uint64(7))
	assert.Equal(t, uint64(7), GetCurrentUserID(c))

	ctx := context.WithValue(context.Background(), ContextKeyClientIP, "10.1.1.1")
	assert.Equal(t, "10.1.1.1", GetClientIPFromContext(ctx))
	assert.Equal(t, "", GetClientIPFromContext(context.Background()))
}

func TestGenerateUUID(t *testing.T) {
	id, err := GenerateUUID()
	assert.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	assert.Len(t, GenerateShortID(), 12)
}
