package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chen-Zehua-TP/sgvmart/internal/auth"
	"github.com/Chen-Zehua-TP/sgvmart/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newIdentityRouter wires Identity plus the given guards in front of a probe
// handler that echoes the resolved identity keys.
func newIdentityRouter(jwtService *auth.JWTService, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Identity(jwtService)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":    c.GetString("userID"),
			"userRole":  c.GetString("userRole"),
			"sessionID": c.GetString("sessionID"),
		})
	})
	r.GET("/probe", handlers...)
	return r
}

func doProbe(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity_BearerToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	r := newIdentityRouter(jwtService)

	token, _, err := jwtService.GenerateToken("u1", "alice@example.com", "CUSTOMER")
	require.NoError(t, err)

	w := doProbe(r, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":"u1"`)

	w = doProbe(r, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentity_SessionHeader(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	r := newIdentityRouter(jwtService)

	session := auth.NewSessionToken()
	w := doProbe(r, SessionHeader, session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session)

	w = doProbe(r, SessionHeader, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No identity at all is fine without a guard.
	w = doProbe(r, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIdentity_BearerBeatsSession(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	r := newIdentityRouter(jwtService)

	token, _, err := jwtService.GenerateToken("u1", "alice@example.com", "CUSTOMER")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(SessionHeader, auth.NewSessionToken())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":"u1"`)
	assert.Contains(t, w.Body.String(), `"sessionID":""`)
}

func TestRequireIdentity(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	r := newIdentityRouter(jwtService, RequireIdentity())

	w := doProbe(r, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doProbe(r, SessionHeader, auth.NewSessionToken())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireUser_RejectsGuests(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	r := newIdentityRouter(jwtService, RequireUser())

	w := doProbe(r, SessionHeader, auth.NewSessionToken())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	r := newIdentityRouter(jwtService, RequireUser(), AdminOnly())

	customer, _, err := jwtService.GenerateToken("u1", "alice@example.com", "CUSTOMER")
	require.NoError(t, err)
	admin, _, err := jwtService.GenerateToken("u2", "root@example.com", "ADMIN")
	require.NoError(t, err)

	w := doProbe(r, "Authorization", "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doProbe(r, "Authorization", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "general-api", time.Minute, 2)
	r := newIdentityRouter(jwtService, RateLimit(limiter))

	session := auth.NewSessionToken()
	for i := 0; i < 2; i++ {
		w := doProbe(r, SessionHeader, session)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := doProbe(r, SessionHeader, session)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retryAfter")

	// Another guest still has a full budget.
	w = doProbe(r, SessionHeader, auth.NewSessionToken())
	assert.Equal(t, http.StatusOK, w.Code)
}

type errStore struct{}

func (errStore) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("store unreachable")
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	limiter := ratelimit.NewLimiter(errStore{}, "general-api", time.Minute, 1)
	r := newIdentityRouter(jwtService, RateLimit(limiter))

	for i := 0; i < 3; i++ {
		w := doProbe(r, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
