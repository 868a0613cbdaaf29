package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_PerClient(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewRateLimiter(rate.Every(time.Second), 2)
	l.now = func() time.Time { return at }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per client")

	at = at.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := PerMinute(1)
	l.now = func() time.Time { return at }

	require.True(t, l.Allow("a"))
	at = at.Add(visitorTTL + time.Minute)
	require.True(t, l.Allow("b"))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "b")
}

type stubValidator struct {
	claims *domain.Claims
	err    error
}

func (s stubValidator) ValidateAccessToken(string) (*domain.Claims, error) {
	return s.claims, s.err
}

func runAuth(v TokenValidator, req *http.Request) (*httptest.ResponseRecorder, *access.Principal) {
	var seen *access.Principal
	r := gin.New()
	r.Use(Authenticate(v))
	r.GET("/", func(c *gin.Context) {
		seen = access.PrincipalFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthenticate(t *testing.T) {
	profile := int64(4)
	valid := stubValidator{claims: &domain.Claims{UserID: 9, Role: domain.RoleNurse, ProfileID: &profile}}

	t.Run("no token continues anonymously", func(t *testing.T) {
		rec, p := runAuth(valid, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, p)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec, p := runAuth(valid, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, p)
		assert.Equal(t, int64(9), p.UserID)
		assert.True(t, p.OwnsProfile(4))
	})

	t.Run("query parameter", func(t *testing.T) {
		rec, p := runAuth(valid, httptest.NewRequest(http.MethodGet, "/?access_token=abc", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, p)
	})

	t.Run("other scheme is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec, p := runAuth(valid, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, p)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec, _ := runAuth(stubValidator{err: auth.ErrTokenExpired}, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "token has expired")
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec, _ := runAuth(stubValidator{err: auth.ErrTokenInvalid}, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid token")
	})
}

func TestRequestContext_CarriesMeta(t *testing.T) {
	var meta service.RequestMeta
	r := gin.New()
	r.Use(RequestContext())
	r.GET("/", func(c *gin.Context) {
		meta = service.RequestMetaFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-42", meta.RequestID)
	assert.NotEmpty(t, meta.IP)
}

func TestAuthenticate_ScopesRealtimeSessionToUser(t *testing.T) {
	valid := stubValidator{claims: &domain.Claims{UserID: 9, Role: domain.RoleNurse}}
	origin := func(req *http.Request) string {
		var got string
		r := gin.New()
		r.Use(Authenticate(valid))
		r.GET("/", func(c *gin.Context) {
			got = realtime.OriginFrom(c.Request.Context())
			c.Status(http.StatusOK)
		})
		r.ServeHTTP(httptest.NewRecorder(), req)
		return got
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set(HeaderRealtimeSession, "screen-1")
	assert.Equal(t, realtime.SessionKey(9, "screen-1"), origin(req))

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	anon.Header.Set(HeaderRealtimeSession, "screen-1")
	assert.Empty(t, origin(anon), "anonymous callers cannot name a session")
}

func TestRecovery_LogsAndAnswers500(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestContext(), Recovery(zap.New(core)))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(context.DeadlineExceeded)
		c.Status(http.StatusInternalServerError)
	})

	for _, p := range []string{"/ok", "/bad", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Contains(t, entries[2].ContextMap()["error"], "deadline exceeded")
}

func TestOriginAllowed(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}}
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, OriginAllowed(cfg, req("")))
	assert.True(t, OriginAllowed(cfg, req("http://localhost:5173")))
	assert.False(t, OriginAllowed(cfg, req("http://evil.example")))
	assert.True(t, OriginAllowed(config.CORSConfig{AllowedOrigins: []string{"*"}}, req("http://evil.example")))
}
