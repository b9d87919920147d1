package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lubripos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func newEngine(debug bool) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler(debug))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apierror.Response {
	t.Helper()
	var resp apierror.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth_SetsUsuarioID(t *testing.T) {
	userID := uuid.New()
	token, err := IssueToken(testSecret, userID, "cajero", time.Hour)
	require.NoError(t, err)

	r := newEngine(false)
	r.GET("/me", JWTAuth(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, GetUsuarioID(c).String())
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestJWTAuth_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, uuid.New(), "", -time.Minute)
	require.NoError(t, err)
	otherKey, err := IssueToken("otra-clave", uuid.New(), "", time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"sin header":     "",
		"sin bearer":     "Basic abc",
		"expirado":       "Bearer " + expired,
		"firma invalida": "Bearer " + otherKey,
	}
	r := newEngine(false)
	r.GET("/me", JWTAuth(testSecret), func(c *gin.Context) { c.Status(http.StatusOK) })

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, apierror.CodeUnauthorized, decode(t, w).Error.Code)
		})
	}
}

func TestErrorHandler_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apierror.Validation("x"), http.StatusBadRequest, apierror.CodeValidation},
		{apierror.NotFound("x"), http.StatusNotFound, apierror.CodeNotFound},
		{apierror.Conflict("x"), http.StatusBadRequest, apierror.CodeConflict},
		{apierror.CajaCerrada("x"), http.StatusBadRequest, apierror.CodeCajaCerrada},
		{apierror.Forbidden("x"), http.StatusForbidden, apierror.CodeForbidden},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, apierror.CodeInternal},
	}
	for _, tc := range cases {
		r := newEngine(false)
		r.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, tc.status, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, tc.code, resp.Error.Code)
		assert.Empty(t, resp.Error.Details)
	}
}

func TestErrorHandler_DetailsOnlyInDebug(t *testing.T) {
	r := newEngine(true)
	r.GET("/", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection reset")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	resp := decode(t, w)
	assert.Equal(t, "Error interno del servidor", resp.Error.Message)
	assert.Equal(t, "pq: connection reset", resp.Error.Details)
}

func TestRecovery_Returns500(t *testing.T) {
	r := newEngine(false)
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLimiter_WindowResets(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(2, time.Minute)
	l.now = func() time.Time { return clock }

	ok, _ := l.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1")
	assert.False(t, ok)
	ok, _ = l.allow("2.2.2.2")
	assert.True(t, ok)

	clock = clock.Add(time.Minute + time.Second)
	ok, _ = l.allow("1.1.1.1")
	assert.True(t, ok)
}

func TestRateLimiter_RetryAfterEnSegundos(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(1, time.Minute)
	l.now = func() time.Time { return clock }

	r := gin.New()
	r.Use(limitar(l))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	assert.Equal(t, http.StatusOK, hit().Code)

	clock = clock.Add(15*time.Second + 200*time.Millisecond)
	w := hit()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "45", w.Header().Get("Retry-After"))
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
}

func TestSegundosHasta(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 60, segundosHasta(now, now.Add(time.Minute)))
	assert.Equal(t, 1, segundosHasta(now, now.Add(100*time.Millisecond)))
	assert.Equal(t, 1, segundosHasta(now, now.Add(-time.Second)))
}
