package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"smartinventory/pkg/logger"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/ping?secret=value", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := &MockLimiter{}
	limiter.On("IsRateLimited", mock.Anything, "192.0.2.10", 2, time.Minute).Return(false, nil).Once()
	limiter.On("IsRateLimited", mock.Anything, "192.0.2.10", 2, time.Minute).Return(true, nil).Once()

	e := echo.New()
	e.GET("/api/ping", ok, RateLimit(limiter, 2))

	assert.Equal(t, http.StatusOK, serve(e, "192.0.2.10:5000").Code)

	rec := serve(e, "192.0.2.10:5000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"success":false`)
	limiter.AssertExpectations(t)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	logger.SetNopLogger()
	limiter := &MockLimiter{}
	limiter.On("IsRateLimited", mock.Anything, mock.Anything, 5, time.Minute).Return(false, errors.New("redis: connection refused"))

	e := echo.New()
	e.GET("/api/ping", ok, RateLimit(limiter, 5))

	assert.Equal(t, http.StatusOK, serve(e, "192.0.2.11:5000").Code)
}

func TestRateLimit_ZeroDisables(t *testing.T) {
	limiter := &MockLimiter{}

	e := echo.New()
	e.GET("/api/ping", ok, RateLimit(limiter, 0))

	assert.Equal(t, http.StatusOK, serve(e, "192.0.2.12:5000").Code)
	limiter.AssertNotCalled(t, "IsRateLimited", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(logger.SetNopLogger)

	e := echo.New()
	e.Use(RequestID(), RequestLogger())
	e.GET("/api/ping", ok)

	rec := serve(e, "192.0.2.13:5000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/ping", fields["path"])
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), fields["request_id"])
	assert.NotContains(t, fields["path"], "secret")
}

func TestVersionHeader(t *testing.T) {
	e := echo.New()
	e.GET("/api/ping", ok, VersionHeader(APIVersion))

	rec := serve(e, "192.0.2.14:5000")
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}
