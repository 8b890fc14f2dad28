package middlewarectx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adblockpro/backend/internal/lib/jwt"
	"github.com/adblockpro/backend/internal/lib/logger"
)

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewMaker("access-secret", 15*time.Minute, "refresh-secret", time.Hour)

	validToken, err := maker.GenerateAccessToken("uid-1", "admin")
	require.NoError(t, err)
	expiredMaker := jwt.NewMaker("access-secret", -time.Minute, "refresh-secret", time.Hour)
	expiredToken, err := expiredMaker.GenerateAccessToken("uid-1", "admin")
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "valid token",
			header:         "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not a bearer scheme",
			header:         "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			header:         "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true

				uid, ok := UserUIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "uid-1", uid)
				role, ok := RoleFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "admin", role)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			JWTMiddleware(maker, logger.Discard())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		expectedStatus int
		expectNext     bool
	}{
		{name: "admin passes", role: "admin", expectedStatus: http.StatusOK, expectNext: true},
		{name: "superadmin passes", role: "superadmin", expectedStatus: http.StatusOK, expectNext: true},
		{name: "user rejected", role: "user", expectedStatus: http.StatusForbidden},
		{name: "no role rejected", role: "", expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.role != "" {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			w := httptest.NewRecorder()

			RequireAdmin(logger.Discard())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	limited := RateLimitMiddleware(time.Minute, 3, logger.Discard())(next)

	// the fourth request from the same address trips the limiter
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/stats/global", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats/global", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// other addresses keep their own budget
	req = httptest.NewRequest(http.MethodGet, "/api/stats/global", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
