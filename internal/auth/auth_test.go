package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailtracker/internal/core"
	"retailtracker/internal/store/memory"
)

func TestIssueAndValidate(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	s := NewSessions("test-secret", time.Hour).WithClock(func() time.Time { return now })

	token, exp, err := s.Issue(core.User{ID: "u1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.True(t, exp.Equal(now.Add(time.Hour)))

	claims, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestValidateRejects(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	s := NewSessions("test-secret", time.Hour).WithClock(func() time.Time { return now })
	token, _, err := s.Issue(core.User{ID: "u1"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := s.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, core.ErrUnauthenticated)
		assert.True(t, IsExpired(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessions("other-secret", time.Hour).WithClock(func() time.Time { return now })
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, core.ErrUnauthenticated)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.Validate("")
		assert.ErrorIs(t, err, core.ErrUnauthenticated)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID: "u1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = s.Validate(foreign)
		assert.ErrorIs(t, err, core.ErrUnauthenticated)
	})

	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Validate(none)
		assert.ErrorIs(t, err, core.ErrUnauthenticated)
	})
}

func TestMiddleware(t *testing.T) {
	s := NewSessions("test-secret", time.Hour)
	token, _, err := s.Issue(core.User{ID: "u1"})
	require.NoError(t, err)

	var seen string
	h := Middleware(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", seen)

	seen = ""
	req = httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", seen)

	seen = ""
	req = httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
	assert.Empty(t, seen)
}

func TestDemoLogin(t *testing.T) {
	ctx := context.Background()
	users := memory.New()

	u, err := DemoLogin(ctx, users, "  Shop@Example.com ", "anything")
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", u.Email)
	assert.Equal(t, DemoUserID("shop@example.com"), u.ID)
	assert.Equal(t, "Demo", u.FirstName)

	again, err := DemoLogin(ctx, users, "shop@example.com", "other")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	stored, err := users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", stored.Email)

	_, err = DemoLogin(ctx, users, "", "")
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
	assert.True(t, verr.Has("password"))
}

func TestDemoUserIDIsStable(t *testing.T) {
	assert.Equal(t, DemoUserID("a@example.com"), DemoUserID("a@example.com"))
	assert.NotEqual(t, DemoUserID("a@example.com"), DemoUserID("b@example.com"))
}
