package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

var secret = []byte("test-session-secret")

func TestSignParse_RoundTrip(t *testing.T) {
	sid, uid := uuid.NewString(), uuid.NewString()
	exp := time.Now().Add(time.Hour)

	tok, err := Sign(secret, sid, uid, "alice", models.RoleAdmin, exp)
	require.NoError(t, err)

	claims, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, sid, claims.ID)
	assert.Equal(t, uid, claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)

	_, err = Parse([]byte("other"), tok)
	assert.Error(t, err)

	expired, err := Sign(secret, sid, uid, "alice", models.RoleAdmin, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = Parse(secret, expired)
	assert.Error(t, err)
}

type stubResolver struct {
	p   *Principal
	err error
}

func (s stubResolver) Resolve(context.Context, string) (*Principal, error) { return s.p, s.err }

func serve(t *testing.T, r Resolver, cookie string, h echo.HandlerFunc, gates ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/x", h, append([]echo.MiddlewareFunc{Load(r, false)}, gates...)...)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoad_AttachesPrincipal(t *testing.T) {
	want := &Principal{UserID: uuid.New(), Username: "bob", Role: models.RoleCustomer}
	var got *Principal
	rec := serve(t, stubResolver{p: want}, "tok", func(c echo.Context) error {
		got = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, got)
}

func TestLoad_InvalidCookieIsCleared(t *testing.T) {
	var got *Principal
	rec := serve(t, stubResolver{err: errors.New("revoked")}, "tok", func(c echo.Context) error {
		got = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), CookieName+"=;")
}

func TestRequireAdmin(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name   string
		p      *Principal
		cookie string
		want   int
	}{
		{name: "anonymous", want: http.StatusForbidden},
		{name: "customer", p: &Principal{Role: models.RoleCustomer}, cookie: "c", want: http.StatusForbidden},
		{name: "admin", p: &Principal{Role: models.RoleAdmin}, cookie: "a", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, stubResolver{p: tt.p}, tt.cookie, ok, RequireAdmin)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireCustomer(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	rec := serve(t, stubResolver{}, "", ok, RequireCustomer)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = serve(t, stubResolver{p: &Principal{Role: models.RoleAdmin}}, "a", ok, RequireCustomer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, stubResolver{p: &Principal{Role: models.RoleCustomer}}, "c", ok, RequireCustomer)
	assert.Equal(t, http.StatusOK, rec.Code)
}
