package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/session"
)

func TestCart_AddTwiceIncrementsQuantity(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "gina", models.RoleCustomer)
	p := s.product(t, "Socks", "Apparel", 12.5)

	body := `{"productId":"` + p.ID.String() + `"}`
	rec := s.postJSON("/cart/add", body, withSession(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", gjson.Get(rec.Body.String(), "status").String())
	assert.EqualValues(t, 1, gjson.Get(rec.Body.String(), "cartCount").Int())

	rec = s.postJSON("/cart/add", body, withSession(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, gjson.Get(rec.Body.String(), "cartCount").Int())

	principal := mustPrincipal(t, s, token)
	items, err := s.repo.GetCart(context.Background(), principal.UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	rec = s.get("/cart", withSession(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Socks")
	assert.Contains(t, rec.Body.String(), "Total $25.00")
}

func TestCart_ConcurrentAddsAreNotLost(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "nora", models.RoleCustomer)
	p := s.product(t, "Gloves", "Apparel", 9)
	body := `{"productId":"` + p.ID.String() + `"}`

	const n = 20
	var wg sync.WaitGroup
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- s.postJSON("/cart/add", body, withSession(token)).Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	items, err := s.repo.GetCart(context.Background(), mustPrincipal(t, s, token).UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, n, items[0].Quantity)
}

func TestCart_AddRejections(t *testing.T) {
	s := newTestServer(t)
	customer := s.login(t, "hank", models.RoleCustomer)
	admin := s.login(t, "ivy", models.RoleAdmin)
	p := s.product(t, "Hat", "Apparel", 20)
	body := `{"productId":"` + p.ID.String() + `"}`

	rec := s.postJSON("/cart/add", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "guest", gjson.Get(rec.Body.String(), "status").String())

	rec = s.postJSON("/cart/add", body, withSession(admin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", gjson.Get(rec.Body.String(), "status").String())

	rec = s.postJSON("/cart/add", `{"productId":"bogus"}`, withSession(customer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", gjson.Get(rec.Body.String(), "status").String())

	rec = s.postJSON("/cart/add", `{"productId":"00000000-0000-0000-0000-000000000001"}`, withSession(customer))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", gjson.Get(rec.Body.String(), "status").String())
}

func TestCart_UpdateAndRemove(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "jill", models.RoleCustomer)
	p := s.product(t, "Scarf", "Apparel", 8)
	principal := mustPrincipal(t, s, token)
	ctx := context.Background()

	require.Equal(t, http.StatusOK, s.postJSON("/cart/add", `{"productId":"`+p.ID.String()+`"}`, withSession(token)).Code)

	rec := s.postForm("/cart/update", url.Values{"productId": {p.ID.String()}, "action": {"increase"}}, withSession(token))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
	items, err := s.repo.GetCart(ctx, principal.UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	s.postForm("/cart/update", url.Values{"productId": {p.ID.String()}, "action": {"shuffle"}}, withSession(token))
	items, _ = s.repo.GetCart(ctx, principal.UserID)
	assert.Equal(t, 2, items[0].Quantity)

	for i := 0; i < 2; i++ {
		rec = s.postForm("/cart/update", url.Values{"productId": {p.ID.String()}, "action": {"decrease"}}, withSession(token))
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}
	items, err = s.repo.GetCart(ctx, principal.UserID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.Equal(t, http.StatusOK, s.postJSON("/cart/add", `{"productId":"`+p.ID.String()+`"}`, withSession(token)).Code)
	s.postJSON("/cart/add", `{"productId":"`+p.ID.String()+`"}`, withSession(token))
	rec = s.postForm("/cart/remove", url.Values{"productId": {p.ID.String()}}, withSession(token))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	items, err = s.repo.GetCart(ctx, principal.UserID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCart_DeletedProductDoesNotBreakView(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "kim", models.RoleCustomer)
	keep := s.product(t, "Belt", "Apparel", 15)
	drop := s.product(t, "Tie", "Apparel", 40)

	for _, p := range []*models.Product{keep, drop} {
		require.Equal(t, http.StatusOK, s.postJSON("/cart/add", `{"productId":"`+p.ID.String()+`"}`, withSession(token)).Code)
	}
	require.NoError(t, s.catalog.DeleteProduct(context.Background(), drop.ID))

	rec := s.get("/cart", withSession(token))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Belt")
	assert.NotContains(t, body, "Tie")
	assert.Contains(t, body, "Total $15.00")
}

func TestCart_Gates(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "lee", models.RoleAdmin)

	rec := s.get("/cart")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = s.get("/cart", withSession(admin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admins cannot shop.")
}

func mustPrincipal(t *testing.T, s *testServer, token string) *session.Principal {
	t.Helper()
	p, err := s.auth.Resolve(context.Background(), token)
	require.NoError(t, err)
	return p
}
