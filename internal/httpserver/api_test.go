package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestAPI_CreateNormalizesAndGetReturnsIt(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/api/products", `{
		"name": "Desk Lamp",
		"category": "Home",
		"price": "19.99",
		"is_in_stock": "on",
		"tags": "light, desk,, office ",
		"location": {"city": "Austin"}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Equal(t, "Product created", gjson.Get(body, "message").String())
	assert.Equal(t, "Desk Lamp", gjson.Get(body, "data.product_name").String())
	assert.Equal(t, 19.99, gjson.Get(body, "data.price").Float())
	assert.True(t, gjson.Get(body, "data.is_in_stock").Bool())
	assert.Equal(t, `["light","desk","office"]`, gjson.Get(body, "data.tags").Raw)
	assert.Equal(t, "Austin", gjson.Get(body, "data.location.city").String())
	assert.True(t, strings.HasPrefix(gjson.Get(body, "data.product_id").String(), "RET-"))

	id := gjson.Get(body, "data.id").String()
	rec = s.get("/api/products/" + id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Desk Lamp", gjson.Get(rec.Body.String(), "data.product_name").String())
	assert.Equal(t, `["light","desk","office"]`, gjson.Get(rec.Body.String(), "data.tags").Raw)
}

func TestAPI_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/api/products", `{"category": "Home", "price": -3}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, "validation failed", gjson.Get(body, "error").String())
	fields := gjson.Get(body, "errors.#.field").Array()
	var names []string
	for _, f := range fields {
		names = append(names, f.String())
	}
	assert.Contains(t, names, "product_name")
	assert.Contains(t, names, "price")

	rec = s.postJSON("/api/products", `{"product_name": "X", "category": "Y", "price": 1, "is_in_stock": "maybe"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is_in_stock", gjson.Get(rec.Body.String(), "errors.0.field").String())

	for _, price := range []string{`"Infinity"`, `"+Inf"`, `"NaN"`} {
		rec = s.postJSON("/api/products", `{"product_name": "X", "category": "C", "price": `+price+`}`)
		require.Equal(t, http.StatusBadRequest, rec.Code, price)
		assert.Equal(t, "price", gjson.Get(rec.Body.String(), "errors.0.field").String(), price)
	}
	rec = s.get("/api/products")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, gjson.Get(rec.Body.String(), "total").Int())

	rec = s.postJSON("/api/products", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_DuplicateProductID(t *testing.T) {
	s := newTestServer(t)

	body := `{"product_id": "SKU-1", "product_name": "A", "category": "C", "price": 1}`
	require.Equal(t, http.StatusCreated, s.postJSON("/api/products", body).Code)

	rec := s.postJSON("/api/products", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "error").String())
}

func TestAPI_ListPagination(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 25; i++ {
		s.product(t, fmt.Sprintf("Item %02d", i), "Bulk", float64(i))
	}
	s.product(t, "Other", "Misc", 1)

	all := s.get("/api/products?perPage=100&category=Bulk")
	require.Equal(t, http.StatusOK, all.Code)
	allIDs := gjson.Get(all.Body.String(), "data.#.id").Array()
	require.Len(t, allIDs, 25)

	rec := s.get("/api/products?page=2&perPage=10&category=Bulk")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.EqualValues(t, 2, gjson.Get(body, "page").Int())
	assert.EqualValues(t, 10, gjson.Get(body, "perPage").Int())
	assert.EqualValues(t, 25, gjson.Get(body, "total").Int())
	assert.EqualValues(t, 3, gjson.Get(body, "totalPages").Int())

	ids := gjson.Get(body, "data.#.id").Array()
	require.Len(t, ids, 10)
	for i, id := range ids {
		assert.Equal(t, allIDs[10+i].String(), id.String())
	}

	rec = s.get("/api/products")
	body = rec.Body.String()
	assert.EqualValues(t, 1, gjson.Get(body, "page").Int())
	assert.EqualValues(t, 10, gjson.Get(body, "perPage").Int())
	assert.EqualValues(t, 26, gjson.Get(body, "total").Int())
}

func TestAPI_ListEmptyIsArray(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/api/products")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", gjson.Get(rec.Body.String(), "data").Raw)
	assert.EqualValues(t, 0, gjson.Get(rec.Body.String(), "totalPages").Int())
}

func TestAPI_ListRejectsBadQuery(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"page=0", "perPage=0", "perPage=101", "page=abc", "page=1000001", "page=9223372036854775807"} {
		rec := s.get("/api/products?" + q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "validation failed", gjson.Get(rec.Body.String(), "error").String(), q)
	}
}

func TestAPI_GetUpdateDelete(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, "Chair", "Furniture", 50)

	assert.Equal(t, http.StatusBadRequest, s.get("/api/products/nope").Code)
	rec := s.get("/api/products/00000000-0000-0000-0000-000000000001")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", gjson.Get(rec.Body.String(), "error").String())

	rec = s.do(http.MethodPut, "/api/products/"+p.ID.String(),
		strings.NewReader(`{"price": 45.5, "is_in_stock": false}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Equal(t, "Product updated", gjson.Get(body, "message").String())
	assert.Equal(t, 45.5, gjson.Get(body, "data.price").Float())
	assert.False(t, gjson.Get(body, "data.is_in_stock").Bool())
	assert.Equal(t, "Chair", gjson.Get(body, "data.product_name").String())

	rec = s.do(http.MethodPut, "/api/products/"+p.ID.String(), strings.NewReader(`{"price": -1}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/products/"+p.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted", gjson.Get(rec.Body.String(), "message").String())

	rec = s.do(http.MethodDelete, "/api/products/"+p.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_SearchFallsBackToDatabase(t *testing.T) {
	s := newTestServer(t)
	s.product(t, "Red Mug", "Kitchen", 5)
	s.product(t, "Blue Plate", "Kitchen", 7)

	rec := s.get("/api/products/search?q=mug")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, gjson.Get(rec.Body.String(), "total").Int())
	assert.Equal(t, "Red Mug", gjson.Get(rec.Body.String(), "data.0.product_name").String())

	assert.Equal(t, http.StatusBadRequest, s.get("/api/products/search").Code)
}
