package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/easysplit/internal/database"
	easysplitHttp "github.com/MrJamesThe3rd/easysplit/internal/http"
	menuHandler "github.com/MrJamesThe3rd/easysplit/internal/http/menu"
	"github.com/MrJamesThe3rd/easysplit/internal/http/respond"
	splitHandler "github.com/MrJamesThe3rd/easysplit/internal/http/split"
	"github.com/MrJamesThe3rd/easysplit/internal/menu"
	menuStore "github.com/MrJamesThe3rd/easysplit/internal/menu/store"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
	splitStore "github.com/MrJamesThe3rd/easysplit/internal/split/store"
)

func newRouter(t *testing.T, lookup func(http.Handler) http.Handler) http.Handler {
	t.Helper()

	db, err := database.New("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))

	var (
		menuService  = menu.NewService(menuStore.New(db))
		splitService = split.NewService(splitStore.New(db))
	)

	return easysplitHttp.New(
		easysplitHttp.Options{AllowedOrigins: []string{"*"}},
		menuHandler.NewHandler(menuService, splitService, lookup),
		splitHandler.NewHandler(splitService, lookup),
	)
}

func call(t *testing.T, h http.Handler, method, path, body string, out any) int {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out), rec.Body.String())
	}

	return rec.Code
}

func TestRouter_Healthz(t *testing.T) {
	var body map[string]string

	assert.Equal(t, http.StatusOK, call(t, newRouter(t, nil), http.MethodGet, "/healthz", "", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_MenuToSplitFlow(t *testing.T) {
	router := newRouter(t, nil)

	var created struct {
		Code  string      `json:"code"`
		Items []menu.Item `json:"items"`
	}

	status := call(t, router, http.MethodPost, "/api/v1/menus",
		`{"name":"Pizzeria","items":[{"name":"Margherita","price":9},{"name":"Cola","price":3}]}`, &created)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, created.Items, 2)

	splitBody := `{
		"name": "Lunch",
		"menuCode": "` + strings.ToLower(created.Code) + `",
		"currency": "£",
		"people": [{"id":"p1","name":"Ann"},{"id":"p2","name":"Ben"}],
		"items": [{"id":1,"name":"Margherita","price":9},{"id":2,"name":"Cola","price":3}],
		"quantities": [
			{"itemId":1,"personId":"p1","quantity":1},
			{"itemId":2,"personId":"p1","quantity":0.5},
			{"itemId":2,"personId":"p2","quantity":0.5}
		],
		"serviceCharge": 10,
		"totals": [{"person":{"id":"p1","name":"Ann"},"subtotal":0,"service":0,"tip":0,"total":0}]
	}`

	var sp struct {
		Code  string `json:"code"`
		Split struct {
			MenuCode string              `json:"menuCode"`
			Totals   []split.PersonTotal `json:"totals"`
		} `json:"split"`
	}

	require.Equal(t, http.StatusOK, call(t, router, http.MethodPost, "/api/v1/splits", splitBody, &sp))
	assert.Equal(t, created.Code, sp.Split.MenuCode)
	require.Len(t, sp.Split.Totals, 2)
	assert.Equal(t, 11.55, sp.Split.Totals[0].Total)
	assert.Equal(t, 1.65, sp.Split.Totals[1].Total)

	var summaries []struct {
		Code       string  `json:"code"`
		GrandTotal float64 `json:"grandTotal"`
	}

	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/v1/menus/"+created.Code+"/splits", "", &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, sp.Code, summaries[0].Code)
	assert.Equal(t, 13.2, summaries[0].GrandTotal)

	var fetched map[string]any
	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/v1/splits/"+sp.Code, "", &fetched))
	assert.Equal(t, "Lunch", fetched["name"])
}

func TestRouter_UnknownMenuReference(t *testing.T) {
	body := `{
		"menuCode": "ZZZZ9999",
		"currency": "£",
		"people": [{"id":"p1","name":"Ann"}],
		"items": [{"id":1,"name":"Soup","price":4}],
		"quantities": [{"itemId":1,"personId":"p1","quantity":1}],
		"totals": [{"person":{"id":"p1","name":"Ann"},"subtotal":0,"service":0,"tip":0,"total":0}]
	}`

	var apiErr respond.APIError

	assert.Equal(t, http.StatusBadRequest, call(t, newRouter(t, nil), http.MethodPost, "/api/v1/splits", body, &apiErr))
	assert.Equal(t, respond.CodeMenuNotFound, apiErr.Code)
}

func TestRouter_RejectsUnsupportedContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/splits", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_LookupRateLimit(t *testing.T) {
	router := newRouter(t, easysplitHttp.LookupLimiter(2, time.Minute))

	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodGet, "/api/v1/splits/AAAAAAAA", "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodGet, "/api/v1/splits/AAAAAAAB", "", nil))

	var apiErr respond.APIError

	assert.Equal(t, http.StatusTooManyRequests, call(t, router, http.MethodGet, "/api/v1/splits/AAAAAAAC", "", &apiErr))
	assert.Equal(t, respond.CodeRateLimited, apiErr.Code)

	// Creation is not a lookup.
	assert.Equal(t, http.StatusBadRequest, call(t, router, http.MethodPost, "/api/v1/menus", `{"items":[]}`, nil))
}

func TestRouter_Metrics(t *testing.T) {
	router := newRouter(t, nil)

	call(t, router, http.MethodGet, "/healthz", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
