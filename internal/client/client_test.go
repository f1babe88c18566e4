package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/easysplit/internal/client"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

func newClient(t *testing.T, handler http.HandlerFunc) *client.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return client.New(srv.URL + "/api/v1/")
}

func TestClient_CreateMenu(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/menus", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in client.MenuInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Cafe", in.Name)
		require.Len(t, in.Items, 1)

		w.Write([]byte(`{"code":"ABCD1234","menu":{"code":"ABCD1234","name":"Cafe","currency":"€"},"items":[{"id":1,"name":"Tea","price":2.5}]}`))
	})

	code, m, err := c.CreateMenu(context.Background(), client.MenuInput{
		Name:  "Cafe",
		Items: []client.MenuItem{{Name: "Tea", Price: 2.5}},
	})
	require.NoError(t, err)

	assert.Equal(t, "ABCD1234", code)
	assert.Equal(t, "€", m.Menu.Currency)
	assert.Equal(t, []client.MenuItem{{ID: 1, Name: "Tea", Price: 2.5}}, m.Items)
}

func TestClient_ImportMenu(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/menus/import", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Bar", r.FormValue("name"))
		assert.Empty(t, r.FormValue("currency"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()

		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "menu.csv", hdr.Filename)
		assert.Equal(t, "Beer,4.50\n", string(data))

		w.Write([]byte(`{"code":"BAR00001","menu":{"code":"BAR00001","currency":"£"},"items":[{"id":3,"name":"Beer","price":4.5}]}`))
	})

	code, m, err := c.ImportMenu(context.Background(), "menu.csv", strings.NewReader("Beer,4.50\n"), "Bar", "")
	require.NoError(t, err)

	assert.Equal(t, "BAR00001", code)
	assert.Len(t, m.Items, 1)
}

func TestClient_GetSplit(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/splits/ABCD1234", r.URL.Path, "codes are upper-cased")

		w.Write([]byte(`{
			"code":"ABCD1234",
			"people":[{"id":"a","name":"Alice"}],
			"items":[{"id":1,"name":"Soup","price":5}],
			"quantities":[{"itemId":1,"personId":"a","quantity":1}],
			"totals":[{"person":{"id":"a","name":"Alice"},"subtotal":5,"service":0,"tip":0,"total":5}],
			"currency":"£","serviceCharge":0,"tipPercent":0
		}`))
	})

	sp, err := c.GetSplit(context.Background(), " abcd1234 ")
	require.NoError(t, err)

	assert.Equal(t, []split.Quantity{{ItemID: 1, PersonID: "a", Quantity: 1}}, sp.Quantities)
	assert.Equal(t, 5.0, sp.Totals[0].Total)
}

func TestClient_Errors(t *testing.T) {
	type testCase struct {
		name    string
		status  int
		body    string
		wantErr error
		wantAPI *client.APIError
	}

	tests := []testCase{
		{
			name:    "NotFound",
			status:  http.StatusNotFound,
			body:    `{"code":"not_found","message":"split not found"}`,
			wantErr: client.ErrNotFound,
		},
		{
			name:   "Validation",
			status: http.StatusBadRequest,
			body:   `{"code":"validation_error","message":"request validation failed","details":[{"field":"people","message":"is required"}]}`,
			wantAPI: &client.APIError{
				Status:  http.StatusBadRequest,
				Code:    "validation_error",
				Message: "request validation failed",
				Details: []client.FieldError{{Field: "people", Message: "is required"}},
			},
		},
		{
			name:   "UnparseableBody",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			wantAPI: &client.APIError{
				Status:  http.StatusBadGateway,
				Code:    "unknown",
				Message: "Bad Gateway",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.UpdateSplit(context.Background(), "ABCD1234", client.SplitInput{})
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantAPI, apiErr)
		})
	}
}

func TestClient_Calculate(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/splits/calculate", r.URL.Path)
		w.Write([]byte(`{"totals":[],"subtotal":10,"service":1.25,"tip":0,"grandTotal":11.25}`))
	})

	calc, err := c.Calculate(context.Background(), client.SplitInput{})
	require.NoError(t, err)

	assert.Equal(t, 11.25, calc.GrandTotal)
}

func TestClient_DeleteMenu(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Write([]byte(`{"success":true}`))
	})

	assert.NoError(t, c.DeleteMenu(context.Background(), "ABCD1234"))
}
