package respond_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/easysplit/internal/http/respond"
)

type person struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required,max=5"`
}

type payload struct {
	People  []person `json:"people" validate:"required,min=1,unique=ID,dive"`
	Percent float64  `json:"percent" validate:"gte=0,lte=100"`
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name string
		in   payload
		want []respond.FieldError
	}

	tests := []testCase{
		{
			name: "Valid",
			in:   payload{People: []person{{ID: "a", Name: "Al"}}, Percent: 12.5},
		},
		{
			name: "MissingList",
			in:   payload{},
			want: []respond.FieldError{{Field: "people", Message: "is required"}},
		},
		{
			name: "NestedFields",
			in:   payload{People: []person{{ID: "a", Name: ""}, {ID: "b", Name: "Bartholomew"}}, Percent: 101},
			want: []respond.FieldError{
				{Field: "people[0].name", Message: "is required"},
				{Field: "people[1].name", Message: "must be at most 5 characters"},
				{Field: "percent", Message: "must be at most 100"},
			},
		},
		{
			name: "DuplicateIDs",
			in:   payload{People: []person{{ID: "a", Name: "Al"}, {ID: "a", Name: "Bo"}}},
			want: []respond.FieldError{{Field: "people", Message: "must not contain duplicate id values"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, respond.Validate(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}

	tests := []testCase{
		{name: "Empty", body: "", wantStatus: http.StatusBadRequest, wantCode: respond.CodeBadRequest},
		{name: "Malformed", body: "{", wantStatus: http.StatusBadRequest, wantCode: respond.CodeBadRequest},
		{name: "Invalid", body: `{"people":[]}`, wantStatus: http.StatusBadRequest, wantCode: respond.CodeValidation},
		{name: "Valid", body: `{"people":[{"id":"a","name":"Al"}]}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var p payload
			if err := respond.Decode(rec, req, &p); err != nil {
				respond.DecodeError(rec, err)
			} else {
				respond.JSON(rec, http.StatusOK, p)
			}

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode == "" {
				return
			}

			var apiErr respond.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestInternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/splits/X", nil)

	respond.Internal(rec, req, assertErr("password=hunter2"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
