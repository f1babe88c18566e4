// Package client talks to the EasySplit HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

// ErrNotFound is returned when the code has no matching menu or split.
var ErrNotFound = errors.New("not found")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is any non-404 failure answered by the server.
type APIError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}

	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Field + " " + d.Message
	}

	return fmt.Sprintf("api error %d (%s): %s: %s", e.Status, e.Code, e.Message, strings.Join(parts, "; "))
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type Menu struct {
	Code      string    `json:"code"`
	Name      string    `json:"name,omitempty"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MenuItem struct {
	ID    int64   `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type MenuWithItems struct {
	Menu  Menu       `json:"menu"`
	Items []MenuItem `json:"items"`
}

type MenuInput struct {
	Name     string     `json:"name,omitempty"`
	Currency string     `json:"currency,omitempty"`
	Items    []MenuItem `json:"items"`
}

// SplitInput is the body of split create, update and calculate requests.
type SplitInput struct {
	Name          string              `json:"name,omitempty"`
	MenuCode      string              `json:"menuCode,omitempty"`
	People        []split.Person      `json:"people"`
	Items         []split.Item        `json:"items"`
	Quantities    []split.Quantity    `json:"quantities"`
	Currency      string              `json:"currency"`
	ServiceCharge float64             `json:"serviceCharge"`
	TipPercent    float64             `json:"tipPercent"`
	Totals        []split.PersonTotal `json:"totals"`
	Draft         *split.Draft        `json:"draft,omitempty"`
}

type Split struct {
	Code          string              `json:"code"`
	Name          string              `json:"name,omitempty"`
	MenuCode      string              `json:"menuCode,omitempty"`
	People        []split.Person      `json:"people"`
	Items         []split.Item        `json:"items"`
	Quantities    []split.Quantity    `json:"quantities"`
	Totals        []split.PersonTotal `json:"totals"`
	Draft         *split.Draft        `json:"draft,omitempty"`
	Currency      string              `json:"currency"`
	ServiceCharge float64             `json:"serviceCharge"`
	TipPercent    float64             `json:"tipPercent"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type SplitSummary struct {
	Code       string              `json:"code"`
	Name       string              `json:"name,omitempty"`
	Currency   string              `json:"currency"`
	People     []split.Person      `json:"people"`
	Totals     []split.PersonTotal `json:"totals"`
	GrandTotal float64             `json:"grandTotal"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type Calculation struct {
	Totals     []split.PersonTotal `json:"totals"`
	Subtotal   float64             `json:"subtotal"`
	Service    float64             `json:"service"`
	Tip        float64             `json:"tip"`
	GrandTotal float64             `json:"grandTotal"`
}

// CreateMenu returns the new menu's code with the stored menu.
func (c *Client) CreateMenu(ctx context.Context, in MenuInput) (string, *MenuWithItems, error) {
	var resp struct {
		Code  string     `json:"code"`
		Menu  Menu       `json:"menu"`
		Items []MenuItem `json:"items"`
	}

	if err := c.doJSON(ctx, http.MethodPost, "/menus", in, &resp); err != nil {
		return "", nil, err
	}

	return resp.Code, &MenuWithItems{Menu: resp.Menu, Items: resp.Items}, nil
}

// ImportMenu uploads a CSV of name,price rows as a new menu.
func (c *Client) ImportMenu(ctx context.Context, filename string, csv io.Reader, name, currency string) (string, *MenuWithItems, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", nil, fmt.Errorf("creating form file: %w", err)
	}

	if _, err := io.Copy(part, csv); err != nil {
		return "", nil, fmt.Errorf("copying csv: %w", err)
	}

	for field, value := range map[string]string{"name": name, "currency": currency} {
		if value == "" {
			continue
		}

		if err := mw.WriteField(field, value); err != nil {
			return "", nil, fmt.Errorf("writing %s field: %w", field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", nil, fmt.Errorf("closing form: %w", err)
	}

	var resp struct {
		Code  string     `json:"code"`
		Menu  Menu       `json:"menu"`
		Items []MenuItem `json:"items"`
	}

	if err := c.do(ctx, http.MethodPost, "/menus/import", &body, mw.FormDataContentType(), &resp); err != nil {
		return "", nil, err
	}

	return resp.Code, &MenuWithItems{Menu: resp.Menu, Items: resp.Items}, nil
}

func (c *Client) GetMenu(ctx context.Context, code string) (*MenuWithItems, error) {
	var resp MenuWithItems
	if err := c.doJSON(ctx, http.MethodGet, menuPath(code), nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) UpdateMenu(ctx context.Context, code string, in MenuInput) (*MenuWithItems, error) {
	var resp MenuWithItems
	if err := c.doJSON(ctx, http.MethodPatch, menuPath(code), in, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) DeleteMenu(ctx context.Context, code string) error {
	var resp struct {
		Success bool `json:"success"`
	}

	return c.doJSON(ctx, http.MethodDelete, menuPath(code), nil, &resp)
}

// MenuSplits lists splits created from a menu, newest first.
func (c *Client) MenuSplits(ctx context.Context, code string) ([]SplitSummary, error) {
	var resp []SplitSummary
	if err := c.doJSON(ctx, http.MethodGet, menuPath(code)+"/splits", nil, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) CreateSplit(ctx context.Context, in SplitInput) (*Split, error) {
	var resp struct {
		Code  string `json:"code"`
		Split Split  `json:"split"`
	}

	if err := c.doJSON(ctx, http.MethodPost, "/splits", in, &resp); err != nil {
		return nil, err
	}

	return &resp.Split, nil
}

func (c *Client) GetSplit(ctx context.Context, code string) (*Split, error) {
	var resp Split
	if err := c.doJSON(ctx, http.MethodGet, splitPath(code), nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// UpdateSplit replaces the split stored under code. Concurrent editors overwrite each other.
func (c *Client) UpdateSplit(ctx context.Context, code string, in SplitInput) (*Split, error) {
	var resp Split
	if err := c.doJSON(ctx, http.MethodPatch, splitPath(code), in, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Calculate asks the server for totals without saving anything.
func (c *Client) Calculate(ctx context.Context, in SplitInput) (*Calculation, error) {
	var resp Calculation
	if err := c.doJSON(ctx, http.MethodPost, "/splits/calculate", in, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func menuPath(code string) string {
	return "/menus/" + url.PathEscape(strings.ToUpper(strings.TrimSpace(code)))
}

func splitPath(code string) string {
	return "/splits/" + url.PathEscape(strings.ToUpper(strings.TrimSpace(code)))
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	contentType := ""

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Code = "unknown"
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
