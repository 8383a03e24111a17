// Package client talks to the kanso-grid REST API on behalf of the terminal
// client. It only moves raw data; views are computed by the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

const defaultTimeout = 15 * time.Second

var (
	ErrNotLoggedIn = errors.New("not logged in, run `kanso login` first")
	ErrNotFound    = errors.New("not found")
)

// APIError is any non-2xx answer of the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.StatusCode)
	}
	return fmt.Sprintf("server answered %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrNotLoggedIn
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL, for example
// http://localhost:8080/api/v1. token may be empty for Login.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login answered without a token")
	}
	return out.Token, nil
}

func (c *Client) Habits(ctx context.Context) ([]*domain.Habit, error) {
	var habits []*domain.Habit
	if err := c.do(ctx, http.MethodGet, "/habits", nil, nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

func (c *Client) Habit(ctx context.Context, id string) (*domain.Habit, error) {
	var habit domain.Habit
	if err := c.do(ctx, http.MethodGet, "/habits/"+url.PathEscape(id), nil, nil, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// Logs returns the entries of a habit between two date keys, both inclusive.
// Empty bounds are open.
func (c *Client) Logs(ctx context.Context, habitID, from, to string) ([]*domain.HabitEntry, error) {
	query := url.Values{}
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}

	var entries []*domain.HabitEntry
	if err := c.do(ctx, http.MethodGet, "/habits/"+url.PathEscape(habitID)+"/logs", query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Toggle flips one day. An empty date means today in the given zone.
func (c *Client) Toggle(ctx context.Context, habitID, date, timezone string) (*services.ToggleResult, error) {
	query := url.Values{}
	if timezone != "" {
		query.Set("tz", timezone)
	}

	var out services.ToggleResult
	body := map[string]string{"date": date}
	if err := c.do(ctx, http.MethodPost, "/habits/"+url.PathEscape(habitID)+"/toggle", query, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
