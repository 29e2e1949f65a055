// Package client is a minimal HTTP client for the roster API, used by the
// rosterctl command.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the roster JSON API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Member mirrors the API member model.
type Member struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	BirthDate string   `json:"birth_date,omitempty"`
	Roles     []string `json:"roles"`
}

// Duty mirrors the API duty model.
type Duty struct {
	ID        string   `json:"id"`
	Category  string   `json:"category"`
	Date      string   `json:"date"`
	StartsAt  string   `json:"starts_at,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	CreatorID string   `json:"creator_id"`
	Assignees []string `json:"assignees"`
}

// Reminder mirrors the API reminder model.
type Reminder struct {
	DutyID   string `json:"duty_id"`
	Category string `json:"category"`
	MemberID string `json:"member_id"`
	StartsAt string `json:"starts_at"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// LoginResult carries the session issued by the API.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Dashboard string `json:"dashboard"`
	Member    Member `json:"member"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login authenticates and stores the issued token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, "sessions", body, &resp); err != nil {
		return LoginResult{}, err
	}
	c.Token = resp.Token
	return resp, nil
}

// Logout revokes the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "sessions/current", nil, nil)
}

// ListMembers returns the member directory.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var resp struct {
		Members []Member `json:"members"`
	}
	err := c.do(ctx, http.MethodGet, "members", nil, &resp)
	return resp.Members, err
}

// DutyFilter narrows ListDuties results. Zero fields are omitted.
type DutyFilter struct {
	Category string
	Week     string
	From     string
	To       string
	MemberID string
}

// ListDuties returns duty assignments matching the filter.
func (c *Client) ListDuties(ctx context.Context, filter DutyFilter) ([]Duty, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Week != "" {
		query.Set("week", filter.Week)
	}
	if filter.From != "" {
		query.Set("from", filter.From)
	}
	if filter.To != "" {
		query.Set("to", filter.To)
	}
	if filter.MemberID != "" {
		query.Set("member_id", filter.MemberID)
	}

	endpoint := "duties"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var resp struct {
		Duties []Duty `json:"duties"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Duties, err
}

// DueReminders returns reminders for duties starting soon.
func (c *Client) DueReminders(ctx context.Context) ([]Reminder, error) {
	var resp struct {
		Reminders []Reminder `json:"reminders"`
	}
	err := c.do(ctx, http.MethodGet, "reminders/due", nil, &resp)
	return resp.Reminders, err
}

// ExportWeek returns the plain-text roster table for the week containing the
// given date, or the current week when week is empty.
func (c *Client) ExportWeek(ctx context.Context, week string) (string, error) {
	endpoint := "export/week"
	if week != "" {
		endpoint += "?week=" + url.QueryEscape(week)
	}
	return c.doText(ctx, http.MethodGet, endpoint)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	resp, err := c.roundTrip(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doText(ctx context.Context, method, endpoint string) (string, error) {
	resp, err := c.roundTrip(ctx, method, endpoint, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	return string(payload), nil
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	target := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTPClient.Do(req)
}
