package directory

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

	"alcyxob/gym-membership/internal/domain"
)

// ErrUnauthorized is returned (wrapped in *APIError) for 401 responses.
var ErrUnauthorized = errors.New("not signed in or session expired")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// TokenSource supplies the bearer token for each request; "" sends none.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the gym backend's REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for baseURL (e.g. "https://gym.example.com").
// A nil httpClient gets a 15 second timeout.
func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{baseURL: u, httpClient: httpClient, tokens: tokens}, nil
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Role    string `json:"role"`
		GymName string `json:"gymName"`
	} `json:"user"`
}

// Login exchanges credentials for a token. It does not use the TokenSource.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, true)
}

// ListMembers fetches the whole roster.
func (c *Client) ListMembers(ctx context.Context) ([]domain.Member, error) {
	var out []domain.Member
	if err := c.do(ctx, http.MethodGet, "/api/v1/members", nil, &out, true); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Member{}
	}
	return out, nil
}

// MemberInput carries the writable member fields.
type MemberInput struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Plan        string   `json:"plan"`
	JoiningDate string   `json:"joiningDate,omitempty"`
	ExpiryDate  string   `json:"expiryDate,omitempty"`
	Amount      float64  `json:"amount"`
	Weight      *float64 `json:"weight,omitempty"`
	Height      *float64 `json:"height,omitempty"`
}

func (c *Client) CreateMember(ctx context.Context, in MemberInput) (*domain.Member, error) {
	var out domain.Member
	if err := c.do(ctx, http.MethodPost, "/api/v1/members", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMember(ctx context.Context, id string, in MemberInput) (*domain.Member, error) {
	var out domain.Member
	if err := c.do(ctx, http.MethodPut, "/api/v1/members/"+url.PathEscape(id), in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMember(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/members/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
