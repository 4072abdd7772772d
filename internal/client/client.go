// Package client is the HTTP API client shared by the CLI and the TUI.
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

	"missionhub/internal/likes"
	"missionhub/pkg/models"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Code)
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userID     string
}

// New creates a client for baseURL, e.g. http://localhost:8080
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) Token() string         { return c.token }
func (c *Client) SetUserID(id string)   { c.userID = id }
func (c *Client) UserID() string        { return c.userID }
func (c *Client) BaseURL() string       { return c.baseURL }

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// decodeAPIResponse unwraps the envelope into target
func decodeAPIResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	var env apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code, apiErr.Message = env.Error, env.Message
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Error, Message: env.Message}
	}

	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body, target interface{}) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeAPIResponse(resp, target)
}

// Register creates a profile and logs in with it
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.LoginResponse, error) {
	req := models.RegisterRequest{Name: name, Email: email, Password: password}
	if err := c.call(ctx, http.MethodPost, "/auth/register", req, nil); err != nil {
		return nil, err
	}
	return c.Login(ctx, email, password)
}

// Login stores the token on success
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	c.userID = out.Profile.ID
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.ProfileView, error) {
	var out models.ProfileView
	if err := c.call(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Feed returns the community feed; limit <= 0 uses the server default
func (c *Client) Feed(ctx context.Context, limit int) (*models.ActivityFeed, error) {
	path := "/activity"
	if limit > 0 {
		path = fmt.Sprintf("/activity?limit=%d", limit)
	}
	var out models.ActivityFeed
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Likes == nil {
		out.Likes = map[string]models.LikeInfo{}
	}
	return &out, nil
}

func (c *Client) Leaderboard(ctx context.Context, limit, offset int) (*models.PaginatedResponse[models.LeaderboardEntry], error) {
	var out models.PaginatedResponse[models.LeaderboardEntry]
	path := fmt.Sprintf("/leaderboard?limit=%d&offset=%d", limit, offset)
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Rank(ctx context.Context, profileID string) (*models.RankResponse, error) {
	var out models.RankResponse
	if err := c.call(ctx, http.MethodGet, "/profiles/"+url.PathEscape(profileID)+"/rank", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleLike posts the state the caller saw. The endpoint answers with the
// flat toggle shape for both success and failure.
func (c *Client) ToggleLike(ctx context.Context, submissionID string, currentlyLiked bool) (*models.ToggleLikeResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/submissions/"+url.PathEscape(submissionID)+"/like",
		models.ToggleLikeRequest{CurrentlyLiked: currentlyLiked})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out models.ToggleLikeResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &out, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode like response: %w", decodeErr)
	}
	return &out, nil
}

func (c *Client) LikeInfo(ctx context.Context, submissionID string) (*models.LikeInfo, error) {
	var out models.LikeInfo
	if err := c.call(ctx, http.MethodGet, "/submissions/"+url.PathEscape(submissionID)+"/likes", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LikeCommitter adapts ToggleLike for likes.Coordinator
func (c *Client) LikeCommitter() likes.Committer {
	return func(ctx context.Context, submissionID string, currentlyLiked bool) (likes.CommitResult, error) {
		resp, err := c.ToggleLike(ctx, submissionID, currentlyLiked)
		if err != nil {
			return likes.CommitResult{}, err
		}
		return likes.CommitResult{Success: resp.Success, Liked: resp.Liked, Count: resp.Count, Error: resp.Error}, nil
	}
}

func (c *Client) ReviewQueue(ctx context.Context, status models.SubmissionStatus, limit, offset int) (*models.PaginatedResponse[models.SubmissionDetail], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprint(offset))
	}
	path := "/admin/submissions"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var out models.PaginatedResponse[models.SubmissionDetail]
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Review(ctx context.Context, submissionID string, req models.ReviewRequest) (*models.Submission, error) {
	var out models.Submission
	if err := c.call(ctx, http.MethodPost, "/admin/submissions/"+url.PathEscape(submissionID)+"/review", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActivityStreamURL is the websocket endpoint for live feed refreshes
func (c *Client) ActivityStreamURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/activity"
	if c.token != "" {
		u.RawQuery = url.Values{"token": {c.token}}.Encode()
	}
	return u.String(), nil
}

// UpdateRole changes a profile's role (admin only)
func (c *Client) UpdateRole(ctx context.Context, profileID string, role models.Role) error {
	return c.call(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(profileID)+"/role",
		models.RoleUpdateRequest{Role: role}, nil)
}
