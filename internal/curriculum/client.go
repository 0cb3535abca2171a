package curriculum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openlearnhub/hub-edge/internal/platform/cache"
)

// NetworkError is the fixed sentinel reported when the upstream API could
// not be reached at all, so callers can distinguish "your input was
// refused" from "we couldn't reach the server".
const NetworkError = "network_error"

const networkErrorMessage = "Connection failed. Please ensure the server is running."

// Client talks to the upstream curriculum API. Reads are cache-first;
// writes invalidate the affected cache keys. No method returns a Go error:
// every failure mode is folded into the return value per the response
// contract, so handlers branch once per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *cache.Store
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a curriculum API client. baseURL is the upstream
// service root, e.g. "http://localhost:5000".
func NewClient(baseURL string, store *cache.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/curriculum",
		httpClient: &http.Client{
			Timeout: 90 * time.Second, // generation is slow; the AI call dominates
		},
		store: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiEnvelope is the upstream response body. All endpoints share one
// shape; absent fields decode to zero values.
type apiEnvelope struct {
	Message    string  `json:"message"`
	Error      string  `json:"error"`
	Curriculum *Saved  `json:"curriculum"`
	Curricula  []Saved `json:"curricula"`
}

// Generate requests a new AI-generated curriculum for the user. On
// success the user's list cache is invalidated so the new curriculum shows
// up in the next list fetch.
func (c *Client) Generate(ctx context.Context, userID string, form FormData) GenerateResult {
	if strings.TrimSpace(form.LearningGoal) == "" {
		return GenerateResult{
			Success: false,
			Message: "Please describe what you want to learn",
			Error:   "validation_error",
		}
	}

	type generateRequest struct {
		UserID string `json:"userId"`
		FormData
	}
	body, err := json.Marshal(generateRequest{UserID: userID, FormData: form})
	if err != nil {
		return GenerateResult{Success: false, Message: networkErrorMessage, Error: NetworkError}
	}

	status, env, err := c.do(ctx, http.MethodPost, "/generate", body)
	if err != nil {
		slog.Error("curriculum generation failed", "user_id", userID, "error", err)
		return GenerateResult{Success: false, Message: networkErrorMessage, Error: NetworkError}
	}

	if status < 200 || status > 299 {
		msg := env.Message
		if msg == "" {
			msg = "Failed to generate curriculum"
		}
		return GenerateResult{Success: false, Message: msg, Error: env.Error}
	}

	c.store.Invalidate(ctx, cache.UserCurriculaKey(userID))

	msg := env.Message
	if msg == "" {
		msg = "Curriculum generated successfully"
	}
	return GenerateResult{Success: true, Message: msg, Curriculum: env.Curriculum}
}

// GetByID fetches a single curriculum, serving from cache when a fresh
// entry exists. Returns nil on any failure.
func (c *Client) GetByID(ctx context.Context, id string) *Saved {
	key := cache.CurriculumKey(id)

	var cached Saved
	if c.store.Get(ctx, key, &cached) {
		return &cached
	}

	status, env, err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(id), nil)
	if err != nil {
		slog.Error("get curriculum failed", "curriculum_id", id, "error", err)
		return nil
	}
	if status < 200 || status > 299 || env.Curriculum == nil {
		slog.Error("get curriculum rejected",
			"curriculum_id", id,
			"status", status,
			"message", env.Message,
		)
		return nil
	}

	c.store.Save(ctx, key, env.Curriculum)
	return env.Curriculum
}

// GetUserCurricula fetches all of a user's curricula, cache-first.
// Returns an empty slice (never nil) on any failure so callers render "no
// items" uniformly.
func (c *Client) GetUserCurricula(ctx context.Context, userID string) []Saved {
	key := cache.UserCurriculaKey(userID)

	var cached []Saved
	if c.store.Get(ctx, key, &cached) {
		return cached
	}

	status, env, err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(userID), nil)
	if err != nil {
		slog.Error("get user curricula failed", "user_id", userID, "error", err)
		return []Saved{}
	}
	if status < 200 || status > 299 {
		slog.Error("get user curricula rejected",
			"user_id", userID,
			"status", status,
			"message", env.Message,
		)
		return []Saved{}
	}

	curricula := env.Curricula
	if curricula == nil {
		curricula = []Saved{}
	}
	c.store.Save(ctx, key, curricula)
	return curricula
}

// Delete removes a curriculum. On success both the item entry and the
// user's list entry are invalidated; list membership changed even though
// only one entity did.
func (c *Client) Delete(ctx context.Context, id, userID string) bool {
	body, err := json.Marshal(map[string]string{"userId": userID})
	if err != nil {
		return false
	}

	status, _, err := c.do(ctx, http.MethodDelete, "/"+url.PathEscape(id), body)
	if err != nil {
		slog.Error("delete curriculum failed", "curriculum_id", id, "error", err)
		return false
	}
	if status < 200 || status > 299 {
		return false
	}

	c.store.Invalidate(ctx, cache.CurriculumKey(id))
	c.store.Invalidate(ctx, cache.UserCurriculaKey(userID))
	return true
}

// UpdateProgress replaces the curriculum's progress map. On success the
// item's cache entry is invalidated and immediately re-populated with the
// fresh response, saving a round-trip on the next read. Returns nil on
// any failure.
func (c *Client) UpdateProgress(ctx context.Context, id string, progress map[string]any) *Saved {
	body, err := json.Marshal(map[string]any{"progress": progress})
	if err != nil {
		return nil
	}

	status, env, err := c.do(ctx, http.MethodPatch, "/"+url.PathEscape(id)+"/progress", body)
	if err != nil {
		slog.Error("update progress failed", "curriculum_id", id, "error", err)
		return nil
	}
	if status < 200 || status > 299 || env.Curriculum == nil {
		slog.Error("update progress rejected",
			"curriculum_id", id,
			"status", status,
			"message", env.Message,
		)
		return nil
	}

	key := cache.CurriculumKey(id)
	c.store.Invalidate(ctx, key)
	c.store.Save(ctx, key, env.Curriculum)
	return env.Curriculum
}

// do issues one request and decodes the shared response envelope. A
// non-2xx status is not an error here; callers branch on it. An
// undecodable body degrades to an empty envelope so HTTP errors with
// non-JSON bodies still surface as service rejections, not connectivity
// failures.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, apiEnvelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, apiEnvelope{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apiEnvelope{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, apiEnvelope{}, fmt.Errorf("read response: %w", err)
	}

	var env apiEnvelope
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &env); err != nil {
			slog.Warn("undecodable response body", "path", path, "status", resp.StatusCode)
			env = apiEnvelope{}
		}
	}
	return resp.StatusCode, env, nil
}
