// Package clinicapi is the REST client for the clinic backend. Every call
// attaches the stored bearer token; a 401 from any endpoint clears the
// token so the caller falls back to the login flow.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/session"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// ErrUnauthorized is returned when the backend rejects the bearer token.
var ErrUnauthorized = errors.New("clinicapi: unauthorized")

// Config controls how the backend client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the clinic backend endpoints the real-time core consumes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	logger     *logging.Logger
}

// New creates a configured Client with sane defaults.
func New(cfg Config, sess *session.Session) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("clinicapi: base URL is required")
	}
	if sess == nil {
		return nil, errors.New("clinicapi: session is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		session:    sess,
		logger:     logger.Component("clinicapi"),
	}, nil
}

// Login exchanges credentials for a bearer token and stores it in the
// session. The only endpoint that does not require an existing token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("clinicapi: marshal login: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("clinicapi: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clinicapi: login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clinicapi: login failed with status %d", resp.StatusCode)
	}

	var auth AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("clinicapi: decode login response: %w", err)
	}
	if err := c.session.SetToken(ctx, auth.Token); err != nil {
		return fmt.Errorf("clinicapi: store token: %w", err)
	}
	return nil
}

// GetConversation fetches the full message history with one counterpart.
func (c *Client) GetConversation(ctx context.Context, otherUserID int) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := c.getJSON(ctx, "/chat/conversation/"+strconv.Itoa(otherUserID), &messages)
	return messages, err
}

// GetUnreadMessages fetches all unread messages addressed to the user.
func (c *Client) GetUnreadMessages(ctx context.Context) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := c.getJSON(ctx, "/chat/unread", &messages)
	return messages, err
}

// GetUnreadCounts fetches per-counterpart unread counts. The backend keys
// the object with stringified user ids.
func (c *Client) GetUnreadCounts(ctx context.Context) (map[int]int, error) {
	raw := map[string]int{}
	if err := c.getJSON(ctx, "/chat/unread/counts", &raw); err != nil {
		return nil, err
	}
	counts := make(map[int]int, len(raw))
	for key, count := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			c.logger.Warn("skipping non-numeric unread key", "key", key)
			continue
		}
		counts[id] = count
	}
	return counts, nil
}

// MarkConversationRead marks every message from senderId as read. REST
// fallback for when the push transport is down.
func (c *Client) MarkConversationRead(ctx context.Context, senderID int) error {
	return c.do(ctx, http.MethodPut, "/chat/mark-read/"+strconv.Itoa(senderID), nil, nil)
}

// GetDashboardStats fetches the admin dashboard summary.
func (c *Client) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := c.getJSON(ctx, "/dashboard/stats", &stats)
	return stats, err
}

// GetRecentRendezVous fetches the latest appointments for the dashboard.
func (c *Client) GetRecentRendezVous(ctx context.Context) ([]RendezVous, error) {
	var rdvs []RendezVous
	err := c.getJSON(ctx, "/dashboard/recent-rendezvous", &rdvs)
	return rdvs, err
}

// GetAnnualRevenue fetches invoiced revenue for a year.
func (c *Client) GetAnnualRevenue(ctx context.Context, year int) (Revenue, error) {
	var rev Revenue
	err := c.getJSON(ctx, "/factures/revenus/"+strconv.Itoa(year), &rev)
	return rev, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	token, err := c.session.Token()
	if err != nil {
		return fmt.Errorf("clinicapi: %s %s: %w", method, path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("clinicapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clinicapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn("token rejected, clearing session", "path", path)
		if clearErr := c.session.Clear(ctx); clearErr != nil {
			c.logger.Error("failed to clear session", "error", clearErr)
		}
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("clinicapi: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("clinicapi: decode %s response: %w", path, err)
	}
	return nil
}
