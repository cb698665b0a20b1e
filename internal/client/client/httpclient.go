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
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/common"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
	"github.com/google/uuid"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL. timeout
// bounds each request including reading the body.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "api"),
	}, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends one request. body and out may be nil. It never retries.
func (c *HTTPClient) do(ctx context.Context, op Op, method, path string, query url.Values, token string, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "request_id", requestID, "method", method, "path", path, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug(ctx, "request done",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		msg := eb.Error
		if msg == "" {
			msg = FallbackMessage(op)
		}
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, cr models.Credentials) (*models.LoginResult, error) {
	var res models.LoginResult
	if err := c.do(ctx, OpLogin, http.MethodPost, "/api/login", nil, "", cr, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Region   string `json:"region"`
	Carrier  string `json:"carrier"`
	City     string `json:"city"`
}

func (c *HTTPClient) Register(ctx context.Context, r models.Registration) (*models.RegistrationResult, error) {
	req := registerRequest{
		Username: r.Username,
		Password: r.Password,
		Region:   r.Region,
		Carrier:  r.Carrier,
		City:     r.City,
	}
	var res models.RegistrationResult
	if err := c.do(ctx, OpRegister, http.MethodPost, "/api/register", nil, "", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, OpLogout, http.MethodPost, "/api/logout", nil, accessToken, nil, nil)
}

// Refresh exchanges the refresh token for a new access token.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, OpRefresh, http.MethodPost, "/api/refresh", nil, refreshToken, nil, &res); err != nil {
		return "", err
	}
	if res.AccessToken == "" {
		return "", &TransportError{Op: OpRefresh, Err: errors.New("response carries no access token")}
	}
	return res.AccessToken, nil
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, accessToken, userID, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "password": newPassword}
	path := "/api/user/" + url.PathEscape(userID) + "/profile"
	return c.do(ctx, OpProfile, http.MethodPut, path, nil, accessToken, body, nil)
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, accessToken, userID, password string) error {
	body := map[string]string{"password": password}
	path := "/api/user/" + url.PathEscape(userID)
	return c.do(ctx, OpDelete, http.MethodDelete, path, nil, accessToken, body, nil)
}

func (c *HTTPClient) Scan(ctx context.Context, accessToken string, req models.ScanRequest) (*models.ScanResult, error) {
	var res models.ScanResult
	if err := c.do(ctx, OpScan, http.MethodPost, "/api/scan", nil, accessToken, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetScan(ctx context.Context, accessToken, scanID string) (*models.ScanDetail, error) {
	var res models.ScanDetail
	path := "/api/scan/" + url.PathEscape(scanID)
	if err := c.do(ctx, OpScanDetail, http.MethodGet, path, nil, accessToken, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Chat(ctx context.Context, accessToken string, req models.ChatRequest) (*models.ChatReply, error) {
	var res models.ChatReply
	if err := c.do(ctx, OpChat, http.MethodPost, "/api/chat", nil, accessToken, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Threats(ctx context.Context, filter models.ThreatFilter) (*models.ThreatList, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Severity != "" {
		q.Set("severity", filter.Severity)
	}
	var res models.ThreatList
	if err := c.do(ctx, OpThreats, http.MethodGet, "/api/threats", q, "", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) NationalAnalytics(ctx context.Context, days int) (*models.NationalStats, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var res models.NationalStats
	if err := c.do(ctx, OpAnalytics, http.MethodGet, "/api/analytics/national", q, "", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ping reports nil when the analytics health endpoint answers "healthy".
func (c *HTTPClient) Ping(ctx context.Context) error {
	var h models.Health
	if err := c.do(ctx, OpHealth, http.MethodGet, "/api/analytics/health", nil, "", nil, &h); err != nil {
		return err
	}
	if h.Status != "healthy" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, h.Status)
	}
	return nil
}
