// Package dashboard is the HTTP client for the quality-gate dashboard API.
package dashboard

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

	"github.com/google/uuid"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/normalize"
	"github.com/choidage/daker/internal/logging"
)

const maxBodyBytes = 4 * 1024 * 1024

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

var (
	// ErrMissingResults is returned when a 2xx body has neither "results"
	// nor "gates".
	ErrMissingResults = errors.New("response has no results")
	// ErrNotHeld is returned by Release when the author held no zone.
	ErrNotHeld = errors.New("no work zone held")
	// ErrMalformedBody is returned when a 2xx body cannot be decoded.
	ErrMalformedBody = errors.New("malformed response body")
)

// Client talks to one dashboard instance. It implements domain.GateRunner,
// domain.WorkZoneAPI and domain.MonitorAPI.
type Client struct {
	baseURL  string
	http     *http.Client
	timeouts domain.TimeoutConfig
	log      *logging.Logger
}

func New(cfg domain.Config, logger *logging.Logger) *Client {
	cfg = cfg.WithDefaults()
	return &Client{
		baseURL:  cfg.APIURL,
		http:     &http.Client{},
		timeouts: cfg.Timeouts,
		log:      logger.With("dashboard"),
	}
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

type gateCheckRequest struct {
	FilePath string `json:"file_path"`
}

type pipelineRequest struct {
	FilePath string `json:"file_path"`
	Author   string `json:"author"`
	Bypass   bool   `json:"bypass,omitempty"`
}

type gateResponse struct {
	Success       *bool                   `json:"success,omitempty"`
	Error         string                  `json:"error,omitempty"`
	FilePath      string                  `json:"file_path,omitempty"`
	OverallStatus string                  `json:"overall_status,omitempty"`
	Results       *[]domain.RawGateResult `json:"results,omitempty"`
	Gates         *[]domain.RawGateResult `json:"gates,omitempty"`
}

// RunGates runs the gates for one file. Quick and pipeline modes use
// /api/pipeline; gate-check mode uses the lightweight /api/gate-check.
func (c *Client) RunGates(ctx context.Context, req domain.GateRequest) (*domain.RawRun, error) {
	var (
		path string
		body any
	)
	switch req.Mode {
	case domain.ModeQuick, domain.ModePipeline:
		path = "/api/pipeline"
		body = pipelineRequest{FilePath: req.FilePath, Author: req.Author, Bypass: req.Mode.Bypass()}
	default:
		path = "/api/gate-check"
		body = gateCheckRequest{FilePath: req.FilePath}
	}

	var resp gateResponse
	if err := c.do(ctx, http.MethodPost, path, body, c.timeouts.Check, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s: %s", path, resp.Error)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, fmt.Errorf("%s: request unsuccessful", path)
	}

	gates := resp.Gates
	if gates == nil {
		gates = resp.Results
	}
	if gates == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingResults)
	}
	return &domain.RawRun{
		FilePath:      resp.FilePath,
		OverallStatus: resp.OverallStatus,
		Gates:         *gates,
	}, nil
}

type declareRequest struct {
	Author      string   `json:"author"`
	Files       []string `json:"files"`
	Description string   `json:"description"`
}

// Declare registers a work zone. The server accepted the claim once it
// answers 2xx, so a body that cannot be decoded still counts as declared.
func (c *Client) Declare(ctx context.Context, author string, files []string, description string) (*domain.DeclareResponse, error) {
	var resp domain.DeclareResponse
	body := declareRequest{Author: author, Files: files, Description: description}
	err := c.do(ctx, http.MethodPost, "/api/work-zone/declare", body, c.timeouts.Zone, &resp)
	if errors.Is(err, ErrMalformedBody) {
		c.log.Warnf("declare author=%s accepted with unreadable body: %v", author, err)
		return &domain.DeclareResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Release(ctx context.Context, author string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	body := map[string]string{"author": author}
	if err := c.do(ctx, http.MethodPost, "/api/work-zone/release", body, c.timeouts.Zone, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w by %s", ErrNotHeld, author)
	}
	return nil
}

func (c *Client) List(ctx context.Context) ([]domain.WorkZone, error) {
	var resp struct {
		Zones []domain.WorkZone `json:"zones"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/work-zone/list", nil, c.timeouts.Zone, &resp); err != nil {
		return nil, err
	}
	if resp.Zones == nil {
		resp.Zones = []domain.WorkZone{}
	}
	return resp.Zones, nil
}

func (c *Client) Dashboard(ctx context.Context) (*domain.DashboardSnapshot, error) {
	var resp struct {
		Gates       []domain.RawGateResult `json:"gates"`
		Timestamp   string                 `json:"timestamp"`
		TotalFiles  int                    `json:"total_files"`
		HealthScore float64                `json:"health_score"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, c.timeouts.Status, &resp); err != nil {
		return nil, err
	}
	gates, err := normalize.Results(resp.Gates)
	if err != nil {
		return nil, fmt.Errorf("/api/dashboard: %w", err)
	}
	return &domain.DashboardSnapshot{
		Gates:       gates,
		Timestamp:   resp.Timestamp,
		TotalFiles:  resp.TotalFiles,
		HealthScore: resp.HealthScore,
	}, nil
}

func (c *Client) Health(ctx context.Context) (*domain.Health, error) {
	var h domain.Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, c.timeouts.Status, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) Alerts(ctx context.Context, activeOnly bool) ([]domain.Alert, error) {
	q := url.Values{"active_only": {fmt.Sprint(activeOnly)}}
	var resp struct {
		Alerts []domain.Alert `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/alerts?"+q.Encode(), nil, c.timeouts.Status, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

func (c *Client) EvaluateAlerts(ctx context.Context) (int, error) {
	var resp struct {
		NewAlerts int `json:"new_alerts"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/alerts/evaluate", struct{}{}, c.timeouts.Status, &resp); err != nil {
		return 0, err
	}
	return resp.NewAlerts, nil
}

func (c *Client) AcknowledgeAlert(ctx context.Context, alertID string) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	body := map[string]string{"alert_id": alertID}
	if err := c.do(ctx, http.MethodPost, "/api/alerts/acknowledge", body, c.timeouts.Status, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// do sends one JSON request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, body any, timeout time.Duration, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	id := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugf("request id=%s %s %s error=%v", id, method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debugf("request id=%s %s %s status=%d elapsed=%s", id, method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &domain.ServerStatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s (body: %s): %v", ErrMalformedBody, path, truncate(string(data), 200), err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
