// Package deployment talks to the Vercel REST API and implements the
// deployment cleanup policy.
package deployment

import (
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

	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits the response body size
	maxResponseSize = 10 * 1024 * 1024
	// DefaultListLimit is used when a listing gives no limit
	DefaultListLimit = 20
	// MaxListLimit bounds a listing
	MaxListLimit = 100
)

// ErrNotConfigured is returned when no API token is set
var ErrNotConfigured = errors.New("vercel: api token is required")

// Client is a Vercel REST API client
type Client struct {
	baseURL    string
	token      string
	teamID     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client from cfg
func NewClient(cfg *config.VercelConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.vercel.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		teamID:     cfg.TeamID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// ListDeployments lists one page of deployments newest first
func (c *Client) ListDeployments(ctx context.Context, input ListInput) ([]Deployment, error) {
	page, err := c.ListDeploymentPage(ctx, input)
	if err != nil {
		return nil, err
	}
	return page.Deployments, nil
}

// ListDeploymentPage lists one page of deployments and returns the cursor of
// the next one
func (c *Client) ListDeploymentPage(ctx context.Context, input ListInput) (*DeploymentPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(input.Limit)))
	if input.ProjectID != "" {
		query.Set("projectId", input.ProjectID)
	}
	if input.Target != "" {
		query.Set("target", input.Target)
	}
	if input.State != "" {
		query.Set("state", input.State)
	}
	if input.Until > 0 {
		query.Set("until", strconv.FormatInt(input.Until, 10))
	}

	var resp struct {
		Deployments []apiDeployment `json:"deployments"`
		Pagination  struct {
			Next *int64 `json:"next"`
		} `json:"pagination"`
	}
	if err := c.do(ctx, http.MethodGet, "/v6/deployments", query, &resp); err != nil {
		return nil, fmt.Errorf("vercel: failed to list deployments: %w", err)
	}

	page := &DeploymentPage{Deployments: make([]Deployment, 0, len(resp.Deployments))}
	for _, d := range resp.Deployments {
		page.Deployments = append(page.Deployments, d.toDeployment())
	}
	if resp.Pagination.Next != nil {
		page.Next = *resp.Pagination.Next
	}
	return page, nil
}

// GetDeployment fetches one deployment by id or url
func (c *Client) GetDeployment(ctx context.Context, id string) (*Deployment, error) {
	var resp apiDeployment
	if err := c.do(ctx, http.MethodGet, "/v13/deployments/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("vercel: failed to get deployment %s: %w", id, err)
	}
	d := resp.toDeployment()
	return &d, nil
}

// CancelDeployment cancels a deployment that is still building
func (c *Client) CancelDeployment(ctx context.Context, id string) (*Deployment, error) {
	var resp apiDeployment
	if err := c.do(ctx, http.MethodPatch, "/v12/deployments/"+url.PathEscape(id)+"/cancel", nil, &resp); err != nil {
		return nil, fmt.Errorf("vercel: failed to cancel deployment %s: %w", id, err)
	}
	c.logger.Info("Cancelled deployment", zap.String("deployment_id", id))
	d := resp.toDeployment()
	return &d, nil
}

// DeleteDeployment deletes a deployment. The deployment is fetched first and
// production deployments are always refused with ErrProductionProtected.
func (c *Client) DeleteDeployment(ctx context.Context, id string) (*DeleteResult, error) {
	d, err := c.GetDeployment(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.IsProduction() {
		c.logger.Warn("Refused to delete production deployment", zap.String("deployment_id", d.UID))
		return nil, fmt.Errorf("%w: %s", ErrProductionProtected, d.UID)
	}

	var resp DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/v13/deployments/"+url.PathEscape(d.UID), nil, &resp); err != nil {
		return nil, fmt.Errorf("vercel: failed to delete deployment %s: %w", d.UID, err)
	}
	if resp.UID == "" {
		resp.UID = d.UID
	}
	c.logger.Info("Deleted deployment",
		zap.String("deployment_id", resp.UID),
		zap.String("url", d.URL))
	return &resp, nil
}

// ListProjects lists projects of the account or team
func (c *Client) ListProjects(ctx context.Context, limit int) ([]Project, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(limit)))

	var resp struct {
		Projects []apiProject `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/v9/projects", query, &resp); err != nil {
		return nil, fmt.Errorf("vercel: failed to list projects: %w", err)
	}

	out := make([]Project, 0, len(resp.Projects))
	for _, p := range resp.Projects {
		out = append(out, p.toProject())
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.teamID != "" {
		query.Set("teamId", c.teamID)
	}
	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
