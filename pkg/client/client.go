// Package client calls the rental-projection HTTP API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/iwvelando/rental-projection/internal/config"
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/internal/store"
	"github.com/iwvelando/rental-projection/pkg/loans"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is a rental-projection API client.
type Client struct {
	http *resty.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
	}
}

type projectionResult struct {
	Output   *projection.Output `json:"output"`
	Warnings []string           `json:"warnings"`
}

// Schedule is the amortization schedule answered by the server.
type Schedule struct {
	MonthlyPayment float64         `json:"monthlyPayment"`
	TotalInterest  float64         `json:"totalInterest"`
	Schedule       []loans.Payment `json:"schedule"`
}

// Compute asks the server for the projection of in without persisting it.
func (c *Client) Compute(ctx context.Context, in projection.Input) (*projection.Output, error) {
	var result projectionResult
	if err := c.post(ctx, "/api/projection", config.FromInput("", "", in), &result); err != nil {
		return nil, err
	}
	if result.Output == nil {
		return nil, fmt.Errorf("server returned no projection")
	}
	return result.Output, nil
}

// Schedule asks the server for the amortization schedule of in.
func (c *Client) Schedule(ctx context.Context, in projection.Input) (*Schedule, error) {
	var result Schedule
	if err := c.post(ctx, "/api/schedule", config.FromInput("", "", in), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProperty registers a property on the server.
func (c *Client) CreateProperty(ctx context.Context, name, city string, mode projection.Mode) (*store.Property, error) {
	body := map[string]string{"name": name, "city": city, "mode": string(mode)}
	var property store.Property
	if err := c.post(ctx, "/api/properties", body, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// SaveProjection computes in for the property in mode and stores it,
// replacing any projection the property had.
func (c *Client) SaveProjection(ctx context.Context, propertyID int64, mode projection.Mode, in projection.Input) (*store.Projection, error) {
	var stored store.Projection
	if err := c.post(ctx, financialPath(propertyID, mode), config.FromInput("", "", in), &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetProjection returns the stored projection of the property in mode, or
// nil when the property has none in that mode.
func (c *Client) GetProjection(ctx context.Context, propertyID int64, mode projection.Mode) (*store.Projection, error) {
	var stored store.Projection
	apiErr := &APIError{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&stored).
		SetError(apiErr).
		Get(financialPath(propertyID, mode))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return nil, apiErr
	}
	return &stored, nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	apiErr := &APIError{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(result).
		SetError(apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return nil
}

func financialPath(propertyID int64, mode projection.Mode) string {
	return fmt.Sprintf("/api/properties/%d/financial/%s", propertyID, mode)
}
