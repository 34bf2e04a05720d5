// Package account talks to the account/premium collaborator. The pipeline
// consumes it exactly once per upload, at admission time.
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type entitlementsRes struct {
	IsPremium   bool    `json:"is_premium"`
	MaxDuration float64 `json:"max_duration"`
}

// Client is the HTTP implementation of types.AccountChecker.
type Client struct {
	http *resty.Client
}

func NewClient(baseUrl, apiKey string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseUrl).
		SetTimeout(timeout).
		SetRetryCount(1)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Client{http: client}
}

func (c *Client) fetch(ctx context.Context, accountRef string) (*entitlementsRes, error) {
	var out entitlementsRes
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ref", accountRef).
		SetResult(&out).
		Get("/api/accounts/{ref}/entitlements")
	if err != nil {
		return nil, fmt.Errorf("account service request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("account service returned status %d", resp.StatusCode())
	}
	return &out, nil
}

func (c *Client) IsPremium(ctx context.Context, accountRef string) (bool, error) {
	res, err := c.fetch(ctx, accountRef)
	if err != nil {
		return false, err
	}
	return res.IsPremium, nil
}

func (c *Client) MaxDuration(ctx context.Context, accountRef string) (float64, error) {
	res, err := c.fetch(ctx, accountRef)
	if err != nil {
		return 0, err
	}
	return res.MaxDuration, nil
}

// StaticChecker answers from config when no collaborator is deployed,
// e.g. single-tenant and development setups.
type StaticChecker struct {
	Premium            bool
	FreeMaxDuration    float64
	PremiumMaxDuration float64
}

func (s StaticChecker) IsPremium(ctx context.Context, accountRef string) (bool, error) {
	return s.Premium, nil
}

func (s StaticChecker) MaxDuration(ctx context.Context, accountRef string) (float64, error) {
	if s.Premium {
		return s.PremiumMaxDuration, nil
	}
	return s.FreeMaxDuration, nil
}
