package twentyi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/seastack/hostpanel/internal/config"
	"github.com/seastack/hostpanel/internal/provision"
)

const maxErrorBody = 64 << 10

// Client is a thin authenticated wrapper over the 20i reseller REST API.
type Client struct {
	cfg    *config.TwentyIConfig
	logger *zap.Logger
	client *http.Client
}

// NewClient creates a 20i API client from provider configuration.
func NewClient(cfg *config.TwentyIConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	apiURL := c.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Sending request to 20i API",
		zap.String("method", method),
		zap.String("url", apiURL),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &provision.UpstreamError{Status: resp.StatusCode, Body: raw}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) resellerPath(parts string) string {
	return fmt.Sprintf("/reseller/%s%s", c.cfg.ResellerID, parts)
}

func pageQuery(offset, limit int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return "?" + q.Encode()
}

// ListPackageTypes returns one page of the reseller's package types.
func (c *Client) ListPackageTypes(ctx context.Context, offset, limit int) (provision.Page[PackageType], error) {
	var resp listResponse[PackageType]
	path := c.resellerPath("/package-types" + pageQuery(offset, limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return provision.Page[PackageType]{}, err
	}
	return provision.Page[PackageType]{Items: resp.Items, Total: resp.Total}, nil
}

// ListStackUsers returns one page of the reseller's stack users.
func (c *Client) ListStackUsers(ctx context.Context, offset, limit int) (provision.Page[StackUser], error) {
	var resp listResponse[StackUser]
	path := c.resellerPath("/stack-users" + pageQuery(offset, limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return provision.Page[StackUser]{}, err
	}
	return provision.Page[StackUser]{Items: resp.Items, Total: resp.Total}, nil
}

// CreateStackUser creates a new end-customer login identity.
func (c *Client) CreateStackUser(ctx context.Context, email, password string) (*StackUser, error) {
	var user StackUser
	req := createStackUserRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, c.resellerPath("/stack-users"), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetStackUserPassword sets a stack user's password directly.
func (c *Client) SetStackUserPassword(ctx context.Context, userID int64, password string) error {
	path := c.resellerPath(fmt.Sprintf("/stack-users/%d/password", userID))
	return c.do(ctx, http.MethodPut, path, setPasswordRequest{Password: password}, nil)
}

// CreatePackage provisions a hosting package for a domain.
func (c *Client) CreatePackage(ctx context.Context, domain string, typeID, stackUserID int64) (*Package, error) {
	var pkg Package
	req := createPackageRequest{Domain: domain, TypeID: typeID, StackUserID: stackUserID}
	if err := c.do(ctx, http.MethodPost, c.resellerPath("/packages"), req, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// GetPackage fetches current package state.
func (c *Client) GetPackage(ctx context.Context, packageID int64) (*Package, error) {
	var pkg Package
	path := c.resellerPath(fmt.Sprintf("/packages/%d", packageID))
	if err := c.do(ctx, http.MethodGet, path, nil, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// SetPackageStatus toggles the suspended flag on a package.
func (c *Client) SetPackageStatus(ctx context.Context, packageID int64, suspended bool, reason string) error {
	path := c.resellerPath(fmt.Sprintf("/packages/%d/status", packageID))
	return c.do(ctx, http.MethodPut, path, setStatusRequest{Suspended: suspended, Reason: reason}, nil)
}

// SetPackageType moves a package to a new package type.
func (c *Client) SetPackageType(ctx context.Context, packageID, typeID int64) error {
	path := c.resellerPath(fmt.Sprintf("/packages/%d/type", packageID))
	return c.do(ctx, http.MethodPut, path, setTypeRequest{TypeID: typeID}, nil)
}

// DeletePackage removes a package.
func (c *Client) DeletePackage(ctx context.Context, packageID int64) error {
	path := c.resellerPath(fmt.Sprintf("/packages/%d", packageID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetPackageUsage fetches resource usage for a package.
func (c *Client) GetPackageUsage(ctx context.Context, packageID int64) (*PackageUsage, error) {
	var usage PackageUsage
	path := c.resellerPath(fmt.Sprintf("/packages/%d/usage", packageID))
	if err := c.do(ctx, http.MethodGet, path, nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// SingleSignOn requests a one-time control-panel login URL for a stack user.
func (c *Client) SingleSignOn(ctx context.Context, userID int64) (string, error) {
	var resp ssoResponse
	path := c.resellerPath(fmt.Sprintf("/stack-users/%d/sso", userID))
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
