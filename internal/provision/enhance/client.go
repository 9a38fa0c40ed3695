package enhance

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

// maxErrorBody caps how much of an error response body is retained for
// diagnostics.
const maxErrorBody = 64 << 10

// Client is a thin authenticated wrapper over the Enhance REST API. It is
// constructed once per provider and safe for concurrent use.
type Client struct {
	cfg    *config.EnhanceConfig
	logger *zap.Logger
	client *http.Client
}

// NewClient creates an Enhance API client from provider configuration.
func NewClient(cfg *config.EnhanceConfig, logger *zap.Logger) *Client {
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

	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Sending request to Enhance API",
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

func pageQuery(offset, limit int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return "?" + q.Encode()
}

// ListPlans returns one page of the reseller's hosting plans.
func (c *Client) ListPlans(ctx context.Context, offset, limit int) (provision.Page[Plan], error) {
	var resp listResponse[Plan]
	path := fmt.Sprintf("/orgs/%s/plans%s", c.cfg.OrgID, pageQuery(offset, limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return provision.Page[Plan]{}, err
	}
	return provision.Page[Plan]{Items: resp.Items, Total: resp.Total}, nil
}

// CreateCustomerOrg creates a customer org under the reseller org.
func (c *Client) CreateCustomerOrg(ctx context.Context, name string) (*Org, error) {
	var org Org
	path := fmt.Sprintf("/orgs/%s/customers", c.cfg.OrgID)
	if err := c.do(ctx, http.MethodPost, path, createOrgRequest{Name: name}, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrg removes a customer org.
func (c *Client) DeleteOrg(ctx context.Context, orgID string) error {
	return c.do(ctx, http.MethodDelete, "/orgs/"+orgID, nil, nil)
}

// CreateLogin creates the owner login for a customer org.
func (c *Client) CreateLogin(ctx context.Context, orgID, email, password string) (*Login, error) {
	var login Login
	path := fmt.Sprintf("/orgs/%s/logins", orgID)
	req := createLoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, path, req, &login); err != nil {
		return nil, err
	}
	return &login, nil
}

// ListMembers returns one page of an org's members.
func (c *Client) ListMembers(ctx context.Context, orgID string, offset, limit int) (provision.Page[Member], error) {
	var resp listResponse[Member]
	path := fmt.Sprintf("/orgs/%s/members%s", orgID, pageQuery(offset, limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return provision.Page[Member]{}, err
	}
	return provision.Page[Member]{Items: resp.Items, Total: resp.Total}, nil
}

// CreateSubscription subscribes a customer org to a plan.
func (c *Client) CreateSubscription(ctx context.Context, orgID string, planID int64) (*Subscription, error) {
	var sub Subscription
	path := fmt.Sprintf("/orgs/%s/subscriptions", orgID)
	if err := c.do(ctx, http.MethodPost, path, createSubscriptionRequest{PlanID: planID}, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscription fetches current subscription state.
func (c *Client) GetSubscription(ctx context.Context, orgID string, subID int64) (*Subscription, error) {
	var sub Subscription
	path := fmt.Sprintf("/orgs/%s/subscriptions/%d", orgID, subID)
	if err := c.do(ctx, http.MethodGet, path, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscriptionStatus sets the suspended flag on a subscription.
func (c *Client) UpdateSubscriptionStatus(ctx context.Context, orgID string, subID int64, status string) error {
	path := fmt.Sprintf("/orgs/%s/subscriptions/%d", orgID, subID)
	return c.do(ctx, http.MethodPatch, path, updateSubscriptionRequest{Status: status}, nil)
}

// UpdateSubscriptionPlan moves a subscription to a new plan.
func (c *Client) UpdateSubscriptionPlan(ctx context.Context, orgID string, subID, planID int64) error {
	path := fmt.Sprintf("/orgs/%s/subscriptions/%d", orgID, subID)
	return c.do(ctx, http.MethodPatch, path, updateSubscriptionRequest{PlanID: planID}, nil)
}

// DeleteSubscription terminates a subscription and its websites.
func (c *Client) DeleteSubscription(ctx context.Context, orgID string, subID int64) error {
	path := fmt.Sprintf("/orgs/%s/subscriptions/%d", orgID, subID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateWebsite creates a website for a domain under a subscription.
func (c *Client) CreateWebsite(ctx context.Context, orgID, domain string, subID int64) (*Website, error) {
	var web Website
	path := fmt.Sprintf("/orgs/%s/websites", orgID)
	req := createWebsiteRequest{Domain: domain, SubscriptionID: subID}
	if err := c.do(ctx, http.MethodPost, path, req, &web); err != nil {
		return nil, err
	}
	return &web, nil
}

// ListWebsites returns one page of an org's websites.
func (c *Client) ListWebsites(ctx context.Context, orgID string, offset, limit int) (provision.Page[Website], error) {
	var resp listResponse[Website]
	path := fmt.Sprintf("/orgs/%s/websites%s", orgID, pageQuery(offset, limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return provision.Page[Website]{}, err
	}
	return provision.Page[Website]{Items: resp.Items, Total: resp.Total}, nil
}

// ListServers returns one page of the cluster's application servers.
func (c *Client) ListServers(ctx context.Context, offset, limit int) (provision.Page[Server], error) {
	var resp listResponse[Server]
	path := "/servers" + pageQuery(offset, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return provision.Page[Server]{}, err
	}
	return provision.Page[Server]{Items: resp.Items, Total: resp.Total}, nil
}

// GetSubscriptionUsage fetches resource usage for a subscription.
func (c *Client) GetSubscriptionUsage(ctx context.Context, orgID string, subID int64) (*SubscriptionUsage, error) {
	var usage SubscriptionUsage
	path := fmt.Sprintf("/orgs/%s/subscriptions/%d/usage", orgID, subID)
	if err := c.do(ctx, http.MethodGet, path, nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// StartPasswordRecovery triggers the vendor's password-reset email flow for
// a login email. No password is set by this call.
func (c *Client) StartPasswordRecovery(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/password-recovery", passwordRecoveryRequest{Email: email}, nil)
}
