package enhance

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/seastack/hostpanel/internal/config"
	"github.com/seastack/hostpanel/internal/domain"
	"github.com/seastack/hostpanel/internal/provision"
)

// Provider implements the provisioning operation set against the Enhance
// control panel API.
type Provider struct {
	cfg    *config.EnhanceConfig
	logger *zap.Logger
	client *Client
}

// New creates an Enhance provider with its API client constructed once.
func New(cfg *config.EnhanceConfig, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger,
		client: NewClient(cfg, logger),
	}
}

// Create provisions a new hosting account: plan lookup, customer org
// resolution (or creation with an owner login), subscription, website, then
// a fresh read of the resulting account.
func (p *Provider) Create(ctx context.Context, params *domain.CreateParams) (*domain.Account, error) {
	if params.Domain == "" {
		return nil, provision.BadInput("Domain is required")
	}
	key := provision.ParsePlanKey(params.Package)
	if key.IsZero() {
		return nil, provision.BadInput("Package name is required")
	}

	p.logger.Info("Creating Enhance account",
		zap.String("domain", params.Domain),
		zap.String("package", params.Package),
	)

	plan, err := p.findPlan(ctx, key)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"package": params.Package}, nil, "")
	}

	orgID, err := p.resolveCustomer(ctx, params)
	if err != nil {
		return nil, err
	}

	sub, err := p.client.CreateSubscription(ctx, orgID, plan.ID)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"customer_id": orgID}, nil, "Failed to create subscription")
	}

	if _, err := p.client.CreateWebsite(ctx, orgID, params.Domain, sub.ID); err != nil {
		data := map[string]any{
			"customer_id":     orgID,
			"subscription_id": sub.ID,
		}
		return nil, provision.Normalize(err, data, nil, "Failed to create website")
	}

	account, err := p.describeAccount(ctx, orgID, sub.ID)
	if err != nil {
		return nil, err
	}
	account.Message = "Website Created"
	return account, nil
}

// resolveCustomer returns the customer org id, creating a fresh org plus
// owner login when none was supplied. A login-creation failure triggers a
// best-effort delete of the just-created org; the original error always
// surfaces with the rollback outcome attached to its debug payload.
func (p *Provider) resolveCustomer(ctx context.Context, params *domain.CreateParams) (string, error) {
	if params.CustomerID != "" {
		return params.CustomerID, nil
	}
	if params.Email == "" {
		return "", provision.BadInput("Email is required to create a new customer")
	}

	org, err := p.client.CreateCustomerOrg(ctx, params.Email)
	if err != nil {
		return "", provision.Normalize(err, map[string]any{"email": params.Email}, nil, "Failed to create customer")
	}

	password := params.Password
	if password == "" {
		password, err = provision.GeneratePassword()
		if err != nil {
			return "", err
		}
	}

	if _, err := p.client.CreateLogin(ctx, org.ID, params.Email, password); err != nil {
		debug := map[string]any{"rollback": "customer org deleted"}
		if rbErr := p.client.DeleteOrg(ctx, org.ID); rbErr != nil {
			debug["rollback"] = "customer org delete failed: " + rbErr.Error()
			p.logger.Warn("Rollback of partially created customer failed",
				zap.String("customer_id", org.ID),
				zap.Error(rbErr),
			)
		}
		data := map[string]any{"customer_id": org.ID}
		return "", provision.Normalize(err, data, debug, "Failed to create customer login")
	}

	return org.ID, nil
}

// Suspend marks the subscription suspended and returns the refreshed
// account annotated with the suspension reason.
func (p *Provider) Suspend(ctx context.Context, params *domain.SuspendParams) (*domain.Account, error) {
	subID, err := p.requireRef(params.AccountRef)
	if err != nil {
		return nil, err
	}

	if err := p.client.UpdateSubscriptionStatus(ctx, params.CustomerID, subID, SubscriptionSuspended); err != nil {
		return nil, provision.Normalize(err, refData(params.AccountRef), nil, "Failed to suspend account")
	}

	account, err := p.describeAccount(ctx, params.CustomerID, subID)
	if err != nil {
		return nil, err
	}
	account.SuspendReason = params.Reason
	account.Message = "Account Suspended"
	return account, nil
}

// Unsuspend reactivates the subscription and clears the suspension reason.
func (p *Provider) Unsuspend(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	subID, err := p.requireRef(ref)
	if err != nil {
		return nil, err
	}

	if err := p.client.UpdateSubscriptionStatus(ctx, ref.CustomerID, subID, SubscriptionActive); err != nil {
		return nil, provision.Normalize(err, refData(ref), nil, "Failed to unsuspend account")
	}

	account, err := p.describeAccount(ctx, ref.CustomerID, subID)
	if err != nil {
		return nil, err
	}
	account.SuspendReason = ""
	account.Message = "Account Unsuspended"
	return account, nil
}

// Terminate deletes the subscription. There is no remaining state to
// report, so success is an empty result.
func (p *Provider) Terminate(ctx context.Context, ref domain.AccountRef) error {
	subID, err := p.requireRef(ref)
	if err != nil {
		return err
	}
	if err := p.client.DeleteSubscription(ctx, ref.CustomerID, subID); err != nil {
		return provision.Normalize(err, refData(ref), nil, "Failed to terminate account")
	}
	return nil
}

// GetInfo returns the current account state.
func (p *Provider) GetInfo(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	subID, err := p.requireRef(ref)
	if err != nil {
		return nil, err
	}
	return p.describeAccount(ctx, ref.CustomerID, subID)
}

// GetUsage returns resource consumption for the subscription.
func (p *Provider) GetUsage(ctx context.Context, ref domain.AccountRef) (*domain.Usage, error) {
	subID, err := p.requireRef(ref)
	if err != nil {
		return nil, err
	}
	usage, err := p.client.GetSubscriptionUsage(ctx, ref.CustomerID, subID)
	if err != nil {
		return nil, provision.Normalize(err, refData(ref), nil, "Failed to fetch usage")
	}
	return &domain.Usage{
		DiskUsedMB:       usage.DiskUsedMB,
		DiskLimitMB:      usage.DiskLimitMB,
		BandwidthUsedMB:  usage.BandwidthUsedMB,
		BandwidthLimitMB: usage.BandwidthLimitMB,
		WebsiteCount:     usage.WebsiteCount,
	}, nil
}

// ChangePassword locates the org's owner member and starts the vendor's
// password-reset email flow. Enhance never accepts a password directly
// through this layer.
func (p *Provider) ChangePassword(ctx context.Context, params *domain.ChangePasswordParams) error {
	if params.CustomerID == "" {
		return provision.BadInput("Customer ID is required")
	}

	member, err := p.findOwnerMember(ctx, params.CustomerID, params.Email)
	if err != nil {
		return provision.Normalize(err, map[string]any{"customer_id": params.CustomerID}, nil, "")
	}

	if err := p.client.StartPasswordRecovery(ctx, member.Email); err != nil {
		return provision.Normalize(err, map[string]any{"email": member.Email}, nil, "Failed to start password recovery")
	}

	p.logger.Info("Password recovery email requested",
		zap.String("customer_id", params.CustomerID),
		zap.String("email", member.Email),
	)
	return nil
}

// ChangePackage moves the subscription to the plan named in params and
// returns the refreshed account.
func (p *Provider) ChangePackage(ctx context.Context, params *domain.ChangePackageParams) (*domain.Account, error) {
	subID, err := p.requireRef(params.AccountRef)
	if err != nil {
		return nil, err
	}
	key := provision.ParsePlanKey(params.Package)
	if key.IsZero() {
		return nil, provision.BadInput("Package name is required")
	}

	plan, err := p.findPlan(ctx, key)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"package": params.Package}, nil, "")
	}

	if err := p.client.UpdateSubscriptionPlan(ctx, params.CustomerID, subID, plan.ID); err != nil {
		return nil, provision.Normalize(err, refData(params.AccountRef), nil, "Failed to change package")
	}

	account, err := p.describeAccount(ctx, params.CustomerID, subID)
	if err != nil {
		return nil, err
	}
	account.Message = "Package Changed"
	return account, nil
}

// LoginURL derives the control-panel URL for the account's website.
func (p *Provider) LoginURL(ctx context.Context, params *domain.LoginURLParams) (string, error) {
	subID, err := p.requireRef(params.AccountRef)
	if err != nil {
		return "", err
	}
	if p.cfg.PanelURL == "" {
		return "", provision.NotFound("No control panel URL is configured")
	}

	website, err := p.findWebsite(ctx, params.CustomerID, subID)
	if err != nil {
		return "", provision.Normalize(err, refData(params.AccountRef), nil, "")
	}

	return fmt.Sprintf("%s/websites/%s", p.cfg.PanelURL, website.ID), nil
}

// GrantReseller is not offered by the Enhance API.
func (p *Provider) GrantReseller(ctx context.Context, ref domain.AccountRef) error {
	return provision.Unsupported("Reseller privileges are not supported by Enhance")
}

// RevokeReseller is not offered by the Enhance API.
func (p *Provider) RevokeReseller(ctx context.Context, ref domain.AccountRef) error {
	return provision.Unsupported("Reseller privileges are not supported by Enhance")
}

// describeAccount assembles the normalized account record from current
// vendor state.
func (p *Provider) describeAccount(ctx context.Context, orgID string, subID int64) (*domain.Account, error) {
	sub, err := p.client.GetSubscription(ctx, orgID, subID)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"customer_id": orgID, "subscription_id": subID}, nil, "Failed to fetch subscription")
	}
	if sub.Status == SubscriptionDeleted {
		return nil, provision.NotFound("Subscription has been deleted").
			WithData("subscription_id", subID)
	}

	website, err := p.findWebsite(ctx, orgID, subID)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"customer_id": orgID}, nil, "")
	}

	hostname, ips := p.resolveServer(ctx, website)

	return &domain.Account{
		CustomerID:     orgID,
		SubscriptionID: strconv.FormatInt(subID, 10),
		Domain:         website.Domain,
		ServerHostname: hostname,
		ServerIPs:      ips,
		Package:        sub.Plan.Name,
		Suspended:      sub.Status == SubscriptionSuspended,
		Nameservers:    p.cfg.Nameservers,
	}, nil
}

// resolveServer returns the website's server hostname and IPs. IPs embedded
// on the website record win; otherwise the server listing is paged for the
// assigned application server. IP data is best-effort metadata, so an
// exhausted search yields an empty set rather than a failure.
func (p *Provider) resolveServer(ctx context.Context, website *Website) (string, []string) {
	if len(website.ServerIPs) > 0 {
		return "", website.ServerIPs
	}
	if website.AppServerID == "" {
		return "", nil
	}

	finder := provision.Finder[Server]{Fetch: p.client.ListServers}
	server, err := finder.First(ctx, func(s Server) bool {
		return s.ID == website.AppServerID
	}, fmt.Sprintf("server %q", website.AppServerID))
	if err != nil {
		if !provision.IsNotFound(err) {
			p.logger.Warn("Server lookup failed",
				zap.String("app_server_id", website.AppServerID),
				zap.Error(err),
			)
		}
		return "", nil
	}

	return server.Hostname, server.IPs
}

func (p *Provider) findPlan(ctx context.Context, key provision.PlanKey) (Plan, error) {
	finder := provision.Finder[Plan]{Fetch: p.client.ListPlans}
	return finder.First(ctx, func(pl Plan) bool {
		return key.Matches(pl.ID, pl.Name)
	}, fmt.Sprintf("plan %q", key))
}

func (p *Provider) findWebsite(ctx context.Context, orgID string, subID int64) (*Website, error) {
	finder := provision.Finder[Website]{
		Fetch: func(ctx context.Context, offset, limit int) (provision.Page[Website], error) {
			return p.client.ListWebsites(ctx, orgID, offset, limit)
		},
	}
	website, err := finder.First(ctx, func(w Website) bool {
		return w.SubscriptionID == subID
	}, fmt.Sprintf("website for subscription %d", subID))
	if err != nil {
		return nil, err
	}
	return &website, nil
}

// findOwnerMember locates the owner member by email. The email filter is a
// preference: when no member matches it, the first owner-role member seen
// across all pages is returned instead.
func (p *Provider) findOwnerMember(ctx context.Context, orgID, email string) (Member, error) {
	finder := provision.Finder[Member]{
		Fetch: func(ctx context.Context, offset, limit int) (provision.Page[Member], error) {
			return p.client.ListMembers(ctx, orgID, offset, limit)
		},
		Fallback: func(m Member) bool {
			return m.Role == RoleOwner
		},
	}
	return finder.First(ctx, func(m Member) bool {
		return m.Role == RoleOwner && (email == "" || m.Email == email)
	}, "owner member")
}

func (p *Provider) requireRef(ref domain.AccountRef) (int64, error) {
	if ref.CustomerID == "" || ref.SubscriptionID == "" {
		return 0, provision.BadInput("Customer ID and Subscription ID are required")
	}
	subID, err := strconv.ParseInt(ref.SubscriptionID, 10, 64)
	if err != nil {
		return 0, provision.BadInput("Subscription ID must be numeric").
			WithData("subscription_id", ref.SubscriptionID)
	}
	return subID, nil
}

func refData(ref domain.AccountRef) map[string]any {
	return map[string]any{
		"customer_id":     ref.CustomerID,
		"subscription_id": ref.SubscriptionID,
	}
}
