package twentyi

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/seastack/hostpanel/internal/config"
	"github.com/seastack/hostpanel/internal/domain"
	"github.com/seastack/hostpanel/internal/provision"
)

// Provider implements the provisioning operation set against the 20i
// reseller API. CustomerID maps to the stack-user id and SubscriptionID to
// the package id.
type Provider struct {
	cfg    *config.TwentyIConfig
	logger *zap.Logger
	client *Client
}

// New creates a 20i provider with its API client constructed once.
func New(cfg *config.TwentyIConfig, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger,
		client: NewClient(cfg, logger),
	}
}

// Create provisions a new hosting package: package-type lookup, stack-user
// resolution (searched by email, created when absent), package creation,
// then a fresh read of the resulting account.
func (p *Provider) Create(ctx context.Context, params *domain.CreateParams) (*domain.Account, error) {
	if params.Domain == "" {
		return nil, provision.BadInput("Domain is required")
	}
	key := provision.ParsePlanKey(params.Package)
	if key.IsZero() {
		return nil, provision.BadInput("Package name is required")
	}

	p.logger.Info("Creating 20i package",
		zap.String("domain", params.Domain),
		zap.String("package", params.Package),
	)

	pkgType, err := p.findPackageType(ctx, key)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"package": params.Package}, nil, "")
	}

	userID, err := p.resolveStackUser(ctx, params)
	if err != nil {
		return nil, err
	}

	pkg, err := p.client.CreatePackage(ctx, params.Domain, pkgType.ID, userID)
	if err != nil {
		data := map[string]any{
			"customer_id": userID,
			"domain":      params.Domain,
		}
		return nil, provision.Normalize(err, data, nil, "Failed to create package")
	}

	account, err := p.describeAccount(ctx, userID, pkg.ID)
	if err != nil {
		return nil, err
	}
	account.Message = "Website Created"
	return account, nil
}

// resolveStackUser returns the stack-user id for the new package. An
// explicit customer id wins; otherwise the stack-user listing is searched by
// email, and a missing user is created rather than treated as a failure.
func (p *Provider) resolveStackUser(ctx context.Context, params *domain.CreateParams) (int64, error) {
	if params.CustomerID != "" {
		userID, err := strconv.ParseInt(params.CustomerID, 10, 64)
		if err != nil {
			return 0, provision.BadInput("Customer ID must be numeric").
				WithData("customer_id", params.CustomerID)
		}
		return userID, nil
	}
	if params.Email == "" {
		return 0, provision.BadInput("Email is required to create a new customer")
	}

	user, err := p.findStackUser(ctx, params.Email)
	if err == nil {
		return user.ID, nil
	}
	if !provision.IsNotFound(err) {
		return 0, provision.Normalize(err, map[string]any{"email": params.Email}, nil, "")
	}

	password := params.Password
	if password == "" {
		password, err = provision.GeneratePassword()
		if err != nil {
			return 0, err
		}
	}

	created, err := p.client.CreateStackUser(ctx, params.Email, password)
	if err != nil {
		return 0, provision.Normalize(err, map[string]any{"email": params.Email}, nil, "Failed to create stack user")
	}
	return created.ID, nil
}

// Suspend marks the package suspended and returns the refreshed account
// annotated with the suspension reason.
func (p *Provider) Suspend(ctx context.Context, params *domain.SuspendParams) (*domain.Account, error) {
	userID, pkgID, err := p.requireRef(params.AccountRef)
	if err != nil {
		return nil, err
	}

	if err := p.client.SetPackageStatus(ctx, pkgID, true, params.Reason); err != nil {
		return nil, provision.Normalize(err, refData(params.AccountRef), nil, "Failed to suspend account")
	}

	account, err := p.describeAccount(ctx, userID, pkgID)
	if err != nil {
		return nil, err
	}
	account.SuspendReason = params.Reason
	account.Message = "Account Suspended"
	return account, nil
}

// Unsuspend reactivates the package and clears the suspension reason.
func (p *Provider) Unsuspend(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	userID, pkgID, err := p.requireRef(ref)
	if err != nil {
		return nil, err
	}

	if err := p.client.SetPackageStatus(ctx, pkgID, false, ""); err != nil {
		return nil, provision.Normalize(err, refData(ref), nil, "Failed to unsuspend account")
	}

	account, err := p.describeAccount(ctx, userID, pkgID)
	if err != nil {
		return nil, err
	}
	account.SuspendReason = ""
	account.Message = "Account Unsuspended"
	return account, nil
}

// Terminate deletes the package.
func (p *Provider) Terminate(ctx context.Context, ref domain.AccountRef) error {
	_, pkgID, err := p.requireRef(ref)
	if err != nil {
		return err
	}
	if err := p.client.DeletePackage(ctx, pkgID); err != nil {
		return provision.Normalize(err, refData(ref), nil, "Failed to terminate account")
	}
	return nil
}

// GetInfo returns the current account state.
func (p *Provider) GetInfo(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	userID, pkgID, err := p.requireRef(ref)
	if err != nil {
		return nil, err
	}
	return p.describeAccount(ctx, userID, pkgID)
}

// GetUsage returns resource consumption for the package.
func (p *Provider) GetUsage(ctx context.Context, ref domain.AccountRef) (*domain.Usage, error) {
	_, pkgID, err := p.requireRef(ref)
	if err != nil {
		return nil, err
	}
	usage, err := p.client.GetPackageUsage(ctx, pkgID)
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

// ChangePassword sets the stack user's password directly. Unlike Enhance,
// 20i accepts the new password through the API.
func (p *Provider) ChangePassword(ctx context.Context, params *domain.ChangePasswordParams) error {
	if params.Password == "" {
		return provision.BadInput("Password is required")
	}

	userID, err := p.resolvePasswordTarget(ctx, params)
	if err != nil {
		return err
	}

	if err := p.client.SetStackUserPassword(ctx, userID, params.Password); err != nil {
		return provision.Normalize(err, map[string]any{"customer_id": userID}, nil, "Failed to change password")
	}

	p.logger.Info("Stack user password changed", zap.Int64("stack_user_id", userID))
	return nil
}

func (p *Provider) resolvePasswordTarget(ctx context.Context, params *domain.ChangePasswordParams) (int64, error) {
	if params.CustomerID != "" {
		userID, err := strconv.ParseInt(params.CustomerID, 10, 64)
		if err != nil {
			return 0, provision.BadInput("Customer ID must be numeric").
				WithData("customer_id", params.CustomerID)
		}
		return userID, nil
	}
	if params.Email == "" {
		return 0, provision.BadInput("Customer ID or email is required")
	}
	user, err := p.findStackUser(ctx, params.Email)
	if err != nil {
		return 0, provision.Normalize(err, map[string]any{"email": params.Email}, nil, "")
	}
	return user.ID, nil
}

// ChangePackage moves the package to the type named in params. 20i enforces
// platform compatibility: a linux package cannot become a windows one, so a
// platform mismatch fails before any plan-change call is issued.
func (p *Provider) ChangePackage(ctx context.Context, params *domain.ChangePackageParams) (*domain.Account, error) {
	userID, pkgID, err := p.requireRef(params.AccountRef)
	if err != nil {
		return nil, err
	}
	key := provision.ParsePlanKey(params.Package)
	if key.IsZero() {
		return nil, provision.BadInput("Package name is required")
	}

	pkgType, err := p.findPackageType(ctx, key)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"package": params.Package}, nil, "")
	}

	current, err := p.client.GetPackage(ctx, pkgID)
	if err != nil {
		return nil, provision.Normalize(err, refData(params.AccountRef), nil, "Failed to fetch package")
	}

	if current.Platform != pkgType.Platform {
		return nil, provision.Unsupported("Cannot change package to a different platform").
			WithData("hosting_id", pkgID).
			WithData("new_plan_id", pkgType.ID).
			WithData("current_platform", current.Platform).
			WithData("new_platform", pkgType.Platform)
	}

	if err := p.client.SetPackageType(ctx, pkgID, pkgType.ID); err != nil {
		return nil, provision.Normalize(err, refData(params.AccountRef), nil, "Failed to change package")
	}

	account, err := p.describeAccount(ctx, userID, pkgID)
	if err != nil {
		return nil, err
	}
	account.Message = "Package Changed"
	return account, nil
}

// LoginURL requests a single-sign-on URL for the account's stack user.
func (p *Provider) LoginURL(ctx context.Context, params *domain.LoginURLParams) (string, error) {
	userID, _, err := p.requireRef(params.AccountRef)
	if err != nil {
		return "", err
	}

	url, err := p.client.SingleSignOn(ctx, userID)
	if err != nil {
		return "", provision.Normalize(err, refData(params.AccountRef), nil, "Failed to create login URL")
	}
	if url == "" {
		return "", provision.NotFound("No login target available for this account")
	}
	return url, nil
}

// GrantReseller is not offered by the 20i API.
func (p *Provider) GrantReseller(ctx context.Context, ref domain.AccountRef) error {
	return provision.Unsupported("Reseller privileges are not supported by 20i")
}

// RevokeReseller is not offered by the 20i API.
func (p *Provider) RevokeReseller(ctx context.Context, ref domain.AccountRef) error {
	return provision.Unsupported("Reseller privileges are not supported by 20i")
}

// describeAccount assembles the normalized account record from current
// package state.
func (p *Provider) describeAccount(ctx context.Context, userID, pkgID int64) (*domain.Account, error) {
	pkg, err := p.client.GetPackage(ctx, pkgID)
	if err != nil {
		return nil, provision.Normalize(err, map[string]any{"subscription_id": pkgID}, nil, "Failed to fetch package")
	}
	if pkg.Status == PackageDeleted {
		return nil, provision.NotFound("Package has been deleted").
			WithData("subscription_id", pkgID)
	}

	nameservers := pkg.Nameservers
	if len(nameservers) == 0 {
		nameservers = p.cfg.Nameservers
	}

	return &domain.Account{
		CustomerID:     strconv.FormatInt(userID, 10),
		SubscriptionID: strconv.FormatInt(pkgID, 10),
		Domain:         pkg.Domain,
		ServerHostname: pkg.Hostname,
		ServerIPs:      pkg.IPs,
		Package:        pkg.TypeName,
		Suspended:      pkg.Suspended,
		SuspendReason:  pkg.SuspendReason,
		Nameservers:    nameservers,
	}, nil
}

func (p *Provider) findPackageType(ctx context.Context, key provision.PlanKey) (PackageType, error) {
	finder := provision.Finder[PackageType]{Fetch: p.client.ListPackageTypes}
	return finder.First(ctx, func(t PackageType) bool {
		return key.Matches(t.ID, t.Name)
	}, fmt.Sprintf("package type %q", key))
}

func (p *Provider) findStackUser(ctx context.Context, email string) (StackUser, error) {
	finder := provision.Finder[StackUser]{Fetch: p.client.ListStackUsers}
	return finder.First(ctx, func(u StackUser) bool {
		return u.Email == email
	}, fmt.Sprintf("stack user %q", email))
}

func (p *Provider) requireRef(ref domain.AccountRef) (int64, int64, error) {
	if ref.CustomerID == "" || ref.SubscriptionID == "" {
		return 0, 0, provision.BadInput("Customer ID and Subscription ID are required")
	}
	userID, err := strconv.ParseInt(ref.CustomerID, 10, 64)
	if err != nil {
		return 0, 0, provision.BadInput("Customer ID must be numeric").
			WithData("customer_id", ref.CustomerID)
	}
	pkgID, err := strconv.ParseInt(ref.SubscriptionID, 10, 64)
	if err != nil {
		return 0, 0, provision.BadInput("Subscription ID must be numeric").
			WithData("subscription_id", ref.SubscriptionID)
	}
	return userID, pkgID, nil
}

func refData(ref domain.AccountRef) map[string]any {
	return map[string]any{
		"customer_id":     ref.CustomerID,
		"subscription_id": ref.SubscriptionID,
	}
}
