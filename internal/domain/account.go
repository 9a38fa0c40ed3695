package domain

// Account is the normalized view of a hosting account returned by every
// read-style provisioning operation. It is assembled fresh from vendor
// state on each call and never persisted.
type Account struct {
	CustomerID     string         `json:"customer_id"`
	SubscriptionID string         `json:"subscription_id"`
	Domain         string         `json:"domain"`
	ServerHostname string         `json:"server_hostname,omitempty"`
	ServerIPs      []string       `json:"server_ips,omitempty"`
	Package        string         `json:"package"`
	Suspended      bool           `json:"suspended"`
	SuspendReason  string         `json:"suspend_reason,omitempty"`
	Nameservers    []string       `json:"nameservers,omitempty"`
	Message        string         `json:"message,omitempty"`
	Debug          map[string]any `json:"debug,omitempty"`
}

// Usage reports current resource consumption for an account.
type Usage struct {
	DiskUsedMB       int64 `json:"disk_used_mb"`
	DiskLimitMB      int64 `json:"disk_limit_mb"`
	BandwidthUsedMB  int64 `json:"bandwidth_used_mb"`
	BandwidthLimitMB int64 `json:"bandwidth_limit_mb"`
	WebsiteCount     int   `json:"website_count"`
}

// AccountRef identifies an existing account at the vendor. Both fields are
// required for every operation that acts on an existing account.
type AccountRef struct {
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
}

// CreateParams carries the recognized fields for account creation. When
// CustomerID is set it takes precedence over email-based customer creation.
// An empty Password means the provider generates one.
type CreateParams struct {
	CustomerID string `json:"customer_id,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"password,omitempty"`
	Domain     string `json:"domain"`
	Package    string `json:"package"`
}

// SuspendParams adds an operator-supplied reason to the account reference.
type SuspendParams struct {
	AccountRef
	Reason string `json:"reason,omitempty"`
}

// ChangePasswordParams targets the account owner identity. Password may be
// ignored by vendors that only trigger a reset flow.
type ChangePasswordParams struct {
	AccountRef
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// ChangePackageParams requests a move to a new plan, identified by numeric
// id or name.
type ChangePackageParams struct {
	AccountRef
	Package string `json:"package"`
}

// LoginURLParams requests a control-panel login target for the account.
type LoginURLParams struct {
	AccountRef
	Email string `json:"email,omitempty"`
}

// Provider name constants
const (
	ProviderEnhance = "enhance"
	ProviderTwentyI = "twentyi"
)
