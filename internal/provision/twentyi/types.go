package twentyi

// PackageType is a 20i hosting package definition. Platform tags a type as
// linux or windows hosting; packages cannot move across platforms.
type PackageType struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

// StackUser is the end-customer login identity, distinct from the hosting
// package itself.
type StackUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Package is a provisioned hosting package.
type Package struct {
	ID            int64    `json:"id"`
	Domain        string   `json:"domain_name"`
	TypeID        int64    `json:"type_id"`
	TypeName      string   `json:"type_name"`
	Platform      string   `json:"platform"`
	StackUserID   int64    `json:"stack_user_id"`
	Status        string   `json:"status"`
	Suspended     bool     `json:"suspended"`
	SuspendReason string   `json:"suspend_reason"`
	Hostname      string   `json:"hostname"`
	IPs           []string `json:"ips"`
	Nameservers   []string `json:"nameservers"`
}

// PackageUsage reports resource consumption for a package.
type PackageUsage struct {
	DiskUsedMB       int64 `json:"disk_used_mb"`
	DiskLimitMB      int64 `json:"disk_limit_mb"`
	BandwidthUsedMB  int64 `json:"bandwidth_used_mb"`
	BandwidthLimitMB int64 `json:"bandwidth_limit_mb"`
	WebsiteCount     int   `json:"website_count"`
}

// Package status values reported by the API.
const (
	PackageActive  = "active"
	PackageDeleted = "deleted"
)

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type createStackUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

type createPackageRequest struct {
	Domain      string `json:"domain_name"`
	TypeID      int64  `json:"type_id"`
	StackUserID int64  `json:"stack_user_id"`
}

type setStatusRequest struct {
	Suspended bool   `json:"suspended"`
	Reason    string `json:"reason,omitempty"`
}

type setTypeRequest struct {
	TypeID int64 `json:"type_id"`
}

type ssoResponse struct {
	URL string `json:"url"`
}
