package enhance

// Plan is a hosting plan offered under the reseller org.
type Plan struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Org is a customer organization. Customer accounts are child orgs of the
// reseller's top-level org.
type Org struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Login is an authentication identity attached to an org.
type Login struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Member links a login to an org with a role. The owner role is expected
// once per customer org.
type Member struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Subscription binds a customer org to a plan.
type Subscription struct {
	ID     int64  `json:"id"`
	Plan   Plan   `json:"plan"`
	Status string `json:"status"`
}

// Website is the hosted site created under a subscription. ServerIPs may be
// empty, in which case the assigned application server carries the IPs.
type Website struct {
	ID             string   `json:"id"`
	Domain         string   `json:"domain"`
	SubscriptionID int64    `json:"subscription_id"`
	AppServerID    string   `json:"app_server_id"`
	ServerIPs      []string `json:"server_ips"`
	Status         string   `json:"status"`
}

// Server is an application server in the Enhance cluster.
type Server struct {
	ID       string   `json:"id"`
	Hostname string   `json:"hostname"`
	IPs      []string `json:"ips"`
}

// SubscriptionUsage reports resource consumption for a subscription.
type SubscriptionUsage struct {
	DiskUsedMB       int64 `json:"disk_used_mb"`
	DiskLimitMB      int64 `json:"disk_limit_mb"`
	BandwidthUsedMB  int64 `json:"bandwidth_used_mb"`
	BandwidthLimitMB int64 `json:"bandwidth_limit_mb"`
	WebsiteCount     int   `json:"website_count"`
}

// Subscription status values reported by the API.
const (
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionDeleted   = "deleted"
)

// Member role values.
const (
	RoleOwner = "owner"
)

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type createOrgRequest struct {
	Name string `json:"name"`
}

type createLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createSubscriptionRequest struct {
	PlanID int64 `json:"plan_id"`
}

type updateSubscriptionRequest struct {
	Status string `json:"status,omitempty"`
	PlanID int64  `json:"plan_id,omitempty"`
}

type createWebsiteRequest struct {
	Domain         string `json:"domain"`
	SubscriptionID int64  `json:"subscription_id"`
}

type passwordRecoveryRequest struct {
	Email string `json:"email"`
}
