package twentyi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seastack/hostpanel/internal/config"
	"github.com/seastack/hostpanel/internal/domain"
	"github.com/seastack/hostpanel/internal/provision"
)

type vendorCall struct {
	method string
	path   string
	body   map[string]any
}

// fakeVendor records every request and dispatches on method+path.
type fakeVendor struct {
	t        *testing.T
	calls    []vendorCall
	handlers map[string]http.HandlerFunc
}

func newFakeVendor(t *testing.T) *fakeVendor {
	return &fakeVendor{t: t, handlers: make(map[string]http.HandlerFunc)}
}

func (v *fakeVendor) on(method, path string, handler http.HandlerFunc) {
	v.handlers[method+" "+path] = handler
}

func (v *fakeVendor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := vendorCall{method: r.Method, path: r.URL.Path}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &call.body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
	}
	v.calls = append(v.calls, call)

	handler, ok := v.handlers[r.Method+" "+r.URL.Path]
	if !ok {
		v.t.Errorf("unexpected vendor call: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	handler(w, r)
}

func (v *fakeVendor) countCalls(method, path string) int {
	n := 0
	for _, c := range v.calls {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestProvider(t *testing.T, vendor *fakeVendor) *Provider {
	srv := httptest.NewServer(vendor)
	t.Cleanup(srv.Close)

	cfg := &config.TwentyIConfig{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		ResellerID:  "r1",
		PanelURL:    "https://my.test",
		Nameservers: []string{"ns1.test", "ns2.test"},
		Timeout:     5 * time.Second,
	}
	return New(cfg, zap.NewNop())
}

func stubPackageTypes(vendor *fakeVendor, types ...PackageType) {
	vendor.on(http.MethodGet, "/reseller/r1/package-types", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": types, "total": len(types)})
	})
}

func stubPackage(vendor *fakeVendor, pkg Package) {
	vendor.on(http.MethodGet, "/reseller/r1/packages/55", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, pkg)
	})
}

func TestCreateCreatesStackUserWhenMissing(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	stubPackageTypes(vendor, PackageType{ID: 3, Name: "Starter", Platform: "linux"})
	vendor.on(http.MethodGet, "/reseller/r1/stack-users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []StackUser{}, "total": 0})
	})
	vendor.on(http.MethodPost, "/reseller/r1/stack-users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, StackUser{ID: 9, Email: "a@b.com"})
	})
	vendor.on(http.MethodPost, "/reseller/r1/packages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Package{ID: 55, Domain: "x.test", TypeID: 3, StackUserID: 9})
	})
	stubPackage(vendor, Package{
		ID: 55, Domain: "x.test", TypeID: 3, TypeName: "Starter",
		Platform: "linux", StackUserID: 9, Status: PackageActive,
		Hostname: "web1.stack.test", IPs: []string{"198.51.100.4"},
	})

	p := newTestProvider(t, vendor)
	account, err := p.Create(context.Background(), &domain.CreateParams{
		Email:   "a@b.com",
		Domain:  "x.test",
		Package: "Starter",
	})
	require.NoError(t, err)

	assert.Equal(t, "9", account.CustomerID)
	assert.Equal(t, "55", account.SubscriptionID)
	assert.Equal(t, "Starter", account.Package)
	assert.Equal(t, "Website Created", account.Message)
	assert.Equal(t, []string{"ns1.test", "ns2.test"}, account.Nameservers)

	assert.Equal(t, 1, vendor.countCalls(http.MethodPost, "/reseller/r1/stack-users"))
	for _, c := range vendor.calls {
		if c.method == http.MethodPost && c.path == "/reseller/r1/stack-users" {
			password, _ := c.body["password"].(string)
			assert.Len(t, password, 15)
		}
	}
}

func TestCreateReusesStackUserFoundByEmail(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	stubPackageTypes(vendor, PackageType{ID: 3, Name: "Starter", Platform: "linux"})
	vendor.on(http.MethodGet, "/reseller/r1/stack-users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"items": []StackUser{{ID: 7, Email: "a@b.com"}},
			"total": 1,
		})
	})
	vendor.on(http.MethodPost, "/reseller/r1/packages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Package{ID: 55, Domain: "x.test", TypeID: 3, StackUserID: 7})
	})
	stubPackage(vendor, Package{
		ID: 55, Domain: "x.test", TypeName: "Starter",
		StackUserID: 7, Status: PackageActive,
	})

	p := newTestProvider(t, vendor)
	account, err := p.Create(context.Background(), &domain.CreateParams{
		Email:   "a@b.com",
		Domain:  "x.test",
		Package: "Starter",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", account.CustomerID)
	assert.Zero(t, vendor.countCalls(http.MethodPost, "/reseller/r1/stack-users"))
}

func TestChangePackageRejectsPlatformMismatch(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	stubPackageTypes(vendor, PackageType{ID: 8, Name: "Windows Pro", Platform: "windows"})
	stubPackage(vendor, Package{
		ID: 55, Domain: "x.test", TypeID: 3, TypeName: "Starter",
		Platform: "linux", StackUserID: 9, Status: PackageActive,
	})

	p := newTestProvider(t, vendor)
	_, err := p.ChangePackage(context.Background(), &domain.ChangePackageParams{
		AccountRef: domain.AccountRef{CustomerID: "9", SubscriptionID: "55"},
		Package:    "Windows Pro",
	})
	require.Error(t, err)

	var pe *provision.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provision.KindUnsupported, pe.Kind)
	assert.Equal(t, "Cannot change package to a different platform", pe.Message)
	assert.Equal(t, int64(55), pe.Data["hosting_id"])
	assert.Equal(t, int64(8), pe.Data["new_plan_id"])
	assert.Equal(t, "linux", pe.Data["current_platform"])
	assert.Equal(t, "windows", pe.Data["new_platform"])
	assert.Zero(t, vendor.countCalls(http.MethodPut, "/reseller/r1/packages/55/type"),
		"no type change may be attempted across platforms")
}

func TestChangePackageSwitchesTypeOnSamePlatform(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	stubPackageTypes(vendor, PackageType{ID: 4, Name: "Business", Platform: "linux"})
	stubPackage(vendor, Package{
		ID: 55, Domain: "x.test", TypeID: 3, TypeName: "Starter",
		Platform: "linux", StackUserID: 9, Status: PackageActive,
	})
	vendor.on(http.MethodPut, "/reseller/r1/packages/55/type", func(w http.ResponseWriter, r *http.Request) {
		stubPackage(vendor, Package{
			ID: 55, Domain: "x.test", TypeID: 4, TypeName: "Business",
			Platform: "linux", StackUserID: 9, Status: PackageActive,
		})
		w.WriteHeader(http.StatusOK)
	})

	p := newTestProvider(t, vendor)
	account, err := p.ChangePackage(context.Background(), &domain.ChangePackageParams{
		AccountRef: domain.AccountRef{CustomerID: "9", SubscriptionID: "55"},
		Package:    "4",
	})
	require.NoError(t, err)
	assert.Equal(t, "Business", account.Package)
	assert.Equal(t, "Package Changed", account.Message)
}

func TestChangePasswordSetsPasswordDirectly(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	var gotPassword string
	vendor.on(http.MethodPut, "/reseller/r1/stack-users/9/password", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		gotPassword = req["password"]
		w.WriteHeader(http.StatusOK)
	})

	p := newTestProvider(t, vendor)
	err := p.ChangePassword(context.Background(), &domain.ChangePasswordParams{
		AccountRef: domain.AccountRef{CustomerID: "9", SubscriptionID: "55"},
		Password:   "N3w-Secret!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "N3w-Secret!pass", gotPassword)
}

func TestChangePasswordRequiresPassword(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	p := newTestProvider(t, vendor)

	err := p.ChangePassword(context.Background(), &domain.ChangePasswordParams{
		AccountRef: domain.AccountRef{CustomerID: "9", SubscriptionID: "55"},
	})
	require.Error(t, err)

	var pe *provision.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provision.KindBadInput, pe.Kind)
	assert.Equal(t, "Password is required", pe.Message)
	assert.Empty(t, vendor.calls)
}

func TestSuspendRequiresIdentifiers(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	p := newTestProvider(t, vendor)

	_, err := p.Suspend(context.Background(), &domain.SuspendParams{
		AccountRef: domain.AccountRef{CustomerID: "9"},
	})
	require.Error(t, err)

	var pe *provision.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provision.KindBadInput, pe.Kind)
	assert.Equal(t, "Customer ID and Subscription ID are required", pe.Message)
	assert.Empty(t, vendor.calls)
}

func TestSuspendForwardsReason(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	var gotBody map[string]any
	vendor.on(http.MethodPut, "/reseller/r1/packages/55/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	stubPackage(vendor, Package{
		ID: 55, Domain: "x.test", TypeName: "Starter", StackUserID: 9,
		Status: PackageActive, Suspended: true, SuspendReason: "abuse report",
	})

	p := newTestProvider(t, vendor)
	account, err := p.Suspend(context.Background(), &domain.SuspendParams{
		AccountRef: domain.AccountRef{CustomerID: "9", SubscriptionID: "55"},
		Reason:     "abuse report",
	})
	require.NoError(t, err)

	for _, c := range vendor.calls {
		if c.method == http.MethodPut && c.path == "/reseller/r1/packages/55/status" {
			gotBody = c.body
		}
	}
	require.NotNil(t, gotBody)
	assert.Equal(t, true, gotBody["suspended"])
	assert.Equal(t, "abuse report", gotBody["reason"])
	assert.True(t, account.Suspended)
	assert.Equal(t, "Account Suspended", account.Message)
}

func TestGetInfoFailsForDeletedPackage(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	stubPackage(vendor, Package{ID: 55, Status: PackageDeleted})

	p := newTestProvider(t, vendor)
	_, err := p.GetInfo(context.Background(), domain.AccountRef{CustomerID: "9", SubscriptionID: "55"})
	assert.True(t, provision.IsNotFound(err))
}

func TestGetUsageMapsPackageUsage(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	vendor.on(http.MethodGet, "/reseller/r1/packages/55/usage", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, PackageUsage{
			DiskUsedMB:       120,
			DiskLimitMB:      10240,
			BandwidthUsedMB:  512,
			BandwidthLimitMB: 102400,
			WebsiteCount:     1,
		})
	})

	p := newTestProvider(t, vendor)
	usage, err := p.GetUsage(context.Background(), domain.AccountRef{CustomerID: "9", SubscriptionID: "55"})
	require.NoError(t, err)
	assert.Equal(t, int64(120), usage.DiskUsedMB)
	assert.Equal(t, int64(10240), usage.DiskLimitMB)
	assert.Equal(t, 1, usage.WebsiteCount)
}

func TestLoginURLUsesSingleSignOn(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	vendor.on(http.MethodPost, "/reseller/r1/stack-users/9/sso", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"url": "https://my.test/sso/abc123"})
	})

	p := newTestProvider(t, vendor)
	url, err := p.LoginURL(context.Background(), &domain.LoginURLParams{
		AccountRef: domain.AccountRef{CustomerID: "9", SubscriptionID: "55"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://my.test/sso/abc123", url)
}

func TestLoginURLFailsWhenSSOEmpty(t *testing.T) {
	t.Parallel()

	vendor := newFakeVendor(t)
	vendor.on(http.MethodPost, "/reseller/r1/stack-users/9/sso", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"url": ""})
	})

	p := newTestProvider(t, vendor)
	_, err := p.LoginURL(context.Background(), &domain.LoginURLParams{
		AccountRef: domain.AccountRef{CustomerID: "9", SubscriptionID: "55"},
	})
	assert.True(t, provision.IsNotFound(err))
}

func TestResellerOperationsAreUnsupported(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, newFakeVendor(t))
	ref := domain.AccountRef{CustomerID: "9", SubscriptionID: "55"}

	for _, err := range []error{
		p.GrantReseller(context.Background(), ref),
		p.RevokeReseller(context.Background(), ref),
	} {
		var pe *provision.Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, provision.KindUnsupported, pe.Kind)
	}
}
