package provision

import (
	"context"

	"github.com/seastack/hostpanel/internal/domain"
)

// Provisioner is the fixed operation set every hosting vendor adapter
// implements. Operations are stateless: each call re-fetches vendor state
// rather than caching it, since the vendor is the system of record.
type Provisioner interface {
	Create(ctx context.Context, params *domain.CreateParams) (*domain.Account, error)
	Suspend(ctx context.Context, params *domain.SuspendParams) (*domain.Account, error)
	Unsuspend(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	Terminate(ctx context.Context, ref domain.AccountRef) error
	GetInfo(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	GetUsage(ctx context.Context, ref domain.AccountRef) (*domain.Usage, error)
	ChangePassword(ctx context.Context, params *domain.ChangePasswordParams) error
	ChangePackage(ctx context.Context, params *domain.ChangePackageParams) (*domain.Account, error)
	LoginURL(ctx context.Context, params *domain.LoginURLParams) (string, error)
	GrantReseller(ctx context.Context, ref domain.AccountRef) error
	RevokeReseller(ctx context.Context, ref domain.AccountRef) error
}

// Manager routes operations to the adapter registered under a vendor name.
type Manager struct {
	providers map[string]Provisioner
}

// NewManager creates an empty provisioner registry.
func NewManager() *Manager {
	return &Manager{
		providers: make(map[string]Provisioner),
	}
}

// Register adds a provisioner under the given vendor name.
func (m *Manager) Register(name string, p Provisioner) {
	m.providers[name] = p
}

// Get returns the provisioner for the given vendor name.
func (m *Manager) Get(name string) (Provisioner, error) {
	p, exists := m.providers[name]
	if !exists {
		return nil, NotFound("provider not found: " + name).WithData("provider", name)
	}
	return p, nil
}

// Names lists the registered vendor names.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}
