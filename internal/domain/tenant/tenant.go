package tenant

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTenantNotFound = errors.New("tenant: not found")
	ErrTenantInactive = errors.New("tenant: inactive")
	ErrNameRequired   = errors.New("tenant: name required")
)

type ID string

// Tenant is an isolated business account; every other entity carries its id
// and no query may cross tenant boundaries.
type Tenant struct {
	ID           ID
	Name         string
	Subscription Subscription
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Subscription struct {
	Start time.Time
	End   time.Time
	Trial bool
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Tenant, error)
	Save(ctx context.Context, t *Tenant) error
}

func New(id ID, name string, sub Subscription, now time.Time) (*Tenant, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	now = now.UTC()
	return &Tenant{ID: id, Name: name, Subscription: sub, CreatedAt: now, UpdatedAt: now}, nil
}

// Active reports whether the tenant may transact. Tenants are soft-deactivated,
// never hard-deleted.
func (t *Tenant) Active() bool {
	return t.DeletedAt == nil
}

// Deactivate tombstones the tenant.
func (t *Tenant) Deactivate(now time.Time) {
	if t.DeletedAt != nil {
		return
	}
	ts := now.UTC()
	t.DeletedAt = &ts
	t.UpdatedAt = ts
}
