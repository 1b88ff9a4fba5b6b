package guest

import (
	"context"
	"errors"
	"strings"
	"time"

	"innkeeper/internal/domain/shared/money"
	"innkeeper/internal/domain/tenant"
)

var (
	ErrGuestNotFound  = errors.New("guest: not found")
	ErrNameRequired   = errors.New("guest: name required")
	ErrTenantRequired = errors.New("guest: tenant id required")
	ErrBlacklisted    = errors.New("guest: blacklisted")
)

// VIP promotion thresholds: either number of completed stays or cumulative
// spend in minor units (10,000.00 in the guest's currency).
const (
	VIPStaysThreshold = 10
	VIPSpendThreshold = 10_000_00
)

type ID string

// Guest is a tenant-scoped customer record with cumulative stay statistics.
type Guest struct {
	ID          ID
	TenantID    tenant.ID
	Name        string
	Email       string
	Phone       string
	Document    Document
	TotalStays  int
	TotalSpent  money.Money
	Loyalty     int
	VIP         bool
	Blacklisted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Document identifies the guest (passport, national id); AttachmentURL points
// at the uploaded scan when one exists.
type Document struct {
	Type          string
	Number        string
	AttachmentURL string
}

type Repository interface {
	ByID(ctx context.Context, tenantID tenant.ID, id ID) (*Guest, error)
	Save(ctx context.Context, g *Guest) error
	ListByTenant(ctx context.Context, tenantID tenant.ID) ([]*Guest, error)
}

type CreateParams struct {
	ID       ID
	TenantID tenant.ID
	Name     string
	Email    string
	Phone    string
	Document Document
	Currency string
	Now      time.Time
}

func New(params CreateParams) (*Guest, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if params.TenantID == "" {
		return nil, ErrTenantRequired
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	now := params.Now.UTC()
	return &Guest{
		ID:         params.ID,
		TenantID:   params.TenantID,
		Name:       strings.TrimSpace(params.Name),
		Email:      strings.TrimSpace(strings.ToLower(params.Email)),
		Phone:      strings.TrimSpace(params.Phone),
		Document:   params.Document,
		TotalSpent: money.Zero(currency),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (g *Guest) Active() bool {
	return g.DeletedAt == nil
}

func (g *Guest) Deactivate(now time.Time) {
	if g.DeletedAt != nil {
		return
	}
	ts := now.UTC()
	g.DeletedAt = &ts
	g.UpdatedAt = ts
}

// RecordStay is applied at check-in: bumps the stay counter, accumulates spend
// and auto-promotes to VIP past either threshold.
func (g *Guest) RecordStay(total money.Money, now time.Time) error {
	g.TotalStays++
	if g.TotalSpent.Currency == total.Currency {
		sum, err := g.TotalSpent.Add(total)
		if err != nil {
			return err
		}
		g.TotalSpent = sum
	} else if g.TotalSpent.IsZero() {
		g.TotalSpent = total
	}
	if g.TotalStays >= VIPStaysThreshold || g.TotalSpent.Amount >= VIPSpendThreshold {
		g.VIP = true
	}
	g.UpdatedAt = now.UTC()
	return nil
}

// AttachDocumentScan stores the uploaded identification scan location.
func (g *Guest) AttachDocumentScan(url string, now time.Time) {
	g.Document.AttachmentURL = url
	g.UpdatedAt = now.UTC()
}
