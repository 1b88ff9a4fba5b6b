package memory

import (
	"context"
	"sync"

	domainpayment "innkeeper/internal/domain/payment"
	domainreservation "innkeeper/internal/domain/reservation"
	domaintenant "innkeeper/internal/domain/tenant"
)

// PaymentRepository stores payments in memory in insertion order.
type PaymentRepository struct {
	mu    sync.RWMutex
	items map[domainpayment.ID]*domainpayment.Payment
	order []domainpayment.ID
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{items: make(map[domainpayment.ID]*domainpayment.Payment)}
}

func (r *PaymentRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainpayment.ID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok || p.TenantID != tenantID {
		return nil, domainpayment.ErrPaymentNotFound
	}
	return p, nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	p.Version++
	r.items[p.ID] = p
	return nil
}

func (r *PaymentRepository) ListByReservation(ctx context.Context, tenantID domaintenant.ID, reservationID domainreservation.ID) ([]*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainpayment.Payment, 0)
	for _, id := range r.order {
		p := r.items[id]
		if p.TenantID == tenantID && p.ReservationID == reservationID {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (r *PaymentRepository) TransactionCodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.TransactionCode == code {
			return true, nil
		}
	}
	return false, nil
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
