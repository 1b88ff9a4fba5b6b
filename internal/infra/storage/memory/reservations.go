package memory

import (
	"context"
	"sync"

	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	domaintenant "innkeeper/internal/domain/tenant"
)

// ReservationRepository stores reservations in memory, preserving insertion
// order so conflict reporting matches persisted order.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainreservation.ID]*domainreservation.Reservation
	order []domainreservation.ID
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[domainreservation.ID]*domainreservation.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainreservation.ID) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rsv, ok := r.items[id]
	if !ok || rsv.TenantID != tenantID {
		return nil, domainreservation.ErrReservationNotFound
	}
	return rsv, nil
}

func (r *ReservationRepository) Save(ctx context.Context, rsv *domainreservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[rsv.ID]; !exists {
		r.order = append(r.order, rsv.ID)
	}
	rsv.Version++
	r.items[rsv.ID] = rsv
	return nil
}

func (r *ReservationRepository) ListBlockingByRoom(ctx context.Context, tenantID domaintenant.ID, roomID domainroom.ID) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, id := range r.order {
		rsv := r.items[id]
		if rsv.TenantID != tenantID || rsv.RoomID != roomID {
			continue
		}
		if rsv.BlocksRoom() {
			matches = append(matches, rsv)
		}
	}
	return matches, nil
}

func (r *ReservationRepository) List(ctx context.Context, tenantID domaintenant.ID, filter domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, id := range r.order {
		rsv := r.items[id]
		if rsv.TenantID != tenantID || !rsv.Active() {
			continue
		}
		if filter.Status != "" && rsv.Status != filter.Status {
			continue
		}
		if filter.RoomID != "" && rsv.RoomID != filter.RoomID {
			continue
		}
		if filter.GuestID != "" && rsv.GuestID != filter.GuestID {
			continue
		}
		matches = append(matches, rsv)
	}
	return matches, nil
}

func (r *ReservationRepository) ListByReservationIDs(ctx context.Context, tenantID domaintenant.ID, ids []domainreservation.ID) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0, len(ids))
	for _, id := range ids {
		if rsv, ok := r.items[id]; ok && rsv.TenantID == tenantID {
			matches = append(matches, rsv)
		}
	}
	return matches, nil
}

// ConfirmationCodeExists scans every tenant: the code is globally unique.
func (r *ReservationRepository) ConfirmationCodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rsv := range r.items {
		if rsv.ConfirmationCode == code {
			return true, nil
		}
	}
	return false, nil
}

var _ domainreservation.Repository = (*ReservationRepository)(nil)
