package memory

import (
	"context"
	"sort"
	"sync"

	domainguest "innkeeper/internal/domain/guest"
	domainproperty "innkeeper/internal/domain/property"
	domainroom "innkeeper/internal/domain/room"
	domaintenant "innkeeper/internal/domain/tenant"
)

// TenantRepository is an in-memory implementation for tests and demo mode.
type TenantRepository struct {
	mu    sync.RWMutex
	items map[domaintenant.ID]*domaintenant.Tenant
}

func NewTenantRepository() *TenantRepository {
	return &TenantRepository{items: make(map[domaintenant.ID]*domaintenant.Tenant)}
}

func (r *TenantRepository) ByID(ctx context.Context, id domaintenant.ID) (*domaintenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return nil, domaintenant.ErrTenantNotFound
	}
	return t, nil
}

func (r *TenantRepository) Save(ctx context.Context, t *domaintenant.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.ID] = t
	return nil
}

// PropertyRepository keys properties by (tenant, id) so lookups can never
// cross tenant boundaries.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[scopedKey]*domainproperty.Property
}

type scopedKey struct {
	tenant string
	id     string
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[scopedKey]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainproperty.ID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[scopedKey{string(tenantID), string(id)}]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return p, nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[scopedKey{string(p.TenantID), string(p.ID)}] = p
	return nil
}

func (r *PropertyRepository) ListByTenant(ctx context.Context, tenantID domaintenant.ID) ([]*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainproperty.Property, 0)
	for key, p := range r.items {
		if key.tenant == string(tenantID) {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}

// RoomRepository keeps rooms keyed by (tenant, id).
type RoomRepository struct {
	mu    sync.RWMutex
	items map[scopedKey]*domainroom.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{items: make(map[scopedKey]*domainroom.Room)}
}

func (r *RoomRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainroom.ID) (*domainroom.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.items[scopedKey{string(tenantID), string(id)}]
	if !ok {
		return nil, domainroom.ErrRoomNotFound
	}
	return rm, nil
}

// Save enforces the (tenant, property, name) uniqueness invariant.
func (r *RoomRepository) Save(ctx context.Context, rm *domainroom.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, existing := range r.items {
		if key.tenant != string(rm.TenantID) || existing.ID == rm.ID {
			continue
		}
		if existing.PropertyID == rm.PropertyID && existing.NameOrNumber == rm.NameOrNumber && existing.Active() {
			return domainroom.ErrDuplicateName
		}
	}
	r.items[scopedKey{string(rm.TenantID), string(rm.ID)}] = rm
	return nil
}

func (r *RoomRepository) ListByProperty(ctx context.Context, tenantID domaintenant.ID, propertyID domainproperty.ID) ([]*domainroom.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainroom.Room, 0)
	for key, rm := range r.items {
		if key.tenant == string(tenantID) && rm.PropertyID == propertyID {
			matches = append(matches, rm)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].NameOrNumber < matches[j].NameOrNumber })
	return matches, nil
}

// GuestRepository keeps guest records keyed by (tenant, id).
type GuestRepository struct {
	mu    sync.RWMutex
	items map[scopedKey]*domainguest.Guest
}

func NewGuestRepository() *GuestRepository {
	return &GuestRepository{items: make(map[scopedKey]*domainguest.Guest)}
}

func (r *GuestRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainguest.ID) (*domainguest.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[scopedKey{string(tenantID), string(id)}]
	if !ok {
		return nil, domainguest.ErrGuestNotFound
	}
	return g, nil
}

func (r *GuestRepository) Save(ctx context.Context, g *domainguest.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[scopedKey{string(g.TenantID), string(g.ID)}] = g
	return nil
}

func (r *GuestRepository) ListByTenant(ctx context.Context, tenantID domaintenant.ID) ([]*domainguest.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainguest.Guest, 0)
	for key, g := range r.items {
		if key.tenant == string(tenantID) {
			matches = append(matches, g)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}
