package uow

import (
	"context"

	domainguest "innkeeper/internal/domain/guest"
	domainpayment "innkeeper/internal/domain/payment"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	domaintenant "innkeeper/internal/domain/tenant"
)

// UnitOfWork coordinates the tenant-scoped repositories inside one transaction
// boundary. Every repository method takes the tenant id explicitly; nothing is
// injected through ambient state.
type UnitOfWork interface {
	Tenants() domaintenant.Repository
	Properties() domainproperty.Repository
	Rooms() domainroom.Repository
	Guests() domainguest.Repository
	Reservations() domainreservation.Repository
	Payments() domainpayment.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
