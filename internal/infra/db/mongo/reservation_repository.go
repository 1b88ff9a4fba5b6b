package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainguest "innkeeper/internal/domain/guest"
	"innkeeper/internal/domain/pricing"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	"innkeeper/internal/domain/shared/money"
	domaintenant "innkeeper/internal/domain/tenant"
)

const reservationCollection = "agg_reservation"

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// blockingStatuses are the reservation states that keep a room occupied for
// availability purposes.
var blockingStatuses = []string{
	string(domainreservation.StatusPending),
	string(domainreservation.StatusConfirmed),
	string(domainreservation.StatusCheckedIn),
}

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(reservationCollection)}
}

func (r *ReservationRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainreservation.ID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	filter := bson.M{"_id": string(id), "tenant_id": string(tenantID)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrReservationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save performs an optimistic conditional write keyed on the stored version;
// a missed match means another request got there first. The unique index on
// confirmation_code backstops code generation races.
func (r *ReservationRepository) Save(ctx context.Context, rsv *domainreservation.Reservation) error {
	doc := newReservationDocument(rsv)
	filter := bson.M{"_id": doc.ID, "version": rsv.Version}
	doc.Version = rsv.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	rsv.Version = doc.Version
	return nil
}

func (r *ReservationRepository) ListBlockingByRoom(ctx context.Context, tenantID domaintenant.ID, roomID domainroom.ID) ([]*domainreservation.Reservation, error) {
	filter := bson.M{
		"tenant_id":  string(tenantID),
		"room_id":    string(roomID),
		"status":     bson.M{"$in": blockingStatuses},
		"deleted_at": nil,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *ReservationRepository) List(ctx context.Context, tenantID domaintenant.ID, f domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	filter := bson.M{"tenant_id": string(tenantID), "deleted_at": nil}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.RoomID != "" {
		filter["room_id"] = string(f.RoomID)
	}
	if f.GuestID != "" {
		filter["guest_id"] = string(f.GuestID)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *ReservationRepository) ListByReservationIDs(ctx context.Context, tenantID domaintenant.ID, ids []domainreservation.ID) ([]*domainreservation.Reservation, error) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	filter := bson.M{"tenant_id": string(tenantID), "_id": bson.M{"$in": raw}}
	return r.find(ctx, filter, options.Find())
}

func (r *ReservationRepository) ConfirmationCodeExists(ctx context.Context, code string) (bool, error) {
	// Intentionally unscoped: confirmation codes are unique across tenants.
	count, err := r.col.CountDocuments(ctx, bson.M{"confirmation_code": code})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainreservation.Reservation, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var matches []*domainreservation.Reservation
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		matches = append(matches, doc.toAggregate())
	}
	return matches, cursor.Err()
}

type reservationDocument struct {
	ID               string                 `bson:"_id"`
	TenantID         string                 `bson:"tenant_id"`
	PropertyID       string                 `bson:"property_id"`
	RoomID           string                 `bson:"room_id"`
	GuestID          string                 `bson:"guest_id"`
	ConfirmationCode string                 `bson:"confirmation_code"`
	CheckIn          int64                  `bson:"check_in"`
	CheckOut         int64                  `bson:"check_out"`
	ActualCheckIn    *int64                 `bson:"actual_check_in,omitempty"`
	ActualCheckOut   *int64                 `bson:"actual_check_out,omitempty"`
	ConfirmedAt      *int64                 `bson:"confirmed_at,omitempty"`
	Adults           int                    `bson:"adults"`
	Children         int                    `bson:"children"`
	AdditionalGuests []string               `bson:"additional_guests,omitempty"`
	Status           string                 `bson:"status"`
	Pricing          pricing.Quote          `bson:"pricing"`
	Payments         paymentSummaryDocument `bson:"payments"`
	Source           string                 `bson:"source"`
	Cancellation     *cancellationDocument  `bson:"cancellation,omitempty"`
	Notes            string                 `bson:"notes,omitempty"`
	CreatedAt        int64                  `bson:"created_at"`
	UpdatedAt        int64                  `bson:"updated_at"`
	DeletedAt        *int64                 `bson:"deleted_at"`
	Version          int64                  `bson:"version"`
}

type paymentSummaryDocument struct {
	TotalPaid        money.Money `bson:"total_paid"`
	RemainingBalance money.Money `bson:"remaining_balance"`
	Status           string      `bson:"status"`
	DepositRequired  money.Money `bson:"deposit_required"`
	DepositPaid      bool        `bson:"deposit_paid"`
}

type cancellationDocument struct {
	By           string      `bson:"by"`
	At           int64       `bson:"at"`
	Reason       string      `bson:"reason"`
	RefundAmount money.Money `bson:"refund_amount"`
}

func newReservationDocument(rsv *domainreservation.Reservation) reservationDocument {
	doc := reservationDocument{
		ID:               string(rsv.ID),
		TenantID:         string(rsv.TenantID),
		PropertyID:       string(rsv.PropertyID),
		RoomID:           string(rsv.RoomID),
		GuestID:          string(rsv.GuestID),
		ConfirmationCode: rsv.ConfirmationCode,
		CheckIn:          rsv.Stay.CheckIn.UnixMilli(),
		CheckOut:         rsv.Stay.CheckOut.UnixMilli(),
		ActualCheckIn:    timePtrToMillis(rsv.ActualCheckIn),
		ActualCheckOut:   timePtrToMillis(rsv.ActualCheckOut),
		ConfirmedAt:      timePtrToMillis(rsv.ConfirmedAt),
		Adults:           rsv.Adults,
		Children:         rsv.Children,
		AdditionalGuests: rsv.AdditionalGuests,
		Status:           string(rsv.Status),
		Pricing:          rsv.Pricing,
		Payments: paymentSummaryDocument{
			TotalPaid:        rsv.Payments.TotalPaid,
			RemainingBalance: rsv.Payments.RemainingBalance,
			Status:           string(rsv.Payments.Status),
			DepositRequired:  rsv.Payments.DepositRequired,
			DepositPaid:      rsv.Payments.DepositPaid,
		},
		Source:    string(rsv.Source),
		Notes:     rsv.Notes,
		CreatedAt: rsv.CreatedAt.UnixMilli(),
		UpdatedAt: rsv.UpdatedAt.UnixMilli(),
		DeletedAt: timePtrToMillis(rsv.DeletedAt),
		Version:   rsv.Version,
	}
	if rsv.Cancellation != nil {
		doc.Cancellation = &cancellationDocument{
			By:           rsv.Cancellation.By,
			At:           rsv.Cancellation.At.UnixMilli(),
			Reason:       rsv.Cancellation.Reason,
			RefundAmount: rsv.Cancellation.RefundAmount,
		}
	}
	return doc
}

func (d reservationDocument) toAggregate() *domainreservation.Reservation {
	rsv := &domainreservation.Reservation{
		ID:               domainreservation.ID(d.ID),
		TenantID:         domaintenant.ID(d.TenantID),
		PropertyID:       domainproperty.ID(d.PropertyID),
		RoomID:           domainroom.ID(d.RoomID),
		GuestID:          domainguest.ID(d.GuestID),
		ConfirmationCode: d.ConfirmationCode,
		Stay: daterange.DateRange{
			CheckIn:  millisToTime(d.CheckIn),
			CheckOut: millisToTime(d.CheckOut),
		},
		ActualCheckIn:    millisToTimePtr(d.ActualCheckIn),
		ActualCheckOut:   millisToTimePtr(d.ActualCheckOut),
		ConfirmedAt:      millisToTimePtr(d.ConfirmedAt),
		Adults:           d.Adults,
		Children:         d.Children,
		AdditionalGuests: d.AdditionalGuests,
		Status:           domainreservation.Status(d.Status),
		Pricing:          d.Pricing,
		Payments: domainreservation.PaymentSummary{
			TotalPaid:        d.Payments.TotalPaid,
			RemainingBalance: d.Payments.RemainingBalance,
			Status:           domainreservation.PaymentStatus(d.Payments.Status),
			DepositRequired:  d.Payments.DepositRequired,
			DepositPaid:      d.Payments.DepositPaid,
		},
		Source:    domainreservation.Source(d.Source),
		Notes:     d.Notes,
		CreatedAt: millisToTime(d.CreatedAt),
		UpdatedAt: millisToTime(d.UpdatedAt),
		DeletedAt: millisToTimePtr(d.DeletedAt),
		Version:   d.Version,
	}
	if d.Cancellation != nil {
		rsv.Cancellation = &domainreservation.Cancellation{
			By:           d.Cancellation.By,
			At:           millisToTime(d.Cancellation.At),
			Reason:       d.Cancellation.Reason,
			RefundAmount: d.Cancellation.RefundAmount,
		}
	}
	return rsv
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func millisToTimePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := millisToTime(*ms)
	return &t
}

func timePtrToMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

var _ domainreservation.Repository = (*ReservationRepository)(nil)
