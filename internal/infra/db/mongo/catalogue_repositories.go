package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainguest "innkeeper/internal/domain/guest"
	domainproperty "innkeeper/internal/domain/property"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/money"
	domaintenant "innkeeper/internal/domain/tenant"
)

const (
	tenantCollection   = "agg_tenant"
	propertyCollection = "agg_property"
	roomCollection     = "agg_room"
	guestCollection    = "agg_guest"
)

type TenantRepository struct {
	col *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) *TenantRepository {
	return &TenantRepository{col: db.Collection(tenantCollection)}
}

func (r *TenantRepository) ByID(ctx context.Context, id domaintenant.ID) (*domaintenant.Tenant, error) {
	var doc tenantDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintenant.ErrTenantNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *TenantRepository) Save(ctx context.Context, t *domaintenant.Tenant) error {
	doc := tenantDocument{
		ID:                string(t.ID),
		Name:              t.Name,
		SubscriptionStart: t.Subscription.Start.UnixMilli(),
		SubscriptionEnd:   t.Subscription.End.UnixMilli(),
		Trial:             t.Subscription.Trial,
		CreatedAt:         t.CreatedAt.UnixMilli(),
		UpdatedAt:         t.UpdatedAt.UnixMilli(),
		DeletedAt:         timePtrToMillis(t.DeletedAt),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type tenantDocument struct {
	ID                string `bson:"_id"`
	Name              string `bson:"name"`
	SubscriptionStart int64  `bson:"subscription_start"`
	SubscriptionEnd   int64  `bson:"subscription_end"`
	Trial             bool   `bson:"trial"`
	CreatedAt         int64  `bson:"created_at"`
	UpdatedAt         int64  `bson:"updated_at"`
	DeletedAt         *int64 `bson:"deleted_at"`
}

func (d tenantDocument) toAggregate() *domaintenant.Tenant {
	return &domaintenant.Tenant{
		ID:   domaintenant.ID(d.ID),
		Name: d.Name,
		Subscription: domaintenant.Subscription{
			Start: millisToTime(d.SubscriptionStart),
			End:   millisToTime(d.SubscriptionEnd),
			Trial: d.Trial,
		},
		CreatedAt: millisToTime(d.CreatedAt),
		UpdatedAt: millisToTime(d.UpdatedAt),
		DeletedAt: millisToTimePtr(d.DeletedAt),
	}
}

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(propertyCollection)}
}

func (r *PropertyRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainproperty.ID) (*domainproperty.Property, error) {
	var doc propertyDocument
	filter := bson.M{"_id": string(id), "tenant_id": string(tenantID)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := propertyDocument{
		ID:       string(p.ID),
		TenantID: string(p.TenantID),
		Name:     p.Name,
		Address: addressDocument{
			Line1:   p.Address.Line1,
			Line2:   p.Address.Line2,
			City:    p.Address.City,
			Country: p.Address.Country,
			Zip:     p.Address.Zip,
		},
		CheckInTime:          p.CheckInTime,
		CheckOutTime:         p.CheckOutTime,
		AdvanceBookingDays:   p.BookingPolicy.AdvanceBookingDays,
		OnlineBookingAllowed: p.BookingPolicy.OnlineBookingAllowed,
		CreatedAt:            p.CreatedAt.UnixMilli(),
		UpdatedAt:            p.UpdatedAt.UnixMilli(),
		DeletedAt:            timePtrToMillis(p.DeletedAt),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *PropertyRepository) ListByTenant(ctx context.Context, tenantID domaintenant.ID) ([]*domainproperty.Property, error) {
	filter := bson.M{"tenant_id": string(tenantID), "deleted_at": nil}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var matches []*domainproperty.Property
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		matches = append(matches, doc.toAggregate())
	}
	return matches, cursor.Err()
}

type propertyDocument struct {
	ID                   string          `bson:"_id"`
	TenantID             string          `bson:"tenant_id"`
	Name                 string          `bson:"name"`
	Address              addressDocument `bson:"address"`
	CheckInTime          string          `bson:"check_in_time"`
	CheckOutTime         string          `bson:"check_out_time"`
	AdvanceBookingDays   int             `bson:"advance_booking_days"`
	OnlineBookingAllowed bool            `bson:"online_booking_allowed"`
	CreatedAt            int64           `bson:"created_at"`
	UpdatedAt            int64           `bson:"updated_at"`
	DeletedAt            *int64          `bson:"deleted_at"`
}

type addressDocument struct {
	Line1   string `bson:"line1,omitempty"`
	Line2   string `bson:"line2,omitempty"`
	City    string `bson:"city,omitempty"`
	Country string `bson:"country,omitempty"`
	Zip     string `bson:"zip,omitempty"`
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	return &domainproperty.Property{
		ID:       domainproperty.ID(d.ID),
		TenantID: domaintenant.ID(d.TenantID),
		Name:     d.Name,
		Address: domainproperty.Address{
			Line1:   d.Address.Line1,
			Line2:   d.Address.Line2,
			City:    d.Address.City,
			Country: d.Address.Country,
			Zip:     d.Address.Zip,
		},
		CheckInTime:  d.CheckInTime,
		CheckOutTime: d.CheckOutTime,
		BookingPolicy: domainproperty.BookingPolicy{
			AdvanceBookingDays:   d.AdvanceBookingDays,
			OnlineBookingAllowed: d.OnlineBookingAllowed,
		},
		CreatedAt: millisToTime(d.CreatedAt),
		UpdatedAt: millisToTime(d.UpdatedAt),
		DeletedAt: millisToTimePtr(d.DeletedAt),
	}
}

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(roomCollection)}
}

func (r *RoomRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainroom.ID) (*domainroom.Room, error) {
	var doc roomDocument
	filter := bson.M{"_id": string(id), "tenant_id": string(tenantID)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainroom.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save maps the partial unique index on (tenant_id, property_id, name_or_number)
// to the domain duplicate-name error.
func (r *RoomRepository) Save(ctx context.Context, rm *domainroom.Room) error {
	doc := roomDocument{
		ID:            string(rm.ID),
		TenantID:      string(rm.TenantID),
		PropertyID:    string(rm.PropertyID),
		NameOrNumber:  rm.NameOrNumber,
		Type:          string(rm.Type),
		AdultCapacity: rm.Capacity.Adults,
		ChildCapacity: rm.Capacity.Children,
		BaseRate:      rm.Rate.Base,
		ExtraAdult:    rm.Rate.ExtraAdult,
		ExtraChild:    rm.Rate.ExtraChild,
		CleaningFee:   rm.Fees.Cleaning,
		ServiceFee:    rm.Fees.Service,
		Status:        string(rm.Status),
		CreatedAt:     rm.CreatedAt.UnixMilli(),
		UpdatedAt:     rm.UpdatedAt.UnixMilli(),
		DeletedAt:     timePtrToMillis(rm.DeletedAt),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainroom.ErrDuplicateName
	}
	return err
}

func (r *RoomRepository) ListByProperty(ctx context.Context, tenantID domaintenant.ID, propertyID domainproperty.ID) ([]*domainroom.Room, error) {
	filter := bson.M{
		"tenant_id":   string(tenantID),
		"property_id": string(propertyID),
		"deleted_at":  nil,
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_or_number", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var matches []*domainroom.Room
	for cursor.Next(ctx) {
		var doc roomDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		matches = append(matches, doc.toAggregate())
	}
	return matches, cursor.Err()
}

type roomDocument struct {
	ID            string      `bson:"_id"`
	TenantID      string      `bson:"tenant_id"`
	PropertyID    string      `bson:"property_id"`
	NameOrNumber  string      `bson:"name_or_number"`
	Type          string      `bson:"type"`
	AdultCapacity int         `bson:"adult_capacity"`
	ChildCapacity int         `bson:"child_capacity"`
	BaseRate      money.Money `bson:"base_rate"`
	ExtraAdult    money.Money `bson:"extra_adult"`
	ExtraChild    money.Money `bson:"extra_child"`
	CleaningFee   money.Money `bson:"cleaning_fee"`
	ServiceFee    money.Money `bson:"service_fee"`
	Status        string      `bson:"status"`
	CreatedAt     int64       `bson:"created_at"`
	UpdatedAt     int64       `bson:"updated_at"`
	DeletedAt     *int64      `bson:"deleted_at"`
}

func (d roomDocument) toAggregate() *domainroom.Room {
	return &domainroom.Room{
		ID:           domainroom.ID(d.ID),
		TenantID:     domaintenant.ID(d.TenantID),
		PropertyID:   domainproperty.ID(d.PropertyID),
		NameOrNumber: d.NameOrNumber,
		Type:         domainroom.Type(d.Type),
		Capacity: domainroom.Capacity{
			Adults:   d.AdultCapacity,
			Children: d.ChildCapacity,
		},
		Rate: domainroom.Rate{
			Base:       d.BaseRate,
			ExtraAdult: d.ExtraAdult,
			ExtraChild: d.ExtraChild,
		},
		Fees: domainroom.Fees{
			Cleaning: d.CleaningFee,
			Service:  d.ServiceFee,
		},
		Status:    domainroom.Status(d.Status),
		CreatedAt: millisToTime(d.CreatedAt),
		UpdatedAt: millisToTime(d.UpdatedAt),
		DeletedAt: millisToTimePtr(d.DeletedAt),
	}
}

type GuestRepository struct {
	col *mongo.Collection
}

func NewGuestRepository(db *mongo.Database) *GuestRepository {
	return &GuestRepository{col: db.Collection(guestCollection)}
}

func (r *GuestRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainguest.ID) (*domainguest.Guest, error) {
	var doc guestDocument
	filter := bson.M{"_id": string(id), "tenant_id": string(tenantID)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainguest.ErrGuestNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *GuestRepository) Save(ctx context.Context, g *domainguest.Guest) error {
	doc := guestDocument{
		ID:       string(g.ID),
		TenantID: string(g.TenantID),
		Name:     g.Name,
		Email:    g.Email,
		Phone:    g.Phone,
		Document: guestDocumentInfo{
			Type:          g.Document.Type,
			Number:        g.Document.Number,
			AttachmentURL: g.Document.AttachmentURL,
		},
		TotalStays:  g.TotalStays,
		TotalSpent:  g.TotalSpent,
		Loyalty:     g.Loyalty,
		VIP:         g.VIP,
		Blacklisted: g.Blacklisted,
		CreatedAt:   g.CreatedAt.UnixMilli(),
		UpdatedAt:   g.UpdatedAt.UnixMilli(),
		DeletedAt:   timePtrToMillis(g.DeletedAt),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *GuestRepository) ListByTenant(ctx context.Context, tenantID domaintenant.ID) ([]*domainguest.Guest, error) {
	filter := bson.M{"tenant_id": string(tenantID), "deleted_at": nil}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var matches []*domainguest.Guest
	for cursor.Next(ctx) {
		var doc guestDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		matches = append(matches, doc.toAggregate())
	}
	return matches, cursor.Err()
}

type guestDocument struct {
	ID          string            `bson:"_id"`
	TenantID    string            `bson:"tenant_id"`
	Name        string            `bson:"name"`
	Email       string            `bson:"email,omitempty"`
	Phone       string            `bson:"phone,omitempty"`
	Document    guestDocumentInfo `bson:"document"`
	TotalStays  int               `bson:"total_stays"`
	TotalSpent  money.Money       `bson:"total_spent"`
	Loyalty     int               `bson:"loyalty"`
	VIP         bool              `bson:"vip"`
	Blacklisted bool              `bson:"blacklisted"`
	CreatedAt   int64             `bson:"created_at"`
	UpdatedAt   int64             `bson:"updated_at"`
	DeletedAt   *int64            `bson:"deleted_at"`
}

type guestDocumentInfo struct {
	Type          string `bson:"type,omitempty"`
	Number        string `bson:"number,omitempty"`
	AttachmentURL string `bson:"attachment_url,omitempty"`
}

func (d guestDocument) toAggregate() *domainguest.Guest {
	return &domainguest.Guest{
		ID:       domainguest.ID(d.ID),
		TenantID: domaintenant.ID(d.TenantID),
		Name:     d.Name,
		Email:    d.Email,
		Phone:    d.Phone,
		Document: domainguest.Document{
			Type:          d.Document.Type,
			Number:        d.Document.Number,
			AttachmentURL: d.Document.AttachmentURL,
		},
		TotalStays:  d.TotalStays,
		TotalSpent:  d.TotalSpent,
		Loyalty:     d.Loyalty,
		VIP:         d.VIP,
		Blacklisted: d.Blacklisted,
		CreatedAt:   millisToTime(d.CreatedAt),
		UpdatedAt:   millisToTime(d.UpdatedAt),
		DeletedAt:   millisToTimePtr(d.DeletedAt),
	}
}

var (
	_ domaintenant.Repository   = (*TenantRepository)(nil)
	_ domainproperty.Repository = (*PropertyRepository)(nil)
	_ domainroom.Repository     = (*RoomRepository)(nil)
	_ domainguest.Repository    = (*GuestRepository)(nil)
)
