package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpayment "innkeeper/internal/domain/payment"
	domainreservation "innkeeper/internal/domain/reservation"
	"innkeeper/internal/domain/shared/money"
	domaintenant "innkeeper/internal/domain/tenant"
)

const paymentCollection = "agg_payment"

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(paymentCollection)}
}

func (r *PaymentRepository) ByID(ctx context.Context, tenantID domaintenant.ID, id domainpayment.ID) (*domainpayment.Payment, error) {
	var doc paymentDocument
	filter := bson.M{"_id": string(id), "tenant_id": string(tenantID)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpayment.ErrPaymentNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	doc, err := newPaymentDocument(p)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
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
	p.Version = doc.Version
	return nil
}

func (r *PaymentRepository) ListByReservation(ctx context.Context, tenantID domaintenant.ID, reservationID domainreservation.ID) ([]*domainpayment.Payment, error) {
	filter := bson.M{
		"tenant_id":      string(tenantID),
		"reservation_id": string(reservationID),
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var matches []*domainpayment.Payment
	for cursor.Next(ctx) {
		var doc paymentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		p, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		matches = append(matches, p)
	}
	return matches, cursor.Err()
}

func (r *PaymentRepository) TransactionCodeExists(ctx context.Context, code string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"transaction_code": code})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type paymentDocument struct {
	ID              string          `bson:"_id"`
	TenantID        string          `bson:"tenant_id"`
	ReservationID   string          `bson:"reservation_id"`
	TransactionCode string          `bson:"transaction_code"`
	Amount          money.Money     `bson:"amount"`
	Method          string          `bson:"method"`
	Status          string          `bson:"status"`
	Details         detailsDocument `bson:"details"`
	ProcessingFee   money.Money     `bson:"processing_fee"`
	GatewayFee      money.Money     `bson:"gateway_fee"`
	NetAmount       money.Money     `bson:"net_amount"`
	PaidAt          *int64          `bson:"paid_at,omitempty"`
	Refund          refundDocument  `bson:"refund"`
	CreatedAt       int64           `bson:"created_at"`
	UpdatedAt       int64           `bson:"updated_at"`
	DeletedAt       *int64          `bson:"deleted_at"`
	Version         int64           `bson:"version"`
}

// detailsDocument flattens the method-specific variants into one document with
// a Kind discriminator; only the fields of the active variant are stored.
type detailsDocument struct {
	Kind     string                `bson:"kind"`
	Card     *cardDetailsDocument  `bson:"card,omitempty"`
	Transfer *transferDetailsDoc   `bson:"transfer,omitempty"`
	Cash     *cashDetailsDocument  `bson:"cash,omitempty"`
}

type cardDetailsDocument struct {
	Brand     string `bson:"brand,omitempty"`
	LastFour  string `bson:"last_four,omitempty"`
	AuthCode  string `bson:"auth_code,omitempty"`
	Reference string `bson:"reference,omitempty"`
}

type transferDetailsDoc struct {
	BankName  string `bson:"bank_name,omitempty"`
	Reference string `bson:"reference,omitempty"`
	IBAN      string `bson:"iban,omitempty"`
}

type cashDetailsDocument struct {
	ReceivedBy  string `bson:"received_by,omitempty"`
	ReceiptNote string `bson:"receipt_note,omitempty"`
}

type refundDocument struct {
	Refunded bool        `bson:"refunded"`
	Amount   money.Money `bson:"amount"`
	Reason   string      `bson:"reason,omitempty"`
	By       string      `bson:"by,omitempty"`
	At       *int64      `bson:"at,omitempty"`
}

func newPaymentDocument(p *domainpayment.Payment) (paymentDocument, error) {
	details, err := newDetailsDocument(p.Details)
	if err != nil {
		return paymentDocument{}, err
	}
	return paymentDocument{
		ID:              string(p.ID),
		TenantID:        string(p.TenantID),
		ReservationID:   string(p.ReservationID),
		TransactionCode: p.TransactionCode,
		Amount:          p.Amount,
		Method:          string(p.Method),
		Status:          string(p.Status),
		Details:         details,
		ProcessingFee:   p.Fees.Processing,
		GatewayFee:      p.Fees.Gateway,
		NetAmount:       p.NetAmount,
		PaidAt:          timePtrToMillis(p.PaidAt),
		Refund: refundDocument{
			Refunded: p.Refund.Refunded,
			Amount:   p.Refund.Amount,
			Reason:   p.Refund.Reason,
			By:       p.Refund.By,
			At:       timePtrToMillis(p.Refund.At),
		},
		CreatedAt: p.CreatedAt.UnixMilli(),
		UpdatedAt: p.UpdatedAt.UnixMilli(),
		DeletedAt: timePtrToMillis(p.DeletedAt),
		Version:   p.Version,
	}, nil
}

func newDetailsDocument(d domainpayment.Details) (detailsDocument, error) {
	switch v := d.(type) {
	case domainpayment.CardDetails:
		return detailsDocument{
			Kind: string(domainpayment.MethodCard),
			Card: &cardDetailsDocument{
				Brand:     v.Brand,
				LastFour:  v.LastFour,
				AuthCode:  v.AuthCode,
				Reference: v.Reference,
			},
		}, nil
	case domainpayment.TransferDetails:
		return detailsDocument{
			Kind: string(domainpayment.MethodTransfer),
			Transfer: &transferDetailsDoc{
				BankName:  v.BankName,
				Reference: v.Reference,
				IBAN:      v.IBAN,
			},
		}, nil
	case domainpayment.CashDetails:
		return detailsDocument{
			Kind: string(domainpayment.MethodCash),
			Cash: &cashDetailsDocument{
				ReceivedBy:  v.ReceivedBy,
				ReceiptNote: v.ReceiptNote,
			},
		}, nil
	default:
		return detailsDocument{}, domainpayment.ErrUnknownMethod
	}
}

func (d detailsDocument) toDetails() (domainpayment.Details, error) {
	switch domainpayment.Method(d.Kind) {
	case domainpayment.MethodCard:
		var card cardDetailsDocument
		if d.Card != nil {
			card = *d.Card
		}
		return domainpayment.CardDetails{
			Brand:     card.Brand,
			LastFour:  card.LastFour,
			AuthCode:  card.AuthCode,
			Reference: card.Reference,
		}, nil
	case domainpayment.MethodTransfer:
		var transfer transferDetailsDoc
		if d.Transfer != nil {
			transfer = *d.Transfer
		}
		return domainpayment.TransferDetails{
			BankName:  transfer.BankName,
			Reference: transfer.Reference,
			IBAN:      transfer.IBAN,
		}, nil
	case domainpayment.MethodCash:
		var cash cashDetailsDocument
		if d.Cash != nil {
			cash = *d.Cash
		}
		return domainpayment.CashDetails{
			ReceivedBy:  cash.ReceivedBy,
			ReceiptNote: cash.ReceiptNote,
		}, nil
	default:
		return nil, domainpayment.ErrUnknownMethod
	}
}

func (d paymentDocument) toAggregate() (*domainpayment.Payment, error) {
	details, err := d.Details.toDetails()
	if err != nil {
		return nil, err
	}
	return &domainpayment.Payment{
		ID:              domainpayment.ID(d.ID),
		TenantID:        domaintenant.ID(d.TenantID),
		ReservationID:   domainreservation.ID(d.ReservationID),
		TransactionCode: d.TransactionCode,
		Amount:          d.Amount,
		Method:          domainpayment.Method(d.Method),
		Status:          domainpayment.State(d.Status),
		Details:         details,
		Fees: domainpayment.Fees{
			Processing: d.ProcessingFee,
			Gateway:    d.GatewayFee,
		},
		NetAmount: d.NetAmount,
		PaidAt:    millisToTimePtr(d.PaidAt),
		Refund: domainpayment.Refund{
			Refunded: d.Refund.Refunded,
			Amount:   d.Refund.Amount,
			Reason:   d.Refund.Reason,
			By:       d.Refund.By,
			At:       millisToTimePtr(d.Refund.At),
		},
		CreatedAt: millisToTime(d.CreatedAt),
		UpdatedAt: millisToTime(d.UpdatedAt),
		DeletedAt: millisToTimePtr(d.DeletedAt),
		Version:   d.Version,
	}, nil
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
