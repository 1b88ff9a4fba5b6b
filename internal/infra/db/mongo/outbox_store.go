package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "innkeeper/internal/app/outbox"
	infraoutbox "innkeeper/internal/infra/outbox"
)

const outboxCollection = "outbox_events"

// OutboxStore keeps pending domain events in the same database as the
// aggregates they describe, so a crash between write and publish loses nothing.
type OutboxStore struct {
	col *mongo.Collection
}

func NewOutboxStore(db *mongo.Database) *OutboxStore {
	return &OutboxStore{col: db.Collection(outboxCollection)}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	doc := outboxDocument{
		ID:         uuid.NewString(),
		Name:       record.Name,
		Aggregate:  record.Aggregate,
		Payload:    record.Payload,
		Headers:    record.Headers,
		OccurredAt: record.OccurredAt.UnixMilli(),
		Status:     infraoutbox.StatusPending,
		NextRetry:  record.OccurredAt.UnixMilli(),
	}
	_, err := s.col.InsertOne(ctx, doc)
	return err
}

// Claim atomically stamps the oldest due pending entry with the worker id so
// concurrent workers never publish the same event twice.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	now := time.Now().UTC().UnixMilli()
	filter := bson.M{
		"status":     infraoutbox.StatusPending,
		"next_retry": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"claimed_by": workerID}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc outboxDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEvent(), nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"status": infraoutbox.StatusSent}}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	update := bson.M{
		"$set": bson.M{
			"next_retry": retryAt.UTC().UnixMilli(),
			"claimed_by": "",
			"last_error": reason,
		},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

type outboxDocument struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Aggregate  string            `bson:"aggregate"`
	Payload    []byte            `bson:"payload"`
	Headers    map[string]string `bson:"headers,omitempty"`
	OccurredAt int64             `bson:"occurred_at"`
	Status     string            `bson:"status"`
	Attempts   int               `bson:"attempts"`
	NextRetry  int64             `bson:"next_retry"`
	ClaimedBy  string            `bson:"claimed_by,omitempty"`
	LastError  string            `bson:"last_error,omitempty"`
}

func (d outboxDocument) toEvent() *infraoutbox.EventDocument {
	return &infraoutbox.EventDocument{
		ID:         d.ID,
		Name:       d.Name,
		Aggregate:  d.Aggregate,
		Payload:    d.Payload,
		Headers:    d.Headers,
		OccurredAt: millisToTime(d.OccurredAt),
		Status:     d.Status,
		Attempts:   d.Attempts,
		NextRetry:  millisToTime(d.NextRetry),
		ClaimedBy:  d.ClaimedBy,
		LastError:  d.LastError,
	}
}

var _ infraoutbox.Store = (*OutboxStore)(nil)
