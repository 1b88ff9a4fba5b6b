package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the invariants depend on: globally unique
// confirmation and transaction codes, room-name uniqueness per property, and
// the lookup paths the availability checker and the outbox worker use.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(reservationCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "confirmation_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "room_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(roomCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenant_id", Value: 1},
			{Key: "property_id", Value: 1},
			{Key: "name_or_number", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"deleted_at": bson.M{"$eq": nil}}),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(paymentCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "transaction_code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(outboxCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "next_retry", Value: 1},
		},
	})
	return err
}
