package mongo

import (
	"alcyxob/trainer-app/internal/repository"
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary so an unreachable server fails at startup, not on the first request.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories wires every collection-backed repository against db.
func NewRepositories(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Trainers: NewMongoTrainerRepository(db),
		Students: NewMongoStudentRepository(db),
		Plans:    NewMongoPlanRepository(db),
		Days:     NewMongoPlanDayRepository(db),
		Blocks:   NewMongoPlanBlockRepository(db),
		Items:    NewMongoPlanItemRepository(db),
		Payments: NewMongoPaymentRepository(db),
	}
}

// EnsureIndexes creates every index the repositories rely on. Failures are logged, not fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	ensure := map[string][]mongo.IndexModel{
		trainerCollectionName:   trainerIndexes(),
		studentCollectionName:   studentIndexes(),
		planCollectionName:      planIndexes(),
		planDayCollectionName:   planDayIndexes(),
		planBlockCollectionName: planBlockIndexes(),
		planItemCollectionName:  planItemIndexes(),
		paymentCollectionName:   paymentIndexes(),
	}
	for name, indexes := range ensure {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			zap.L().Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}

// containsFold builds a case-insensitive substring match.
func containsFold(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// pageOptions applies skip/limit for a page. The zero page returns everything.
func pageOptions(opts *options.FindOptions, skip, limit int) *options.FindOptions {
	if limit > 0 {
		opts.SetSkip(int64(skip)).SetLimit(int64(limit))
	}
	return opts
}

// findAll runs a query and decodes every document, returning an empty slice rather than nil.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// byPosition sorts children in display order.
var byPosition = bson.D{{Key: "position", Value: 1}, {Key: "createdAt", Value: 1}}
