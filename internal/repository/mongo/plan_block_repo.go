package mongo

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planBlockCollectionName = "plan_blocks"

type mongoPlanBlockRepository struct {
	collection *mongo.Collection
	items      *mongo.Collection
}

// NewMongoPlanBlockRepository creates a new PlanBlock repository.
func NewMongoPlanBlockRepository(db *mongo.Database) repository.PlanBlockRepository {
	return &mongoPlanBlockRepository{
		collection: db.Collection(planBlockCollectionName),
		items:      db.Collection(planItemCollectionName),
	}
}

func (r *mongoPlanBlockRepository) Create(ctx context.Context, block *domain.PlanBlock) error {
	if block.DayID == "" || block.PlanID == "" || block.TrainerID == "" || block.Title == "" {
		return errors.New("block requires dayId, planId, trainerId and title")
	}
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	block.CreatedAt = now
	block.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, block)
	return err
}

func (r *mongoPlanBlockRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.PlanBlock, error) {
	var block domain.PlanBlock
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "trainerId": trainerID}).Decode(&block)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &block, nil
}

func (r *mongoPlanBlockRepository) ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanBlock, error) {
	filter := bson.M{"trainerId": trainerID, "planId": planID}
	return findAll[domain.PlanBlock](ctx, r.collection, filter, options.Find().SetSort(byPosition))
}

func (r *mongoPlanBlockRepository) ListByDay(ctx context.Context, trainerID, dayID string) ([]domain.PlanBlock, error) {
	filter := bson.M{"trainerId": trainerID, "dayId": dayID}
	return findAll[domain.PlanBlock](ctx, r.collection, filter, options.Find().SetSort(byPosition))
}

func (r *mongoPlanBlockRepository) Update(ctx context.Context, block *domain.PlanBlock) error {
	block.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":     block.Title,
			"kind":      block.Kind,
			"position":  block.Position,
			"notes":     block.Notes,
			"updatedAt": block.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": block.ID, "trainerId": block.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanBlockRepository) Delete(ctx context.Context, trainerID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	_, err = r.items.DeleteMany(ctx, bson.M{"blockId": id, "trainerId": trainerID})
	return err
}

func planBlockIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "dayId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}
}
