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

const planItemCollectionName = "plan_items"

type mongoPlanItemRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanItemRepository creates a new PlanItem repository.
func NewMongoPlanItemRepository(db *mongo.Database) repository.PlanItemRepository {
	return &mongoPlanItemRepository{
		collection: db.Collection(planItemCollectionName),
	}
}

func (r *mongoPlanItemRepository) Create(ctx context.Context, item *domain.PlanItem) error {
	if item.BlockID == "" || item.PlanID == "" || item.TrainerID == "" || item.Exercise == "" {
		return errors.New("item requires blockId, planId, trainerId and exercise")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, item)
	return err
}

func (r *mongoPlanItemRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.PlanItem, error) {
	var item domain.PlanItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "trainerId": trainerID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *mongoPlanItemRepository) ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanItem, error) {
	filter := bson.M{"trainerId": trainerID, "planId": planID}
	return findAll[domain.PlanItem](ctx, r.collection, filter, options.Find().SetSort(byPosition))
}

func (r *mongoPlanItemRepository) ListByBlock(ctx context.Context, trainerID, blockID string) ([]domain.PlanItem, error) {
	filter := bson.M{"trainerId": trainerID, "blockId": blockID}
	return findAll[domain.PlanItem](ctx, r.collection, filter, options.Find().SetSort(byPosition))
}

func (r *mongoPlanItemRepository) Update(ctx context.Context, item *domain.PlanItem) error {
	item.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"exercise":  item.Exercise,
			"sets":      item.Sets,
			"reps":      item.Reps,
			"load":      item.Load,
			"rest":      item.Rest,
			"tempo":     item.Tempo,
			"duration":  item.Duration,
			"videoUrl":  item.VideoURL,
			"notes":     item.Notes,
			"position":  item.Position,
			"updatedAt": item.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID, "trainerId": item.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanItemRepository) Delete(ctx context.Context, trainerID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func planItemIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "blockId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}
}
