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

const planDayCollectionName = "plan_days"

type mongoPlanDayRepository struct {
	collection *mongo.Collection
	blocks     *mongo.Collection
	items      *mongo.Collection
}

// NewMongoPlanDayRepository creates a new PlanDay repository.
func NewMongoPlanDayRepository(db *mongo.Database) repository.PlanDayRepository {
	return &mongoPlanDayRepository{
		collection: db.Collection(planDayCollectionName),
		blocks:     db.Collection(planBlockCollectionName),
		items:      db.Collection(planItemCollectionName),
	}
}

func (r *mongoPlanDayRepository) Create(ctx context.Context, day *domain.PlanDay) error {
	if day.PlanID == "" || day.TrainerID == "" || day.Title == "" {
		return errors.New("day requires planId, trainerId and title")
	}
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, day)
	return err
}

func (r *mongoPlanDayRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.PlanDay, error) {
	var day domain.PlanDay
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "trainerId": trainerID}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

func (r *mongoPlanDayRepository) ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanDay, error) {
	filter := bson.M{"trainerId": trainerID, "planId": planID}
	return findAll[domain.PlanDay](ctx, r.collection, filter, options.Find().SetSort(byPosition))
}

func (r *mongoPlanDayRepository) Update(ctx context.Context, day *domain.PlanDay) error {
	day.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":       day.Title,
			"position":    day.Position,
			"weekday":     day.Weekday,
			"notes":       day.Notes,
			"completedAt": day.CompletedAt,
			"updatedAt":   day.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": day.ID, "trainerId": day.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the day, then its blocks and items. Orphans left by a failure halfway are
// invisible because trees are built from the day downwards.
func (r *mongoPlanDayRepository) Delete(ctx context.Context, trainerID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	children := bson.M{"dayId": id, "trainerId": trainerID}
	if _, err := r.blocks.DeleteMany(ctx, children); err != nil {
		return err
	}
	_, err = r.items.DeleteMany(ctx, children)
	return err
}

func planDayIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "planId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}
}
