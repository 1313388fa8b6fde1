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

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	if plan.TrainerID == "" || plan.Name == "" {
		return errors.New("plan requires trainerId and name")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

// GetByID retrieves a single plan owned by trainerID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.Plan, error) {
	return r.findOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
}

// GetByPublicToken looks a plan up by its share token, regardless of owner.
func (r *mongoPlanRepository) GetByPublicToken(ctx context.Context, token string) (*domain.Plan, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"publicToken": token})
}

func (r *mongoPlanRepository) findOne(ctx context.Context, filter bson.M) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List returns the trainer's plans, newest first.
func (r *mongoPlanRepository) List(ctx context.Context, trainerID string, f repository.PlanFilter) ([]domain.Plan, int, error) {
	filter := bson.M{"trainerId": trainerID}
	if !f.IncludeInactive {
		filter["isActive"] = true
	}
	if f.StudentID != "" {
		filter["studentId"] = f.StudentID
	}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := pageOptions(options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}), f.Page.Offset(), f.Page.Size)
	plans, err := findAll[domain.Plan](ctx, r.collection, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return plans, int(total), nil
}

// Update writes the editable plan fields. TrainerID, token and CreatedAt are left alone.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"studentId":   plan.StudentID,
			"name":        plan.Name,
			"description": plan.Description,
			"goal":        plan.Goal,
			"startDate":   plan.StartDate,
			"endDate":     plan.EndDate,
			"isActive":    plan.IsActive,
			"updatedAt":   plan.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID, "trainerId": plan.TrainerID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanRepository) SetActive(ctx context.Context, trainerID, id string, active bool) error {
	return r.set(ctx, trainerID, id, bson.M{"isActive": active})
}

// Delete removes the plan, then its days, blocks and items.
func (r *mongoPlanRepository) Delete(ctx context.Context, trainerID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	db := r.collection.Database()
	children := bson.M{"planId": id, "trainerId": trainerID}
	for _, name := range []string{planItemCollectionName, planBlockCollectionName, planDayCollectionName} {
		if _, err := db.Collection(name).DeleteMany(ctx, children); err != nil {
			return err
		}
	}
	return nil
}

// SetPublicToken stores or clears the share token. A nil token unsets the field so the
// unique sparse index only sees shared plans.
func (r *mongoPlanRepository) SetPublicToken(ctx context.Context, trainerID, id string, token *string, sharedAt *time.Time) error {
	if token == nil {
		filter := bson.M{"_id": id, "trainerId": trainerID}
		update := bson.M{
			"$unset": bson.M{"publicToken": "", "sharedAt": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
		result, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	}
	err := r.set(ctx, trainerID, id, bson.M{"publicToken": *token, "sharedAt": sharedAt})
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *mongoPlanRepository) set(ctx context.Context, trainerID, id string, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "trainerId": trainerID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanRepository) CountActive(ctx context.Context, trainerID string) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"trainerId": trainerID, "isActive": true})
	return int(n), err
}

func (r *mongoPlanRepository) CountShared(ctx context.Context, trainerID string) (int, error) {
	filter := bson.M{"trainerId": trainerID, "isActive": true, "publicToken": bson.M{"$exists": true}}
	n, err := r.collection.CountDocuments(ctx, filter)
	return int(n), err
}

func planIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// Main query pattern: a trainer's plans, optionally for one student
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "publicToken", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
}
