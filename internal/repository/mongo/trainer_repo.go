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

const trainerCollectionName = "trainers"

// mongoTrainerRepository implements the repository.TrainerRepository interface using MongoDB.
type mongoTrainerRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainerRepository creates a new instance of mongoTrainerRepository.
func NewMongoTrainerRepository(db *mongo.Database) repository.TrainerRepository {
	return &mongoTrainerRepository{
		collection: db.Collection(trainerCollectionName),
	}
}

// Create inserts a new trainer. The unique email index turns duplicates into ErrConflict.
func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *domain.Trainer) error {
	if trainer.Email == "" || trainer.PasswordHash == "" {
		return errors.New("trainer email and password hash are required")
	}
	if trainer.ID == "" {
		trainer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, trainer); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID retrieves a trainer by ID.
func (r *mongoTrainerRepository) GetByID(ctx context.Context, id string) (*domain.Trainer, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a trainer by their (normalized) email address.
func (r *mongoTrainerRepository) GetByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoTrainerRepository) findOne(ctx context.Context, filter bson.M) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := r.collection.FindOne(ctx, filter).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

// Update overwrites the mutable profile fields, password hash and avatar key.
func (r *mongoTrainerRepository) Update(ctx context.Context, trainer *domain.Trainer) error {
	trainer.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":         trainer.Name,
			"passwordHash": trainer.PasswordHash,
			"phone":        trainer.Phone,
			"businessName": trainer.BusinessName,
			"bio":          trainer.Bio,
			"avatarKey":    trainer.AvatarKey,
			"currency":     trainer.Currency,
			"isActive":     trainer.IsActive,
			"updatedAt":    trainer.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": trainer.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func trainerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}
