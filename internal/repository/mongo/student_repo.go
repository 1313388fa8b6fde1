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

const studentCollectionName = "students"

type mongoStudentRepository struct {
	collection *mongo.Collection
}

// NewMongoStudentRepository creates a new Student repository.
func NewMongoStudentRepository(db *mongo.Database) repository.StudentRepository {
	return &mongoStudentRepository{
		collection: db.Collection(studentCollectionName),
	}
}

func (r *mongoStudentRepository) Create(ctx context.Context, student *domain.Student) error {
	if student.TrainerID == "" || student.Name == "" {
		return errors.New("student requires trainerId and name")
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, student)
	return err
}

// GetByID retrieves a student owned by trainerID.
func (r *mongoStudentRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.Student, error) {
	var student domain.Student
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "trainerId": trainerID}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &student, nil
}

// List returns one page of the trainer's students sorted by name, plus the total match count.
func (r *mongoStudentRepository) List(ctx context.Context, trainerID string, f repository.StudentFilter) ([]domain.Student, int, error) {
	filter := bson.M{"trainerId": trainerID}
	if !f.IncludeInactive {
		filter["isActive"] = true
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": containsFold(f.Search)},
			bson.M{"email": containsFold(f.Search)},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := pageOptions(options.Find().SetSort(bson.D{{Key: "name", Value: 1}}), f.Page.Offset(), f.Page.Size)
	students, err := findAll[domain.Student](ctx, r.collection, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return students, int(total), nil
}

func (r *mongoStudentRepository) Update(ctx context.Context, student *domain.Student) error {
	student.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":      student.Name,
			"email":     student.Email,
			"phone":     student.Phone,
			"birthDate": student.BirthDate,
			"goal":      student.Goal,
			"notes":     student.Notes,
			"isActive":  student.IsActive,
			"updatedAt": student.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": student.ID, "trainerId": student.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetActive soft-deletes (active=false) or restores a student.
func (r *mongoStudentRepository) SetActive(ctx context.Context, trainerID, id string, active bool) error {
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "trainerId": trainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoStudentRepository) CountActive(ctx context.Context, trainerID string) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"trainerId": trainerID, "isActive": true})
	return int(n), err
}

func studentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
}
