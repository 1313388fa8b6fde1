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

const paymentCollectionName = "payments"

type mongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a new Payment repository.
func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection(paymentCollectionName),
	}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.TrainerID == "" || payment.StudentID == "" {
		return errors.New("payment requires trainerId and studentId")
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, payment)
	return err
}

func (r *mongoPaymentRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "trainerId": trainerID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// List returns payments ordered by due date, latest first.
func (r *mongoPaymentRepository) List(ctx context.Context, trainerID string, f repository.PaymentFilter) ([]domain.Payment, int, error) {
	filter := bson.M{"trainerId": trainerID}
	if f.StudentID != "" {
		filter["studentId"] = f.StudentID
	}
	if f.PlanID != "" {
		filter["planId"] = f.PlanID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.From != nil || f.To != nil {
		due := bson.M{}
		if f.From != nil {
			due["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			due["$lt"] = f.To.UTC()
		}
		filter["dueDate"] = due
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	sort := bson.D{{Key: "dueDate", Value: -1}, {Key: "createdAt", Value: -1}}
	opts := pageOptions(options.Find().SetSort(sort), f.Page.Offset(), f.Page.Size)
	payments, err := findAll[domain.Payment](ctx, r.collection, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return payments, int(total), nil
}

func (r *mongoPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"studentId":   payment.StudentID,
			"planId":      payment.PlanID,
			"amountCents": payment.AmountCents,
			"currency":    payment.Currency,
			"status":      payment.Status,
			"method":      payment.Method,
			"description": payment.Description,
			"dueDate":     payment.DueDate,
			"paidAt":      payment.PaidAt,
			"updatedAt":   payment.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": payment.ID, "trainerId": payment.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPaymentRepository) Delete(ctx context.Context, trainerID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Stats aggregates the trainer's payments server-side in a single $group stage.
func (r *mongoPaymentRepository) Stats(ctx context.Context, trainerID string, from, to, now time.Time) (domain.PaymentStats, error) {
	paidInWindow := bson.M{"$and": bson.A{
		bson.M{"$eq": bson.A{"$status", domain.PaymentPaid}},
		bson.M{"$gte": bson.A{"$paidAt", from.UTC()}},
		bson.M{"$lt": bson.A{"$paidAt", to.UTC()}},
	}}
	pending := bson.M{"$eq": bson.A{"$status", domain.PaymentPending}}
	overdue := bson.M{"$and": bson.A{pending, bson.M{"$lt": bson.A{"$dueDate", now.UTC()}}}}

	sumIf := func(cond bson.M, value interface{}) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{cond, value, 0}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"trainerId": trainerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"paidAmount":    sumIf(paidInWindow, "$amountCents"),
			"paidCount":     sumIf(paidInWindow, 1),
			"pendingAmount": sumIf(pending, "$amountCents"),
			"pendingCount":  sumIf(pending, 1),
			"overdueAmount": sumIf(overdue, "$amountCents"),
			"overdueCount":  sumIf(overdue, 1),
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.PaymentStats{}, err
	}
	defer cursor.Close(ctx)

	var row struct {
		PaidAmount    int64 `bson:"paidAmount"`
		PaidCount     int   `bson:"paidCount"`
		PendingAmount int64 `bson:"pendingAmount"`
		PendingCount  int   `bson:"pendingCount"`
		OverdueAmount int64 `bson:"overdueAmount"`
		OverdueCount  int   `bson:"overdueCount"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return domain.PaymentStats{}, err
		}
	}
	if err := cursor.Err(); err != nil {
		return domain.PaymentStats{}, err
	}
	return domain.PaymentStats(row), nil
}

func (r *mongoPaymentRepository) Recent(ctx context.Context, trainerID string, limit int) ([]domain.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}).SetLimit(int64(limit))
	return findAll[domain.Payment](ctx, r.collection, bson.M{"trainerId": trainerID}, opts)
}

func paymentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "dueDate", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
}
