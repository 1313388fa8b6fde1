package postgres

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type paymentRepository struct {
	db *bun.DB
}

func NewPaymentRepository(db *bun.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	_, err := r.db.NewInsert().Model(payment).Exec(ctx)
	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.Payment, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	payment := new(domain.Payment)
	err := r.db.NewSelect().Model(payment).Where("id = ?", id).Where("trainer_id = ?", trainerID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return payment, nil
}

func (r *paymentRepository) List(ctx context.Context, trainerID string, f repository.PaymentFilter) ([]domain.Payment, int, error) {
	payments := []domain.Payment{}
	q := r.db.NewSelect().Model(&payments).
		Where("trainer_id = ?", trainerID).
		OrderExpr("due_date DESC, created_at DESC")
	if f.StudentID != "" {
		if !validID(f.StudentID) {
			return payments, 0, nil
		}
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.PlanID != "" {
		if !validID(f.PlanID) {
			return payments, 0, nil
		}
		q = q.Where("plan_id = ?", f.PlanID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("due_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("due_date < ?", f.To.UTC())
	}

	total, err := paginate(q, f.Page).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().Model(payment).
		Column("student_id", "plan_id", "amount_cents", "currency", "status", "method", "description", "due_date", "paid_at", "updated_at").
		WherePK().
		Where("trainer_id = ?", payment.TrainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

func (r *paymentRepository) Delete(ctx context.Context, trainerID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.NewDelete().Model((*domain.Payment)(nil)).
		Where("id = ?", id).
		Where("trainer_id = ?", trainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

// Stats computes every KPI in one pass with aggregate FILTER clauses.
func (r *paymentRepository) Stats(ctx context.Context, trainerID string, from, to, now time.Time) (domain.PaymentStats, error) {
	var row struct {
		PaidAmount    int64 `bun:"paid_amount"`
		PaidCount     int   `bun:"paid_count"`
		PendingAmount int64 `bun:"pending_amount"`
		PendingCount  int   `bun:"pending_count"`
		OverdueAmount int64 `bun:"overdue_amount"`
		OverdueCount  int   `bun:"overdue_count"`
	}
	paid := bun.SafeQuery("status = ? AND paid_at >= ? AND paid_at < ?", domain.PaymentPaid, from.UTC(), to.UTC())
	pending := bun.SafeQuery("status = ?", domain.PaymentPending)
	overdue := bun.SafeQuery("status = ? AND due_date < ?", domain.PaymentPending, now.UTC())

	err := r.db.NewSelect().Model((*domain.Payment)(nil)).
		ColumnExpr("COALESCE(SUM(amount_cents) FILTER (WHERE ?), 0) AS paid_amount", paid).
		ColumnExpr("COUNT(*) FILTER (WHERE ?) AS paid_count", paid).
		ColumnExpr("COALESCE(SUM(amount_cents) FILTER (WHERE ?), 0) AS pending_amount", pending).
		ColumnExpr("COUNT(*) FILTER (WHERE ?) AS pending_count", pending).
		ColumnExpr("COALESCE(SUM(amount_cents) FILTER (WHERE ?), 0) AS overdue_amount", overdue).
		ColumnExpr("COUNT(*) FILTER (WHERE ?) AS overdue_count", overdue).
		Where("trainer_id = ?", trainerID).
		Scan(ctx, &row)
	if err != nil {
		return domain.PaymentStats{}, err
	}
	return domain.PaymentStats(row), nil
}

func (r *paymentRepository) Recent(ctx context.Context, trainerID string, limit int) ([]domain.Payment, error) {
	payments := []domain.Payment{}
	err := r.db.NewSelect().Model(&payments).
		Where("trainer_id = ?", trainerID).
		OrderExpr("updated_at DESC").
		Limit(limit).
		Scan(ctx)
	return payments, err
}
