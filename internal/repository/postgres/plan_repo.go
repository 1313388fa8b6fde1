package postgres

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type planRepository struct {
	db *bun.DB
}

func NewPlanRepository(db *bun.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := r.db.NewInsert().Model(plan).Exec(ctx)
	return err
}

func (r *planRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.Plan, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	plan := new(domain.Plan)
	err := r.db.NewSelect().Model(plan).
		Where("id = ?", id).
		Where("trainer_id = ?", trainerID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return plan, nil
}

func (r *planRepository) GetByPublicToken(ctx context.Context, token string) (*domain.Plan, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	plan := new(domain.Plan)
	if err := r.db.NewSelect().Model(plan).Where("public_token = ?", token).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return plan, nil
}

func (r *planRepository) List(ctx context.Context, trainerID string, f repository.PlanFilter) ([]domain.Plan, int, error) {
	plans := []domain.Plan{}
	q := r.db.NewSelect().Model(&plans).
		Where("trainer_id = ?", trainerID).
		OrderExpr("created_at DESC")
	if !f.IncludeInactive {
		q = q.Where("is_active = TRUE")
	}
	if f.StudentID != "" {
		if !validID(f.StudentID) {
			return plans, 0, nil
		}
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.Search != "" {
		q = q.Where("name ILIKE ?", likePattern(f.Search))
	}

	total, err := paginate(q, f.Page).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().Model(plan).
		Column("student_id", "name", "description", "goal", "start_date", "end_date", "is_active", "updated_at").
		WherePK().
		Where("trainer_id = ?", plan.TrainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

func (r *planRepository) SetActive(ctx context.Context, trainerID, id string, active bool) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.NewUpdate().Model((*domain.Plan)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("trainer_id = ?", trainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

func (r *planRepository) Delete(ctx context.Context, trainerID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{(*domain.PlanItem)(nil), (*domain.PlanBlock)(nil), (*domain.PlanDay)(nil)} {
			if _, err := tx.NewDelete().Model(model).
				Where("plan_id = ?", id).Where("trainer_id = ?", trainerID).Exec(ctx); err != nil {
				return err
			}
		}
		res, err := tx.NewDelete().Model((*domain.Plan)(nil)).
			Where("id = ?", id).Where("trainer_id = ?", trainerID).Exec(ctx)
		return mustAffect(res, err)
	})
}

func (r *planRepository) SetPublicToken(ctx context.Context, trainerID, id string, token *string, sharedAt *time.Time) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.NewUpdate().Model((*domain.Plan)(nil)).
		Set("public_token = ?", token).
		Set("shared_at = ?", sharedAt).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("trainer_id = ?", trainerID).
		Exec(ctx)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return mustAffect(res, err)
}

func (r *planRepository) CountActive(ctx context.Context, trainerID string) (int, error) {
	return r.db.NewSelect().Model((*domain.Plan)(nil)).
		Where("trainer_id = ?", trainerID).
		Where("is_active = TRUE").
		Count(ctx)
}

func (r *planRepository) CountShared(ctx context.Context, trainerID string) (int, error) {
	return r.db.NewSelect().Model((*domain.Plan)(nil)).
		Where("trainer_id = ?", trainerID).
		Where("is_active = TRUE").
		Where("public_token IS NOT NULL").
		Count(ctx)
}
