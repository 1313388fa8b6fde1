package postgres

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type planDayRepository struct {
	db *bun.DB
}

func NewPlanDayRepository(db *bun.DB) repository.PlanDayRepository {
	return &planDayRepository{db: db}
}

func (r *planDayRepository) Create(ctx context.Context, day *domain.PlanDay) error {
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now
	_, err := r.db.NewInsert().Model(day).Exec(ctx)
	return err
}

func (r *planDayRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.PlanDay, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	day := new(domain.PlanDay)
	err := r.db.NewSelect().Model(day).Where("id = ?", id).Where("trainer_id = ?", trainerID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return day, nil
}

func (r *planDayRepository) ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanDay, error) {
	days := []domain.PlanDay{}
	err := r.db.NewSelect().Model(&days).
		Where("trainer_id = ?", trainerID).
		Where("plan_id = ?", planID).
		OrderExpr("position ASC, created_at ASC").
		Scan(ctx)
	return days, err
}

func (r *planDayRepository) Update(ctx context.Context, day *domain.PlanDay) error {
	day.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().Model(day).
		Column("title", "position", "weekday", "notes", "completed_at", "updated_at").
		WherePK().
		Where("trainer_id = ?", day.TrainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

// Delete relies on ON DELETE CASCADE for blocks and items, but clears them explicitly inside the
// same transaction so tables created without the constraints behave the same.
func (r *planDayRepository) Delete(ctx context.Context, trainerID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*domain.PlanItem)(nil)).
			Where("day_id = ?", id).Where("trainer_id = ?", trainerID).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*domain.PlanBlock)(nil)).
			Where("day_id = ?", id).Where("trainer_id = ?", trainerID).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*domain.PlanDay)(nil)).
			Where("id = ?", id).Where("trainer_id = ?", trainerID).Exec(ctx)
		return mustAffect(res, err)
	})
}

type planBlockRepository struct {
	db *bun.DB
}

func NewPlanBlockRepository(db *bun.DB) repository.PlanBlockRepository {
	return &planBlockRepository{db: db}
}

func (r *planBlockRepository) Create(ctx context.Context, block *domain.PlanBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	block.CreatedAt = now
	block.UpdatedAt = now
	_, err := r.db.NewInsert().Model(block).Exec(ctx)
	return err
}

func (r *planBlockRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.PlanBlock, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	block := new(domain.PlanBlock)
	err := r.db.NewSelect().Model(block).Where("id = ?", id).Where("trainer_id = ?", trainerID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return block, nil
}

func (r *planBlockRepository) ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanBlock, error) {
	return r.list(ctx, trainerID, "plan_id", planID)
}

func (r *planBlockRepository) ListByDay(ctx context.Context, trainerID, dayID string) ([]domain.PlanBlock, error) {
	return r.list(ctx, trainerID, "day_id", dayID)
}

func (r *planBlockRepository) list(ctx context.Context, trainerID, column, value string) ([]domain.PlanBlock, error) {
	blocks := []domain.PlanBlock{}
	err := r.db.NewSelect().Model(&blocks).
		Where("trainer_id = ?", trainerID).
		Where("? = ?", bun.Ident(column), value).
		OrderExpr("position ASC, created_at ASC").
		Scan(ctx)
	return blocks, err
}

func (r *planBlockRepository) Update(ctx context.Context, block *domain.PlanBlock) error {
	block.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().Model(block).
		Column("title", "kind", "position", "notes", "updated_at").
		WherePK().
		Where("trainer_id = ?", block.TrainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

func (r *planBlockRepository) Delete(ctx context.Context, trainerID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*domain.PlanItem)(nil)).
			Where("block_id = ?", id).Where("trainer_id = ?", trainerID).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*domain.PlanBlock)(nil)).
			Where("id = ?", id).Where("trainer_id = ?", trainerID).Exec(ctx)
		return mustAffect(res, err)
	})
}

type planItemRepository struct {
	db *bun.DB
}

func NewPlanItemRepository(db *bun.DB) repository.PlanItemRepository {
	return &planItemRepository{db: db}
}

func (r *planItemRepository) Create(ctx context.Context, item *domain.PlanItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := r.db.NewInsert().Model(item).Exec(ctx)
	return err
}

func (r *planItemRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.PlanItem, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	item := new(domain.PlanItem)
	err := r.db.NewSelect().Model(item).Where("id = ?", id).Where("trainer_id = ?", trainerID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (r *planItemRepository) ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanItem, error) {
	return r.list(ctx, trainerID, "plan_id", planID)
}

func (r *planItemRepository) ListByBlock(ctx context.Context, trainerID, blockID string) ([]domain.PlanItem, error) {
	return r.list(ctx, trainerID, "block_id", blockID)
}

func (r *planItemRepository) list(ctx context.Context, trainerID, column, value string) ([]domain.PlanItem, error) {
	items := []domain.PlanItem{}
	err := r.db.NewSelect().Model(&items).
		Where("trainer_id = ?", trainerID).
		Where("? = ?", bun.Ident(column), value).
		OrderExpr("position ASC, created_at ASC").
		Scan(ctx)
	return items, err
}

func (r *planItemRepository) Update(ctx context.Context, item *domain.PlanItem) error {
	item.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().Model(item).
		Column("exercise", "sets", "reps", "load", "rest", "tempo", "duration", "video_url", "notes", "position", "updated_at").
		WherePK().
		Where("trainer_id = ?", item.TrainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

func (r *planItemRepository) Delete(ctx context.Context, trainerID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.NewDelete().Model((*domain.PlanItem)(nil)).
		Where("id = ?", id).
		Where("trainer_id = ?", trainerID).
		Exec(ctx)
	return mustAffect(res, err)
}
