package postgres

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type trainerRepository struct {
	db *bun.DB
}

func NewTrainerRepository(db *bun.DB) repository.TrainerRepository {
	return &trainerRepository{db: db}
}

func (r *trainerRepository) Create(ctx context.Context, trainer *domain.Trainer) error {
	if trainer.ID == "" {
		trainer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(trainer).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *trainerRepository) GetByID(ctx context.Context, id string) (*domain.Trainer, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	trainer := new(domain.Trainer)
	err := r.db.NewSelect().Model(trainer).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return trainer, nil
}

func (r *trainerRepository) GetByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	trainer := new(domain.Trainer)
	err := r.db.NewSelect().Model(trainer).Where("email = ?", email).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return trainer, nil
}

func (r *trainerRepository) Update(ctx context.Context, trainer *domain.Trainer) error {
	trainer.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().Model(trainer).
		Column("name", "password_hash", "phone", "business_name", "bio", "avatar_key", "currency", "is_active", "updated_at").
		WherePK().
		Exec(ctx)
	return mustAffect(res, err)
}
