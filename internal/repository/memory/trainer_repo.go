package memory

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
)

type trainerRepository struct {
	s *Store
}

func anyTrainer(*domain.Trainer) bool { return true }

func (r *trainerRepository) Create(_ context.Context, trainer *domain.Trainer) error {
	t := r.s.trainers
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.rows {
		if existing.Email == trainer.Email {
			return repository.ErrConflict
		}
	}
	trainer.ID = newID(trainer.ID)
	trainer.CreatedAt = now()
	trainer.UpdatedAt = trainer.CreatedAt
	t.rows[trainer.ID] = *trainer
	return nil
}

func (r *trainerRepository) GetByID(_ context.Context, id string) (*domain.Trainer, error) {
	return r.s.trainers.get(id, anyTrainer)
}

func (r *trainerRepository) GetByEmail(_ context.Context, email string) (*domain.Trainer, error) {
	found := r.s.trainers.filter(func(t *domain.Trainer) bool { return t.Email == email })
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *trainerRepository) Update(_ context.Context, trainer *domain.Trainer) error {
	trainer.UpdatedAt = now()
	return r.s.trainers.modify(trainer.ID, anyTrainer, func(t *domain.Trainer) {
		created, email := t.CreatedAt, t.Email
		*t = *trainer
		t.CreatedAt, t.Email = created, email
	})
}
