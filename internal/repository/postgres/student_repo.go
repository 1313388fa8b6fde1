package postgres

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type studentRepository struct {
	db *bun.DB
}

func NewStudentRepository(db *bun.DB) repository.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := r.db.NewInsert().Model(student).Exec(ctx)
	return err
}

func (r *studentRepository) GetByID(ctx context.Context, trainerID, id string) (*domain.Student, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	student := new(domain.Student)
	err := r.db.NewSelect().Model(student).
		Where("id = ?", id).
		Where("trainer_id = ?", trainerID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, trainerID string, f repository.StudentFilter) ([]domain.Student, int, error) {
	students := []domain.Student{}
	q := r.db.NewSelect().Model(&students).
		Where("trainer_id = ?", trainerID).
		OrderExpr("name ASC")
	if !f.IncludeInactive {
		q = q.Where("is_active = TRUE")
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name ILIKE ?", pattern).WhereOr("email ILIKE ?", pattern)
		})
	}

	total, err := paginate(q, f.Page).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepository) Update(ctx context.Context, student *domain.Student) error {
	student.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().Model(student).
		Column("name", "email", "phone", "birth_date", "goal", "notes", "is_active", "updated_at").
		WherePK().
		Where("trainer_id = ?", student.TrainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

func (r *studentRepository) SetActive(ctx context.Context, trainerID, id string, active bool) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.NewUpdate().Model((*domain.Student)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("trainer_id = ?", trainerID).
		Exec(ctx)
	return mustAffect(res, err)
}

func (r *studentRepository) CountActive(ctx context.Context, trainerID string) (int, error) {
	return r.db.NewSelect().Model((*domain.Student)(nil)).
		Where("trainer_id = ?", trainerID).
		Where("is_active = TRUE").
		Count(ctx)
}
