package repository

import (
	"alcyxob/trainer-app/internal/domain"
	"context"
	"time"
)

var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// StudentFilter narrows a student listing.
type StudentFilter struct {
	Search          string // case-insensitive substring of name or email
	IncludeInactive bool
	Page            domain.Page
}

// PlanFilter narrows a plan listing.
type PlanFilter struct {
	StudentID       string
	Search          string
	IncludeInactive bool
	Page            domain.Page
}

// PaymentFilter narrows a payment listing. From/To bound the due date, To is exclusive.
type PaymentFilter struct {
	StudentID string
	PlanID    string
	Status    domain.PaymentStatus
	From      *time.Time
	To        *time.Time
	Page      domain.Page
}

// TrainerRepository stores trainer accounts.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.Trainer) error
	GetByID(ctx context.Context, id string) (*domain.Trainer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Trainer, error)
	Update(ctx context.Context, trainer *domain.Trainer) error
}

// StudentRepository stores students. Every method is scoped to a trainer.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, trainerID, id string) (*domain.Student, error)
	List(ctx context.Context, trainerID string, filter StudentFilter) ([]domain.Student, int, error)
	Update(ctx context.Context, student *domain.Student) error
	SetActive(ctx context.Context, trainerID, id string, active bool) error
	CountActive(ctx context.Context, trainerID string) (int, error)
}

// PlanRepository stores plan headers.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, trainerID, id string) (*domain.Plan, error)
	GetByPublicToken(ctx context.Context, token string) (*domain.Plan, error)
	List(ctx context.Context, trainerID string, filter PlanFilter) ([]domain.Plan, int, error)
	Update(ctx context.Context, plan *domain.Plan) error
	SetActive(ctx context.Context, trainerID, id string, active bool) error
	// Delete permanently removes the plan with its days, blocks and items.
	Delete(ctx context.Context, trainerID, id string) error
	// SetPublicToken stores token (nil revokes) and the time it was shared.
	SetPublicToken(ctx context.Context, trainerID, id string, token *string, sharedAt *time.Time) error
	CountActive(ctx context.Context, trainerID string) (int, error)
	CountShared(ctx context.Context, trainerID string) (int, error)
}

// PlanDayRepository stores plan days.
type PlanDayRepository interface {
	Create(ctx context.Context, day *domain.PlanDay) error
	GetByID(ctx context.Context, trainerID, id string) (*domain.PlanDay, error)
	ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanDay, error)
	Update(ctx context.Context, day *domain.PlanDay) error
	// Delete removes the day together with its blocks and items.
	Delete(ctx context.Context, trainerID, id string) error
}

// PlanBlockRepository stores blocks within plan days.
type PlanBlockRepository interface {
	Create(ctx context.Context, block *domain.PlanBlock) error
	GetByID(ctx context.Context, trainerID, id string) (*domain.PlanBlock, error)
	ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanBlock, error)
	ListByDay(ctx context.Context, trainerID, dayID string) ([]domain.PlanBlock, error)
	Update(ctx context.Context, block *domain.PlanBlock) error
	// Delete removes the block together with its items.
	Delete(ctx context.Context, trainerID, id string) error
}

// PlanItemRepository stores exercises within blocks.
type PlanItemRepository interface {
	Create(ctx context.Context, item *domain.PlanItem) error
	GetByID(ctx context.Context, trainerID, id string) (*domain.PlanItem, error)
	ListByPlan(ctx context.Context, trainerID, planID string) ([]domain.PlanItem, error)
	ListByBlock(ctx context.Context, trainerID, blockID string) ([]domain.PlanItem, error)
	Update(ctx context.Context, item *domain.PlanItem) error
	Delete(ctx context.Context, trainerID, id string) error
}

// PaymentRepository stores payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, trainerID, id string) (*domain.Payment, error)
	List(ctx context.Context, trainerID string, filter PaymentFilter) ([]domain.Payment, int, error)
	Update(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, trainerID, id string) error
	// Stats sums payments paid in [from, to) and all pending payments, overdue relative to now.
	Stats(ctx context.Context, trainerID string, from, to, now time.Time) (domain.PaymentStats, error)
	// Recent returns the most recently updated payments.
	Recent(ctx context.Context, trainerID string, limit int) ([]domain.Payment, error)
}

// Repositories bundles every repository of one storage backend.
type Repositories struct {
	Trainers TrainerRepository
	Students StudentRepository
	Plans    PlanRepository
	Days     PlanDayRepository
	Blocks   PlanBlockRepository
	Items    PlanItemRepository
	Payments PaymentRepository
}
