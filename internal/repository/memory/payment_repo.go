package memory

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"sort"
	"time"
)

type paymentRepository struct {
	s *Store
}

func paymentOf(trainerID string) func(*domain.Payment) bool {
	return func(p *domain.Payment) bool { return p.TrainerID == trainerID }
}

func (r *paymentRepository) Create(_ context.Context, payment *domain.Payment) error {
	payment.ID = newID(payment.ID)
	payment.CreatedAt = now()
	payment.UpdatedAt = payment.CreatedAt
	r.s.payments.put(payment.ID, *payment)
	return nil
}

func (r *paymentRepository) GetByID(_ context.Context, trainerID, id string) (*domain.Payment, error) {
	return r.s.payments.get(id, paymentOf(trainerID))
}

func (r *paymentRepository) List(_ context.Context, trainerID string, f repository.PaymentFilter) ([]domain.Payment, int, error) {
	rows := r.s.payments.filter(func(p *domain.Payment) bool {
		switch {
		case p.TrainerID != trainerID:
			return false
		case f.StudentID != "" && p.StudentID != f.StudentID:
			return false
		case f.PlanID != "" && (p.PlanID == nil || *p.PlanID != f.PlanID):
			return false
		case f.Status != "" && p.Status != f.Status:
			return false
		case f.From != nil && p.DueDate.Before(*f.From):
			return false
		case f.To != nil && !p.DueDate.Before(*f.To):
			return false
		}
		return true
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].DueDate.Equal(rows[j].DueDate) {
			return rows[i].DueDate.After(rows[j].DueDate)
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return window(rows, f.Page), len(rows), nil
}

func (r *paymentRepository) Update(_ context.Context, payment *domain.Payment) error {
	payment.UpdatedAt = now()
	return r.s.payments.modify(payment.ID, paymentOf(payment.TrainerID), func(p *domain.Payment) {
		created := p.CreatedAt
		*p = *payment
		p.CreatedAt = created
	})
}

func (r *paymentRepository) Delete(_ context.Context, trainerID, id string) error {
	n := r.s.payments.deleteWhere(func(p *domain.Payment) bool { return p.ID == id && p.TrainerID == trainerID })
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) Stats(_ context.Context, trainerID string, from, to, now time.Time) (domain.PaymentStats, error) {
	var stats domain.PaymentStats
	for _, p := range r.s.payments.filter(paymentOf(trainerID)) {
		stats.Add(&p, from, to, now)
	}
	return stats, nil
}

func (r *paymentRepository) Recent(_ context.Context, trainerID string, limit int) ([]domain.Payment, error) {
	rows := r.s.payments.filter(paymentOf(trainerID))
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].UpdatedAt.After(rows[j].UpdatedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
