package memory

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"sort"
	"time"
)

type planRepository struct {
	s *Store
}

func planOf(trainerID string) func(*domain.Plan) bool {
	return func(p *domain.Plan) bool { return p.TrainerID == trainerID }
}

func (r *planRepository) Create(_ context.Context, plan *domain.Plan) error {
	plan.ID = newID(plan.ID)
	plan.CreatedAt = now()
	plan.UpdatedAt = plan.CreatedAt
	r.s.plans.put(plan.ID, *plan)
	return nil
}

func (r *planRepository) GetByID(_ context.Context, trainerID, id string) (*domain.Plan, error) {
	return r.s.plans.get(id, planOf(trainerID))
}

func (r *planRepository) GetByPublicToken(_ context.Context, token string) (*domain.Plan, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	found := r.s.plans.filter(func(p *domain.Plan) bool { return p.PublicToken != nil && *p.PublicToken == token })
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *planRepository) List(_ context.Context, trainerID string, f repository.PlanFilter) ([]domain.Plan, int, error) {
	rows := r.s.plans.filter(func(p *domain.Plan) bool {
		if p.TrainerID != trainerID || (!f.IncludeInactive && !p.IsActive) {
			return false
		}
		if f.StudentID != "" && (p.StudentID == nil || *p.StudentID != f.StudentID) {
			return false
		}
		return f.Search == "" || containsFold(p.Name, f.Search)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return window(rows, f.Page), len(rows), nil
}

func (r *planRepository) Update(_ context.Context, plan *domain.Plan) error {
	plan.UpdatedAt = now()
	return r.s.plans.modify(plan.ID, planOf(plan.TrainerID), func(p *domain.Plan) {
		created, token, sharedAt := p.CreatedAt, p.PublicToken, p.SharedAt
		*p = *plan
		p.CreatedAt, p.PublicToken, p.SharedAt = created, token, sharedAt
	})
}

func (r *planRepository) SetActive(_ context.Context, trainerID, id string, active bool) error {
	return r.s.plans.modify(id, planOf(trainerID), func(p *domain.Plan) {
		p.IsActive = active
		p.UpdatedAt = now()
	})
}

func (r *planRepository) Delete(_ context.Context, trainerID, id string) error {
	n := r.s.plans.deleteWhere(func(p *domain.Plan) bool { return p.ID == id && p.TrainerID == trainerID })
	if n == 0 {
		return repository.ErrNotFound
	}
	r.s.days.deleteWhere(func(d *domain.PlanDay) bool { return d.PlanID == id })
	r.s.blocks.deleteWhere(func(b *domain.PlanBlock) bool { return b.PlanID == id })
	r.s.items.deleteWhere(func(i *domain.PlanItem) bool { return i.PlanID == id })
	return nil
}

func (r *planRepository) SetPublicToken(_ context.Context, trainerID, id string, token *string, sharedAt *time.Time) error {
	t := r.s.plans
	t.mu.Lock()
	defer t.mu.Unlock()
	plan, ok := t.rows[id]
	if !ok || plan.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	if token != nil {
		for otherID, other := range t.rows {
			if otherID != id && other.PublicToken != nil && *other.PublicToken == *token {
				return repository.ErrConflict
			}
		}
		v := *token
		token = &v
	}
	plan.PublicToken = token
	plan.SharedAt = sharedAt
	plan.UpdatedAt = now()
	t.rows[id] = plan
	return nil
}

func (r *planRepository) CountActive(_ context.Context, trainerID string) (int, error) {
	return len(r.s.plans.filter(func(p *domain.Plan) bool { return p.TrainerID == trainerID && p.IsActive })), nil
}

func (r *planRepository) CountShared(_ context.Context, trainerID string) (int, error) {
	rows := r.s.plans.filter(func(p *domain.Plan) bool {
		return p.TrainerID == trainerID && p.IsActive && p.IsShared()
	})
	return len(rows), nil
}
