package memory

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"time"
)

type planDayRepository struct {
	s *Store
}

func dayPos(d *domain.PlanDay) int               { return d.Position }
func dayCreated(d *domain.PlanDay) time.Time     { return d.CreatedAt }
func blockPos(b *domain.PlanBlock) int           { return b.Position }
func blockCreated(b *domain.PlanBlock) time.Time { return b.CreatedAt }
func itemPos(i *domain.PlanItem) int             { return i.Position }
func itemCreated(i *domain.PlanItem) time.Time   { return i.CreatedAt }

func (r *planDayRepository) Create(_ context.Context, day *domain.PlanDay) error {
	day.ID = newID(day.ID)
	day.CreatedAt = now()
	day.UpdatedAt = day.CreatedAt
	r.s.days.put(day.ID, *day)
	return nil
}

func (r *planDayRepository) GetByID(_ context.Context, trainerID, id string) (*domain.PlanDay, error) {
	return r.s.days.get(id, func(d *domain.PlanDay) bool { return d.TrainerID == trainerID })
}

func (r *planDayRepository) ListByPlan(_ context.Context, trainerID, planID string) ([]domain.PlanDay, error) {
	rows := r.s.days.filter(func(d *domain.PlanDay) bool { return d.TrainerID == trainerID && d.PlanID == planID })
	sortByPosition(rows, dayPos, dayCreated)
	return rows, nil
}

func (r *planDayRepository) Update(_ context.Context, day *domain.PlanDay) error {
	day.UpdatedAt = now()
	visible := func(d *domain.PlanDay) bool { return d.TrainerID == day.TrainerID && d.PlanID == day.PlanID }
	return r.s.days.modify(day.ID, visible, func(d *domain.PlanDay) {
		created := d.CreatedAt
		*d = *day
		d.CreatedAt = created
	})
}

func (r *planDayRepository) Delete(_ context.Context, trainerID, id string) error {
	n := r.s.days.deleteWhere(func(d *domain.PlanDay) bool { return d.ID == id && d.TrainerID == trainerID })
	if n == 0 {
		return repository.ErrNotFound
	}
	r.s.blocks.deleteWhere(func(b *domain.PlanBlock) bool { return b.DayID == id })
	r.s.items.deleteWhere(func(i *domain.PlanItem) bool { return i.DayID == id })
	return nil
}

type planBlockRepository struct {
	s *Store
}

func (r *planBlockRepository) Create(_ context.Context, block *domain.PlanBlock) error {
	block.ID = newID(block.ID)
	block.CreatedAt = now()
	block.UpdatedAt = block.CreatedAt
	r.s.blocks.put(block.ID, *block)
	return nil
}

func (r *planBlockRepository) GetByID(_ context.Context, trainerID, id string) (*domain.PlanBlock, error) {
	return r.s.blocks.get(id, func(b *domain.PlanBlock) bool { return b.TrainerID == trainerID })
}

func (r *planBlockRepository) ListByPlan(_ context.Context, trainerID, planID string) ([]domain.PlanBlock, error) {
	rows := r.s.blocks.filter(func(b *domain.PlanBlock) bool { return b.TrainerID == trainerID && b.PlanID == planID })
	sortByPosition(rows, blockPos, blockCreated)
	return rows, nil
}

func (r *planBlockRepository) ListByDay(_ context.Context, trainerID, dayID string) ([]domain.PlanBlock, error) {
	rows := r.s.blocks.filter(func(b *domain.PlanBlock) bool { return b.TrainerID == trainerID && b.DayID == dayID })
	sortByPosition(rows, blockPos, blockCreated)
	return rows, nil
}

func (r *planBlockRepository) Update(_ context.Context, block *domain.PlanBlock) error {
	block.UpdatedAt = now()
	visible := func(b *domain.PlanBlock) bool { return b.TrainerID == block.TrainerID && b.DayID == block.DayID }
	return r.s.blocks.modify(block.ID, visible, func(b *domain.PlanBlock) {
		created := b.CreatedAt
		*b = *block
		b.CreatedAt = created
	})
}

func (r *planBlockRepository) Delete(_ context.Context, trainerID, id string) error {
	n := r.s.blocks.deleteWhere(func(b *domain.PlanBlock) bool { return b.ID == id && b.TrainerID == trainerID })
	if n == 0 {
		return repository.ErrNotFound
	}
	r.s.items.deleteWhere(func(i *domain.PlanItem) bool { return i.BlockID == id })
	return nil
}

type planItemRepository struct {
	s *Store
}

func (r *planItemRepository) Create(_ context.Context, item *domain.PlanItem) error {
	item.ID = newID(item.ID)
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt
	r.s.items.put(item.ID, *item)
	return nil
}

func (r *planItemRepository) GetByID(_ context.Context, trainerID, id string) (*domain.PlanItem, error) {
	return r.s.items.get(id, func(i *domain.PlanItem) bool { return i.TrainerID == trainerID })
}

func (r *planItemRepository) ListByPlan(_ context.Context, trainerID, planID string) ([]domain.PlanItem, error) {
	rows := r.s.items.filter(func(i *domain.PlanItem) bool { return i.TrainerID == trainerID && i.PlanID == planID })
	sortByPosition(rows, itemPos, itemCreated)
	return rows, nil
}

func (r *planItemRepository) ListByBlock(_ context.Context, trainerID, blockID string) ([]domain.PlanItem, error) {
	rows := r.s.items.filter(func(i *domain.PlanItem) bool { return i.TrainerID == trainerID && i.BlockID == blockID })
	sortByPosition(rows, itemPos, itemCreated)
	return rows, nil
}

func (r *planItemRepository) Update(_ context.Context, item *domain.PlanItem) error {
	item.UpdatedAt = now()
	visible := func(i *domain.PlanItem) bool { return i.TrainerID == item.TrainerID && i.BlockID == item.BlockID }
	return r.s.items.modify(item.ID, visible, func(i *domain.PlanItem) {
		created := i.CreatedAt
		*i = *item
		i.CreatedAt = created
	})
}

func (r *planItemRepository) Delete(_ context.Context, trainerID, id string) error {
	n := r.s.items.deleteWhere(func(i *domain.PlanItem) bool { return i.ID == id && i.TrainerID == trainerID })
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
