package service

import (
	"alcyxob/trainer-app/internal/cache"
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrPlanInactive = errors.New("plan is inactive")

// PlanInput replaces the editable fields of a plan.
type PlanInput struct {
	StudentID   *string
	Name        string
	Description string
	Goal        string
	StartDate   *time.Time
	EndDate     *time.Time
}

// DayInput describes a plan day. A nil Position appends the day.
type DayInput struct {
	Title    string
	Position *int
	Weekday  *int
	Notes    string
}

type BlockInput struct {
	Title    string
	Kind     string
	Position *int
	Notes    string
}

type ItemInput struct {
	Exercise string
	Sets     *int
	Reps     string
	Load     string
	Rest     string
	Tempo    string
	Duration string
	VideoURL string
	Notes    string
	Position *int
}

// PlanSummary is a plan header with its progress, as shown in listings.
type PlanSummary struct {
	domain.Plan
	Progress int
}

type PlanService interface {
	Create(ctx context.Context, trainerID string, in PlanInput) (*domain.Plan, error)
	Get(ctx context.Context, trainerID, id string) (*domain.PlanTree, error)
	List(ctx context.Context, trainerID string, filter repository.PlanFilter) ([]PlanSummary, int, error)
	Update(ctx context.Context, trainerID, id string, in PlanInput) (*domain.Plan, error)
	Deactivate(ctx context.Context, trainerID, id string) error
	Restore(ctx context.Context, trainerID, id string) (*domain.Plan, error)
	// Duplicate deep-copies a plan's days, blocks and items into a new, unshared plan.
	Duplicate(ctx context.Context, trainerID, id string, studentID *string) (*domain.PlanTree, error)

	AddDay(ctx context.Context, trainerID, planID string, in DayInput) (*domain.PlanDay, error)
	UpdateDay(ctx context.Context, trainerID, planID, dayID string, in DayInput) (*domain.PlanDay, error)
	DeleteDay(ctx context.Context, trainerID, planID, dayID string) error
	SetDayCompleted(ctx context.Context, trainerID, planID, dayID string, completed bool) (*domain.PlanDay, error)

	AddBlock(ctx context.Context, trainerID, planID, dayID string, in BlockInput) (*domain.PlanBlock, error)
	UpdateBlock(ctx context.Context, trainerID, planID, blockID string, in BlockInput) (*domain.PlanBlock, error)
	DeleteBlock(ctx context.Context, trainerID, planID, blockID string) error

	AddItem(ctx context.Context, trainerID, planID, blockID string, in ItemInput) (*domain.PlanItem, error)
	UpdateItem(ctx context.Context, trainerID, planID, itemID string, in ItemInput) (*domain.PlanItem, error)
	DeleteItem(ctx context.Context, trainerID, planID, itemID string) error
}

type planService struct {
	repos     repository.Repositories
	planCache cache.PlanCache
}

func NewPlanService(repos repository.Repositories, planCache cache.PlanCache) PlanService {
	if planCache == nil {
		planCache = cache.NewNoopPlanCache()
	}
	return &planService{repos: repos, planCache: planCache}
}

// --- helpers ---

func (s *planService) getPlan(ctx context.Context, trainerID, id string) (*domain.Plan, error) {
	plan, err := s.repos.Plans.GetByID(ctx, trainerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// invalidate drops the cached public view of a shared plan after any change to it.
func (s *planService) invalidate(ctx context.Context, plan *domain.Plan) {
	invalidatePublicPlan(ctx, s.planCache, plan)
}

func invalidatePublicPlan(ctx context.Context, planCache cache.PlanCache, plan *domain.Plan) {
	if plan == nil || !plan.IsShared() {
		return
	}
	if err := planCache.Delete(ctx, *plan.PublicToken); err != nil {
		zap.L().Warn("failed to invalidate public plan", zap.String("planID", plan.ID), zap.Error(err))
	}
}

// invalidateSharedPlans drops the cached public view of every plan matching filter, active or not.
func invalidateSharedPlans(ctx context.Context, planRepo repository.PlanRepository, planCache cache.PlanCache, trainerID string, filter repository.PlanFilter) {
	filter.IncludeInactive = true
	filter.Page = domain.Page{}
	plans, _, err := planRepo.List(ctx, trainerID, filter)
	if err != nil {
		zap.L().Warn("failed to list plans for cache invalidation", zap.String("trainerID", trainerID), zap.Error(err))
		return
	}
	for i := range plans {
		invalidatePublicPlan(ctx, planCache, &plans[i])
	}
}

// checkStudent verifies an optional student reference belongs to the trainer.
func (s *planService) checkStudent(ctx context.Context, trainerID string, studentID *string) (*string, error) {
	if studentID == nil || strings.TrimSpace(*studentID) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*studentID)
	if _, err := s.repos.Students.GetByID(ctx, trainerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationError("student %s does not exist", id)
		}
		return nil, err
	}
	return &id, nil
}

func (in *PlanInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Goal = strings.TrimSpace(in.Goal)
	if in.Name == "" {
		return validationError("name is required")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return validationError("end date must not be before start date")
	}
	return nil
}

func loadTree(ctx context.Context, repos repository.Repositories, plan *domain.Plan) (*domain.PlanTree, error) {
	days, err := repos.Days.ListByPlan(ctx, plan.TrainerID, plan.ID)
	if err != nil {
		return nil, err
	}
	blocks, err := repos.Blocks.ListByPlan(ctx, plan.TrainerID, plan.ID)
	if err != nil {
		return nil, err
	}
	items, err := repos.Items.ListByPlan(ctx, plan.TrainerID, plan.ID)
	if err != nil {
		return nil, err
	}
	tree := domain.BuildPlanTree(*plan, days, blocks, items)
	return &tree, nil
}

// nextPosition returns max(positions)+1, or 1 for an empty list.
func nextPosition(positions []int) int {
	next := 1
	for _, p := range positions {
		if p >= next {
			next = p + 1
		}
	}
	return next
}

func validatePosition(p *int) error {
	if p != nil && *p < 0 {
		return validationError("position must not be negative")
	}
	return nil
}

// --- plans ---

func (s *planService) Create(ctx context.Context, trainerID string, in PlanInput) (*domain.Plan, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	studentID, err := s.checkStudent(ctx, trainerID, in.StudentID)
	if err != nil {
		return nil, err
	}
	plan := &domain.Plan{
		TrainerID:   trainerID,
		StudentID:   studentID,
		Name:        in.Name,
		Description: in.Description,
		Goal:        in.Goal,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsActive:    true,
	}
	if err := s.repos.Plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) Get(ctx context.Context, trainerID, id string) (*domain.PlanTree, error) {
	plan, err := s.getPlan(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	return loadTree(ctx, s.repos, plan)
}

func (s *planService) List(ctx context.Context, trainerID string, filter repository.PlanFilter) ([]PlanSummary, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	plans, total, err := s.repos.Plans.List(ctx, trainerID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		days, err := s.repos.Days.ListByPlan(ctx, trainerID, p.ID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, PlanSummary{Plan: p, Progress: domain.PlanProgress(days)})
	}
	return out, total, nil
}

func (s *planService) Update(ctx context.Context, trainerID, id string, in PlanInput) (*domain.Plan, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	plan, err := s.getPlan(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	studentID, err := s.checkStudent(ctx, trainerID, in.StudentID)
	if err != nil {
		return nil, err
	}
	plan.StudentID = studentID
	plan.Name = in.Name
	plan.Description = in.Description
	plan.Goal = in.Goal
	plan.StartDate = in.StartDate
	plan.EndDate = in.EndDate

	if err := s.repos.Plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return plan, nil
}

func (s *planService) setActive(ctx context.Context, trainerID, id string, active bool) (*domain.Plan, error) {
	plan, err := s.getPlan(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Plans.SetActive(ctx, trainerID, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	plan.IsActive = active
	s.invalidate(ctx, plan)
	return plan, nil
}

func (s *planService) Deactivate(ctx context.Context, trainerID, id string) error {
	_, err := s.setActive(ctx, trainerID, id, false)
	return err
}

func (s *planService) Restore(ctx context.Context, trainerID, id string) (*domain.Plan, error) {
	return s.setActive(ctx, trainerID, id, true)
}

func (s *planService) Duplicate(ctx context.Context, trainerID, id string, studentID *string) (*domain.PlanTree, error) {
	source, err := s.Get(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	target := source.Plan.StudentID
	if studentID != nil {
		if target, err = s.checkStudent(ctx, trainerID, studentID); err != nil {
			return nil, err
		}
	}

	plan := &domain.Plan{
		TrainerID:   trainerID,
		StudentID:   target,
		Name:        source.Plan.Name + " (copy)",
		Description: source.Plan.Description,
		Goal:        source.Plan.Goal,
		StartDate:   source.Plan.StartDate,
		EndDate:     source.Plan.EndDate,
		IsActive:    true,
	}
	if err := s.repos.Plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.copyDays(ctx, plan, source.Days); err != nil {
		if derr := s.repos.Plans.Delete(ctx, trainerID, plan.ID); derr != nil {
			zap.L().Error("failed to remove partial plan copy", zap.String("planID", plan.ID), zap.Error(derr))
		}
		return nil, err
	}
	return loadTree(ctx, s.repos, plan)
}

// copyDays recreates days with their blocks and items under plan. Completion is not copied.
func (s *planService) copyDays(ctx context.Context, plan *domain.Plan, days []domain.DayTree) error {
	for _, d := range days {
		day := d.Day
		day.ID, day.PlanID, day.CompletedAt = "", plan.ID, nil
		if err := s.repos.Days.Create(ctx, &day); err != nil {
			return err
		}
		for _, b := range d.Blocks {
			block := b.Block
			block.ID, block.PlanID, block.DayID = "", plan.ID, day.ID
			if err := s.repos.Blocks.Create(ctx, &block); err != nil {
				return err
			}
			for _, it := range b.Items {
				item := it
				item.ID, item.PlanID, item.DayID, item.BlockID = "", plan.ID, day.ID, block.ID
				if err := s.repos.Items.Create(ctx, &item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// --- days ---

func (in *DayInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Title == "" {
		return validationError("title is required")
	}
	if in.Weekday != nil && (*in.Weekday < 1 || *in.Weekday > 7) {
		return validationError("weekday must be between 1 (Monday) and 7 (Sunday)")
	}
	return validatePosition(in.Position)
}

func (s *planService) getDay(ctx context.Context, plan *domain.Plan, dayID string) (*domain.PlanDay, error) {
	day, err := s.repos.Days.GetByID(ctx, plan.TrainerID, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}
	if day.PlanID != plan.ID {
		return nil, ErrDayNotFound
	}
	return day, nil
}

func (s *planService) AddDay(ctx context.Context, trainerID, planID string, in DayInput) (*domain.PlanDay, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	day := &domain.PlanDay{
		PlanID:    plan.ID,
		TrainerID: trainerID,
		Title:     in.Title,
		Weekday:   in.Weekday,
		Notes:     in.Notes,
	}
	if in.Position != nil {
		day.Position = *in.Position
	} else {
		days, err := s.repos.Days.ListByPlan(ctx, trainerID, plan.ID)
		if err != nil {
			return nil, err
		}
		positions := make([]int, len(days))
		for i, d := range days {
			positions[i] = d.Position
		}
		day.Position = nextPosition(positions)
	}
	if err := s.repos.Days.Create(ctx, day); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return day, nil
}

func (s *planService) UpdateDay(ctx context.Context, trainerID, planID, dayID string, in DayInput) (*domain.PlanDay, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	day, err := s.getDay(ctx, plan, dayID)
	if err != nil {
		return nil, err
	}
	day.Title = in.Title
	day.Weekday = in.Weekday
	day.Notes = in.Notes
	if in.Position != nil {
		day.Position = *in.Position
	}
	if err := s.repos.Days.Update(ctx, day); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return day, nil
}

func (s *planService) DeleteDay(ctx context.Context, trainerID, planID, dayID string) error {
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return err
	}
	if _, err := s.getDay(ctx, plan, dayID); err != nil {
		return err
	}
	if err := s.repos.Days.Delete(ctx, trainerID, dayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDayNotFound
		}
		return err
	}
	s.invalidate(ctx, plan)
	return nil
}

// SetDayCompleted marks a day done (or not), which moves the plan's progress.
// Completing an already completed day keeps the original completion time.
func (s *planService) SetDayCompleted(ctx context.Context, trainerID, planID, dayID string, completed bool) (*domain.PlanDay, error) {
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	day, err := s.getDay(ctx, plan, dayID)
	if err != nil {
		return nil, err
	}
	if completed == day.IsCompleted() {
		return day, nil
	}
	if completed {
		now := nowFunc()
		day.CompletedAt = &now
	} else {
		day.CompletedAt = nil
	}
	if err := s.repos.Days.Update(ctx, day); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return day, nil
}

// --- blocks ---

func (in *BlockInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Kind = strings.TrimSpace(in.Kind)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Title == "" {
		return validationError("title is required")
	}
	return validatePosition(in.Position)
}

func (s *planService) getBlock(ctx context.Context, plan *domain.Plan, blockID string) (*domain.PlanBlock, error) {
	block, err := s.repos.Blocks.GetByID(ctx, plan.TrainerID, blockID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	if block.PlanID != plan.ID {
		return nil, ErrBlockNotFound
	}
	return block, nil
}

func (s *planService) AddBlock(ctx context.Context, trainerID, planID, dayID string, in BlockInput) (*domain.PlanBlock, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	day, err := s.getDay(ctx, plan, dayID)
	if err != nil {
		return nil, err
	}
	block := &domain.PlanBlock{
		DayID:     day.ID,
		PlanID:    plan.ID,
		TrainerID: trainerID,
		Title:     in.Title,
		Kind:      in.Kind,
		Notes:     in.Notes,
	}
	if in.Position != nil {
		block.Position = *in.Position
	} else {
		blocks, err := s.repos.Blocks.ListByDay(ctx, trainerID, day.ID)
		if err != nil {
			return nil, err
		}
		positions := make([]int, len(blocks))
		for i, b := range blocks {
			positions[i] = b.Position
		}
		block.Position = nextPosition(positions)
	}
	if err := s.repos.Blocks.Create(ctx, block); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return block, nil
}

func (s *planService) UpdateBlock(ctx context.Context, trainerID, planID, blockID string, in BlockInput) (*domain.PlanBlock, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	block, err := s.getBlock(ctx, plan, blockID)
	if err != nil {
		return nil, err
	}
	block.Title = in.Title
	block.Kind = in.Kind
	block.Notes = in.Notes
	if in.Position != nil {
		block.Position = *in.Position
	}
	if err := s.repos.Blocks.Update(ctx, block); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return block, nil
}

func (s *planService) DeleteBlock(ctx context.Context, trainerID, planID, blockID string) error {
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return err
	}
	if _, err := s.getBlock(ctx, plan, blockID); err != nil {
		return err
	}
	if err := s.repos.Blocks.Delete(ctx, trainerID, blockID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBlockNotFound
		}
		return err
	}
	s.invalidate(ctx, plan)
	return nil
}

// --- items ---

func (in *ItemInput) normalize() error {
	in.Exercise = strings.TrimSpace(in.Exercise)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	if in.Exercise == "" {
		return validationError("exercise is required")
	}
	if in.Sets != nil && *in.Sets < 0 {
		return validationError("sets must not be negative")
	}
	if in.VideoURL != "" && !strings.HasPrefix(in.VideoURL, "https://") && !strings.HasPrefix(in.VideoURL, "http://") {
		return validationError("video URL must be an http(s) link")
	}
	return validatePosition(in.Position)
}

func (in *ItemInput) apply(item *domain.PlanItem) {
	item.Exercise = in.Exercise
	item.Sets = in.Sets
	item.Reps = strings.TrimSpace(in.Reps)
	item.Load = strings.TrimSpace(in.Load)
	item.Rest = strings.TrimSpace(in.Rest)
	item.Tempo = strings.TrimSpace(in.Tempo)
	item.Duration = strings.TrimSpace(in.Duration)
	item.VideoURL = in.VideoURL
	item.Notes = strings.TrimSpace(in.Notes)
	if in.Position != nil {
		item.Position = *in.Position
	}
}

func (s *planService) getItem(ctx context.Context, plan *domain.Plan, itemID string) (*domain.PlanItem, error) {
	item, err := s.repos.Items.GetByID(ctx, plan.TrainerID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.PlanID != plan.ID {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *planService) AddItem(ctx context.Context, trainerID, planID, blockID string, in ItemInput) (*domain.PlanItem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	block, err := s.getBlock(ctx, plan, blockID)
	if err != nil {
		return nil, err
	}
	item := &domain.PlanItem{
		BlockID:   block.ID,
		DayID:     block.DayID,
		PlanID:    plan.ID,
		TrainerID: trainerID,
	}
	in.apply(item)
	if in.Position == nil {
		items, err := s.repos.Items.ListByBlock(ctx, trainerID, block.ID)
		if err != nil {
			return nil, err
		}
		positions := make([]int, len(items))
		for i, it := range items {
			positions[i] = it.Position
		}
		item.Position = nextPosition(positions)
	}
	if err := s.repos.Items.Create(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return item, nil
}

func (s *planService) UpdateItem(ctx context.Context, trainerID, planID, itemID string, in ItemInput) (*domain.PlanItem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	item, err := s.getItem(ctx, plan, itemID)
	if err != nil {
		return nil, err
	}
	in.apply(item)
	if err := s.repos.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, plan)
	return item, nil
}

func (s *planService) DeleteItem(ctx context.Context, trainerID, planID, itemID string) error {
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return err
	}
	if _, err := s.getItem(ctx, plan, itemID); err != nil {
		return err
	}
	if err := s.repos.Items.Delete(ctx, trainerID, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	s.invalidate(ctx, plan)
	return nil
}
