package service

import (
	"alcyxob/trainer-app/internal/cache"
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/share"
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrPlanNotShared        = errors.New("plan is not shared")
	ErrPublicPlanNotFound   = errors.New("shared plan not found")
	ErrTokenGenerationRetry = errors.New("could not generate a unique share token")
)

// tokenAttempts bounds retries when a generated token collides with an existing one.
const tokenAttempts = 3

// ShareInfo describes a plan's public link.
type ShareInfo struct {
	Token    string    `json:"token"`
	URL      string    `json:"url"`
	SharedAt time.Time `json:"sharedAt"`
}

// PublicPlanView is the read-only projection of a plan served to anonymous visitors. It never
// carries IDs, contact details or payment data.
type PublicPlanView struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Goal        string      `json:"goal,omitempty"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	EndDate     *time.Time  `json:"endDate,omitempty"`
	TrainerName string      `json:"trainerName"`
	StudentName string      `json:"studentName,omitempty"`
	Progress    int         `json:"progress"`
	Days        []PublicDay `json:"days"`
}

type PublicDay struct {
	Title     string        `json:"title"`
	Weekday   *int          `json:"weekday,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	Completed bool          `json:"completed"`
	Blocks    []PublicBlock `json:"blocks"`
}

type PublicBlock struct {
	Title string       `json:"title"`
	Kind  string       `json:"kind,omitempty"`
	Notes string       `json:"notes,omitempty"`
	Items []PublicItem `json:"items"`
}

type PublicItem struct {
	Exercise string `json:"exercise"`
	Sets     *int   `json:"sets,omitempty"`
	Reps     string `json:"reps,omitempty"`
	Load     string `json:"load,omitempty"`
	Rest     string `json:"rest,omitempty"`
	Tempo    string `json:"tempo,omitempty"`
	Duration string `json:"duration,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type ShareService interface {
	// Share creates a public token for the plan, replacing any existing one.
	Share(ctx context.Context, trainerID, planID string) (*ShareInfo, error)
	Revoke(ctx context.Context, trainerID, planID string) error
	Info(ctx context.Context, trainerID, planID string) (*ShareInfo, error)
	// QRCode renders the plan's share URL as a PNG.
	QRCode(ctx context.Context, trainerID, planID string, size int) ([]byte, error)
	PublicPlan(ctx context.Context, token string) (*PublicPlanView, error)
}

type shareService struct {
	repos     repository.Repositories
	planCache cache.PlanCache
	baseURL   string
}

func NewShareService(repos repository.Repositories, planCache cache.PlanCache, baseURL string) ShareService {
	if planCache == nil {
		planCache = cache.NewNoopPlanCache()
	}
	return &shareService{repos: repos, planCache: planCache, baseURL: baseURL}
}

func (s *shareService) getPlan(ctx context.Context, trainerID, planID string) (*domain.Plan, error) {
	plan, err := s.repos.Plans.GetByID(ctx, trainerID, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *shareService) info(plan *domain.Plan) *ShareInfo {
	info := &ShareInfo{Token: *plan.PublicToken, URL: share.URL(s.baseURL, *plan.PublicToken)}
	if plan.SharedAt != nil {
		info.SharedAt = *plan.SharedAt
	}
	return info
}

func (s *shareService) Share(ctx context.Context, trainerID, planID string) (*ShareInfo, error) {
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}
	// Rotating the token kills the old link, so its cached view goes too.
	invalidatePublicPlan(ctx, s.planCache, plan)

	sharedAt := nowFunc()
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err := share.NewToken()
		if err != nil {
			return nil, err
		}
		err = s.repos.Plans.SetPublicToken(ctx, trainerID, planID, &token, &sharedAt)
		if errors.Is(err, repository.ErrConflict) {
			zap.L().Warn("share token collision, retrying", zap.String("planID", planID))
			continue
		}
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, err
		}
		plan.PublicToken, plan.SharedAt = &token, &sharedAt
		return s.info(plan), nil
	}
	return nil, ErrTokenGenerationRetry
}

func (s *shareService) Revoke(ctx context.Context, trainerID, planID string) error {
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return err
	}
	if !plan.IsShared() {
		return nil
	}
	if err := s.repos.Plans.SetPublicToken(ctx, trainerID, planID, nil, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	invalidatePublicPlan(ctx, s.planCache, plan)
	return nil
}

func (s *shareService) Info(ctx context.Context, trainerID, planID string) (*ShareInfo, error) {
	plan, err := s.getPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsShared() {
		return nil, ErrPlanNotShared
	}
	return s.info(plan), nil
}

func (s *shareService) QRCode(ctx context.Context, trainerID, planID string, size int) ([]byte, error) {
	info, err := s.Info(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	if size < 0 || size > 1024 {
		return nil, validationError("size must be between 0 and 1024 pixels")
	}
	return share.QRCode(info.URL, size)
}

// PublicPlan resolves a share token. Unknown and revoked tokens, inactive plans and inactive
// trainers all look the same to the caller.
func (s *shareService) PublicPlan(ctx context.Context, token string) (*PublicPlanView, error) {
	if !share.ValidToken(token) {
		return nil, ErrPublicPlanNotFound
	}

	if data, ok, err := s.planCache.Get(ctx, token); err != nil {
		zap.L().Warn("public plan cache read failed", zap.Error(err))
	} else if ok {
		var view PublicPlanView
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
		zap.L().Warn("discarding undecodable cached public plan", zap.String("token", token))
	}

	plan, err := s.repos.Plans.GetByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPublicPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPublicPlanNotFound
	}
	trainer, err := s.repos.Trainers.GetByID(ctx, plan.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPublicPlanNotFound
		}
		return nil, err
	}
	if !trainer.IsActive {
		return nil, ErrPublicPlanNotFound
	}

	tree, err := loadTree(ctx, s.repos, plan)
	if err != nil {
		return nil, err
	}
	view := newPublicPlanView(tree, trainer)
	if plan.StudentID != nil {
		student, err := s.repos.Students.GetByID(ctx, plan.TrainerID, *plan.StudentID)
		if err == nil {
			view.StudentName = student.FirstName()
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if data, err := json.Marshal(view); err == nil {
		if err := s.planCache.Set(ctx, token, data); err != nil {
			zap.L().Warn("public plan cache write failed", zap.Error(err))
		}
	}
	return view, nil
}

func newPublicPlanView(tree *domain.PlanTree, trainer *domain.Trainer) *PublicPlanView {
	view := &PublicPlanView{
		Name:        tree.Plan.Name,
		Description: tree.Plan.Description,
		Goal:        tree.Plan.Goal,
		StartDate:   tree.Plan.StartDate,
		EndDate:     tree.Plan.EndDate,
		TrainerName: trainer.DisplayName(),
		Progress:    tree.Progress(),
		Days:        make([]PublicDay, 0, len(tree.Days)),
	}
	for _, d := range tree.Days {
		day := PublicDay{
			Title:     d.Day.Title,
			Weekday:   d.Day.Weekday,
			Notes:     d.Day.Notes,
			Completed: d.Day.IsCompleted(),
			Blocks:    make([]PublicBlock, 0, len(d.Blocks)),
		}
		for _, b := range d.Blocks {
			block := PublicBlock{
				Title: b.Block.Title,
				Kind:  b.Block.Kind,
				Notes: b.Block.Notes,
				Items: make([]PublicItem, 0, len(b.Items)),
			}
			for _, it := range b.Items {
				block.Items = append(block.Items, PublicItem{
					Exercise: it.Exercise,
					Sets:     it.Sets,
					Reps:     it.Reps,
					Load:     it.Load,
					Rest:     it.Rest,
					Tempo:    it.Tempo,
					Duration: it.Duration,
					VideoURL: it.VideoURL,
					Notes:    it.Notes,
				})
			}
			day.Blocks = append(day.Blocks, block)
		}
		view.Days = append(view.Days, day)
	}
	return view
}
