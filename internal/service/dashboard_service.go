package service

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
)

// recentPaymentsLimit is how many payments the dashboard lists.
const recentPaymentsLimit = 5

type DashboardService interface {
	Get(ctx context.Context, trainerID string) (*domain.Dashboard, error)
}

type dashboardService struct {
	repos repository.Repositories
}

func NewDashboardService(repos repository.Repositories) DashboardService {
	return &dashboardService{repos: repos}
}

// Get aggregates the trainer's KPIs. Revenue covers the current calendar month in UTC.
func (s *dashboardService) Get(ctx context.Context, trainerID string) (*domain.Dashboard, error) {
	now := nowFunc()
	from, to := domain.MonthBounds(now)

	students, err := s.repos.Students.CountActive(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	plans, err := s.repos.Plans.CountActive(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	shared, err := s.repos.Plans.CountShared(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	stats, err := s.repos.Payments.Stats(ctx, trainerID, from, to, now)
	if err != nil {
		return nil, err
	}
	recent, err := s.repos.Payments.Recent(ctx, trainerID, recentPaymentsLimit)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		ActiveStudents: students,
		ActivePlans:    plans,
		SharedPlans:    shared,
		Payments:       stats,
		Recent:         recent,
		MonthStart:     from,
	}, nil
}
