package service

import (
	"alcyxob/trainer-app/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plans := NewPlanService(f.repos, nil)
	shares := NewShareService(f.repos, nil, "https://app.test")
	payments := NewPaymentService(f.repos, nil, 0)
	dashboard := NewDashboardService(f.repos)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	bob := f.student(t, "Bob")
	gone := f.student(t, "Gone")
	require.NoError(t, f.repos.Students.SetActive(ctx, f.trainer.ID, gone.ID, false))

	shared := f.planWithDays(t, plans, 1)
	_, err := shares.Share(ctx, f.trainer.ID, shared.ID)
	require.NoError(t, err)
	f.planWithDays(t, plans, 1)
	retired := f.planWithDays(t, plans, 1)
	require.NoError(t, plans.Deactivate(ctx, f.trainer.ID, retired.ID))

	lastMonth := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	create := func(amount int64, status domain.PaymentStatus, due time.Time, paidAt *time.Time) {
		_, err := payments.Create(ctx, f.trainer.ID, PaymentInput{
			StudentID: bob.ID, AmountCents: amount, Status: status, DueDate: due, PaidAt: paidAt,
		})
		require.NoError(t, err)
	}
	paidNow := now.Add(-time.Hour)
	create(10000, domain.PaymentPaid, now, &paidNow)
	create(7000, domain.PaymentPaid, lastMonth, &lastMonth) // outside the month
	create(3000, domain.PaymentPending, now.AddDate(0, 0, 5), nil)
	create(2000, domain.PaymentPending, lastMonth, nil) // overdue
	create(999, domain.PaymentCancelled, now, nil)

	got, err := dashboard.Get(ctx, f.trainer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ActiveStudents)
	assert.Equal(t, 2, got.ActivePlans)
	assert.Equal(t, 1, got.SharedPlans)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got.MonthStart)
	assert.Equal(t, domain.PaymentStats{
		PaidAmount:    10000,
		PaidCount:     1,
		PendingAmount: 5000,
		PendingCount:  2,
		OverdueAmount: 2000,
		OverdueCount:  1,
	}, got.Payments)
	assert.Len(t, got.Recent, recentPaymentsLimit)
}

func TestDashboardService_EmptyTrainer(t *testing.T) {
	f := newFixture(t)
	got, err := NewDashboardService(f.repos).Get(context.Background(), f.trainer.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ActiveStudents)
	assert.Zero(t, got.Payments)
	assert.Empty(t, got.Recent)
}
