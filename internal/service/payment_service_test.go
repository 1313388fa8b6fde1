package service

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPaymentService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.repos, nil, 0)
	ctx := context.Background()
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	bob := f.student(t, "Bob")
	payment, err := svc.Create(ctx, f.trainer.ID, PaymentInput{StudentID: bob.ID, AmountCents: 5000, DueDate: due, Method: " Cash "})
	require.NoError(t, err)
	assert.Equal(t, "EUR", payment.Currency, "defaults to the trainer's currency")
	assert.Equal(t, domain.PaymentPending, payment.Status)
	assert.Equal(t, "cash", payment.Method)
	assert.Nil(t, payment.PaidAt)

	missingPlan := "nope"
	tests := []struct {
		name string
		in   PaymentInput
	}{
		{name: "no student", in: PaymentInput{AmountCents: 100, DueDate: due}},
		{name: "zero amount", in: PaymentInput{StudentID: bob.ID, DueDate: due}},
		{name: "negative amount", in: PaymentInput{StudentID: bob.ID, AmountCents: -1, DueDate: due}},
		{name: "bad status", in: PaymentInput{StudentID: bob.ID, AmountCents: 100, DueDate: due, Status: "refunded"}},
		{name: "no due date", in: PaymentInput{StudentID: bob.ID, AmountCents: 100}},
		{name: "unknown student", in: PaymentInput{StudentID: "ghost", AmountCents: 100, DueDate: due}},
		{name: "unknown plan", in: PaymentInput{StudentID: bob.ID, PlanID: &missingPlan, AmountCents: 100, DueDate: due}},
		{name: "bad currency", in: PaymentInput{StudentID: bob.ID, AmountCents: 100, DueDate: due, Currency: "euro"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, f.trainer.ID, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPaymentService_PaidStatusSetsPaidAt(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.repos, nil, 0)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	bob := f.student(t, "Bob")
	payment, err := svc.Create(ctx, f.trainer.ID, PaymentInput{
		StudentID: bob.ID, AmountCents: 5000, DueDate: now, Status: domain.PaymentPaid,
	})
	require.NoError(t, err)
	require.NotNil(t, payment.PaidAt)
	assert.Equal(t, now, *payment.PaidAt)

	// Editing a paid payment keeps its original PaidAt.
	freezeTime(t, now.Add(48*time.Hour))
	updated, err := svc.Update(ctx, f.trainer.ID, payment.ID, PaymentInput{
		StudentID: bob.ID, AmountCents: 6000, DueDate: now, Status: domain.PaymentPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, now, *updated.PaidAt)
	assert.Equal(t, int64(6000), updated.AmountCents)

	// Moving back to pending clears it.
	updated, err = svc.Update(ctx, f.trainer.ID, payment.ID, PaymentInput{StudentID: bob.ID, AmountCents: 6000, DueDate: now})
	require.NoError(t, err)
	assert.Nil(t, updated.PaidAt)
}

func TestPaymentService_MarkPaid(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.repos, nil, 0)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	bob := f.student(t, "Bob")
	pending, err := svc.Create(ctx, f.trainer.ID, PaymentInput{StudentID: bob.ID, AmountCents: 5000, DueDate: now})
	require.NoError(t, err)

	future := now.Add(24 * time.Hour)
	_, err = svc.MarkPaid(ctx, f.trainer.ID, pending.ID, &future, "")
	assert.ErrorIs(t, err, ErrValidation)

	paid, err := svc.MarkPaid(ctx, f.trainer.ID, pending.ID, nil, "Transfer")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.Status)
	assert.Equal(t, now, *paid.PaidAt)
	assert.Equal(t, "transfer", paid.Method)

	cancelled, err := svc.Create(ctx, f.trainer.ID, PaymentInput{
		StudentID: bob.ID, AmountCents: 100, DueDate: now, Status: domain.PaymentCancelled,
	})
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, f.trainer.ID, cancelled.ID, nil, "")
	assert.ErrorIs(t, err, ErrPaymentCancelled)

	_, err = svc.MarkPaid(ctx, "someone-else", pending.ID, nil, "")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.repos, nil, 0)
	ctx := context.Background()

	bob := f.student(t, "Bob")
	for i := 1; i <= 3; i++ {
		_, err := svc.Create(ctx, f.trainer.ID, PaymentInput{
			StudentID: bob.ID, AmountCents: int64(i * 1000), DueDate: time.Date(2024, time.Month(i), 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	payments, total, err := svc.List(ctx, f.trainer.ID, repository.PaymentFilter{From: &from})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, int64(3000), payments[0].AmountCents, "newest due date first")

	to := from.AddDate(0, -1, 0)
	_, _, err = svc.List(ctx, f.trainer.ID, repository.PaymentFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = svc.List(ctx, f.trainer.ID, repository.PaymentFilter{Status: "lost"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Delete(ctx, f.trainer.ID, payments[0].ID))
	assert.ErrorIs(t, svc.Delete(ctx, f.trainer.ID, payments[0].ID), ErrPaymentNotFound)
}

func TestPaymentService_Export(t *testing.T) {
	f := newFixture(t)
	plans := NewPlanService(f.repos, nil)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	bob := f.student(t, "Bob Stone")
	plan := f.planWithDays(t, plans, 1)
	files := newFakeStorage()
	svc := NewPaymentService(f.repos, files, time.Hour)

	_, err := svc.Create(ctx, f.trainer.ID, PaymentInput{StudentID: bob.ID, PlanID: &plan.ID, AmountCents: 4500, DueDate: now})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := svc.Export(ctx, f.trainer.ID, repository.PaymentFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "Bob Stone")
	assert.Contains(t, rows[1], "Strength")

	result, err := svc.ExportToStorage(ctx, f.trainer.ID, repository.PaymentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.True(t, strings.HasPrefix(result.ObjectKey, "exports/"+f.trainer.ID+"/"))
	assert.Equal(t, "https://storage.test/get/"+result.ObjectKey, result.DownloadURL)
	assert.Equal(t, now.Add(time.Hour), result.ExpiresAt)
	assert.NotEmpty(t, files.objects[result.ObjectKey])

	_, err = NewPaymentService(f.repos, nil, 0).ExportToStorage(ctx, f.trainer.ID, repository.PaymentFilter{})
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestPaymentService_ExportRejectsOversizedResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	limit := maxExportRows
	maxExportRows = 2
	t.Cleanup(func() { maxExportRows = limit })

	bob := f.student(t, "Bob Stone")
	ana := f.student(t, "Ana Lima")
	files := newFakeStorage()
	svc := NewPaymentService(f.repos, files, time.Hour)
	for _, st := range []string{bob.ID, bob.ID, ana.ID} {
		_, err := svc.Create(ctx, f.trainer.ID, PaymentInput{StudentID: st, AmountCents: 1000, DueDate: time.Now()})
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	_, err := svc.Export(ctx, f.trainer.ID, repository.PaymentFilter{}, &buf)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, buf.Len())

	_, err = svc.ExportToStorage(ctx, f.trainer.ID, repository.PaymentFilter{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, files.objects)

	n, err := svc.Export(ctx, f.trainer.ID, repository.PaymentFilter{StudentID: bob.ID}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
