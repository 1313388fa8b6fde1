package service

import (
	"alcyxob/trainer-app/internal/report"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewStudentService(f.repos.Students, f.repos.Plans, nil)
	ctx := context.Background()

	s, err := svc.Create(ctx, f.trainer.ID, StudentInput{Name: "  Bob Stone ", Email: "BOB@test.test"})
	require.NoError(t, err)
	assert.Equal(t, "Bob Stone", s.Name)
	assert.Equal(t, "bob@test.test", s.Email)
	assert.True(t, s.IsActive)

	_, err = svc.Get(ctx, "other-trainer", s.ID)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	updated, err := svc.Update(ctx, f.trainer.ID, s.ID, StudentInput{Name: "Bob S", Goal: "Lose 5kg"})
	require.NoError(t, err)
	assert.Equal(t, "Lose 5kg", updated.Goal)
	assert.Empty(t, updated.Email)

	require.NoError(t, svc.Deactivate(ctx, f.trainer.ID, s.ID))
	list, total, err := svc.List(ctx, f.trainer.ID, repository.StudentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	restored, err := svc.Restore(ctx, f.trainer.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)

	assert.ErrorIs(t, svc.Deactivate(ctx, f.trainer.ID, "missing"), ErrStudentNotFound)
}

func TestStudentService_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewStudentService(f.repos.Students, f.repos.Plans, nil)
	future := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name string
		in   StudentInput
	}{
		{name: "blank name", in: StudentInput{Name: "   "}},
		{name: "bad email", in: StudentInput{Name: "A", Email: "nope"}},
		{name: "future birth date", in: StudentInput{Name: "A", BirthDate: &future}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), f.trainer.ID, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestStudentService_Import(t *testing.T) {
	f := newFixture(t)
	svc := NewStudentService(f.repos.Students, f.repos.Plans, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.trainer.ID, StudentInput{Name: "Existing", Email: "dup@test.test"})
	require.NoError(t, err)

	res, err := svc.Import(ctx, f.trainer.ID, []report.StudentRow{
		{Line: 2, Name: "Ann", Email: "ann@test.test"},
		{Line: 3, Name: "Dup", Email: "DUP@test.test"},
		{Line: 4, Name: "Bad", Email: "bad-email"},
		{Line: 5, Name: "Ann again", Email: "ann@test.test"},
		{Line: 6, Name: "No email"},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 2)
	assert.Equal(t, "Ann", res.Created[0].Name)
	assert.Equal(t, "No email", res.Created[1].Name)

	lines := []int{}
	for _, s := range res.Skipped {
		lines = append(lines, s.Line)
	}
	assert.Equal(t, []int{3, 4, 5}, lines)
}
