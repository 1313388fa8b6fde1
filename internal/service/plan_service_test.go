package service

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanService_TreeAndPositions(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()

	plan := f.planWithDays(t, svc, 3)

	// An explicit position puts the day first.
	zero := 0
	first, err := svc.AddDay(ctx, f.trainer.ID, plan.ID, DayInput{Title: "Warm-up week", Position: &zero})
	require.NoError(t, err)

	tree, err := svc.Get(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	require.Len(t, tree.Days, 4)
	assert.Equal(t, first.ID, tree.Days[0].Day.ID)
	assert.Equal(t, []int{0, 1, 2, 3}, []int{
		tree.Days[0].Day.Position, tree.Days[1].Day.Position, tree.Days[2].Day.Position, tree.Days[3].Day.Position,
	})
	require.Len(t, tree.Days[1].Blocks, 1)
	require.Len(t, tree.Days[1].Blocks[0].Items, 1)
	assert.Equal(t, 1, tree.Days[1].Blocks[0].Items[0].Position)
	assert.Equal(t, 0, tree.Progress())
}

func TestPlanService_Progress(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()
	freezeTime(t, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))

	empty, err := svc.Create(ctx, f.trainer.ID, PlanInput{Name: "Empty"})
	require.NoError(t, err)
	tree, err := svc.Get(ctx, f.trainer.ID, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Progress())

	plan := f.planWithDays(t, svc, 3)
	tree, err = svc.Get(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)

	day, err := svc.SetDayCompleted(ctx, f.trainer.ID, plan.ID, tree.Days[0].Day.ID, true)
	require.NoError(t, err)
	require.NotNil(t, day.CompletedAt)
	assert.Equal(t, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), *day.CompletedAt)

	summaries, _, err := svc.List(ctx, f.trainer.ID, repository.PlanFilter{Search: "strength"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 33, summaries[0].Progress)

	_, err = svc.SetDayCompleted(ctx, f.trainer.ID, plan.ID, tree.Days[1].Day.ID, true)
	require.NoError(t, err)
	tree, err = svc.Get(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 66, tree.Progress())

	_, err = svc.SetDayCompleted(ctx, f.trainer.ID, plan.ID, tree.Days[0].Day.ID, false)
	require.NoError(t, err)
	tree, err = svc.Get(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, tree.Progress())
}

func TestPlanService_ScopedToTrainerAndPlan(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()

	a := f.planWithDays(t, svc, 1)
	b := f.planWithDays(t, svc, 1)
	treeA, err := svc.Get(ctx, f.trainer.ID, a.ID)
	require.NoError(t, err)
	dayA := treeA.Days[0].Day.ID
	blockA := treeA.Days[0].Blocks[0].Block.ID
	itemA := treeA.Days[0].Blocks[0].Items[0].ID

	_, err = svc.Get(ctx, "intruder", a.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	// Children of plan A are invisible through plan B's routes.
	_, err = svc.UpdateDay(ctx, f.trainer.ID, b.ID, dayA, DayInput{Title: "x"})
	assert.ErrorIs(t, err, ErrDayNotFound)
	assert.ErrorIs(t, svc.DeleteBlock(ctx, f.trainer.ID, b.ID, blockA), ErrBlockNotFound)
	assert.ErrorIs(t, svc.DeleteItem(ctx, f.trainer.ID, b.ID, itemA), ErrItemNotFound)
}

func TestPlanService_StudentMustBelongToTrainer(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()

	bob := f.student(t, "Bob")
	plan, err := svc.Create(ctx, f.trainer.ID, PlanInput{Name: "Bob's plan", StudentID: &bob.ID})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, *plan.StudentID)

	stranger := "not-a-student"
	_, err = svc.Create(ctx, f.trainer.ID, PlanInput{Name: "x", StudentID: &stranger})
	assert.ErrorIs(t, err, ErrValidation)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err = svc.Create(ctx, f.trainer.ID, PlanInput{Name: "x", StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlanService_Duplicate(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()

	source := f.planWithDays(t, svc, 2)
	tree, err := svc.Get(ctx, f.trainer.ID, source.ID)
	require.NoError(t, err)
	_, err = svc.SetDayCompleted(ctx, f.trainer.ID, source.ID, tree.Days[0].Day.ID, true)
	require.NoError(t, err)

	alice := f.student(t, "Alice")
	copyTree, err := svc.Duplicate(ctx, f.trainer.ID, source.ID, &alice.ID)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, copyTree.Plan.ID)
	assert.Equal(t, "Strength (copy)", copyTree.Plan.Name)
	assert.Equal(t, alice.ID, *copyTree.Plan.StudentID)
	assert.False(t, copyTree.Plan.IsShared())
	require.Len(t, copyTree.Days, 2)
	assert.Equal(t, 0, copyTree.Progress(), "completion is not copied")
	assert.Equal(t, "Squat", copyTree.Days[1].Blocks[0].Items[0].Exercise)
	assert.NotEqual(t, tree.Days[0].Day.ID, copyTree.Days[0].Day.ID)

	// The source is untouched.
	again, err := svc.Get(ctx, f.trainer.ID, source.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, again.Progress())
}

// failingItems fails every insert after the first n.
type failingItems struct {
	repository.PlanItemRepository
	allowed int
}

func (r *failingItems) Create(ctx context.Context, item *domain.PlanItem) error {
	if r.allowed == 0 {
		return errors.New("insert failed")
	}
	r.allowed--
	return r.PlanItemRepository.Create(ctx, item)
}

func TestPlanService_DuplicateFailureLeavesNoCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	source := f.planWithDays(t, NewPlanService(f.repos, nil), 2)

	repos := f.repos
	repos.Items = &failingItems{PlanItemRepository: f.repos.Items, allowed: 1}
	svc := NewPlanService(repos, nil)

	_, err := svc.Duplicate(ctx, f.trainer.ID, source.ID, nil)
	require.EqualError(t, err, "insert failed")

	plans, total, err := svc.List(ctx, f.trainer.ID, repository.PlanFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, plans, 1)
	assert.Equal(t, source.ID, plans[0].Plan.ID)

	// The source keeps its rows and nothing else is left behind.
	again, err := svc.Get(ctx, f.trainer.ID, source.ID)
	require.NoError(t, err)
	assert.Len(t, again.Days, 2)
	blocks, err := f.repos.Blocks.ListByPlan(ctx, f.trainer.ID, source.ID)
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
	items, err := f.repos.Items.ListByPlan(ctx, f.trainer.ID, source.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPlanService_DeleteDayCascades(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()

	plan := f.planWithDays(t, svc, 2)
	tree, err := svc.Get(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDay(ctx, f.trainer.ID, plan.ID, tree.Days[0].Day.ID))
	items, err := f.repos.Items.ListByPlan(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPlanService_SoftDelete(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()

	plan := f.planWithDays(t, svc, 1)
	require.NoError(t, svc.Deactivate(ctx, f.trainer.ID, plan.ID))

	_, total, err := svc.List(ctx, f.trainer.ID, repository.PlanFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = svc.List(ctx, f.trainer.ID, repository.PlanFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	restored, err := svc.Restore(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
}

func TestPlanService_ItemValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos, nil)
	ctx := context.Background()

	plan := f.planWithDays(t, svc, 1)
	tree, err := svc.Get(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	blockID := tree.Days[0].Blocks[0].Block.ID

	negative := -1
	tests := []struct {
		name string
		in   ItemInput
	}{
		{name: "no exercise", in: ItemInput{}},
		{name: "negative sets", in: ItemInput{Exercise: "Row", Sets: &negative}},
		{name: "bad video", in: ItemInput{Exercise: "Row", VideoURL: "javascript:alert(1)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, f.trainer.ID, plan.ID, blockID, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	sets := 4
	item, err := svc.AddItem(ctx, f.trainer.ID, plan.ID, blockID, ItemInput{Exercise: "Row", Sets: &sets, VideoURL: "https://video.test/row"})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Position)
	assert.Equal(t, tree.Days[0].Day.ID, item.DayID)
}
