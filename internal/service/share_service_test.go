package service

import (
	"alcyxob/trainer-app/internal/share"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareService_ShareAndView(t *testing.T) {
	f := newFixture(t)
	planCache := newFakeCache()
	plans := NewPlanService(f.repos, planCache)
	svc := NewShareService(f.repos, planCache, "https://app.test")
	ctx := context.Background()

	bob := f.student(t, "Bob Stone")
	plan := f.planWithDays(t, plans, 2)
	_, err := plans.Update(ctx, f.trainer.ID, plan.ID, PlanInput{Name: "Strength", StudentID: &bob.ID, Goal: "Deadlift 200"})
	require.NoError(t, err)

	_, err = svc.Info(ctx, f.trainer.ID, plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotShared)

	info, err := svc.Share(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	assert.True(t, share.ValidToken(info.Token))
	assert.Equal(t, "https://app.test/p/"+info.Token, info.URL)

	view, err := svc.PublicPlan(ctx, info.Token)
	require.NoError(t, err)
	assert.Equal(t, "Strength", view.Name)
	assert.Equal(t, "Coach Carter", view.TrainerName)
	assert.Equal(t, "Bob", view.StudentName)
	assert.Equal(t, "Deadlift 200", view.Goal)
	require.Len(t, view.Days, 2)
	assert.Equal(t, "Squat", view.Days[0].Blocks[0].Items[0].Exercise)
	assert.True(t, planCache.has(info.Token))

	// Second read is served from the cache.
	_, err = svc.PublicPlan(ctx, info.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, planCache.hits)

	// Completing a day invalidates the cached view.
	tree, err := plans.Get(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	_, err = plans.SetDayCompleted(ctx, f.trainer.ID, plan.ID, tree.Days[0].Day.ID, true)
	require.NoError(t, err)
	assert.False(t, planCache.has(info.Token))

	view, err = svc.PublicPlan(ctx, info.Token)
	require.NoError(t, err)
	assert.Equal(t, 50, view.Progress)
	assert.True(t, view.Days[0].Completed)
}

func TestShareService_NameChangesRefreshCachedView(t *testing.T) {
	f := newFixture(t)
	planCache := newFakeCache()
	plans := NewPlanService(f.repos, planCache)
	students := NewStudentService(f.repos.Students, f.repos.Plans, planCache)
	trainers := NewTrainerService(f.repos.Trainers, f.repos.Plans, planCache, nil, 0)
	svc := NewShareService(f.repos, planCache, "https://app.test")
	ctx := context.Background()

	bob := f.student(t, "Bob Stone")
	plan := f.planWithDays(t, plans, 1)
	_, err := plans.Update(ctx, f.trainer.ID, plan.ID, PlanInput{Name: "Strength", StudentID: &bob.ID})
	require.NoError(t, err)
	info, err := svc.Share(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)

	_, err = svc.PublicPlan(ctx, info.Token)
	require.NoError(t, err)
	require.True(t, planCache.has(info.Token))

	_, err = students.Update(ctx, f.trainer.ID, bob.ID, StudentInput{Name: "Robert Stone"})
	require.NoError(t, err)
	assert.False(t, planCache.has(info.Token))

	view, err := svc.PublicPlan(ctx, info.Token)
	require.NoError(t, err)
	assert.Equal(t, "Robert", view.StudentName)
	require.True(t, planCache.has(info.Token))

	_, err = trainers.UpdateProfile(ctx, f.trainer.ID, ProfileInput{Name: "Coach Carter", BusinessName: "Carter Strength"})
	require.NoError(t, err)
	assert.False(t, planCache.has(info.Token))

	view, err = svc.PublicPlan(ctx, info.Token)
	require.NoError(t, err)
	assert.Equal(t, "Carter Strength", view.TrainerName)

	// Profile edits that keep the display name leave the cache alone.
	_, err = trainers.UpdateProfile(ctx, f.trainer.ID, ProfileInput{Name: "Coach Carter", BusinessName: "Carter Strength", Bio: "Lifts"})
	require.NoError(t, err)
	assert.True(t, planCache.has(info.Token))
}

func TestShareService_RotateAndRevoke(t *testing.T) {
	f := newFixture(t)
	planCache := newFakeCache()
	plans := NewPlanService(f.repos, planCache)
	svc := NewShareService(f.repos, planCache, "https://app.test")
	ctx := context.Background()

	plan := f.planWithDays(t, plans, 1)
	first, err := svc.Share(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	_, err = svc.PublicPlan(ctx, first.Token)
	require.NoError(t, err)

	second, err := svc.Share(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.False(t, planCache.has(first.Token))

	_, err = svc.PublicPlan(ctx, first.Token)
	assert.ErrorIs(t, err, ErrPublicPlanNotFound)

	require.NoError(t, svc.Revoke(ctx, f.trainer.ID, plan.ID))
	_, err = svc.PublicPlan(ctx, second.Token)
	assert.ErrorIs(t, err, ErrPublicPlanNotFound)

	// Revoking twice is a no-op.
	assert.NoError(t, svc.Revoke(ctx, f.trainer.ID, plan.ID))
}

func TestShareService_InactivePlansAreHidden(t *testing.T) {
	f := newFixture(t)
	planCache := newFakeCache()
	plans := NewPlanService(f.repos, planCache)
	svc := NewShareService(f.repos, planCache, "https://app.test")
	ctx := context.Background()

	plan := f.planWithDays(t, plans, 1)
	info, err := svc.Share(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)
	_, err = svc.PublicPlan(ctx, info.Token)
	require.NoError(t, err)

	require.NoError(t, plans.Deactivate(ctx, f.trainer.ID, plan.ID))
	_, err = svc.PublicPlan(ctx, info.Token)
	assert.ErrorIs(t, err, ErrPublicPlanNotFound)

	_, err = svc.Share(ctx, f.trainer.ID, plan.ID)
	assert.ErrorIs(t, err, ErrPlanInactive)
}

func TestShareService_PublicPlanRejectsMalformedTokens(t *testing.T) {
	f := newFixture(t)
	svc := NewShareService(f.repos, nil, "https://app.test")

	for _, token := range []string{"", "short", strings.Repeat("x", 100), "../../etc/passwd"} {
		_, err := svc.PublicPlan(context.Background(), token)
		assert.ErrorIs(t, err, ErrPublicPlanNotFound, token)
	}
}

func TestShareService_QRCode(t *testing.T) {
	f := newFixture(t)
	plans := NewPlanService(f.repos, nil)
	svc := NewShareService(f.repos, nil, "https://app.test")
	ctx := context.Background()

	plan := f.planWithDays(t, plans, 1)
	_, err := svc.QRCode(ctx, f.trainer.ID, plan.ID, 0)
	assert.ErrorIs(t, err, ErrPlanNotShared)

	_, err = svc.Share(ctx, f.trainer.ID, plan.ID)
	require.NoError(t, err)

	png, err := svc.QRCode(ctx, f.trainer.ID, plan.ID, 200)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	_, err = svc.QRCode(ctx, f.trainer.ID, plan.ID, 5000)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.QRCode(ctx, f.trainer.ID, plan.ID, -5)
	assert.ErrorIs(t, err, ErrValidation)
}
