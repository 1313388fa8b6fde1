package service

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/repository/memory"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStorage records objects in memory and hands out predictable URLs.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (f *fakeStorage) PutObject(_ context.Context, key, _ string, body io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	return nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeCache is a map-backed plan cache that counts hits.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, token string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[token]
	if ok {
		c.hits++
	}
	return data, ok, nil
}

func (c *fakeCache) Set(_ context.Context, token string, view []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = view
	return nil
}

func (c *fakeCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	return nil
}

func (c *fakeCache) has(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[token]
	return ok
}

// freezeTime pins nowFunc for the duration of a test.
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = prev })
}

type fixture struct {
	repos   repository.Repositories
	trainer *domain.Trainer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	trainer := &domain.Trainer{Name: "Coach Carter", Email: "coach@test.test", Currency: "EUR", IsActive: true}
	hash, err := hashPassword("password123")
	require.NoError(t, err)
	trainer.PasswordHash = hash
	require.NoError(t, repos.Trainers.Create(context.Background(), trainer))
	return &fixture{repos: repos, trainer: trainer}
}

func (f *fixture) student(t *testing.T, name string) *domain.Student {
	t.Helper()
	s := &domain.Student{TrainerID: f.trainer.ID, Name: name, IsActive: true}
	require.NoError(t, f.repos.Students.Create(context.Background(), s))
	return s
}

// planWithDays creates a plan with n days, each holding one block with one item.
func (f *fixture) planWithDays(t *testing.T, svc PlanService, n int) *domain.Plan {
	t.Helper()
	ctx := context.Background()
	plan, err := svc.Create(ctx, f.trainer.ID, PlanInput{Name: "Strength"})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		day, err := svc.AddDay(ctx, f.trainer.ID, plan.ID, DayInput{Title: fmt.Sprintf("Day %d", i+1)})
		require.NoError(t, err)
		block, err := svc.AddBlock(ctx, f.trainer.ID, plan.ID, day.ID, BlockInput{Title: "Main"})
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, f.trainer.ID, plan.ID, block.ID, ItemInput{Exercise: "Squat", Reps: "5"})
		require.NoError(t, err)
	}
	return plan
}
