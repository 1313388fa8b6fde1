// Package memory keeps every repository in process memory. It backs the service and handler
// tests and the "memory" database driver used for local demos.
package memory

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// table is a mutex-guarded map of rows keyed by ID. Rows are stored and returned by value so
// callers never share memory with the store.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string, visible func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok || !visible(&row) {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (t *table[T]) put(id string, row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = row
}

// modify applies fn to an existing row that passes visible.
func (t *table[T]) modify(id string, visible func(*T) bool, fn func(*T)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || !visible(&row) {
		return repository.ErrNotFound
	}
	fn(&row)
	t.rows[id] = row
	return nil
}

func (t *table[T]) filter(keep func(*T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []T{}
	for _, row := range t.rows {
		if keep(&row) {
			out = append(out, row)
		}
	}
	return out
}

// deleteWhere removes every row matching match and returns how many went.
func (t *table[T]) deleteWhere(match func(*T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, row := range t.rows {
		if match(&row) {
			delete(t.rows, id)
			n++
		}
	}
	return n
}

// Store holds all tables of one in-memory database.
type Store struct {
	trainers *table[domain.Trainer]
	students *table[domain.Student]
	plans    *table[domain.Plan]
	days     *table[domain.PlanDay]
	blocks   *table[domain.PlanBlock]
	items    *table[domain.PlanItem]
	payments *table[domain.Payment]
}

func NewStore() *Store {
	return &Store{
		trainers: newTable[domain.Trainer](),
		students: newTable[domain.Student](),
		plans:    newTable[domain.Plan](),
		days:     newTable[domain.PlanDay](),
		blocks:   newTable[domain.PlanBlock](),
		items:    newTable[domain.PlanItem](),
		payments: newTable[domain.Payment](),
	}
}

// NewRepositories returns repositories backed by a fresh Store.
func NewRepositories() repository.Repositories {
	return NewStore().Repositories()
}

// Repositories exposes every repository of the store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Trainers: &trainerRepository{s: s},
		Students: &studentRepository{s: s},
		Plans:    &planRepository{s: s},
		Days:     &planDayRepository{s: s},
		Blocks:   &planBlockRepository{s: s},
		Items:    &planItemRepository{s: s},
		Payments: &paymentRepository{s: s},
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func now() time.Time {
	return time.Now().UTC()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func window[T any](rows []T, p domain.Page) []T {
	lo, hi := p.Window(len(rows))
	return rows[lo:hi]
}

func sortByPosition[T any](rows []T, pos func(*T) int, created func(*T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := pos(&rows[i]), pos(&rows[j])
		if pi != pj {
			return pi < pj
		}
		return created(&rows[i]).Before(created(&rows[j]))
	})
}
