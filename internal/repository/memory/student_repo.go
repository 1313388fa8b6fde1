package memory

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"sort"
	"strings"
)

type studentRepository struct {
	s *Store
}

func studentOf(trainerID string) func(*domain.Student) bool {
	return func(s *domain.Student) bool { return s.TrainerID == trainerID }
}

func (r *studentRepository) Create(_ context.Context, student *domain.Student) error {
	student.ID = newID(student.ID)
	student.CreatedAt = now()
	student.UpdatedAt = student.CreatedAt
	r.s.students.put(student.ID, *student)
	return nil
}

func (r *studentRepository) GetByID(_ context.Context, trainerID, id string) (*domain.Student, error) {
	return r.s.students.get(id, studentOf(trainerID))
}

func (r *studentRepository) List(_ context.Context, trainerID string, f repository.StudentFilter) ([]domain.Student, int, error) {
	rows := r.s.students.filter(func(s *domain.Student) bool {
		if s.TrainerID != trainerID || (!f.IncludeInactive && !s.IsActive) {
			return false
		}
		return f.Search == "" || containsFold(s.Name, f.Search) || containsFold(s.Email, f.Search)
	})
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	return window(rows, f.Page), len(rows), nil
}

func (r *studentRepository) Update(_ context.Context, student *domain.Student) error {
	student.UpdatedAt = now()
	return r.s.students.modify(student.ID, studentOf(student.TrainerID), func(s *domain.Student) {
		created := s.CreatedAt
		*s = *student
		s.CreatedAt = created
	})
}

func (r *studentRepository) SetActive(_ context.Context, trainerID, id string, active bool) error {
	return r.s.students.modify(id, studentOf(trainerID), func(s *domain.Student) {
		s.IsActive = active
		s.UpdatedAt = now()
	})
}

func (r *studentRepository) CountActive(_ context.Context, trainerID string) (int, error) {
	rows := r.s.students.filter(func(s *domain.Student) bool { return s.TrainerID == trainerID && s.IsActive })
	return len(rows), nil
}
