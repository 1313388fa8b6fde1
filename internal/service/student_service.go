package service

import (
	"alcyxob/trainer-app/internal/cache"
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/report"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"errors"
	"strings"
	"time"
)

// StudentInput replaces the editable fields of a student.
type StudentInput struct {
	Name      string
	Email     string
	Phone     string
	BirthDate *time.Time
	Goal      string
	Notes     string
}

// ImportResult reports what an xlsx import did.
type ImportResult struct {
	Created []domain.Student `json:"created"`
	Skipped []ImportSkip     `json:"skipped"`
}

// ImportSkip is a spreadsheet row that was not imported.
type ImportSkip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type StudentService interface {
	Create(ctx context.Context, trainerID string, in StudentInput) (*domain.Student, error)
	Get(ctx context.Context, trainerID, id string) (*domain.Student, error)
	List(ctx context.Context, trainerID string, filter repository.StudentFilter) ([]domain.Student, int, error)
	Update(ctx context.Context, trainerID, id string, in StudentInput) (*domain.Student, error)
	// Deactivate soft-deletes a student; Restore reverses it.
	Deactivate(ctx context.Context, trainerID, id string) error
	Restore(ctx context.Context, trainerID, id string) (*domain.Student, error)
	Import(ctx context.Context, trainerID string, rows []report.StudentRow) (*ImportResult, error)
}

type studentService struct {
	studentRepo repository.StudentRepository
	planRepo    repository.PlanRepository
	planCache   cache.PlanCache
}

// NewStudentService creates a student service. planCache may be nil.
func NewStudentService(studentRepo repository.StudentRepository, planRepo repository.PlanRepository, planCache cache.PlanCache) StudentService {
	if planCache == nil {
		planCache = cache.NewNoopPlanCache()
	}
	return &studentService{studentRepo: studentRepo, planRepo: planRepo, planCache: planCache}
}

// invalidate drops cached public views of the student's plans, which show the student's name.
func (s *studentService) invalidate(ctx context.Context, trainerID, studentID string) {
	invalidateSharedPlans(ctx, s.planRepo, s.planCache, trainerID, repository.PlanFilter{StudentID: studentID})
}

func (in *StudentInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return validationError("name is required")
	}
	if len(in.Name) > 200 {
		return validationError("name is too long")
	}
	if in.Email != "" {
		if err := validateEmail(in.Email); err != nil {
			return err
		}
	}
	if in.BirthDate != nil && in.BirthDate.After(nowFunc()) {
		return validationError("birth date cannot be in the future")
	}
	return nil
}

func (s *studentService) Create(ctx context.Context, trainerID string, in StudentInput) (*domain.Student, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	student := &domain.Student{
		TrainerID: trainerID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		BirthDate: in.BirthDate,
		Goal:      strings.TrimSpace(in.Goal),
		Notes:     strings.TrimSpace(in.Notes),
		IsActive:  true,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentService) Get(ctx context.Context, trainerID, id string) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, trainerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (s *studentService) List(ctx context.Context, trainerID string, filter repository.StudentFilter) ([]domain.Student, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.studentRepo.List(ctx, trainerID, filter)
}

func (s *studentService) Update(ctx context.Context, trainerID, id string, in StudentInput) (*domain.Student, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	student, err := s.Get(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	student.Name = in.Name
	student.Email = in.Email
	student.Phone = in.Phone
	student.BirthDate = in.BirthDate
	student.Goal = strings.TrimSpace(in.Goal)
	student.Notes = strings.TrimSpace(in.Notes)

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, trainerID, student.ID)
	return student, nil
}

func (s *studentService) Deactivate(ctx context.Context, trainerID, id string) error {
	err := s.studentRepo.SetActive(ctx, trainerID, id, false)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrStudentNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, trainerID, id)
	return nil
}

func (s *studentService) Restore(ctx context.Context, trainerID, id string) (*domain.Student, error) {
	err := s.studentRepo.SetActive(ctx, trainerID, id, true)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, trainerID, id)
	return s.Get(ctx, trainerID, id)
}

// Import creates one student per row. Invalid rows and rows whose email already belongs to one
// of the trainer's students are skipped and reported.
func (s *studentService) Import(ctx context.Context, trainerID string, rows []report.StudentRow) (*ImportResult, error) {
	existing, _, err := s.studentRepo.List(ctx, trainerID, repository.StudentFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, st := range existing {
		if st.Email != "" {
			seen[st.Email] = true
		}
	}

	result := &ImportResult{Created: []domain.Student{}, Skipped: []ImportSkip{}}
	for _, row := range rows {
		in := StudentInput{Name: row.Name, Email: row.Email, Phone: row.Phone, Goal: row.Goal, Notes: row.Notes}
		if err := in.normalize(); err != nil {
			result.Skipped = append(result.Skipped, ImportSkip{Line: row.Line, Reason: err.Error()})
			continue
		}
		if in.Email != "" && seen[in.Email] {
			result.Skipped = append(result.Skipped, ImportSkip{Line: row.Line, Reason: "a student with this email already exists"})
			continue
		}
		student, err := s.Create(ctx, trainerID, in)
		if err != nil {
			return nil, err
		}
		if student.Email != "" {
			seen[student.Email] = true
		}
		result.Created = append(result.Created, *student)
	}
	return result, nil
}
