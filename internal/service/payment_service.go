package service

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/report"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/storage"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// maxExportRows caps a single spreadsheet export. Larger exports are rejected. Swapped in tests.
var maxExportRows = 10000

var ErrPaymentCancelled = errors.New("cancelled payments cannot be marked as paid")

// PaymentInput replaces the editable fields of a payment.
type PaymentInput struct {
	StudentID   string
	PlanID      *string
	AmountCents int64
	Currency    string
	Status      domain.PaymentStatus
	Method      string
	Description string
	DueDate     time.Time
	PaidAt      *time.Time
}

// ExportResult points at an exported workbook in object storage.
type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Rows        int       `json:"rows"`
}

type PaymentService interface {
	Create(ctx context.Context, trainerID string, in PaymentInput) (*domain.Payment, error)
	Get(ctx context.Context, trainerID, id string) (*domain.Payment, error)
	List(ctx context.Context, trainerID string, filter repository.PaymentFilter) ([]domain.Payment, int, error)
	Update(ctx context.Context, trainerID, id string, in PaymentInput) (*domain.Payment, error)
	Delete(ctx context.Context, trainerID, id string) error
	// MarkPaid settles a pending payment. paidAt defaults to now.
	MarkPaid(ctx context.Context, trainerID, id string, paidAt *time.Time, method string) (*domain.Payment, error)
	// Export writes every payment matching filter as an xlsx workbook, ignoring its page.
	// Filters matching more than maxExportRows payments fail with ErrValidation.
	Export(ctx context.Context, trainerID string, filter repository.PaymentFilter, w io.Writer) (int, error)
	ExportToStorage(ctx context.Context, trainerID string, filter repository.PaymentFilter) (*ExportResult, error)
}

type paymentService struct {
	repos         repository.Repositories
	fileStorage   storage.FileStorage // nil when storage is not configured
	presignExpiry time.Duration
}

func NewPaymentService(repos repository.Repositories, fileStorage storage.FileStorage, presignExpiry time.Duration) PaymentService {
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &paymentService{repos: repos, fileStorage: fileStorage, presignExpiry: presignExpiry}
}

// normalize validates the input against the trainer's students and plans.
func (s *paymentService) normalize(ctx context.Context, trainerID string, in *PaymentInput) error {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Method = strings.ToLower(strings.TrimSpace(in.Method))
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = domain.PaymentPending
	}

	switch {
	case in.StudentID == "":
		return validationError("studentId is required")
	case in.AmountCents <= 0:
		return validationError("amount must be greater than zero")
	case !in.Status.Valid():
		return validationError("unknown status %q", in.Status)
	case in.DueDate.IsZero():
		return validationError("dueDate is required")
	}

	if _, err := s.repos.Students.GetByID(ctx, trainerID, in.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationError("student %s does not exist", in.StudentID)
		}
		return err
	}
	if in.PlanID != nil && strings.TrimSpace(*in.PlanID) == "" {
		in.PlanID = nil
	}
	if in.PlanID != nil {
		if _, err := s.repos.Plans.GetByID(ctx, trainerID, *in.PlanID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return validationError("plan %s does not exist", *in.PlanID)
			}
			return err
		}
	}

	switch in.Status {
	case domain.PaymentPaid:
		if in.PaidAt == nil {
			now := nowFunc()
			in.PaidAt = &now
		}
	default:
		in.PaidAt = nil
	}
	return nil
}

func (s *paymentService) trainerCurrency(ctx context.Context, trainerID string) string {
	trainer, err := s.repos.Trainers.GetByID(ctx, trainerID)
	if err != nil || trainer.Currency == "" {
		return domain.DefaultCurrency
	}
	return trainer.Currency
}

func (s *paymentService) Create(ctx context.Context, trainerID string, in PaymentInput) (*domain.Payment, error) {
	if err := s.normalize(ctx, trainerID, &in); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency, s.trainerCurrency(ctx, trainerID))
	if err != nil {
		return nil, err
	}
	payment := &domain.Payment{
		TrainerID:   trainerID,
		StudentID:   in.StudentID,
		PlanID:      in.PlanID,
		AmountCents: in.AmountCents,
		Currency:    currency,
		Status:      in.Status,
		Method:      in.Method,
		Description: in.Description,
		DueDate:     in.DueDate.UTC(),
		PaidAt:      in.PaidAt,
	}
	if err := s.repos.Payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Get(ctx context.Context, trainerID, id string) (*domain.Payment, error) {
	payment, err := s.repos.Payments.GetByID(ctx, trainerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) List(ctx context.Context, trainerID string, filter repository.PaymentFilter) ([]domain.Payment, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, validationError("unknown status %q", filter.Status)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, validationError("'to' must not be before 'from'")
	}
	return s.repos.Payments.List(ctx, trainerID, filter)
}

func (s *paymentService) Update(ctx context.Context, trainerID, id string, in PaymentInput) (*domain.Payment, error) {
	payment, err := s.Get(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	if in.Status == domain.PaymentPaid && in.PaidAt == nil {
		in.PaidAt = payment.PaidAt
	}
	if err := s.normalize(ctx, trainerID, &in); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency, payment.Currency)
	if err != nil {
		return nil, err
	}
	payment.StudentID = in.StudentID
	payment.PlanID = in.PlanID
	payment.AmountCents = in.AmountCents
	payment.Currency = currency
	payment.Status = in.Status
	payment.Method = in.Method
	payment.Description = in.Description
	payment.DueDate = in.DueDate.UTC()
	payment.PaidAt = in.PaidAt

	if err := s.repos.Payments.Update(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Delete(ctx context.Context, trainerID, id string) error {
	err := s.repos.Payments.Delete(ctx, trainerID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaymentNotFound
	}
	return err
}

func (s *paymentService) MarkPaid(ctx context.Context, trainerID, id string, paidAt *time.Time, method string) (*domain.Payment, error) {
	payment, err := s.Get(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentCancelled {
		return nil, ErrPaymentCancelled
	}
	if paidAt == nil {
		now := nowFunc()
		paidAt = &now
	}
	if paidAt.After(nowFunc().Add(time.Minute)) {
		return nil, validationError("paidAt cannot be in the future")
	}
	at := paidAt.UTC()
	payment.Status = domain.PaymentPaid
	payment.PaidAt = &at
	if m := strings.ToLower(strings.TrimSpace(method)); m != "" {
		payment.Method = m
	}
	if err := s.repos.Payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) exportRows(ctx context.Context, trainerID string, filter repository.PaymentFilter) ([]report.PaymentRow, error) {
	filter.Page = domain.Page{Number: 1, Size: maxExportRows}
	payments, total, err := s.List(ctx, trainerID, filter)
	if err != nil {
		return nil, err
	}
	if total > maxExportRows {
		return nil, validationError("export matches %d payments, narrow the filter to at most %d", total, maxExportRows)
	}

	studentNames := map[string]string{}
	planNames := map[string]string{}
	rows := make([]report.PaymentRow, 0, len(payments))
	for _, p := range payments {
		row := report.PaymentRow{Payment: p}
		name, ok := studentNames[p.StudentID]
		if !ok {
			if st, err := s.repos.Students.GetByID(ctx, trainerID, p.StudentID); err == nil {
				name = st.Name
			}
			studentNames[p.StudentID] = name
		}
		row.StudentName = name
		if p.PlanID != nil {
			pname, ok := planNames[*p.PlanID]
			if !ok {
				if pl, err := s.repos.Plans.GetByID(ctx, trainerID, *p.PlanID); err == nil {
					pname = pl.Name
				}
				planNames[*p.PlanID] = pname
			}
			row.PlanName = pname
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *paymentService) Export(ctx context.Context, trainerID string, filter repository.PaymentFilter, w io.Writer) (int, error) {
	rows, err := s.exportRows(ctx, trainerID, filter)
	if err != nil {
		return 0, err
	}
	if err := report.WritePayments(w, rows, nowFunc()); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *paymentService) ExportToStorage(ctx context.Context, trainerID string, filter repository.PaymentFilter) (*ExportResult, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageNotConfigured
	}
	var buf bytes.Buffer
	n, err := s.Export(ctx, trainerID, filter, &buf)
	if err != nil {
		return nil, err
	}

	now := nowFunc()
	key := storage.ExportKey(trainerID, "payments.xlsx", now)
	if err := s.fileStorage.PutObject(ctx, key, report.XLSXContentType, &buf); err != nil {
		return nil, err
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, s.presignExpiry)
	if err != nil {
		return nil, err
	}
	return &ExportResult{ObjectKey: key, DownloadURL: url, ExpiresAt: now.Add(s.presignExpiry), Rows: n}, nil
}
