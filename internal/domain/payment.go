package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// PaymentStatus tracks a payment through its lifecycle.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCancelled:
		return true
	}
	return false
}

// Payment is money owed by a student, optionally for a specific plan.
// Amounts are stored in minor units (cents).
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:pay" bson:"-" json:"-"`

	ID          string        `bun:"id,pk,type:uuid" bson:"_id" json:"id"`
	TrainerID   string        `bun:"trainer_id,notnull,type:uuid" bson:"trainerId" json:"trainerId"`
	StudentID   string        `bun:"student_id,notnull,type:uuid" bson:"studentId" json:"studentId"`
	PlanID      *string       `bun:"plan_id,type:uuid" bson:"planId,omitempty" json:"planId,omitempty"`
	AmountCents int64         `bun:"amount_cents,notnull" bson:"amountCents" json:"amountCents"`
	Currency    string        `bun:"currency,notnull" bson:"currency" json:"currency"`
	Status      PaymentStatus `bun:"status,notnull" bson:"status" json:"status"`
	Method      string        `bun:"method" bson:"method,omitempty" json:"method,omitempty"` // "cash", "transfer", "card"
	Description string        `bun:"description" bson:"description,omitempty" json:"description,omitempty"`
	DueDate     time.Time     `bun:"due_date,notnull" bson:"dueDate" json:"dueDate"`
	PaidAt      *time.Time    `bun:"paid_at" bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt   time.Time     `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

// IsOverdue reports whether a pending payment is past its due date at now.
func (p *Payment) IsOverdue(now time.Time) bool {
	return p.Status == PaymentPending && p.DueDate.Before(now)
}

// PaymentStats aggregates a trainer's payments for the dashboard.
type PaymentStats struct {
	PaidAmount    int64 `json:"paidAmount"` // paid within the requested window
	PaidCount     int   `json:"paidCount"`
	PendingAmount int64 `json:"pendingAmount"`
	PendingCount  int   `json:"pendingCount"`
	OverdueAmount int64 `json:"overdueAmount"`
	OverdueCount  int   `json:"overdueCount"`
}

// Add folds a single payment into the stats. Used by backends without server-side aggregation.
func (s *PaymentStats) Add(p *Payment, from, to, now time.Time) {
	switch p.Status {
	case PaymentPaid:
		if p.PaidAt != nil && !p.PaidAt.Before(from) && p.PaidAt.Before(to) {
			s.PaidAmount += p.AmountCents
			s.PaidCount++
		}
	case PaymentPending:
		s.PendingAmount += p.AmountCents
		s.PendingCount++
		if p.IsOverdue(now) {
			s.OverdueAmount += p.AmountCents
			s.OverdueCount++
		}
	}
}
