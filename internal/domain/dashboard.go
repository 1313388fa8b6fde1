package domain

import "time"

// Dashboard holds the KPIs shown on a trainer's home screen.
type Dashboard struct {
	ActiveStudents int
	ActivePlans    int
	SharedPlans    int
	Payments       PaymentStats
	Recent         []Payment
	MonthStart     time.Time
}

// MonthBounds returns [start of t's month, start of next month) in UTC.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
