// Package report reads and writes the spreadsheets trainers exchange with the app.
package report

import (
	"alcyxob/trainer-app/internal/domain"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	paymentsSheet = "Payments"
	summarySheet  = "Summary"

	// XLSXContentType is the MIME type of generated workbooks.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PaymentRow is one payment with the names it refers to resolved.
type PaymentRow struct {
	Payment     domain.Payment
	StudentName string
	PlanName    string
}

var paymentHeader = []interface{}{
	"Due date", "Student", "Plan", "Description", "Amount", "Currency", "Status", "Overdue", "Method", "Paid at",
}

// WritePayments renders rows into an xlsx workbook with a per-status summary sheet and writes it to w.
func WritePayments(w io.Writer, rows []PaymentRow, now time.Time) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("error closing payments workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), paymentsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(paymentsSheet, "A1", &paymentHeader); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(paymentsSheet, 1, 1, bold); err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	totals := map[domain.PaymentStatus]int64{}
	for i, row := range rows {
		p := row.Payment
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.UTC().Format(time.RFC3339)
		}
		overdue := "no"
		if p.IsOverdue(now) {
			overdue = "yes"
		}
		values := []interface{}{
			p.DueDate.UTC().Format("2006-01-02"),
			row.StudentName,
			row.PlanName,
			p.Description,
			float64(p.AmountCents) / 100,
			p.Currency,
			string(p.Status),
			overdue,
			p.Method,
			paidAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(paymentsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write payment row %d: %w", i+1, err)
		}
		totals[p.Status] += p.AmountCents
	}
	if len(rows) > 0 {
		if err := f.SetCellStyle(paymentsSheet, "E2", fmt.Sprintf("E%d", len(rows)+1), money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(paymentsSheet, "A", "J", 16); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Status", "Total"},
		{string(domain.PaymentPaid), float64(totals[domain.PaymentPaid]) / 100},
		{string(domain.PaymentPending), float64(totals[domain.PaymentPending]) / 100},
		{string(domain.PaymentCancelled), float64(totals[domain.PaymentCancelled]) / 100},
	}
	for i, values := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &values); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}
