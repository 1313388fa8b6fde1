package api

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/report"
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func createStudent(t *testing.T, s *testServer, token, name string) StudentResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/students", gin.H{"name": name}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[StudentResponse](t, rec)
}

func TestPaymentHandler_CRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "coach@test.test")
	student := createStudent(t, s, token, "Ana")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	nextWeek := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	rec := s.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID, "amountCents": 4500, "dueDate": yesterday, "method": " PIX ",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	overdue := decode[PaymentResponse](t, rec)
	assert.Equal(t, domain.PaymentPending, overdue.Status)
	assert.True(t, overdue.Overdue)
	assert.Equal(t, "USD", overdue.Currency)
	assert.Equal(t, "pix", overdue.Method)

	rec = s.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID, "amountCents": 6000, "dueDate": nextWeek,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	upcoming := decode[PaymentResponse](t, rec)
	assert.False(t, upcoming.Overdue)

	// Paying clears the overdue flag.
	rec = s.do(t, http.MethodPost, "/api/payments/"+overdue.ID+"/pay", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	paid := decode[PaymentResponse](t, rec)
	assert.Equal(t, domain.PaymentPaid, paid.Status)
	assert.False(t, paid.Overdue)
	require.NotNil(t, paid.PaidAt)

	rec = s.do(t, http.MethodGet, "/api/payments?status=paid", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListResponse[PaymentResponse]](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, overdue.ID, list.Data[0].ID)

	rec = s.do(t, http.MethodGet, "/api/payments", nil, token)
	list = decode[ListResponse[PaymentResponse]](t, rec)
	require.Len(t, list.Data, 2)
	assert.Equal(t, upcoming.ID, list.Data[0].ID, "newest due date first")

	// Cancel, then paying is refused.
	rec = s.do(t, http.MethodPut, "/api/payments/"+upcoming.ID, gin.H{
		"studentId": student.ID, "amountCents": 6000, "dueDate": nextWeek, "status": "cancelled",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/payments/"+upcoming.ID+"/pay", nil, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/payments/"+upcoming.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/payments/"+upcoming.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	other := s.signUp(t, "other@test.test")
	rec = s.do(t, http.MethodGet, "/api/payments/"+overdue.ID, nil, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentHandler_Validation(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "coach@test.test")
	student := createStudent(t, s, token, "Ana")

	tests := []struct {
		name     string
		method   string
		path     string
		body     gin.H
		wantCode int
	}{
		{name: "missing amount", method: http.MethodPost, path: "/api/payments", body: gin.H{"studentId": student.ID, "dueDate": "2024-05-01"}, wantCode: http.StatusBadRequest},
		{name: "negative amount", method: http.MethodPost, path: "/api/payments", body: gin.H{"studentId": student.ID, "amountCents": -5, "dueDate": "2024-05-01"}, wantCode: http.StatusBadRequest},
		{name: "unknown status", method: http.MethodPost, path: "/api/payments", body: gin.H{"studentId": student.ID, "amountCents": 100, "dueDate": "2024-05-01", "status": "refunded"}, wantCode: http.StatusBadRequest},
		{name: "unknown student", method: http.MethodPost, path: "/api/payments", body: gin.H{"studentId": "ghost", "amountCents": 100, "dueDate": "2024-05-01"}, wantCode: http.StatusBadRequest},
		{name: "bad due date", method: http.MethodPost, path: "/api/payments", body: gin.H{"studentId": student.ID, "amountCents": 100, "dueDate": "soon"}, wantCode: http.StatusBadRequest},
		{name: "bad currency", method: http.MethodPost, path: "/api/payments", body: gin.H{"studentId": student.ID, "amountCents": 100, "dueDate": "2024-05-01", "currency": "dollars"}, wantCode: http.StatusBadRequest},
		{name: "unknown payment", method: http.MethodPost, path: "/api/payments/ghost/pay", wantCode: http.StatusNotFound},
		{name: "bad status filter", method: http.MethodGet, path: "/api/payments?status=lost", wantCode: http.StatusBadRequest},
		{name: "bad from filter", method: http.MethodGet, path: "/api/payments?from=yesterday", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body interface{}
			if tt.body != nil {
				body = tt.body
			}
			rec := s.do(t, tt.method, tt.path, body, token)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestPaymentHandler_Export(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "coach@test.test")
	student := createStudent(t, s, token, "Ana")
	for _, amount := range []int{1000, 2500} {
		rec := s.do(t, http.MethodPost, "/api/payments", gin.H{
			"studentId": student.ID, "amountCents": amount, "dueDate": "2024-05-01",
		}, token)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/payments/export.xlsx", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, report.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Export-Rows"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payments.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Payments")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// Uploading needs object storage.
	rec = s.do(t, http.MethodPost, "/api/payments/export", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "coach@test.test")
	student := createStudent(t, s, token, "Ana")
	createStudent(t, s, token, "Bruno")

	rec := s.do(t, http.MethodPost, "/api/plans", gin.H{"name": "Base", "studentId": student.ID}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	plan := decode[PlanResponse](t, rec)
	rec = s.do(t, http.MethodPost, "/api/plans/"+plan.ID+"/share", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	today := time.Now().UTC().Format("2006-01-02")
	rec = s.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID, "amountCents": 8000, "dueDate": today, "status": "paid",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID, "amountCents": 3000, "dueDate": "2020-01-01",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dash := decode[DashboardResponse](t, rec)
	assert.Equal(t, 2, dash.ActiveStudents)
	assert.Equal(t, 1, dash.ActivePlans)
	assert.Equal(t, 1, dash.SharedPlans)
	assert.Equal(t, int64(8000), dash.RevenueThisMonth)
	assert.Equal(t, 1, dash.PaidThisMonth)
	assert.Equal(t, 1, dash.PendingCount)
	assert.Equal(t, int64(3000), dash.PendingAmount)
	assert.Equal(t, 1, dash.OverdueCount)
	assert.Equal(t, int64(3000), dash.OverdueAmount)
	assert.Len(t, dash.RecentPayments, 2)

	// A fresh trainer sees zeros, not another tenant's numbers.
	rec = s.do(t, http.MethodGet, "/api/dashboard", nil, s.signUp(t, "other@test.test"))
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[DashboardResponse](t, rec)
	assert.Zero(t, empty.ActiveStudents)
	assert.Zero(t, empty.RevenueThisMonth)
	assert.Empty(t, empty.RecentPayments)
}
