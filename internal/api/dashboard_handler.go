package api

import (
	"alcyxob/trainer-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardResponse holds the home screen KPIs. Amounts are in cents of the trainer's currency.
type DashboardResponse struct {
	ActiveStudents   int               `json:"activeStudents"`
	ActivePlans      int               `json:"activePlans"`
	SharedPlans      int               `json:"sharedPlans"`
	MonthStart       time.Time         `json:"monthStart"`
	RevenueThisMonth int64             `json:"revenueThisMonth"`
	PaidThisMonth    int               `json:"paidThisMonth"`
	PendingCount     int               `json:"pendingCount"`
	PendingAmount    int64             `json:"pendingAmount"`
	OverdueCount     int               `json:"overdueCount"`
	OverdueAmount    int64             `json:"overdueAmount"`
	RecentPayments   []PaymentResponse `json:"recentPayments"`
}

// GetDashboard godoc
// @Summary Trainer dashboard KPIs
// @Description Revenue covers the current calendar month (UTC).
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	d, err := h.dashboardService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		ActiveStudents:   d.ActiveStudents,
		ActivePlans:      d.ActivePlans,
		SharedPlans:      d.SharedPlans,
		MonthStart:       d.MonthStart,
		RevenueThisMonth: d.Payments.PaidAmount,
		PaidThisMonth:    d.Payments.PaidCount,
		PendingCount:     d.Payments.PendingCount,
		PendingAmount:    d.Payments.PendingAmount,
		OverdueCount:     d.Payments.OverdueCount,
		OverdueAmount:    d.Payments.OverdueAmount,
		RecentPayments:   MapPaymentsToResponse(d.Recent, time.Now()),
	})
}
