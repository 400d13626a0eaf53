package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"finanzas-be/internal/models"
	"finanzas-be/internal/money"
	"finanzas-be/internal/service"
)

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

func newMonthlyReportResponse(r *service.MonthlyReport) models.MonthlyReportResponse {
	lines := make([]models.BreakdownLineResponse, len(r.Breakdown))
	for i, l := range r.Breakdown {
		lines[i] = models.BreakdownLineResponse{
			CategoryName: l.CategoryName,
			Amount:       money.Format(l.Amount),
			Percentage:   l.Percentage.StringFixed(1),
		}
	}
	return models.MonthlyReportResponse{
		Month:     fmt.Sprintf("%04d-%02d", r.Month.Year, int(r.Month.Month)),
		Label:     r.Month.String(),
		Summary:   models.NewTotalsResponse(r.Summary),
		Breakdown: lines,
	}
}

// Monthly handles GET /api/v1/reports/monthly?year=&month=
func (rc *ReportController) Monthly(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	month, err := parseMonth(c, rc.reportService.CurrentMonth())
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := rc.reportService.MonthlyReport(c.Request.Context(), userID, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newMonthlyReportResponse(report))
}

// MonthlyText handles GET /api/v1/reports/monthly/text?year=&month=
func (rc *ReportController) MonthlyText(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	month, err := parseMonth(c, rc.reportService.CurrentMonth())
	if err != nil {
		respondError(c, err)
		return
	}

	text, err := rc.reportService.RenderTextReport(c.Request.Context(), userID, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.String(http.StatusOK, text)
}
