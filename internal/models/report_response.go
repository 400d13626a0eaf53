package models

// BreakdownLineResponse is one category's share of a month's expenses
type BreakdownLineResponse struct {
	CategoryName string `json:"category_name"`
	Amount       string `json:"amount"`
	Percentage   string `json:"percentage"` // one decimal, no % sign
}

// MonthlyReportResponse represents GET /reports/monthly
type MonthlyReportResponse struct {
	Month     string                  `json:"month"` // YYYY-MM
	Label     string                  `json:"label"` // e.g. "March 2025"
	Summary   TotalsResponse          `json:"summary"`
	Breakdown []BreakdownLineResponse `json:"breakdown"`
}
