package service

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finanzas-be/internal/entities"
	"finanzas-be/internal/money"
)

// BreakdownLine is one category's share of a month's expenses
type BreakdownLine struct {
	CategoryName string
	Amount       decimal.Decimal
	Percentage   decimal.Decimal // of the month's total expense, one decimal
}

// MonthlyReport is the summary and per-category breakdown for one month
type MonthlyReport struct {
	Month     Month
	Summary   entities.Totals
	Breakdown []BreakdownLine
}

// ReportService composes read-only views over the ledger
type ReportService interface {
	MonthlySummary(ctx context.Context, ownerID string, month Month) (entities.Totals, error)
	CategoryBreakdown(ctx context.Context, ownerID string, month Month) ([]BreakdownLine, error)
	MonthlyReport(ctx context.Context, ownerID string, month Month) (*MonthlyReport, error)
	RenderTextReport(ctx context.Context, ownerID string, month Month) (string, error)
	CurrentMonth() Month
}

type reportService struct {
	movements MovementService
}

// NewReportService creates a report service reading through movements
func NewReportService(movements MovementService) ReportService {
	return &reportService{movements: movements}
}

func (s *reportService) CurrentMonth() Month {
	return s.movements.CurrentMonth()
}

func (s *reportService) MonthlySummary(ctx context.Context, ownerID string, month Month) (entities.Totals, error) {
	return s.movements.MonthTotals(ctx, ownerID, month)
}

func (s *reportService) CategoryBreakdown(ctx context.Context, ownerID string, month Month) ([]BreakdownLine, error) {
	sums, err := s.movements.ExpensesByCategory(ctx, ownerID, month)
	if err != nil {
		return nil, err
	}
	return breakdown(sums), nil
}

// breakdown turns category sums into lines, keeping their order. The
// percentages are relative to the sum of all lines.
func breakdown(sums []entities.CategoryAmount) []BreakdownLine {
	total := decimal.Zero
	for _, s := range sums {
		total = total.Add(s.Amount)
	}

	lines := make([]BreakdownLine, len(sums))
	for i, s := range sums {
		lines[i] = BreakdownLine{
			CategoryName: s.CategoryName,
			Amount:       s.Amount,
			Percentage:   money.Percent(s.Amount, total),
		}
	}
	return lines
}

// MonthlyReport loads the summary and breakdown concurrently
func (s *reportService) MonthlyReport(ctx context.Context, ownerID string, month Month) (*MonthlyReport, error) {
	report := &MonthlyReport{Month: month}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.MonthlySummary(gctx, ownerID, month)
		report.Summary = summary
		return err
	})
	g.Go(func() error {
		lines, err := s.CategoryBreakdown(gctx, ownerID, month)
		report.Breakdown = lines
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

// RenderTextReport formats the monthly report for a terminal
func (s *reportService) RenderTextReport(ctx context.Context, ownerID string, month Month) (string, error) {
	report, err := s.MonthlyReport(ctx, ownerID, month)
	if err != nil {
		return "", err
	}
	return FormatTextReport(report), nil
}

// FormatTextReport renders report as aligned plain text
func FormatTextReport(report *MonthlyReport) string {
	var b strings.Builder

	title := "Monthly report: " + report.Month.String()
	fmt.Fprintln(&b, title)
	fmt.Fprintln(&b, strings.Repeat("=", len(title)))

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Income\t%s\t\n", money.Format(report.Summary.Income))
	fmt.Fprintf(tw, "Expense\t%s\t\n", money.Format(report.Summary.Expense))
	fmt.Fprintf(tw, "Balance\t%s\t\n", money.Format(report.Summary.Balance))
	tw.Flush()

	fmt.Fprintln(&b)
	if len(report.Breakdown) == 0 {
		fmt.Fprintln(&b, "No expenses recorded this month.")
		return b.String()
	}

	fmt.Fprintln(&b, "Expenses by category")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, line := range report.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s%%\n", line.CategoryName, money.Format(line.Amount), line.Percentage.StringFixed(1))
	}
	tw.Flush()

	return b.String()
}
