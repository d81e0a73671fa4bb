package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// UsageLevel flags projects by how much of their transfer-adjusted
// allocation is already spent. The thresholds are a fixed policy.
type UsageLevel string

const (
	UsageLevelOK       UsageLevel = "ok"
	UsageLevelWarning  UsageLevel = "warning"  // spent / allocated > 0.8
	UsageLevelCritical UsageLevel = "critical" // spent / allocated > 0.9
)

var (
	usageWarning  = decimal.NewFromFloat(0.8)
	usageCritical = decimal.NewFromFloat(0.9)
)

// SummaryFilter restricts the project set and date range of a summary.
type SummaryFilter struct {
	ProjectID  *uuid.UUID // Only this project
	FiscalYear *int       // Only projects of this fiscal year
	From       *time.Time // Only transactions at or after this date
	Until      *time.Time // Only transactions before or at this date
	WorkGroup  string     // Work group, supports globbing with * as wildcard
}

// CategorySummary aggregates balances across projects by category display
// label.
//
// Grouping is by label, not key: legacy data labels the same key
// differently per project, and operators read the label. Distinct keys
// with identical labels merge into one row, a known ambiguity.
type CategorySummary struct {
	Label          string          `json:"label" example:"Supplies"`
	Allocated      decimal.Decimal `json:"allocated"`
	Spent          decimal.Decimal `json:"spent"`
	TransferredIn  decimal.Decimal `json:"transferredIn"`
	TransferredOut decimal.Decimal `json:"transferredOut"`
	Remaining      decimal.Decimal `json:"remaining"`
}

// WorkGroupSummary aggregates project balances by work group.
type WorkGroupSummary struct {
	WorkGroup string          `json:"workGroup" example:"science"`
	Projects  int             `json:"projects" example:"3"`
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ProjectUsage is the high-usage flag for one project.
type ProjectUsage struct {
	ProjectID uuid.UUID       `json:"projectId"`
	Name      string          `json:"name" example:"Chemistry fair"`
	Allocated decimal.Decimal `json:"allocated"` // Transfer-adjusted allocation
	Spent     decimal.Decimal `json:"spent"`
	Usage     decimal.Decimal `json:"usage" example:"0.85"`
	Level     UsageLevel      `json:"level" example:"warning"`
}

// SummaryTotals sums all filtered projects.
type SummaryTotals struct {
	Allocated      decimal.Decimal `json:"allocated"`
	Spent          decimal.Decimal `json:"spent"`
	TransferredIn  decimal.Decimal `json:"transferredIn"`
	TransferredOut decimal.Decimal `json:"transferredOut"`
	Remaining      decimal.Decimal `json:"remaining"`
}

// SummaryReport is the result of Summarize.
type SummaryReport struct {
	ByCategory  []CategorySummary  `json:"byCategory"`
	ByWorkGroup []WorkGroupSummary `json:"byWorkGroup"`
	Totals      SummaryTotals      `json:"totals"`
	HighUsage   []ProjectUsage     `json:"highUsage"` // Projects above the warning threshold
}

// Summarize aggregates category balances across the filtered project set.
func Summarize(db *gorm.DB, filter SummaryFilter) (SummaryReport, error) {
	query := db.Model(&Project{})
	if filter.ProjectID != nil {
		query = query.Where("id = ?", filter.ProjectID)
	}
	if filter.FiscalYear != nil {
		query = query.Where("fiscal_year = ?", filter.FiscalYear)
	}

	var projects []Project
	err := query.Find(&projects).Error
	if err != nil {
		return SummaryReport{}, err
	}

	byCategory := make(map[string]*CategorySummary)
	byWorkGroup := make(map[string]*WorkGroupSummary)
	var totals SummaryTotals
	var highUsage []ProjectUsage

	for _, project := range projects {
		if filter.WorkGroup != "" && !glob.Glob(filter.WorkGroup, project.WorkGroup) {
			continue
		}

		balances, err := projectCategoryBalancesBetween(db, project.ID, filter.From, filter.Until)
		if err != nil {
			return SummaryReport{}, err
		}

		var projectAllocated, projectSpent, projectRemaining decimal.Decimal
		for _, balance := range balances {
			category, ok := byCategory[balance.Label]
			if !ok {
				category = &CategorySummary{Label: balance.Label}
				byCategory[balance.Label] = category
			}

			category.Allocated = category.Allocated.Add(balance.Allocated)
			category.Spent = category.Spent.Add(balance.Spent)
			category.TransferredIn = category.TransferredIn.Add(balance.TransferredIn)
			category.TransferredOut = category.TransferredOut.Add(balance.TransferredOut)
			category.Remaining = category.Remaining.Add(balance.Remaining)

			totals.Allocated = totals.Allocated.Add(balance.Allocated)
			totals.Spent = totals.Spent.Add(balance.Spent)
			totals.TransferredIn = totals.TransferredIn.Add(balance.TransferredIn)
			totals.TransferredOut = totals.TransferredOut.Add(balance.TransferredOut)
			totals.Remaining = totals.Remaining.Add(balance.Remaining)

			projectAllocated = projectAllocated.Add(balance.Allocated).Add(balance.TransferredIn).Sub(balance.TransferredOut)
			projectSpent = projectSpent.Add(balance.Spent)
			projectRemaining = projectRemaining.Add(balance.Remaining)
		}

		workGroup, ok := byWorkGroup[project.WorkGroup]
		if !ok {
			workGroup = &WorkGroupSummary{WorkGroup: project.WorkGroup}
			byWorkGroup[project.WorkGroup] = workGroup
		}
		workGroup.Projects++
		workGroup.Allocated = workGroup.Allocated.Add(projectAllocated)
		workGroup.Spent = workGroup.Spent.Add(projectSpent)
		workGroup.Remaining = workGroup.Remaining.Add(projectRemaining)

		if usage, level := usageOf(projectSpent, projectAllocated); level != UsageLevelOK {
			highUsage = append(highUsage, ProjectUsage{
				ProjectID: project.ID,
				Name:      project.Name,
				Allocated: projectAllocated,
				Spent:     projectSpent,
				Usage:     usage,
				Level:     level,
			})
		}
	}

	report := SummaryReport{
		ByCategory:  make([]CategorySummary, 0, len(byCategory)),
		ByWorkGroup: make([]WorkGroupSummary, 0, len(byWorkGroup)),
		Totals:      totals,
		HighUsage:   highUsage,
	}

	for _, category := range byCategory {
		report.ByCategory = append(report.ByCategory, *category)
	}
	slices.SortFunc(report.ByCategory, func(a, b CategorySummary) int {
		return compareStrings(a.Label, b.Label)
	})

	for _, workGroup := range byWorkGroup {
		report.ByWorkGroup = append(report.ByWorkGroup, *workGroup)
	}
	slices.SortFunc(report.ByWorkGroup, func(a, b WorkGroupSummary) int {
		return compareStrings(a.WorkGroup, b.WorkGroup)
	})

	return report, nil
}

// usageOf computes spent / allocated against the transfer-adjusted
// allocation and maps it to the fixed usage tiers.
func usageOf(spent, allocated decimal.Decimal) (decimal.Decimal, UsageLevel) {
	if !allocated.IsPositive() {
		return decimal.Zero, UsageLevelOK
	}

	usage := spent.Div(allocated)

	switch {
	case usage.GreaterThan(usageCritical):
		return usage, UsageLevelCritical
	case usage.GreaterThan(usageWarning):
		return usage, UsageLevelWarning
	default:
		return usage, UsageLevelOK
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
