package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// CategoryBalance is the computed state of one budget line.
//
// Remaining = Allocated + TransferredIn - TransferredOut - Spent. It can be
// negative; clamping for display is up to the caller.
type CategoryBalance struct {
	ProjectID      uuid.UUID       `json:"projectId"`
	CategoryKey    string          `json:"categoryKey" example:"SUPPLIES"`
	Label          string          `json:"label" example:"Supplies"`
	AutoCreated    bool            `json:"autoCreated"`       // True when the allocation was created by a transfer
	Allocated      decimal.Decimal `json:"allocated"`         // The amount allocated to the category
	Spent          decimal.Decimal `json:"spent"`             // Net spend: expenses minus income
	TransferredIn  decimal.Decimal `json:"transferredIn"`     // Sum of transfer_in magnitudes
	TransferredOut decimal.Decimal `json:"transferredOut"`    // Sum of transfer_out magnitudes
	Remaining      decimal.Decimal `json:"remaining"`         // The remaining balance
}

// ProjectBalance is the computed state of a whole project.
type ProjectBalance struct {
	ProjectID           uuid.UUID       `json:"projectId"`
	TotalAllocated      decimal.Decimal `json:"totalAllocated"`
	TotalSpent          decimal.Decimal `json:"totalSpent"`
	TotalTransferredIn  decimal.Decimal `json:"totalTransferredIn"`
	TotalTransferredOut decimal.Decimal `json:"totalTransferredOut"`
	Remaining           decimal.Decimal `json:"remaining"`
}

// activity holds the transaction sums for one (project, category) pair,
// split by kind.
type activity struct {
	income  decimal.Decimal
	expense decimal.Decimal
	in      decimal.Decimal
	out     decimal.Decimal
}

// spent is the net spend of the activity.
func (a activity) spent() decimal.Decimal {
	return a.expense.Sub(a.income)
}

type kindSum struct {
	CategoryKey string
	Kind        TransactionKind
	Total       decimal.NullDecimal
}

// categoryActivity sums the transactions of a project by category and kind,
// optionally bounded by a date range. The query is read-only and safe for
// any number of concurrent callers.
func categoryActivity(db *gorm.DB, projectID uuid.UUID, from, until *time.Time) (map[string]activity, error) {
	query := db.Model(&Transaction{}).
		Select("category_key, kind, SUM(amount) AS total").
		Where("project_id = ?", projectID)

	if from != nil {
		query = query.Where("date >= ?", from)
	}
	if until != nil {
		query = query.Where("date <= ?", until)
	}

	var sums []kindSum
	err := query.
		Group("category_key").
		Group("kind").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	activities := make(map[string]activity)
	for _, sum := range sums {
		a := activities[sum.CategoryKey]

		switch sum.Kind {
		case KindIncome:
			a.income = a.income.Add(sum.Total.Decimal)
		case KindExpense:
			a.expense = a.expense.Add(sum.Total.Decimal)
		case KindTransferIn:
			a.in = a.in.Add(sum.Total.Decimal)
		case KindTransferOut:
			a.out = a.out.Add(sum.Total.Decimal)
		}

		activities[sum.CategoryKey] = a
	}

	return activities, nil
}

// balanceFor combines an allocation with transaction activity.
func balanceFor(allocation CategoryAllocation, a activity) CategoryBalance {
	return CategoryBalance{
		ProjectID:      allocation.ProjectID,
		CategoryKey:    allocation.CategoryKey,
		Label:          allocation.Label,
		AutoCreated:    allocation.AutoCreated,
		Allocated:      allocation.Amount,
		Spent:          a.spent(),
		TransferredIn:  a.in,
		TransferredOut: a.out,
		Remaining:      allocation.Amount.Add(a.in).Sub(a.out).Sub(a.spent()),
	}
}

// GetCategoryBalance computes the balance of one budget line.
//
// A category without an allocation row is valid and returns a balance with
// an allocation of 0, reflecting only its transaction activity.
func GetCategoryBalance(db *gorm.DB, projectID uuid.UUID, categoryKey string) (CategoryBalance, error) {
	categoryKey = NormalizeCategoryKey(categoryKey)

	allocation, err := ResolveByKey(db, projectID, categoryKey)
	if err != nil {
		if !errors.Is(err, ErrResourceNotFound) {
			return CategoryBalance{}, err
		}

		allocation = CategoryAllocation{
			ProjectID:   projectID,
			CategoryKey: categoryKey,
			Label:       labelForKey(categoryKey),
		}
	}

	var sums []kindSum
	err = db.Model(&Transaction{}).
		Select("category_key, kind, SUM(amount) AS total").
		Where("project_id = ? AND category_key = ?", projectID, categoryKey).
		Group("category_key").
		Group("kind").
		Scan(&sums).Error
	if err != nil {
		return CategoryBalance{}, err
	}

	var a activity
	for _, sum := range sums {
		switch sum.Kind {
		case KindIncome:
			a.income = a.income.Add(sum.Total.Decimal)
		case KindExpense:
			a.expense = a.expense.Add(sum.Total.Decimal)
		case KindTransferIn:
			a.in = a.in.Add(sum.Total.Decimal)
		case KindTransferOut:
			a.out = a.out.Add(sum.Total.Decimal)
		}
	}

	return balanceFor(allocation, a), nil
}

// GetProjectBalance computes the balance of a whole project across all its
// categories.
func GetProjectBalance(db *gorm.DB, projectID uuid.UUID) (ProjectBalance, error) {
	var project Project
	err := db.First(&project, "id = ?", projectID).Error
	if err != nil {
		return ProjectBalance{}, err
	}

	var allocated decimal.NullDecimal
	err = db.Model(&CategoryAllocation{}).
		Where("project_id = ?", projectID).
		Select("SUM(amount)").
		Row().
		Scan(&allocated)
	if err != nil {
		return ProjectBalance{}, err
	}

	activities, err := categoryActivity(db, projectID, nil, nil)
	if err != nil {
		return ProjectBalance{}, err
	}

	balance := ProjectBalance{
		ProjectID:      projectID,
		TotalAllocated: allocated.Decimal,
	}

	for _, a := range activities {
		balance.TotalSpent = balance.TotalSpent.Add(a.spent())
		balance.TotalTransferredIn = balance.TotalTransferredIn.Add(a.in)
		balance.TotalTransferredOut = balance.TotalTransferredOut.Add(a.out)
	}

	balance.Remaining = balance.TotalAllocated.
		Add(balance.TotalTransferredIn).
		Sub(balance.TotalTransferredOut).
		Sub(balance.TotalSpent)

	return balance, nil
}

// GetProjectCategoryBalances computes the balance of every category of a
// project.
//
// Categories that exist only through transactions have no allocation row.
// They are synthesized with an allocation of 0 instead of being omitted,
// otherwise summary reports would lose their activity.
func GetProjectCategoryBalances(db *gorm.DB, projectID uuid.UUID) ([]CategoryBalance, error) {
	var project Project
	err := db.First(&project, "id = ?", projectID).Error
	if err != nil {
		return nil, err
	}

	return projectCategoryBalancesBetween(db, projectID, nil, nil)
}

// projectCategoryBalancesBetween is GetProjectCategoryBalances with an
// optional date range for the transaction activity. Allocations are not
// dated, they always count in full.
func projectCategoryBalancesBetween(db *gorm.DB, projectID uuid.UUID, from, until *time.Time) ([]CategoryBalance, error) {
	var allocations []CategoryAllocation
	err := db.Where(&CategoryAllocation{ProjectID: projectID}).Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	activities, err := categoryActivity(db, projectID, from, until)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]CategoryAllocation, len(allocations))
	for _, allocation := range allocations {
		byKey[allocation.CategoryKey] = allocation
	}

	for key := range activities {
		if _, ok := byKey[key]; !ok {
			byKey[key] = CategoryAllocation{
				ProjectID:   projectID,
				CategoryKey: key,
				Label:       labelForKey(key),
			}
		}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	balances := make([]CategoryBalance, 0, len(keys))
	for _, key := range keys {
		balances = append(balances, balanceFor(byKey[key], activities[key]))
	}

	return balances, nil
}
