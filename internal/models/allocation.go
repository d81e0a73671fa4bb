package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryAllocation is a named budget line of a project with the amount
// allocated to it.
//
// Allocations are created explicitly when a project is defined or edited.
// The transfer coordinator creates them implicitly with an amount of 0 when
// a transfer targets a category the destination project does not have yet.
type CategoryAllocation struct {
	DefaultModel
	ProjectID   uuid.UUID `gorm:"uniqueIndex:allocation_project_id_category_key"`
	Project     Project
	CategoryKey string          `gorm:"uniqueIndex:allocation_project_id_category_key"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Label       string
	Note        string
	AutoCreated bool // Set when the allocation was created by the transfer coordinator so that UIs can render it as "(new category)"
}

func (a CategoryAllocation) Self() string {
	return "Category Allocation"
}

// BeforeSave normalizes the category key, trims whitespace and rejects
// negative allocations.
func (a *CategoryAllocation) BeforeSave(_ *gorm.DB) error {
	a.CategoryKey = NormalizeCategoryKey(a.CategoryKey)
	a.Label = strings.TrimSpace(a.Label)
	a.Note = strings.TrimSpace(a.Note)

	if a.CategoryKey == "" {
		return ErrCategoryKeyEmpty
	}

	if a.Amount.IsNegative() {
		return ErrAllocationNegative
	}

	// Default the label to a readable form of the key
	if a.Label == "" {
		a.Label = labelForKey(a.CategoryKey)
	}

	return nil
}
