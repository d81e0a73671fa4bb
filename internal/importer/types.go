package importer

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolbudget/backend/internal/models"
	"github.com/shopspring/decimal"
)

// RecordKind is the kind of a record in a batch file. Transfers are one
// record in the file and become a transaction pair in the ledger.
type RecordKind string

const (
	RecordIncome   RecordKind = "income"
	RecordExpense  RecordKind = "expense"
	RecordTransfer RecordKind = "transfer"
)

// Record is one row of a batch import.
//
// Category holds a category key or a display label; resolution tries the
// key first and falls back to the label. For transfers, ToProjectID and
// ToCategory describe the destination.
type Record struct {
	Kind        RecordKind      `json:"kind" example:"expense"`
	ProjectID   uuid.UUID       `json:"projectId"`
	Category    string          `json:"category" example:"SUPPLIES"`
	ToProjectID uuid.UUID       `json:"toProjectId,omitempty"`
	ToCategory  string          `json:"toCategory,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount" example:"14.03"`
	Description string          `json:"description" example:"Poster paint"`
	Reference   string          `json:"reference,omitempty" example:"INV-2026-0117"`
}

// SkippedDuplicate is a record that was not imported because it matches an
// existing transaction or an earlier record of the same batch.
type SkippedDuplicate struct {
	Record Record `json:"record"`
	Reason string `json:"reason" example:"duplicate of existing transaction"`
}

// RecordError is a per-record validation failure. It does not abort the
// batch.
type RecordError struct {
	Record Record `json:"record"`
	Error  string `json:"error" example:"the category could not be resolved by key or label"`
}

// Result is the outcome of one batch import. Partial success is the
// expected case, not an error.
type Result struct {
	Imported          []models.Transaction `json:"imported"`
	SkippedDuplicates []SkippedDuplicate   `json:"skippedDuplicates"`
	Errors            []RecordError        `json:"errors"`
}
