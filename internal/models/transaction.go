package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// TransactionKind describes the direction of a money movement.
//
// Amounts are stored as positive magnitudes; the kind determines the sign
// used in balance arithmetic.
type TransactionKind string

const (
	KindIncome      TransactionKind = "income"
	KindExpense     TransactionKind = "expense"
	KindTransferOut TransactionKind = "transfer_out"
	KindTransferIn  TransactionKind = "transfer_in"
)

var transactionKinds = []TransactionKind{KindIncome, KindExpense, KindTransferOut, KindTransferIn}

// IsTransfer reports whether the kind is one of the two transfer legs.
func (k TransactionKind) IsTransfer() bool {
	return k == KindTransferOut || k == KindTransferIn
}

// Transaction is one append-only record of money movement against a
// (project, category) pair.
//
// Transactions are immutable once created. Corrections are new transactions
// or hard deletes, never updates.
type Transaction struct {
	DefaultModel
	ProjectID   uuid.UUID `gorm:"index:transaction_project_id;index:transaction_project_id_category_key"`
	Project     Project
	CategoryKey string          `gorm:"index:transaction_project_id_category_key"`
	Kind        TransactionKind `gorm:"index"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Date        time.Time       `gorm:"index"`
	Note        string
	Reference   string
	ActorID     string

	// Transfer legs only: the shared pair ID and the counterparty, so that
	// for any transfer_out its exact transfer_in can be reconstructed and
	// vice versa.
	PairID                  *uuid.UUID `gorm:"index"`
	CounterpartyProjectID   *uuid.UUID
	CounterpartyCategoryKey string

	// SHA256 hash over the identifying fields, used in duplicate detection
	// when importing transactions
	ImportHash string `gorm:"index"`
}

func (t Transaction) Self() string {
	return "Transaction"
}

// AfterFind enforces dates to be in UTC.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return
}

// BeforeSave
//   - normalizes the category keys
//   - sets the timezone for the Date to UTC
//   - verifies kind and amount
//   - trims whitespace from string fields
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.CategoryKey = NormalizeCategoryKey(t.CategoryKey)
	t.CounterpartyCategoryKey = NormalizeCategoryKey(t.CounterpartyCategoryKey)
	t.Note = strings.TrimSpace(t.Note)
	t.Reference = strings.TrimSpace(t.Reference)
	t.ActorID = strings.TrimSpace(t.ActorID)
	t.ImportHash = strings.TrimSpace(t.ImportHash)

	if !slices.Contains(transactionKinds, t.Kind) {
		return ErrKindInvalid
	}

	if t.CategoryKey == "" {
		return ErrCategoryKeyEmpty
	}

	if !t.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	return nil
}

// BeforeUpdate rejects all updates. The transaction log is append-only.
func (t *Transaction) BeforeUpdate(_ *gorm.DB) error {
	return ErrTransactionImmutable
}

// Signed returns the amount with the sign implied by the kind: positive for
// income and transfer_in, negative for expense and transfer_out.
func (t Transaction) Signed() decimal.Decimal {
	switch t.Kind {
	case KindExpense, KindTransferOut:
		return t.Amount.Neg()
	default:
		return t.Amount
	}
}

// CreateTransaction appends an income or expense transaction for the given
// project and verifies that the project exists.
//
// Transfer legs are rejected here, they are written by Transfer so that
// they always exist in pairs.
func CreateTransaction(db *gorm.DB, transaction Transaction) (Transaction, error) {
	if transaction.Kind.IsTransfer() {
		return Transaction{}, ErrTransferLegManaged
	}

	var project Project
	err := db.First(&project, "id = ?", transaction.ProjectID).Error
	if err != nil {
		return Transaction{}, err
	}

	err = db.Create(&transaction).Error
	if err != nil {
		return Transaction{}, err
	}

	return transaction, nil
}

// DeleteTransaction removes a transaction permanently. For a transfer leg,
// the paired leg is removed in the same database transaction so that no
// singleton leg can be observed.
func DeleteTransaction(db *gorm.DB, id uuid.UUID) error {
	var transaction Transaction
	err := db.First(&transaction, "id = ?", id).Error
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if transaction.PairID != nil {
			err := tx.Unscoped().
				Where("pair_id = ?", transaction.PairID).
				Delete(&Transaction{}).Error
			if err != nil {
				return err
			}

			return nil
		}

		return tx.Unscoped().Delete(&transaction).Error
	})
}
