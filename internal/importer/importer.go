package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schoolbudget/backend/internal/importer/helpers"
	"github.com/schoolbudget/backend/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// amountTolerance is the maximum difference between two amounts that still
// counts as a duplicate. Spreadsheet exports round inconsistently.
var amountTolerance = decimal.NewFromFloat(0.01)

var recordKinds = []RecordKind{RecordIncome, RecordExpense, RecordTransfer}

var (
	errKindInvalid     = errors.New("the record kind must be income, expense or transfer")
	errDateNotSet      = errors.New("the record date must be set")
	errSameDuplicate   = errors.New("duplicate of an earlier record in this batch")
	errStoredDuplicate = errors.New("duplicate of an existing transaction")
)

// accepted tracks the identity of a record accepted earlier in the same
// batch, so that a file containing the same movement twice imports it once.
type accepted struct {
	transfer      bool
	projectID     uuid.UUID
	categoryKey   string
	toProjectID   uuid.UUID
	toCategoryKey string
	day           time.Time
	description   string
	amount        decimal.Decimal
}

// ImportBatch loads records through the regular creation paths, skipping
// records that duplicate stored transactions or earlier records of the
// same batch.
//
// Records are processed sequentially so that acceptance decisions are
// serialized. One record's failure does not abort the batch; it is
// collected into the result. Only a failure to read the transaction store
// is returned as an error.
func ImportBatch(db *gorm.DB, records []Record, actorID string) (Result, error) {
	result := Result{
		Imported:          []models.Transaction{},
		SkippedDuplicates: []SkippedDuplicate{},
		Errors:            []RecordError{},
	}

	var seen []accepted

	for _, record := range records {
		identity, err := validate(db, record)
		if err != nil {
			result.Errors = append(result.Errors, RecordError{Record: record, Error: err.Error()})
			continue
		}

		err = duplicateOf(db, identity, seen)
		if errors.Is(err, errSameDuplicate) || errors.Is(err, errStoredDuplicate) {
			result.SkippedDuplicates = append(result.SkippedDuplicates, SkippedDuplicate{
				Record: record,
				Reason: err.Error(),
			})
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("checking for duplicates failed: %w", err)
		}

		transactions, err := create(db, record, identity, actorID)
		if err != nil {
			result.Errors = append(result.Errors, RecordError{Record: record, Error: err.Error()})
			continue
		}

		seen = append(seen, identity)
		result.Imported = append(result.Imported, transactions...)
	}

	log.Info().
		Int("imported", len(result.Imported)).
		Int("skipped", len(result.SkippedDuplicates)).
		Int("errors", len(result.Errors)).
		Msg("batch import finished")

	return result, nil
}

// validate checks one record and resolves its categories. It returns the
// normalized identity used for duplicate detection.
func validate(db *gorm.DB, record Record) (accepted, error) {
	if !slices.Contains(recordKinds, record.Kind) {
		return accepted{}, errKindInvalid
	}

	if !record.Amount.IsPositive() {
		return accepted{}, models.ErrAmountNotPositive
	}

	if record.Date.IsZero() {
		return accepted{}, errDateNotSet
	}

	var project models.Project
	err := db.First(&project, "id = ?", record.ProjectID).Error
	if err != nil {
		return accepted{}, err
	}

	allocation, err := models.ResolveCategory(db, record.ProjectID, record.Category)
	if err != nil {
		return accepted{}, err
	}

	identity := accepted{
		projectID:   record.ProjectID,
		categoryKey: allocation.CategoryKey,
		day:         dayOf(record.Date),
		description: normalizeDescription(record.Description),
		amount:      record.Amount,
	}

	if record.Kind != RecordTransfer {
		return identity, nil
	}

	identity.transfer = true
	identity.toProjectID = record.ToProjectID

	var destination models.Project
	err = db.First(&destination, "id = ?", record.ToProjectID).Error
	if err != nil {
		return accepted{}, err
	}

	// The destination category of a transfer may not exist yet, the
	// transfer coordinator creates it. Resolve by key and label first so
	// that label input maps onto the existing key.
	toAllocation, err := models.ResolveCategory(db, record.ToProjectID, record.ToCategory)
	if err == nil {
		identity.toCategoryKey = toAllocation.CategoryKey
	} else {
		identity.toCategoryKey = models.NormalizeCategoryKey(record.ToCategory)
		if identity.toCategoryKey == "" {
			return accepted{}, models.ErrCategoryKeyEmpty
		}
	}

	return identity, nil
}

// duplicateOf checks the identity against records accepted earlier in the
// batch and against the stored transaction log.
func duplicateOf(db *gorm.DB, identity accepted, seen []accepted) error {
	for _, earlier := range seen {
		if earlier.matches(identity) {
			return errSameDuplicate
		}
	}

	dayEnd := identity.day.AddDate(0, 0, 1)

	if identity.transfer {
		var existing []models.Transaction
		err := db.
			Where("kind = ?", models.KindTransferOut).
			Where("project_id = ? AND category_key = ?", identity.projectID, identity.categoryKey).
			Where("counterparty_project_id = ? AND counterparty_category_key = ?", identity.toProjectID, identity.toCategoryKey).
			Where("date >= ? AND date < ?", identity.day, dayEnd).
			Find(&existing).Error
		if err != nil {
			return err
		}

		for _, transaction := range existing {
			if withinTolerance(transaction.Amount, identity.amount) {
				return errStoredDuplicate
			}
		}

		return nil
	}

	var existing []models.Transaction
	err := db.
		Where("kind IN ?", []models.TransactionKind{models.KindIncome, models.KindExpense}).
		Where("project_id = ? AND category_key = ?", identity.projectID, identity.categoryKey).
		Where("date >= ? AND date < ?", identity.day, dayEnd).
		Find(&existing).Error
	if err != nil {
		return err
	}

	for _, transaction := range existing {
		if normalizeDescription(transaction.Note) == identity.description && withinTolerance(transaction.Amount, identity.amount) {
			return errStoredDuplicate
		}
	}

	return nil
}

// create writes the record through the same paths as interactive postings:
// plain records through CreateTransaction, transfers through the transfer
// coordinator so both legs commit or roll back together.
func create(db *gorm.DB, record Record, identity accepted, actorID string) ([]models.Transaction, error) {
	if identity.transfer {
		result, err := models.Transfer(db, models.TransferRequest{
			FromProjectID:   identity.projectID,
			FromCategoryKey: identity.categoryKey,
			ToProjectID:     identity.toProjectID,
			ToCategoryKey:   identity.toCategoryKey,
			Amount:          record.Amount,
			Date:            record.Date,
			Note:            record.Description,
			ActorID:         actorID,
		})
		if err != nil {
			return nil, err
		}

		return []models.Transaction{result.Outgoing, result.Incoming}, nil
	}

	kind := models.KindIncome
	if record.Kind == RecordExpense {
		kind = models.KindExpense
	}

	transaction, err := models.CreateTransaction(db, models.Transaction{
		ProjectID:   identity.projectID,
		CategoryKey: identity.categoryKey,
		Kind:        kind,
		Amount:      record.Amount,
		Date:        record.Date,
		Note:        record.Description,
		Reference:   record.Reference,
		ActorID:     actorID,
		ImportHash:  identity.hash(),
	})
	if err != nil {
		return nil, err
	}

	return []models.Transaction{transaction}, nil
}

// matches reports whether two identities describe the same movement.
func (a accepted) matches(b accepted) bool {
	if a.transfer != b.transfer || a.projectID != b.projectID || a.categoryKey != b.categoryKey || !a.day.Equal(b.day) {
		return false
	}

	if !withinTolerance(a.amount, b.amount) {
		return false
	}

	if a.transfer {
		return a.toProjectID == b.toProjectID && a.toCategoryKey == b.toCategoryKey
	}

	return a.description == b.description
}

// hash returns the SHA256 hash over the identifying fields of the record.
// It is stored on imported transactions for later inspection.
func (a accepted) hash() string {
	return helpers.Sha256String(fmt.Sprintf(
		"%s:%s:%s:%s:%s",
		a.projectID, a.categoryKey, a.day.Format("2006-01-02"), a.description, a.amount.StringFixed(2),
	))
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}

// normalizeDescription lowercases a description and collapses all
// whitespace runs, so that dedup is case and space insensitive.
func normalizeDescription(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	t = t.In(time.UTC)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
