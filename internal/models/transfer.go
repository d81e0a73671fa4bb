package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferRequest describes one budget movement between two
// (project, category) pairs. The categories may differ.
type TransferRequest struct {
	FromProjectID   uuid.UUID
	FromCategoryKey string
	ToProjectID     uuid.UUID
	ToCategoryKey   string
	Amount          decimal.Decimal
	Date            time.Time
	Note            string
	ActorID         string
}

// TransferResult holds both legs of a completed transfer.
type TransferResult struct {
	PairID            uuid.UUID           `json:"pairId"`
	Outgoing          Transaction         `json:"outgoing"`
	Incoming          Transaction         `json:"incoming"`
	CreatedAllocation *CategoryAllocation `json:"createdAllocation,omitempty"` // Set when the destination category was created by this transfer
}

// Transfer moves money between two (project, category) pairs as one atomic
// operation: either both legs are written or neither is.
//
// The balance sufficiency check runs inside the same database transaction
// as the writes, so two transfers draining the same category cannot both
// pass the check and overdraw it.
func Transfer(db *gorm.DB, request TransferRequest) (TransferResult, error) {
	request.FromCategoryKey = NormalizeCategoryKey(request.FromCategoryKey)
	request.ToCategoryKey = NormalizeCategoryKey(request.ToCategoryKey)

	if !request.Amount.IsPositive() {
		return TransferResult{}, ErrAmountNotPositive
	}

	if request.FromProjectID == request.ToProjectID {
		return TransferResult{}, ErrSelfTransfer
	}

	if request.FromCategoryKey == "" || request.ToCategoryKey == "" {
		return TransferResult{}, ErrCategoryKeyEmpty
	}

	if request.Date.IsZero() {
		request.Date = time.Now().In(time.UTC)
	} else {
		request.Date = request.Date.In(time.UTC)
	}

	var result TransferResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var source, destination Project
		err := tx.First(&source, "id = ?", request.FromProjectID).Error
		if err != nil {
			return err
		}

		err = tx.First(&destination, "id = ?", request.ToProjectID).Error
		if err != nil {
			return err
		}

		// The UI layer already restricts transfers to active projects, but
		// the engine rejects them on its own as well
		if source.Status != ProjectStatusActive {
			return ErrProjectNotActive
		}

		balance, err := GetCategoryBalance(tx, request.FromProjectID, request.FromCategoryKey)
		if err != nil {
			return err
		}

		if balance.Remaining.LessThan(request.Amount) {
			return InsufficientBalanceError{Remaining: balance.Remaining}
		}

		pairID := uuid.New()

		note := request.Note
		if note != "" {
			note += " "
		}

		outgoing := Transaction{
			ProjectID:               request.FromProjectID,
			CategoryKey:             request.FromCategoryKey,
			Kind:                    KindTransferOut,
			Amount:                  request.Amount,
			Date:                    request.Date,
			Note:                    fmt.Sprintf("%s(transfer to %s / %s)", note, destination.Name, request.ToCategoryKey),
			ActorID:                 request.ActorID,
			PairID:                  &pairID,
			CounterpartyProjectID:   &request.ToProjectID,
			CounterpartyCategoryKey: request.ToCategoryKey,
		}
		err = tx.Create(&outgoing).Error
		if err != nil {
			return err
		}

		// Create the destination category on the fly when it does not exist
		_, err = ResolveByKey(tx, request.ToProjectID, request.ToCategoryKey)
		if err != nil {
			if !errors.Is(err, ErrResourceNotFound) {
				return err
			}

			label := labelForKey(request.ToCategoryKey)
			if sourceAllocation, err := ResolveByKey(tx, request.FromProjectID, request.FromCategoryKey); err == nil {
				label = sourceAllocation.Label
			}

			created := CategoryAllocation{
				ProjectID:   request.ToProjectID,
				CategoryKey: request.ToCategoryKey,
				Amount:      decimal.Zero,
				Label:       label,
				AutoCreated: true,
			}
			err = tx.Create(&created).Error
			if err != nil {
				return err
			}

			result.CreatedAllocation = &created
		}

		incoming := Transaction{
			ProjectID:               request.ToProjectID,
			CategoryKey:             request.ToCategoryKey,
			Kind:                    KindTransferIn,
			Amount:                  request.Amount,
			Date:                    request.Date,
			Note:                    fmt.Sprintf("%s(transfer from %s / %s)", note, source.Name, request.FromCategoryKey),
			ActorID:                 request.ActorID,
			PairID:                  &pairID,
			CounterpartyProjectID:   &request.FromProjectID,
			CounterpartyCategoryKey: request.FromCategoryKey,
		}
		err = tx.Create(&incoming).Error
		if err != nil {
			return err
		}

		result.PairID = pairID
		result.Outgoing = outgoing
		result.Incoming = incoming

		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	return result, nil
}

// PairedTransaction returns the counterpart leg of a transfer transaction.
func PairedTransaction(db *gorm.DB, transaction Transaction) (Transaction, error) {
	if transaction.PairID == nil {
		return Transaction{}, fmt.Errorf("%w transfer pair for this transaction", ErrResourceNotFound)
	}

	var paired Transaction
	err := db.Where("pair_id = ? AND id != ?", transaction.PairID, transaction.ID).
		First(&paired).Error

	return paired, err
}
