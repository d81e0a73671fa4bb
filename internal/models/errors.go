package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrAmountNotPositive    = errors.New("the amount must be positive")
	ErrKindInvalid          = errors.New("the transaction kind is invalid")
	ErrDateNotSet           = errors.New("the date must be set")
	ErrSelfTransfer         = errors.New("the source and destination project of a transfer must be different")
	ErrProjectNotActive     = errors.New("the source project does not permit spending in its current status")
	ErrProjectStatusInvalid = errors.New("the project status is invalid")
	ErrProjectImmutable     = errors.New("only the status of a project can be changed once transactions reference it")
	ErrAllocationNegative   = errors.New("the allocated amount must not be negative")
	ErrCategoryKeyEmpty     = errors.New("the category key must not be empty")
	ErrCategoryKeyNotUnique = errors.New("the category key must be unique for the project")
	ErrCategoryNotResolved  = errors.New("the category could not be resolved by key or label")
	ErrTransactionImmutable = errors.New("transactions cannot be updated, only deleted")
	ErrTransferLegManaged   = errors.New("transfer legs can only be created by the transfer coordinator")
	ErrInsufficientBalance  = errors.New("the remaining balance of the source category is too low")
)

// InsufficientBalanceError is returned when a transfer exceeds the remaining
// balance of the source category. It carries the actual remaining amount so
// that callers can show it to the operator.
type InsufficientBalanceError struct {
	Remaining decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: %s is available", ErrInsufficientBalance, e.Remaining)
}

// Is makes the error match ErrInsufficientBalance for errors.Is.
func (e InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
