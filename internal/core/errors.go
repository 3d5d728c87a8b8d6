package core

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every construction-time invariant failure.
// Callers can match the broad kind with errors.Is(err, ErrValidation) or a
// specific rule with the sentinels below.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is the root of lookup failures. The HTTP layer maps it to 404.
var ErrNotFound = errors.New("not found")

var (
	ErrInvalidAmount        = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidCurrency      = fmt.Errorf("%w: invalid currency", ErrValidation)
	ErrCurrencyMismatch     = fmt.Errorf("%w: currency mismatch", ErrValidation)
	ErrInvalidFinancialYear = fmt.Errorf("%w: invalid financial year", ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrEmptyID              = fmt.Errorf("%w: empty id", ErrValidation)
	ErrInvalidDescription   = fmt.Errorf("%w: invalid description", ErrValidation)
	ErrInvalidEntityType    = fmt.Errorf("%w: invalid entity type", ErrValidation)
	ErrInvalidTaxRate       = fmt.Errorf("%w: invalid tax rate", ErrValidation)
)

var (
	ErrCommissionNotFound    = fmt.Errorf("%w: commission", ErrNotFound)
	ErrTransactionNotFound   = fmt.Errorf("%w: transaction", ErrNotFound)
	ErrPartnerNotFound       = fmt.Errorf("%w: partner", ErrNotFound)
	ErrFinancialYearNotFound = fmt.Errorf("%w: financial year", ErrNotFound)
)
