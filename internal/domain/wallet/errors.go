package wallet

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation errors. All of them are caller-fixable input problems and are
// raised before any storage access.
var (
	ErrInvalidAmount          = errors.New("amount must be a positive integer")
	ErrZeroAmount             = errors.New("transaction amount cannot be zero")
	ErrDriverIDRequired       = errors.New("driver id is required")
	ErrInvalidKind            = errors.New("invalid transaction kind")
	ErrReasonRequired         = errors.New("reason code cannot be empty")
	ErrRemarkRequired         = errors.New("remark is required")
	ErrInvalidDirection       = errors.New("direction must be ADD or SUBTRACT")
	ErrInvalidPaymentMethod   = errors.New("payment method must be one of BANK, UPI, CASH, OTHER")
	ErrSettlementRequired     = errors.New("settlement with payment method and external transaction id is required")
	ErrUnexpectedSettlement   = errors.New("settlement is only recorded for approved withdrawals")
	ErrRelatedRequestRequired = errors.New("request settlements must reference the resolved request")
)

// ErrInsufficientBalance indicates a debit that would drive the balance
// negative. Nothing is written when it is returned; the caller may retry
// once the driver's balance changes.
type ErrInsufficientBalance struct {
	DriverID uuid.UUID
	Balance  int64
	Debit    int64
}

func (e ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("insufficient balance for driver %s: balance %d, debit %d", e.DriverID, e.Balance, e.Debit)
}

// Is implements the errors.Is interface for ErrInsufficientBalance
func (e ErrInsufficientBalance) Is(target error) bool {
	t, ok := target.(ErrInsufficientBalance)
	if !ok {
		return false
	}
	if t.DriverID == uuid.Nil {
		return true
	}
	return e.DriverID == t.DriverID
}

// ErrWalletNotFound indicates a driver with no wallet row. Balance queries
// treat this as a zero balance; it only surfaces from low-level lookups.
type ErrWalletNotFound struct {
	DriverID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found for driver: " + e.DriverID.String()
}

// Is implements the errors.Is interface for ErrWalletNotFound
func (e ErrWalletNotFound) Is(target error) bool {
	t, ok := target.(ErrWalletNotFound)
	if !ok {
		return false
	}
	if t.DriverID == uuid.Nil {
		return true
	}
	return e.DriverID == t.DriverID
}

// ErrDuplicateTransaction indicates a ledger append that collided with an
// already stored entry (same id or dedup key)
type ErrDuplicateTransaction struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateTransaction) Error() string {
	return "duplicate wallet transaction: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrDuplicateTransaction
func (e ErrDuplicateTransaction) Is(target error) bool {
	t, ok := target.(ErrDuplicateTransaction)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrTransactionNotFound indicates a missing ledger entry
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "wallet transaction not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
