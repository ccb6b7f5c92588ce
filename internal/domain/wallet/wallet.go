package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds the cached balance for a single driver. The balance is derived
// from the wallet_transactions ledger and must always equal the sum of that
// driver's transaction amounts.
type Wallet struct {
	DriverID  uuid.UUID `json:"driver_id"`
	Balance   int64     `json:"balance"` // Stored in cents/minor units
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWallet creates an empty wallet for a driver. Wallets are created lazily
// on the first transaction for a driver.
func NewWallet(driverID uuid.UUID) *Wallet {
	now := time.Now()
	return &Wallet{
		DriverID:  driverID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyDelta adds a signed amount to the balance. The balance may never go
// negative; a debit exceeding the current balance is rejected without
// mutating the wallet.
func (w *Wallet) ApplyDelta(amount int64) error {
	newBalance := w.Balance + amount
	if newBalance < 0 {
		return ErrInsufficientBalance{
			DriverID: w.DriverID,
			Balance:  w.Balance,
			Debit:    -amount,
		}
	}

	w.Balance = newBalance
	w.UpdatedAt = time.Now()
	return nil
}

// CanDebit checks whether the wallet covers a debit of the given size
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance >= amount
}
