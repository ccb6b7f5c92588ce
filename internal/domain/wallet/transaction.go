package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes how a ledger transaction originated
type Kind string

const (
	// KindRequestSettlement marks a transaction produced by approving a wallet request
	KindRequestSettlement Kind = "REQUEST_SETTLEMENT"
	// KindDirectAdjustment marks an administrator credit/debit with no prior request
	KindDirectAdjustment Kind = "DIRECT_ADJUSTMENT"
)

// PaymentMethod identifies how an approved withdrawal was paid out
type PaymentMethod string

const (
	PaymentMethodBank  PaymentMethod = "BANK"
	PaymentMethodUPI   PaymentMethod = "UPI"
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodOther PaymentMethod = "OTHER"
)

// Well-known reason codes. The set is open; these cover the flows the
// dashboard exposes today.
const (
	ReasonReferralBonus  = "referral_bonus"
	ReasonManualCredit   = "manual_credit"
	ReasonWithdrawal     = "withdrawal"
	ReasonAdminDeduction = "admin_deduction"
)

// Actor identifies who caused a balance change
type Actor struct {
	ID   string `json:"id" bson:"id"`
	Role string `json:"role" bson:"role"`
}

// Settlement is the external payment proof recorded when an approved
// withdrawal is paid out
type Settlement struct {
	PaymentMethod PaymentMethod `json:"payment_method" bson:"payment_method"`
	ExternalTxnID string        `json:"external_txn_id" bson:"external_txn_id"`
}

// Validate checks that both settlement fields are present and the payment
// method is one of the known values
func (s *Settlement) Validate() error {
	switch s.PaymentMethod {
	case PaymentMethodBank, PaymentMethodUPI, PaymentMethodCash, PaymentMethodOther:
	default:
		return ErrInvalidPaymentMethod
	}
	if s.ExternalTxnID == "" {
		return ErrSettlementRequired
	}
	return nil
}

// Transaction is an immutable ledger entry. Once persisted it is never
// mutated or deleted; corrections are new offsetting entries.
type Transaction struct {
	ID               uuid.UUID   `json:"id" bson:"id"`
	Seq              int64       `json:"seq" bson:"seq"` // Insertion sequence, breaks created_at ties
	DriverID         uuid.UUID   `json:"driver_id" bson:"driver_id"`
	Amount           int64       `json:"amount" bson:"amount"` // Signed, minor units; positive = credit
	Kind             Kind        `json:"kind" bson:"kind"`
	Reason           string      `json:"reason" bson:"reason"`
	Remark           string      `json:"remark,omitempty" bson:"remark,omitempty"`
	RelatedRequestID *uuid.UUID  `json:"related_request_id,omitempty" bson:"related_request_id,omitempty"`
	Settlement       *Settlement `json:"settlement,omitempty" bson:"settlement,omitempty"`
	DedupKey         string      `json:"dedup_key,omitempty" bson:"dedup_key,omitempty"`
	CreatedAt        time.Time   `json:"created_at" bson:"created_at"`
	CreatedBy        Actor       `json:"created_by" bson:"created_by"`
}

// Draft carries the fields of a transaction before it is applied. The apply
// primitive assigns the id and creation time, and the ledger store assigns
// the sequence number on append.
type Draft struct {
	DriverID         uuid.UUID
	Amount           int64
	Kind             Kind
	Reason           string
	Remark           string
	RelatedRequestID *uuid.UUID
	Settlement       *Settlement
	DedupKey         string
	Actor            Actor
}

// Validate checks the draft before any storage access
func (d *Draft) Validate() error {
	if d.DriverID == uuid.Nil {
		return ErrDriverIDRequired
	}
	if d.Amount == 0 {
		return ErrZeroAmount
	}
	switch d.Kind {
	case KindRequestSettlement, KindDirectAdjustment:
	default:
		return ErrInvalidKind
	}
	if d.Reason == "" {
		return ErrReasonRequired
	}
	if d.Kind == KindDirectAdjustment && d.Remark == "" {
		return ErrRemarkRequired
	}
	if d.Kind == KindRequestSettlement && d.RelatedRequestID == nil {
		return ErrRelatedRequestRequired
	}
	if d.Settlement != nil {
		// A settlement only accompanies an approved withdrawal
		if d.Kind != KindRequestSettlement || d.Amount >= 0 {
			return ErrUnexpectedSettlement
		}
		if err := d.Settlement.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NewTransaction materializes the draft into a ledger entry with a fresh id
// and creation time. Seq stays zero until the ledger store appends the row.
func (d *Draft) NewTransaction() *Transaction {
	return &Transaction{
		ID:               uuid.New(),
		DriverID:         d.DriverID,
		Amount:           d.Amount,
		Kind:             d.Kind,
		Reason:           d.Reason,
		Remark:           d.Remark,
		RelatedRequestID: d.RelatedRequestID,
		Settlement:       d.Settlement,
		DedupKey:         d.DedupKey,
		CreatedAt:        time.Now(),
		CreatedBy:        d.Actor,
	}
}

// LedgerEvent is the message emitted for every committed transaction. It is
// written to the outbox in the same database transaction as the ledger entry
// and later published to the event stream.
type LedgerEvent struct {
	Transaction  Transaction `json:"transaction" bson:"transaction"`
	BalanceAfter int64       `json:"balance_after" bson:"balance_after"`
	EmittedAt    time.Time   `json:"emitted_at" bson:"emitted_at"`
}
