package request

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// Type defines the direction a driver asks for
type Type string

const (
	TypeAdd      Type = "ADD"
	TypeWithdraw Type = "WITHDRAW"
)

// Status defines the request lifecycle states. PENDING is the only
// non-terminal state; a request resolves exactly once.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Decision is an administrator's verdict on a pending request
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// Request is a driver-initiated add/withdraw proposal awaiting an
// administrator decision. The wallet is keyed by driver id, so the request
// references its wallet through DriverID.
type Request struct {
	ID            uuid.UUID          `json:"id"`
	DriverID      uuid.UUID          `json:"driver_id"`
	Type          Type               `json:"type"`
	Amount        int64              `json:"amount"` // Positive, minor units
	Reason        string             `json:"reason"`
	Status        Status             `json:"status"`
	Remark        string             `json:"remark,omitempty"`
	Settlement    *wallet.Settlement `json:"settlement,omitempty"`
	TransactionID *uuid.UUID         `json:"transaction_id,omitempty"` // Ledger entry created on approval
	CreatedAt     time.Time          `json:"created_at"`
	ResolvedAt    *time.Time         `json:"resolved_at,omitempty"`
	ResolvedBy    *wallet.Actor      `json:"resolved_by,omitempty"`
}

// New validates the driver-supplied fields and returns a pending request
func New(driverID uuid.UUID, reqType Type, amount int64, reason string) (*Request, error) {
	if driverID == uuid.Nil {
		return nil, wallet.ErrDriverIDRequired
	}
	if reqType != TypeAdd && reqType != TypeWithdraw {
		return nil, ErrInvalidType
	}
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}

	return &Request{
		ID:        uuid.New(),
		DriverID:  driverID,
		Type:      reqType,
		Amount:    amount,
		Reason:    reason,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// IsPending reports whether the request can still be resolved
func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// SignedAmount is the ledger delta an approval applies: positive for ADD,
// negative for WITHDRAW
func (r *Request) SignedAmount() int64 {
	if r.Type == TypeWithdraw {
		return -r.Amount
	}
	return r.Amount
}

// Approve moves the request to its APPROVED terminal state, recording the
// administrator remark, the settlement (withdrawals only) and the ledger
// entry it produced
func (r *Request) Approve(remark string, settlement *wallet.Settlement, transactionID uuid.UUID, actor wallet.Actor, at time.Time) error {
	if !r.IsPending() {
		return ErrAlreadyResolved{RequestID: r.ID, Status: r.Status}
	}
	if remark == "" {
		return wallet.ErrRemarkRequired
	}
	if r.Type == TypeWithdraw {
		if settlement == nil {
			return wallet.ErrSettlementRequired
		}
		if err := settlement.Validate(); err != nil {
			return err
		}
	} else if settlement != nil {
		return wallet.ErrUnexpectedSettlement
	}

	r.Status = StatusApproved
	r.Remark = remark
	r.Settlement = settlement
	r.TransactionID = &transactionID
	r.ResolvedAt = &at
	r.ResolvedBy = &actor
	return nil
}

// Reject moves the request to its REJECTED terminal state. Rejections never
// touch the ledger.
func (r *Request) Reject(remark string, actor wallet.Actor, at time.Time) error {
	if !r.IsPending() {
		return ErrAlreadyResolved{RequestID: r.ID, Status: r.Status}
	}
	if remark == "" {
		return wallet.ErrRemarkRequired
	}

	r.Status = StatusRejected
	r.Remark = remark
	r.ResolvedAt = &at
	r.ResolvedBy = &actor
	return nil
}
