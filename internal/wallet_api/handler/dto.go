package handler

// CreateWalletRequestRequest represents a driver's request to add or withdraw funds
type CreateWalletRequestRequest struct {
	Type   string `json:"type" binding:"required,oneof=ADD WITHDRAW"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required"`
}

// SettlementPayload carries how an approved withdrawal was paid out
type SettlementPayload struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	ExternalTxnID string `json:"external_txn_id" binding:"required"`
}

// DecideWalletRequestRequest represents an admin decision on a pending request
type DecideWalletRequestRequest struct {
	Decision   string             `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Remark     string             `json:"remark" binding:"required"`
	Settlement *SettlementPayload `json:"settlement,omitempty"`
}

// AdjustWalletRequest represents a direct admin credit or debit
type AdjustWalletRequest struct {
	Direction  string `json:"direction" binding:"required,oneof=ADD SUBTRACT"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	ReasonCode string `json:"reason_code" binding:"required"`
	Remark     string `json:"remark" binding:"required"`
	DedupKey   string `json:"dedup_key,omitempty"`
}

// WalletRequestResponse represents a wallet request in API responses
type WalletRequestResponse struct {
	ID            string             `json:"id"`
	DriverID      string             `json:"driver_id"`
	Type          string             `json:"type"`
	Amount        int64              `json:"amount"`
	Reason        string             `json:"reason"`
	Status        string             `json:"status"`
	Remark        string             `json:"remark,omitempty"`
	Settlement    *SettlementPayload `json:"settlement,omitempty"`
	TransactionID string             `json:"transaction_id,omitempty"`
	CreatedAt     string             `json:"created_at"`
	ResolvedAt    string             `json:"resolved_at,omitempty"`
	ResolvedBy    string             `json:"resolved_by,omitempty"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID               string             `json:"id"`
	Seq              int64              `json:"seq"`
	DriverID         string             `json:"driver_id"`
	Amount           int64              `json:"amount"`
	Kind             string             `json:"kind"`
	Reason           string             `json:"reason"`
	Remark           string             `json:"remark,omitempty"`
	RelatedRequestID string             `json:"related_request_id,omitempty"`
	Settlement       *SettlementPayload `json:"settlement,omitempty"`
	CreatedAt        string             `json:"created_at"`
	CreatedBy        string             `json:"created_by,omitempty"`
}

// BalanceResponse represents a driver's wallet balance in API responses
type BalanceResponse struct {
	DriverID string `json:"driver_id"`
	Balance  int64  `json:"balance"`
}

// AuditResponse represents a balance consistency check in API responses
type AuditResponse struct {
	DriverID      string `json:"driver_id"`
	CachedBalance int64  `json:"cached_balance"`
	LedgerSum     int64  `json:"ledger_sum"`
	Consistent    bool   `json:"consistent"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// TransactionListParams extends pagination with an ordering switch
type TransactionListParams struct {
	PaginationParams
	Order string `form:"order,default=desc" binding:"oneof=asc desc"`
}
