package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/wallet_api/service"
)

const (
	actorIDHeader   = "X-Actor-ID"
	actorRoleHeader = "X-Actor-Role"
)

// WalletHandler handles HTTP requests for balances, ledger history, and
// direct adjustments
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// Adjust performs an immediate admin credit or debit on a driver's wallet
func (h *WalletHandler) Adjust(c *gin.Context) {
	driverID, ok := parseDriverID(c, h.logger)
	if !ok {
		return
	}

	var req AdjustWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor, ok := actorFromHeaders(c, h.logger)
	if !ok {
		return
	}

	txn, err := h.walletService.Adjust(
		c.Request.Context(),
		driverID,
		service.Direction(req.Direction),
		req.Amount,
		req.ReasonCode,
		req.Remark,
		req.DedupKey,
		actor,
	)
	if err != nil {
		h.logger.Error("Failed to adjust wallet", "driver_id", driverID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// GetBalance returns the current balance for a driver, 0 if no wallet exists yet
func (h *WalletHandler) GetBalance(c *gin.Context) {
	driverID, ok := parseDriverID(c, h.logger)
	if !ok {
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), driverID)
	if err != nil {
		h.logger.Error("Failed to get balance", "driver_id", driverID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, BalanceResponse{
		DriverID: driverID.String(),
		Balance:  balance,
	})
}

// ListTransactions returns a driver's paginated ledger history
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	driverID, ok := parseDriverID(c, h.logger)
	if !ok {
		return
	}

	var params TransactionListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	txns, total, err := h.walletService.ListTransactions(
		c.Request.Context(),
		driverID,
		params.Page,
		params.PerPage,
		params.Order == "desc",
	)
	if err != nil {
		h.logger.Error("Failed to list transactions", "driver_id", driverID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// Audit compares the cached balance against the recomputed ledger sum
func (h *WalletHandler) Audit(c *gin.Context) {
	driverID, ok := parseDriverID(c, h.logger)
	if !ok {
		return
	}

	report, err := h.walletService.Audit(c.Request.Context(), driverID)
	if err != nil {
		h.logger.Error("Failed to audit wallet", "driver_id", driverID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, AuditResponse{
		DriverID:      report.DriverID.String(),
		CachedBalance: report.CachedBalance,
		LedgerSum:     report.LedgerSum,
		Consistent:    report.Consistent,
	})
}

// parseDriverID reads and validates the :driverId path parameter, responding
// with 400 on failure
func parseDriverID(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	idParam := c.Param("driverId")
	driverID, err := uuid.Parse(idParam)
	if err != nil {
		logger.Error("Invalid driver ID", "driver_id", idParam, "error", err)
		RespondBadRequest(c, "Invalid driver ID")
		return uuid.Nil, false
	}
	return driverID, true
}

// actorFromHeaders builds the acting admin identity from request headers,
// responding with 400 when the actor is missing
func actorFromHeaders(c *gin.Context, logger *slog.Logger) (wallet.Actor, bool) {
	actor := wallet.Actor{
		ID:   c.GetHeader(actorIDHeader),
		Role: c.GetHeader(actorRoleHeader),
	}
	if actor.ID == "" {
		logger.Error("Missing actor header", "header", actorIDHeader)
		RespondBadRequest(c, "Missing "+actorIDHeader+" header")
		return wallet.Actor{}, false
	}
	if actor.Role == "" {
		actor.Role = "admin"
	}
	return actor, true
}

// mapTransactionToResponse maps a ledger transaction to its response DTO
func mapTransactionToResponse(txn *wallet.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:        txn.ID.String(),
		Seq:       txn.Seq,
		DriverID:  txn.DriverID.String(),
		Amount:    txn.Amount,
		Kind:      string(txn.Kind),
		Reason:    txn.Reason,
		Remark:    txn.Remark,
		CreatedAt: txn.CreatedAt.Format(time.RFC3339),
		CreatedBy: txn.CreatedBy.ID,
	}

	if txn.RelatedRequestID != nil {
		response.RelatedRequestID = txn.RelatedRequestID.String()
	}
	if txn.Settlement != nil {
		response.Settlement = &SettlementPayload{
			PaymentMethod: string(txn.Settlement.PaymentMethod),
			ExternalTxnID: txn.Settlement.ExternalTxnID,
		}
	}

	return response
}
