package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fleetdesk-driver-wallet/internal/domain/request"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/wallet_api/service"
)

// RequestHandler handles HTTP requests for the wallet request workflow
type RequestHandler struct {
	approvalService service.ApprovalService
	logger          *slog.Logger
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(logger *slog.Logger, approvalService service.ApprovalService) *RequestHandler {
	return &RequestHandler{
		approvalService: approvalService,
		logger:          logger,
	}
}

// Create files a new pending add/withdraw request for a driver
func (h *RequestHandler) Create(c *gin.Context) {
	driverID, ok := parseDriverID(c, h.logger)
	if !ok {
		return
	}

	var req CreateWalletRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.approvalService.CreateRequest(
		c.Request.Context(),
		driverID,
		request.Type(req.Type),
		req.Amount,
		req.Reason,
	)
	if err != nil {
		h.logger.Error("Failed to create wallet request", "driver_id", driverID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondCreated(c, mapRequestToResponse(created))
}

// Decide applies an admin approval or rejection to a pending request
func (h *RequestHandler) Decide(c *gin.Context) {
	requestID, ok := h.parseRequestID(c)
	if !ok {
		return
	}

	var req DecideWalletRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor, ok := actorFromHeaders(c, h.logger)
	if !ok {
		return
	}

	var settlement *wallet.Settlement
	if req.Settlement != nil {
		settlement = &wallet.Settlement{
			PaymentMethod: wallet.PaymentMethod(req.Settlement.PaymentMethod),
			ExternalTxnID: req.Settlement.ExternalTxnID,
		}
	}

	resolved, err := h.approvalService.Decide(
		c.Request.Context(),
		requestID,
		request.Decision(req.Decision),
		req.Remark,
		settlement,
		actor,
	)
	if err != nil {
		h.logger.Error("Failed to decide wallet request", "request_id", requestID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, mapRequestToResponse(resolved))
}

// GetByID returns a single wallet request, resolved or not
func (h *RequestHandler) GetByID(c *gin.Context) {
	requestID, ok := h.parseRequestID(c)
	if !ok {
		return
	}

	req, err := h.approvalService.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		h.logger.Error("Failed to get wallet request", "request_id", requestID.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	RespondOK(c, mapRequestToResponse(req))
}

// ListPending returns the admin queue of unresolved requests, oldest first
func (h *RequestHandler) ListPending(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	reqs, total, err := h.approvalService.ListPending(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list pending requests", "error", err)
		respondDomainError(c, err)
		return
	}

	responses := make([]WalletRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		responses = append(responses, mapRequestToResponse(req))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

func (h *RequestHandler) parseRequestID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	requestID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid request ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid request ID")
		return uuid.Nil, false
	}
	return requestID, true
}

// mapRequestToResponse maps a wallet request to its response DTO
func mapRequestToResponse(req *request.Request) WalletRequestResponse {
	response := WalletRequestResponse{
		ID:        req.ID.String(),
		DriverID:  req.DriverID.String(),
		Type:      string(req.Type),
		Amount:    req.Amount,
		Reason:    req.Reason,
		Status:    string(req.Status),
		Remark:    req.Remark,
		CreatedAt: req.CreatedAt.Format(time.RFC3339),
	}

	if req.Settlement != nil {
		response.Settlement = &SettlementPayload{
			PaymentMethod: string(req.Settlement.PaymentMethod),
			ExternalTxnID: req.Settlement.ExternalTxnID,
		}
	}
	if req.TransactionID != nil {
		response.TransactionID = req.TransactionID.String()
	}
	if req.ResolvedAt != nil {
		response.ResolvedAt = req.ResolvedAt.Format(time.RFC3339)
	}
	if req.ResolvedBy != nil {
		response.ResolvedBy = req.ResolvedBy.ID
	}

	return response
}
