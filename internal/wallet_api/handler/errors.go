package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fleetdesk-driver-wallet/internal/domain/request"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// respondDomainError maps domain errors onto HTTP statuses in one place so
// every handler reports the same status for the same failure.
func respondDomainError(c *gin.Context, err error) {
	var insufficient wallet.ErrInsufficientBalance
	var alreadyResolved request.ErrAlreadyResolved

	switch {
	case errors.As(err, &insufficient):
		RespondUnprocessable(c, "INSUFFICIENT_BALANCE", err.Error())
	case errors.As(err, &alreadyResolved):
		RespondConflict(c, "ALREADY_RESOLVED", err.Error())
	case errors.Is(err, request.ErrRequestNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.Is(err, wallet.ErrWalletNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.Is(err, wallet.ErrTransactionNotFound{}):
		RespondNotFound(c, err.Error())
	case isValidationError(err):
		RespondBadRequest(c, err.Error())
	default:
		RespondInternalError(c)
	}
}

func isValidationError(err error) bool {
	validationErrs := []error{
		wallet.ErrInvalidAmount,
		wallet.ErrZeroAmount,
		wallet.ErrDriverIDRequired,
		wallet.ErrInvalidKind,
		wallet.ErrReasonRequired,
		wallet.ErrRemarkRequired,
		wallet.ErrInvalidDirection,
		wallet.ErrInvalidPaymentMethod,
		wallet.ErrSettlementRequired,
		wallet.ErrUnexpectedSettlement,
		wallet.ErrRelatedRequestRequired,
		request.ErrInvalidType,
		request.ErrInvalidDecision,
	}
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
