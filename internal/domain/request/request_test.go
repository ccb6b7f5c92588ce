package request

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

func TestNew(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		driverID := uuid.New()

		req, err := New(driverID, TypeWithdraw, 5000, "fuel money")

		require.NoError(t, err)
		require.NotNil(t, req)
		assert.NotEqual(t, uuid.Nil, req.ID)
		assert.Equal(t, driverID, req.DriverID)
		assert.Equal(t, TypeWithdraw, req.Type)
		assert.Equal(t, int64(5000), req.Amount)
		assert.Equal(t, "fuel money", req.Reason)
		assert.Equal(t, StatusPending, req.Status)
		assert.True(t, req.IsPending())
		assert.Nil(t, req.ResolvedAt)
		assert.Nil(t, req.ResolvedBy)
	})

	t.Run("MissingDriverID", func(t *testing.T) {
		_, err := New(uuid.Nil, TypeAdd, 1000, "bonus")
		assert.ErrorIs(t, err, wallet.ErrDriverIDRequired)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := New(uuid.New(), "TRANSFER", 1000, "bonus")
		assert.ErrorIs(t, err, ErrInvalidType)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		_, err := New(uuid.New(), TypeAdd, 0, "bonus")
		assert.ErrorIs(t, err, wallet.ErrInvalidAmount)

		_, err = New(uuid.New(), TypeAdd, -100, "bonus")
		assert.ErrorIs(t, err, wallet.ErrInvalidAmount)
	})
}

func TestRequest_SignedAmount(t *testing.T) {
	add, err := New(uuid.New(), TypeAdd, 2500, "top up")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), add.SignedAmount())

	withdraw, err := New(uuid.New(), TypeWithdraw, 2500, "payout")
	require.NoError(t, err)
	assert.Equal(t, int64(-2500), withdraw.SignedAmount())
}

func TestRequest_Approve(t *testing.T) {
	actor := wallet.Actor{ID: "admin-1", Role: "admin"}
	settlement := &wallet.Settlement{PaymentMethod: wallet.PaymentMethodUPI, ExternalTxnID: "txn123"}
	now := time.Now()

	t.Run("ApproveWithdrawWithSettlement", func(t *testing.T) {
		req, err := New(uuid.New(), TypeWithdraw, 3000, "payout")
		require.NoError(t, err)
		txnID := uuid.New()

		err = req.Approve("verified against bank statement", settlement, txnID, actor, now)

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, req.Status)
		assert.False(t, req.IsPending())
		assert.Equal(t, "verified against bank statement", req.Remark)
		assert.Equal(t, settlement, req.Settlement)
		require.NotNil(t, req.TransactionID)
		assert.Equal(t, txnID, *req.TransactionID)
		require.NotNil(t, req.ResolvedAt)
		assert.Equal(t, now, *req.ResolvedAt)
		require.NotNil(t, req.ResolvedBy)
		assert.Equal(t, actor, *req.ResolvedBy)
	})

	t.Run("ApproveAddWithoutSettlement", func(t *testing.T) {
		req, err := New(uuid.New(), TypeAdd, 3000, "top up")
		require.NoError(t, err)

		err = req.Approve("ok", nil, uuid.New(), actor, now)

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, req.Status)
		assert.Nil(t, req.Settlement)
	})

	t.Run("ApproveWithdrawWithoutSettlementFails", func(t *testing.T) {
		req, err := New(uuid.New(), TypeWithdraw, 3000, "payout")
		require.NoError(t, err)

		err = req.Approve("ok", nil, uuid.New(), actor, now)

		assert.ErrorIs(t, err, wallet.ErrSettlementRequired)
		assert.Equal(t, StatusPending, req.Status, "Request must stay pending when approval fails")
	})

	t.Run("ApproveAddWithSettlementFails", func(t *testing.T) {
		req, err := New(uuid.New(), TypeAdd, 3000, "top up")
		require.NoError(t, err)

		err = req.Approve("ok", settlement, uuid.New(), actor, now)

		assert.ErrorIs(t, err, wallet.ErrUnexpectedSettlement)
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("ApproveWithoutRemarkFails", func(t *testing.T) {
		req, err := New(uuid.New(), TypeWithdraw, 3000, "payout")
		require.NoError(t, err)

		err = req.Approve("", settlement, uuid.New(), actor, now)

		assert.ErrorIs(t, err, wallet.ErrRemarkRequired)
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("ApproveResolvedRequestFails", func(t *testing.T) {
		req, err := New(uuid.New(), TypeWithdraw, 3000, "payout")
		require.NoError(t, err)
		require.NoError(t, req.Approve("ok", settlement, uuid.New(), actor, now))

		err = req.Approve("again", settlement, uuid.New(), actor, now)

		var alreadyResolved ErrAlreadyResolved
		require.ErrorAs(t, err, &alreadyResolved)
		assert.Equal(t, req.ID, alreadyResolved.RequestID)
		assert.Equal(t, StatusApproved, alreadyResolved.Status)
	})
}

func TestRequest_Reject(t *testing.T) {
	actor := wallet.Actor{ID: "admin-2", Role: "admin"}
	now := time.Now()

	t.Run("SuccessfulRejection", func(t *testing.T) {
		req, err := New(uuid.New(), TypeWithdraw, 3000, "payout")
		require.NoError(t, err)

		err = req.Reject("driver has open dispute", actor, now)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, req.Status)
		assert.Equal(t, "driver has open dispute", req.Remark)
		assert.Nil(t, req.TransactionID, "Rejection must not reference a ledger entry")
		assert.Nil(t, req.Settlement)
		require.NotNil(t, req.ResolvedAt)
		require.NotNil(t, req.ResolvedBy)
		assert.Equal(t, actor, *req.ResolvedBy)
	})

	t.Run("RejectWithoutRemarkFails", func(t *testing.T) {
		req, err := New(uuid.New(), TypeAdd, 3000, "top up")
		require.NoError(t, err)

		err = req.Reject("", actor, now)

		assert.ErrorIs(t, err, wallet.ErrRemarkRequired)
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("RejectResolvedRequestFails", func(t *testing.T) {
		req, err := New(uuid.New(), TypeAdd, 3000, "top up")
		require.NoError(t, err)
		require.NoError(t, req.Reject("duplicate request", actor, now))

		err = req.Reject("again", actor, now)

		var alreadyResolved ErrAlreadyResolved
		require.ErrorAs(t, err, &alreadyResolved)
		assert.Equal(t, StatusRejected, alreadyResolved.Status)
	})
}
