package request

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrInvalidType indicates a request type outside ADD/WITHDRAW
var ErrInvalidType = errors.New("request type must be ADD or WITHDRAW")

// ErrInvalidDecision indicates a decision outside APPROVED/REJECTED
var ErrInvalidDecision = errors.New("decision must be APPROVED or REJECTED")

// Repository manages wallet request persistence. Only the resolution fields
// of a request row are ever mutated, and only once.
type Repository interface {
	Create(ctx context.Context, req *Request) error

	// GetByID returns the request or ErrRequestNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// LockForUpdate loads the request under a row lock so concurrent
	// decisions on the same request serialize
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)

	// Resolve persists the terminal status and resolution fields. It only
	// matches rows still in PENDING and returns ErrAlreadyResolved otherwise.
	Resolve(ctx context.Context, req *Request) error

	// ListPending returns pending requests oldest-first for the admin queue
	ListPending(ctx context.Context, limit, offset int) ([]*Request, error)

	CountPending(ctx context.Context) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrRequestNotFound indicates a missing wallet request
type ErrRequestNotFound struct {
	RequestID uuid.UUID
}

func (e ErrRequestNotFound) Error() string {
	return "wallet request not found: " + e.RequestID.String()
}

// Is implements the errors.Is interface for ErrRequestNotFound
func (e ErrRequestNotFound) Is(target error) bool {
	t, ok := target.(ErrRequestNotFound)
	if !ok {
		return false
	}
	if t.RequestID == uuid.Nil {
		return true
	}
	return e.RequestID == t.RequestID
}

// ErrAlreadyResolved indicates a decision against a request that already
// left PENDING. The caller's view is stale; it should re-fetch the request
// rather than retry.
type ErrAlreadyResolved struct {
	RequestID uuid.UUID
	Status    Status
}

func (e ErrAlreadyResolved) Error() string {
	return "wallet request " + e.RequestID.String() + " already resolved as " + string(e.Status)
}

// Is implements the errors.Is interface for ErrAlreadyResolved
func (e ErrAlreadyResolved) Is(target error) bool {
	t, ok := target.(ErrAlreadyResolved)
	if !ok {
		return false
	}
	if t.RequestID == uuid.Nil {
		return true
	}
	return e.RequestID == t.RequestID
}
