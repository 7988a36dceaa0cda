// Package fees records the fee transfers registry operations request from
// the ledger. Recording is the only fallible side effect of a registry
// write and happens after validation, before the write is applied.
package fees

//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks procurement/internal/fees Recorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "procurement/pkg/domain"
)

const (
	ReasonTenderRegistration  = "tender-registration"
	ReasonBidderQualification = "bidder-qualification"
)

// Transfer is a request that Amount move From the caller To the authority.
type Transfer struct {
	ID          uuid.UUID
	Amount      uint64
	From        id.Principal
	To          id.Principal
	Reason      string
	BlockHeight uint64
	RecordedAt  time.Time
}

// Recorder is the port services use to request a transfer.
type Recorder interface {
	Record(ctx context.Context, t Transfer) error
}

// Atomic is implemented by ledgers that can keep a recorded transfer
// pending until the registry write it pays for succeeds.
type Atomic interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// Within runs fn as one unit of work on r. Transfers recorded inside fn are
// discarded when fn fails, provided r implements Atomic.
func Within(ctx context.Context, r Recorder, fn func(ctx context.Context) error) error {
	if a, ok := r.(Atomic); ok {
		return a.Atomic(ctx, fn)
	}
	return fn(ctx)
}

// Lister exposes recorded transfers for read endpoints.
type Lister interface {
	ListByPayer(ctx context.Context, payers []id.Principal) ([]Transfer, error)
}

func normalize(t Transfer) Transfer {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.RecordedAt.IsZero() {
		t.RecordedAt = time.Now()
	}
	return t
}
