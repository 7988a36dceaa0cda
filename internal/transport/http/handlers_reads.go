package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"procurement/internal/fees"
	id "procurement/pkg/domain"
	dErrors "procurement/pkg/domain-errors"
	audit "procurement/pkg/platform/audit"
	"procurement/pkg/platform/httputil"
	strutil "procurement/pkg/platform/strings"
	"procurement/pkg/requestcontext"
)

const (
	defaultActivityLimit = 50
	maxPayerFilter       = 20
)

// ActivityReader is satisfied by the audit publisher.
type ActivityReader interface {
	List(ctx context.Context, actor id.Principal) ([]audit.Event, error)
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

type TransferResponse struct {
	ID          string    `json:"id"`
	Amount      uint64    `json:"amount"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Reason      string    `json:"reason"`
	BlockHeight uint64    `json:"block_height"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type EventResponse struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Component   string    `json:"component"`
	Action      string    `json:"action"`
	Actor       string    `json:"actor"`
	Subject     string    `json:"subject,omitempty"`
	BlockHeight uint64    `json:"block_height"`
	RequestID   string    `json:"request_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// handleListTransfers answers GET /fees/transfers?payer=a&payer=b. Without
// a payer filter the caller's own transfers are returned.
func handleListTransfers(lister fees.Lister, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		payers := strutil.DedupeAndTrim(r.URL.Query()["payer"])
		if len(payers) > maxPayerFilter {
			fail(w, r, logger, "list transfers", dErrors.New(dErrors.CodeBadRequest, "too many payer filters"))
			return
		}
		filter := make([]id.Principal, 0, len(payers))
		for _, p := range payers {
			filter = append(filter, id.Principal(p))
		}
		if len(filter) == 0 {
			filter = []id.Principal{requestcontext.Caller(ctx)}
		}

		transfers, err := lister.ListByPayer(ctx, filter)
		if err != nil {
			fail(w, r, logger, "list transfers", dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfers"))
			return
		}
		out := make([]TransferResponse, 0, len(transfers))
		for _, t := range transfers {
			out = append(out, TransferResponse{
				ID:          t.ID.String(),
				Amount:      t.Amount,
				From:        t.From.String(),
				To:          t.To.String(),
				Reason:      t.Reason,
				BlockHeight: t.BlockHeight,
				RecordedAt:  t.RecordedAt,
			})
		}
		httputil.WriteResult(w, http.StatusOK, out)
	}
}

// handleListActivity answers GET /activity?principal=p, or the most recent
// events across all actors when principal is omitted.
func handleListActivity(reader ActivityReader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		var (
			events []audit.Event
			err    error
		)
		if raw := q.Get("principal"); raw != "" {
			principal, perr := id.ParsePrincipal(raw)
			if perr != nil {
				fail(w, r, logger, "list activity", perr)
				return
			}
			events, err = reader.List(ctx, principal)
		} else {
			limit := defaultActivityLimit
			if rawLimit := q.Get("limit"); rawLimit != "" {
				n, aerr := strconv.Atoi(rawLimit)
				if aerr != nil || n <= 0 {
					fail(w, r, logger, "list activity", dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
					return
				}
				limit = n
			}
			events, err = reader.Recent(ctx, limit)
		}
		if err != nil {
			fail(w, r, logger, "list activity", dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity"))
			return
		}

		out := make([]EventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, EventResponse{
				ID:          e.ID.String(),
				Category:    string(e.Category),
				Component:   e.Component,
				Action:      e.Action,
				Actor:       e.Actor.String(),
				Subject:     e.Subject,
				BlockHeight: e.BlockHeight,
				RequestID:   e.RequestID,
				Timestamp:   e.Timestamp,
			})
		}
		httputil.WriteResult(w, http.StatusOK, out)
	}
}

func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	ctx := r.Context()
	logger.WarnContext(ctx, op+" failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"caller", requestcontext.Caller(ctx).String(),
	)
	httputil.WriteError(w, err)
}
