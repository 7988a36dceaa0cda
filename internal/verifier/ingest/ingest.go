// Package ingest feeds audit snapshots from Kafka into the verifier.
//
// Each record value is a JSON Envelope; the "content-hash" header carries
// the hex BLAKE2b-256 digest of the value.
package ingest

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/crypto/blake2b"

	"procurement/internal/platform/kafka/consumer"
	"procurement/internal/verifier/models"
	dErrors "procurement/pkg/domain-errors"
	"procurement/pkg/requestcontext"
)

const (
	HeaderContentHash = "content-hash"

	KindTender = "tender"
	KindBid    = "bid"
)

// Envelope wraps one snapshot. Exactly one of Tender or Bid is set,
// matching Kind.
type Envelope struct {
	Kind   string              `json:"kind"`
	Tender *models.TenderAudit `json:"tender,omitempty"`
	BidKey *models.BidKey      `json:"bid_key,omitempty"`
	Bid    *models.BidAudit    `json:"bid,omitempty"`
}

type Recorder interface {
	RecordTenderAudit(ctx context.Context, a models.TenderAudit) error
	RecordBidAudit(ctx context.Context, key models.BidKey, a models.BidAudit) error
}

type Handler struct {
	recorder Recorder
	logger   *slog.Logger
}

func NewHandler(recorder Recorder, logger *slog.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger}
}

// Handle stores the snapshot in msg. Invalid messages are logged and
// committed; only storage failures are returned.
func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	ref := fmt.Sprintf("%s/%d@%d", msg.Topic, msg.Partition, msg.Offset)
	ctx = requestcontext.WithRequestID(ctx, ref)

	env, err := Decode(msg.Value, msg.Header(HeaderContentHash))
	if err != nil {
		h.logger.WarnContext(ctx, "discarding snapshot message", "ref", ref, "error", err)
		return nil
	}

	switch env.Kind {
	case KindTender:
		err = h.recorder.RecordTenderAudit(ctx, *env.Tender)
	case KindBid:
		err = h.recorder.RecordBidAudit(ctx, *env.BidKey, *env.Bid)
	}
	if err == nil {
		h.logger.DebugContext(ctx, "stored snapshot", "ref", ref, "kind", env.Kind)
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		return fmt.Errorf("store %s snapshot: %w", env.Kind, err)
	}
	code, _ := dErrors.LedgerCodeOf(err)
	h.logger.WarnContext(ctx, "snapshot rejected", "ref", ref, "kind", env.Kind, "code", code, "error", err)
	return nil
}

// Decode checks the digest and shape of a raw envelope.
func Decode(value, digest []byte) (*Envelope, error) {
	want, err := hex.DecodeString(string(digest))
	if err != nil || len(want) != blake2b.Size256 {
		return nil, models.ErrInvalidHash
	}
	sum := blake2b.Sum256(value)
	if subtle.ConstantTimeCompare(sum[:], want) != 1 {
		return nil, models.ErrInvalidHash
	}

	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed snapshot payload")
	}
	switch env.Kind {
	case KindTender:
		if env.Tender == nil {
			return nil, models.ErrMalformedSnapshot
		}
	case KindBid:
		if env.Bid == nil || env.BidKey == nil {
			return nil, models.ErrMalformedSnapshot
		}
	default:
		return nil, models.ErrUnknownSnapshotKind
	}
	return &env, nil
}

// Encode serialises env and returns the value with its digest header.
func Encode(env Envelope) ([]byte, string, error) {
	value, err := json.Marshal(env)
	if err != nil {
		return nil, "", fmt.Errorf("encode envelope: %w", err)
	}
	sum := blake2b.Sum256(value)
	return value, hex.EncodeToString(sum[:]), nil
}

// NewRecord builds a producer record for topic carrying env.
func NewRecord(topic string, env Envelope) (*kgo.Record, error) {
	value, digest, err := Encode(env)
	if err != nil {
		return nil, err
	}
	key := env.Kind
	switch {
	case env.Tender != nil:
		key = fmt.Sprintf("tender:%d", env.Tender.TenderID)
	case env.BidKey != nil:
		key = fmt.Sprintf("bid:%d:%d", env.BidKey.TenderID, env.BidKey.BidID)
	}
	return &kgo.Record{
		Topic:   topic,
		Key:     []byte(key),
		Value:   value,
		Headers: []kgo.RecordHeader{{Key: HeaderContentHash, Value: []byte(digest)}},
	}, nil
}
