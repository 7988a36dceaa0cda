package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"procurement/internal/authority"
	"procurement/internal/verifier/metrics"
	"procurement/internal/verifier/models"
	"procurement/pkg/attrs"
	id "procurement/pkg/domain"
	dErrors "procurement/pkg/domain-errors"
	"procurement/pkg/platform/audit"
	"procurement/pkg/platform/sentinel"
	"procurement/pkg/requestcontext"
)

const component = "audit-verifier"

const (
	kindTender = "tender"
	kindBid    = "bid"
)

type SnapshotStore interface {
	SaveTenderAudit(ctx context.Context, a *models.TenderAudit) error
	FindTenderAudit(ctx context.Context, tenderID id.TenderID) (*models.TenderAudit, error)
	SaveBidAudit(ctx context.Context, key models.BidKey, a *models.BidAudit) error
	FindBidAudit(ctx context.Context, key models.BidKey) (*models.BidAudit, error)
}

type RequestStore interface {
	NextID(ctx context.Context) (id.RequestID, error)
	Count(ctx context.Context) (uint64, error)
	Create(ctx context.Context, r *models.VerificationRequest) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error)
	Save(ctx context.Context, r *models.VerificationRequest) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service answers verification requests against ingested snapshots.
// Snapshots are never written through the public request path.
type Service struct {
	mu             sync.Mutex
	snapshots      SnapshotStore
	requests       RequestStore
	gate           *authority.Gate
	settings       models.Settings
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithSettings(settings models.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

func WithGate(gate *authority.Gate) Option {
	return func(s *Service) {
		s.gate = gate
	}
}

func New(snapshots SnapshotStore, requests RequestStore, opts ...Option) *Service {
	s := &Service{
		snapshots: snapshots,
		requests:  requests,
		gate:      authority.NewGate(),
		settings:  models.DefaultSettings(),
		tracer:    otel.Tracer("procurement/verifier"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) SetAuthorityPrincipal(ctx context.Context, principal id.Principal) (err error) {
	ctx, done := s.begin(ctx, "SetAuthorityPrincipal")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate.Install(principal); err != nil {
		if errors.Is(err, authority.ErrBurnAddress) {
			return models.ErrInvalidPrincipal
		}
		return models.ErrNotAuthorized
	}
	s.logAudit(ctx, audit.EventAuthorityInstalled, "subject", principal.String())
	return nil
}

// SetMaxQueries changes the verification request ceiling. Lowering it
// below the current count blocks further requests.
func (s *Service) SetMaxQueries(ctx context.Context, n int64) (err error) {
	ctx, done := s.begin(ctx, "SetMaxQueries")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return models.ErrInvalidThreshold
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}
	s.settings.MaxQueries = uint64(n)
	s.logAudit(ctx, audit.EventThresholdChanged, "subject", "max_queries", "value", n)
	return nil
}

func (s *Service) RequestTenderVerification(ctx context.Context, tenderID id.TenderID) (_ id.RequestID, err error) {
	ctx, done := s.begin(ctx, "RequestTenderVerification")
	defer func() { done(err) }()

	if tenderID == 0 {
		return 0, models.ErrInvalidTenderID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCapacity(ctx); err != nil {
		return 0, err
	}
	if _, err := s.snapshots.FindTenderAudit(ctx, tenderID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, models.ErrNoTenderData
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tender snapshot")
	}
	return s.logRequest(ctx, tenderID, nil)
}

func (s *Service) RequestBidVerification(ctx context.Context, tenderID id.TenderID, bidID id.BidID) (_ id.RequestID, err error) {
	ctx, done := s.begin(ctx, "RequestBidVerification")
	defer func() { done(err) }()

	if tenderID == 0 {
		return 0, models.ErrInvalidTenderID
	}
	if bidID == 0 {
		return 0, models.ErrInvalidBidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCapacity(ctx); err != nil {
		return 0, err
	}
	key := models.BidKey{TenderID: tenderID, BidID: bidID}
	if _, err := s.snapshots.FindBidAudit(ctx, key); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, models.ErrNoBidData
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bid snapshot")
	}
	return s.logRequest(ctx, tenderID, &bidID)
}

// VerifyRequest confirms a logged request. A request is verified at most once.
func (s *Service) VerifyRequest(ctx context.Context, requestID id.RequestID) (err error) {
	ctx, done := s.begin(ctx, "VerifyRequest")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrInvalidRequestID
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}
	if err := r.CanVerify(); err != nil {
		return err
	}
	r.ApplyVerify()
	if err := s.requests.Save(ctx, r); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save request")
	}

	s.logAudit(ctx, audit.EventVerificationApproved,
		"request_id_ref", requestID,
		"subject", requestID.String(),
		"tender_id", r.TenderID)
	if s.metrics != nil {
		s.metrics.IncrementVerified()
	}
	return nil
}

// RecordTenderAudit stores or replaces a tender snapshot. It is the ingest
// path and is not exposed over HTTP.
func (s *Service) RecordTenderAudit(ctx context.Context, a models.TenderAudit) (err error) {
	ctx, done := s.begin(ctx, "RecordTenderAudit")
	defer func() { done(err) }()

	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.snapshots.SaveTenderAudit(ctx, &a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store tender snapshot")
	}
	s.logAudit(ctx, audit.EventSnapshotRecorded,
		"tender_id", a.TenderID,
		"subject", kindTender,
		"status", string(a.Status))
	if s.metrics != nil {
		s.metrics.IncrementSnapshots(kindTender)
	}
	return nil
}

func (s *Service) RecordBidAudit(ctx context.Context, key models.BidKey, a models.BidAudit) (err error) {
	ctx, done := s.begin(ctx, "RecordBidAudit")
	defer func() { done(err) }()

	if err := models.ValidateBid(key, &a); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.snapshots.SaveBidAudit(ctx, key, &a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store bid snapshot")
	}
	s.logAudit(ctx, audit.EventSnapshotRecorded,
		"tender_id", key.TenderID,
		"bid_id", key.BidID,
		"subject", kindBid)
	if s.metrics != nil {
		s.metrics.IncrementSnapshots(kindBid)
	}
	return nil
}

func (s *Service) GetTenderAudit(ctx context.Context, tenderID id.TenderID) (*models.TenderAudit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.snapshots.FindTenderAudit(ctx, tenderID)
	if err != nil {
		return nil, false
	}
	return a, true
}

func (s *Service) GetBidAudit(ctx context.Context, tenderID id.TenderID, bidID id.BidID) (*models.BidAudit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.snapshots.FindBidAudit(ctx, models.BidKey{TenderID: tenderID, BidID: bidID})
	if err != nil {
		return nil, false
	}
	return a, true
}

func (s *Service) GetVerificationRequest(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, false
	}
	return r, true
}

// GetRequestCount returns the number of requests ever logged.
func (s *Service) GetRequestCount(ctx context.Context) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.requests.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

func (s *Service) GetAuthority() (id.Principal, bool) {
	return s.gate.Principal()
}

func (s *Service) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Service) checkCapacity(ctx context.Context) error {
	count, err := s.requests.Count(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count requests")
	}
	if count >= s.settings.MaxQueries {
		return models.ErrQueryLimit
	}
	return nil
}

func (s *Service) logRequest(ctx context.Context, tenderID id.TenderID, bidID *id.BidID) (id.RequestID, error) {
	next, err := s.requests.NextID(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate request id")
	}
	r := &models.VerificationRequest{
		ID:          next,
		Requester:   requestcontext.Caller(ctx),
		TenderID:    tenderID,
		BidID:       bidID,
		RequestTime: requestcontext.BlockHeight(ctx),
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store request")
	}

	kind := kindTender
	args := []any{"request_id_ref", r.ID, "subject", r.ID.String(), "tender_id", tenderID}
	if bidID != nil {
		kind = kindBid
		args = append(args, "bid_id", *bidID)
	}
	s.logAudit(ctx, audit.EventVerificationRequest, args...)
	if s.metrics != nil {
		s.metrics.IncrementRequests(kind)
	}
	return r.ID, nil
}

func (s *Service) authorize(ctx context.Context) error {
	if err := s.gate.Authorize(requestcontext.Caller(ctx)); err != nil {
		return models.ErrNotAuthorized
	}
	return nil
}

func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verifier."+op,
		trace.WithAttributes(attribute.String("caller", requestcontext.Caller(ctx).String())))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if code, ok := dErrors.LedgerCodeOf(err); ok {
				span.SetAttributes(attribute.Int("ledger.code", int(code)))
				if s.metrics != nil {
					s.metrics.IncrementRejection(op, code)
				}
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveOperation(op, start)
		}
		span.End()
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.Action, attributes ...any) {
	caller := requestcontext.Caller(ctx)
	height := requestcontext.BlockHeight(ctx)
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes,
		"caller", caller.String(),
		"block_height", height,
		"event", string(event),
		"log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Component:   component,
		Action:      string(event),
		Actor:       caller,
		Subject:     attrs.ExtractText(attributes, "subject"),
		BlockHeight: height,
		RequestID:   requestID,
		Detail:      attrs.ExtractText(attributes, "tender_id"),
	})
}
