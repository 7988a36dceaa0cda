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
	"procurement/internal/fees"
	"procurement/internal/qualifier/metrics"
	"procurement/internal/qualifier/models"
	"procurement/pkg/attrs"
	id "procurement/pkg/domain"
	dErrors "procurement/pkg/domain-errors"
	"procurement/pkg/platform/audit"
	"procurement/pkg/platform/sentinel"
	"procurement/pkg/requestcontext"
)

const component = "bidder-qualifier"

type BidderStore interface {
	NextID(ctx context.Context) (id.BidderID, error)
	Count(ctx context.Context) (uint64, error)
	Create(ctx context.Context, b *models.Bidder) error
	FindByID(ctx context.Context, bidderID id.BidderID) (*models.Bidder, error)
	FindByPrincipal(ctx context.Context, principal id.Principal) (*models.Bidder, error)
	Save(ctx context.Context, b *models.Bidder) error
	SaveCriteria(ctx context.Context, c *models.Criteria) error
	FindCriteria(ctx context.Context, tenderID id.TenderID) (*models.Criteria, error)
	RecordOutcome(ctx context.Context, b *models.Bidder, key models.QualificationKey, q models.Qualification) error
	FindQualification(ctx context.Context, key models.QualificationKey) (models.Qualification, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns bidder records, tender criteria and qualification outcomes.
type Service struct {
	mu             sync.Mutex
	bidders        BidderStore
	fees           fees.Recorder
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

func New(bidders BidderStore, recorder fees.Recorder, opts ...Option) *Service {
	s := &Service{
		bidders:  bidders,
		fees:     recorder,
		gate:     authority.NewGate(),
		settings: models.DefaultSettings(),
		tracer:   otel.Tracer("procurement/qualifier"),
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

func (s *Service) SetMaxBidders(ctx context.Context, n int64) (err error) {
	ctx, done := s.begin(ctx, "SetMaxBidders")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return models.ErrInvalidThreshold
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}
	s.settings.MaxBidders = uint64(n)
	s.logAudit(ctx, audit.EventThresholdChanged, "subject", "max_bidders", "value", n)
	return nil
}

func (s *Service) SetQualificationFee(ctx context.Context, n int64) (err error) {
	ctx, done := s.begin(ctx, "SetQualificationFee")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		return models.ErrInvalidThreshold
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}
	s.settings.QualificationFee = uint64(n)
	s.logAudit(ctx, audit.EventFeeChanged, "subject", "qualification_fee", "value", n)
	return nil
}

// RegisterBidder creates a pending bidder record for the caller. When an
// authority is installed the qualification fee is recorded first.
func (s *Service) RegisterBidder(ctx context.Context, req models.RegisterBidderRequest) (_ id.BidderID, err error) {
	ctx, done := s.begin(ctx, "RegisterBidder")
	defer func() { done(err) }()

	caller := requestcontext.Caller(ctx)
	height := requestcontext.BlockHeight(ctx)
	if caller.IsZero() {
		return 0, models.ErrMissingCaller
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.bidders.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count bidders")
	}
	if count >= s.settings.MaxBidders {
		return 0, models.ErrMaxBiddersExceeded
	}
	if err := req.Validate(); err != nil {
		return 0, err
	}
	if _, err := s.bidders.FindByPrincipal(ctx, caller); err == nil {
		return 0, models.ErrAlreadyRegistered
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check principal")
	}

	next, err := s.bidders.NextID(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate bidder id")
	}
	b := &models.Bidder{
		ID:                next,
		Principal:         caller,
		QualificationHash: req.QualificationHash.Clone(),
		ProofHash:         req.ProofHash.Clone(),
		FinancialProof:    uint64(req.FinancialProof),
		LicenseHash:       req.LicenseHash.Clone(),
		ExperienceYears:   uint64(req.ExperienceYears),
		Status:            models.StatusPending,
		RegisteredAt:      height,
	}
	err = fees.Within(ctx, s.fees, func(ctx context.Context) error {
		if err := s.chargeQualificationFee(ctx, caller, height); err != nil {
			return err
		}
		if err := s.bidders.Create(ctx, b); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store bidder")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logAudit(ctx, audit.EventBidderRegistered, "bidder_id", b.ID, "subject", caller.String())
	if s.metrics != nil {
		s.metrics.IncrementBiddersRegistered()
	}
	return b.ID, nil
}

// SetQualificationCriteria sets or replaces the thresholds for a tender.
func (s *Service) SetQualificationCriteria(ctx context.Context, tenderID id.TenderID, req models.SetCriteriaRequest) (err error) {
	ctx, done := s.begin(ctx, "SetQualificationCriteria")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorize(ctx); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	c := &models.Criteria{
		TenderID:        tenderID,
		MinFinancial:    uint64(req.MinFinancial),
		RequiredLicense: req.RequiredLicense,
		MinExperience:   uint64(req.MinExperience),
		DocHash:         req.DocHash.Clone(),
		SetBy:           requestcontext.Caller(ctx),
		SetAt:           requestcontext.BlockHeight(ctx),
	}
	if err := s.bidders.SaveCriteria(ctx, c); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store criteria")
	}
	s.logAudit(ctx, audit.EventCriteriaSet, "tender_id", tenderID, "subject", tenderID.String())
	return nil
}

// QualifyBidderForTender evaluates the caller's own pending record against
// the tender criteria and records the outcome. The returned bool is the
// decision; a rejection is not an error.
func (s *Service) QualifyBidderForTender(ctx context.Context, bidderID id.BidderID, tenderID id.TenderID) (_ bool, err error) {
	ctx, done := s.begin(ctx, "QualifyBidderForTender")
	defer func() { done(err) }()

	caller := requestcontext.Caller(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load(ctx, bidderID)
	if err != nil {
		return false, err
	}
	c, err := s.bidders.FindCriteria(ctx, tenderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, models.ErrInvalidCriteria
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load criteria")
	}
	if err := b.CanQualify(caller); err != nil {
		return false, err
	}

	qualified := c.Meets(b)
	event := audit.EventBidderRejected
	b.Status = models.StatusRejected
	if qualified {
		event = audit.EventBidderQualified
		b.Status = models.StatusQualified
	}
	outcome := models.NewQualification(qualified, requestcontext.BlockHeight(ctx))
	key := models.QualificationKey{BidderID: bidderID, TenderID: tenderID}
	if err := s.bidders.RecordOutcome(ctx, b, key, outcome); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record qualification")
	}

	s.logAudit(ctx, event,
		"bidder_id", bidderID,
		"tender_id", tenderID,
		"subject", bidderID.String(),
		"criteria_met", outcome.CriteriaMet)
	if s.metrics != nil {
		s.metrics.IncrementOutcome(outcome.CriteriaMet)
	}
	return qualified, nil
}

// UpdateBidderStatus is the authority override; it ignores the usual
// status lifecycle.
func (s *Service) UpdateBidderStatus(ctx context.Context, bidderID id.BidderID, status string) (err error) {
	ctx, done := s.begin(ctx, "UpdateBidderStatus")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load(ctx, bidderID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return err
	}
	b.Status = st
	if err := s.bidders.Save(ctx, b); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save bidder")
	}
	s.logAudit(ctx, audit.EventBidderStatusOverride,
		"bidder_id", bidderID,
		"subject", bidderID.String(),
		"status", string(st))
	return nil
}

// RequireQualified fails unless a qualifying outcome exists for the pair.
func (s *Service) RequireQualified(ctx context.Context, bidderID id.BidderID, tenderID id.TenderID) error {
	q, ok := s.GetQualification(ctx, bidderID, tenderID)
	if !ok || !q.Qualified {
		return models.ErrQualificationNotMet
	}
	return nil
}

func (s *Service) GetBidder(ctx context.Context, bidderID id.BidderID) (*models.Bidder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bidders.FindByID(ctx, bidderID)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (s *Service) GetBidderCount(ctx context.Context) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.bidders.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

func (s *Service) FindBidderByPrincipal(ctx context.Context, principal id.Principal) (*models.Bidder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bidders.FindByPrincipal(ctx, principal)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (s *Service) GetQualificationCriteria(ctx context.Context, tenderID id.TenderID) (*models.Criteria, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.bidders.FindCriteria(ctx, tenderID)
	if err != nil {
		return nil, false
	}
	return c, true
}

func (s *Service) GetQualification(ctx context.Context, bidderID id.BidderID, tenderID id.TenderID) (models.Qualification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, err := s.bidders.FindQualification(ctx, models.QualificationKey{BidderID: bidderID, TenderID: tenderID})
	if err != nil {
		return models.Qualification{}, false
	}
	return q, true
}

func (s *Service) GetAuthority() (id.Principal, bool) {
	return s.gate.Principal()
}

func (s *Service) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Service) load(ctx context.Context, bidderID id.BidderID) (*models.Bidder, error) {
	b, err := s.bidders.FindByID(ctx, bidderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrBidderNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bidder")
	}
	return b, nil
}

func (s *Service) chargeQualificationFee(ctx context.Context, caller id.Principal, height uint64) error {
	to, ok := s.gate.Principal()
	if !ok {
		return nil
	}
	err := s.fees.Record(ctx, fees.Transfer{
		Amount:      s.settings.QualificationFee,
		From:        caller,
		To:          to,
		Reason:      fees.ReasonBidderQualification,
		BlockHeight: height,
		RecordedAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record qualification fee")
	}
	return nil
}

func (s *Service) authorize(ctx context.Context) error {
	if err := s.gate.Authorize(requestcontext.Caller(ctx)); err != nil {
		return models.ErrNotAuthorized
	}
	return nil
}

func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "qualifier."+op,
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
	detail := attrs.ExtractText(attributes, "tender_id")
	if detail == "" {
		detail = attrs.ExtractText(attributes, "status")
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Component:   component,
		Action:      string(event),
		Actor:       caller,
		Subject:     attrs.ExtractText(attributes, "subject"),
		BlockHeight: height,
		RequestID:   requestID,
		Detail:      detail,
	})
}
