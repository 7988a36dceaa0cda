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
	"procurement/internal/tender/metrics"
	"procurement/internal/tender/models"
	"procurement/pkg/attrs"
	id "procurement/pkg/domain"
	dErrors "procurement/pkg/domain-errors"
	"procurement/pkg/platform/audit"
	"procurement/pkg/platform/sentinel"
	"procurement/pkg/requestcontext"
)

const component = "tender-registry"

type TenderStore interface {
	NextID(ctx context.Context) (id.TenderID, error)
	Count(ctx context.Context) (uint64, error)
	Create(ctx context.Context, t *models.Tender) error
	FindByID(ctx context.Context, tenderID id.TenderID) (*models.Tender, error)
	FindByTitle(ctx context.Context, title string) (*models.Tender, error)
	Save(ctx context.Context, t *models.Tender, update *models.TenderUpdate) error
	FindUpdate(ctx context.Context, tenderID id.TenderID) (*models.TenderUpdate, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the tender registry state. Every exported mutation runs
// under one lock and validates fully before it writes anything.
type Service struct {
	mu             sync.Mutex
	tenders        TenderStore
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

// WithSettings overrides the default capacity and fee.
func WithSettings(settings models.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithGate supplies a preconfigured authority gate.
func WithGate(gate *authority.Gate) Option {
	return func(s *Service) {
		s.gate = gate
	}
}

// New constructs a Service.
func New(tenders TenderStore, recorder fees.Recorder, opts ...Option) *Service {
	s := &Service{
		tenders:  tenders,
		fees:     recorder,
		gate:     authority.NewGate(),
		settings: models.DefaultSettings(),
		tracer:   otel.Tracer("procurement/tender"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAuthorityPrincipal installs the registry authority once.
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

// SetMaxTenders changes the capacity ceiling.
func (s *Service) SetMaxTenders(ctx context.Context, n int64) (err error) {
	ctx, done := s.begin(ctx, "SetMaxTenders")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return models.ErrInvalidThreshold
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}
	s.settings.MaxTenders = uint64(n)
	s.logAudit(ctx, audit.EventThresholdChanged, "subject", "max_tenders", "value", n)
	return nil
}

// SetRegistrationFee changes the fee charged on tender creation.
func (s *Service) SetRegistrationFee(ctx context.Context, n int64) (err error) {
	ctx, done := s.begin(ctx, "SetRegistrationFee")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		return models.ErrInvalidThreshold
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}
	s.settings.RegistrationFee = uint64(n)
	s.logAudit(ctx, audit.EventFeeChanged, "subject", "registration_fee", "value", n)
	return nil
}

// CreateTender validates and stores a new open tender owned by the caller.
// When an authority is installed the registration fee transfer is recorded
// before the tender is written.
func (s *Service) CreateTender(ctx context.Context, req models.CreateTenderRequest) (_ id.TenderID, err error) {
	ctx, done := s.begin(ctx, "CreateTender")
	defer func() { done(err) }()

	caller := requestcontext.Caller(ctx)
	height := requestcontext.BlockHeight(ctx)
	if caller.IsZero() {
		return 0, models.ErrInvalidCreator
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.tenders.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count tenders")
	}
	if count >= s.settings.MaxTenders {
		return 0, models.ErrMaxTendersExceeded
	}
	if err := req.Validate(height); err != nil {
		return 0, err
	}
	if err := s.ensureTitleFree(ctx, req.Title, nil); err != nil {
		return 0, err
	}

	next, err := s.tenders.NextID(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate tender id")
	}
	t := &models.Tender{
		ID:           next,
		Title:        req.Title,
		Description:  req.Description,
		Creator:      caller,
		Deadline:     req.Deadline,
		Eligibility:  req.Eligibility,
		Budget:       uint64(req.Budget),
		Category:     req.Category,
		Status:       models.StatusOpen,
		CreatedAt:    height,
		MetadataHash: req.MetadataHash.Clone(),
	}
	err = fees.Within(ctx, s.fees, func(ctx context.Context) error {
		if err := s.chargeRegistrationFee(ctx, caller, height); err != nil {
			return err
		}
		if err := s.tenders.Create(ctx, t); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store tender")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logAudit(ctx, audit.EventTenderCreated,
		"tender_id", t.ID,
		"subject", t.Title,
		"budget", t.Budget,
		"category", string(t.Category))
	s.incrementTendersCreated()
	return t.ID, nil
}

// UpdateTender revises title, description and deadline of a tender owned by
// the caller and overwrites its update log slot.
func (s *Service) UpdateTender(ctx context.Context, tenderID id.TenderID, req models.UpdateTenderRequest) (err error) {
	ctx, done := s.begin(ctx, "UpdateTender")
	defer func() { done(err) }()

	caller := requestcontext.Caller(ctx)
	height := requestcontext.BlockHeight(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, tenderID)
	if err != nil {
		return err
	}
	if err := t.CanModify(caller); err != nil {
		return err
	}
	if err := req.Validate(height); err != nil {
		return err
	}
	if err := s.ensureTitleFree(ctx, req.Title, &tenderID); err != nil {
		return err
	}

	t.ApplyRevision(req.Title, req.Description, req.Deadline)
	update := &models.TenderUpdate{
		UpdatedTitle:       req.Title,
		UpdatedDescription: req.Description,
		UpdatedDeadline:    req.Deadline,
		UpdatedBy:          caller,
		UpdatedAt:          height,
	}
	if err := s.tenders.Save(ctx, t, update); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tender")
	}

	s.logAudit(ctx, audit.EventTenderUpdated, "tender_id", tenderID, "subject", req.Title)
	return nil
}

// CloseTender moves an open tender owned by the caller to closed.
func (s *Service) CloseTender(ctx context.Context, tenderID id.TenderID) (err error) {
	ctx, done := s.begin(ctx, "CloseTender")
	defer func() { done(err) }()

	caller := requestcontext.Caller(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, tenderID)
	if err != nil {
		return err
	}
	if err := t.CanModify(caller); err != nil {
		return err
	}
	if err := t.CanClose(); err != nil {
		return err
	}
	t.ApplyClose()
	if err := s.tenders.Save(ctx, t, nil); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tender")
	}

	s.logAudit(ctx, audit.EventTenderClosed, "tender_id", tenderID, "subject", t.Title)
	if s.metrics != nil {
		s.metrics.IncrementTendersClosed()
	}
	return nil
}

// GetTender returns the tender or false when absent.
func (s *Service) GetTender(ctx context.Context, tenderID id.TenderID) (*models.Tender, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tenders.FindByID(ctx, tenderID)
	if err != nil {
		return nil, false
	}
	return t, true
}

// GetTenderCount returns the number of tenders ever created.
func (s *Service) GetTenderCount(ctx context.Context) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.tenders.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

// GetTenderUpdate returns the most recent revision of a tender, if any.
func (s *Service) GetTenderUpdate(ctx context.Context, tenderID id.TenderID) (*models.TenderUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.tenders.FindUpdate(ctx, tenderID)
	if err != nil {
		return nil, false
	}
	return u, true
}

func (s *Service) FindTenderByTitle(ctx context.Context, title string) (*models.Tender, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tenders.FindByTitle(ctx, title)
	if err != nil {
		return nil, false
	}
	return t, true
}

func (s *Service) GetAuthority() (id.Principal, bool) {
	return s.gate.Principal()
}

func (s *Service) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Service) load(ctx context.Context, tenderID id.TenderID) (*models.Tender, error) {
	t, err := s.tenders.FindByID(ctx, tenderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrTenderNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tender")
	}
	return t, nil
}

// ensureTitleFree fails when title belongs to a tender other than self.
func (s *Service) ensureTitleFree(ctx context.Context, title string, self *id.TenderID) error {
	holder, err := s.tenders.FindByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check title")
	}
	if self != nil && holder.ID == *self {
		return nil
	}
	return models.ErrTenderAlreadyExists
}

func (s *Service) chargeRegistrationFee(ctx context.Context, caller id.Principal, height uint64) error {
	to, ok := s.gate.Principal()
	if !ok {
		return nil
	}
	err := s.fees.Record(ctx, fees.Transfer{
		Amount:      s.settings.RegistrationFee,
		From:        caller,
		To:          to,
		Reason:      fees.ReasonTenderRegistration,
		BlockHeight: height,
		RecordedAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record registration fee")
	}
	return nil
}

func (s *Service) authorize(ctx context.Context) error {
	if err := s.gate.Authorize(requestcontext.Caller(ctx)); err != nil {
		return models.ErrNotAuthorized
	}
	return nil
}

// begin opens a span for op and returns a completion func that records
// duration, rejections and span status.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "tender."+op,
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

func (s *Service) incrementTendersCreated() {
	if s.metrics != nil {
		s.metrics.IncrementTendersCreated()
	}
}
