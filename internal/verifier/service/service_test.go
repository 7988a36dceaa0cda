package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"procurement/internal/authority"
	"procurement/internal/verifier/metrics"
	"procurement/internal/verifier/models"
	"procurement/internal/verifier/store"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/audit"
	"procurement/pkg/platform/audit/publisher"
	"procurement/pkg/platform/audit/store/memory"
	"procurement/pkg/requestcontext"
)

const (
	authorityP id.Principal = "ST1AUTHORITY"
	auditorA   id.Principal = "ST2AUDITOR"
	otherO     id.Principal = "ST3OTHER"
)

type ServiceSuite struct {
	suite.Suite
	publisher *publisher.Publisher
	metrics   *metrics.Metrics
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.publisher = publisher.NewPublisher(memory.NewInMemoryStore())
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(store.NewInMemorySnapshots(), store.NewInMemoryRequests(),
		WithAuditPublisher(s.publisher),
		WithMetrics(s.metrics))
}

func call(caller id.Principal, height uint64) context.Context {
	return requestcontext.WithCall(context.Background(), caller, height)
}

func tenderSnapshot(tenderID id.TenderID) models.TenderAudit {
	return models.TenderAudit{
		TenderID:     tenderID,
		Title:        "Road Project",
		Description:  "Build a road",
		Creator:      "ST9CREATOR",
		Timestamp:    3,
		Status:       models.SnapshotOpen,
		MetadataHash: id.Hash("metadata"),
	}
}

func bidSnapshot() models.BidAudit {
	return models.BidAudit{Bidder: "ST8BIDDER", BidHash: id.Hash("bid"), SubmissionTime: 4, Metadata: "sealed"}
}

func (s *ServiceSuite) installAuthority() {
	s.Require().NoError(s.service.SetAuthorityPrincipal(call(authorityP, 0), authorityP))
}

func (s *ServiceSuite) TestTenderVerificationFlow() {
	s.installAuthority()
	s.Require().NoError(s.service.RecordTenderAudit(context.Background(), tenderSnapshot(1)))

	requestID, err := s.service.RequestTenderVerification(call(auditorA, 7), 1)
	s.Require().NoError(err)
	s.Equal(id.RequestID(0), requestID)

	r, ok := s.service.GetVerificationRequest(context.Background(), requestID)
	s.Require().True(ok)
	s.Equal(auditorA, r.Requester)
	s.Equal(uint64(7), r.RequestTime)
	s.Nil(r.BidID)
	s.False(r.Verified)

	s.Require().NoError(s.service.VerifyRequest(call(authorityP, 8), requestID))
	r, _ = s.service.GetVerificationRequest(context.Background(), requestID)
	s.True(r.Verified)

	err = s.service.VerifyRequest(call(authorityP, 9), requestID)
	s.Require().ErrorIs(err, models.ErrAlreadyVerified)

	s.Equal(uint64(1), s.service.GetRequestCount(context.Background()))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Verified))

	events, err := s.publisher.List(context.Background(), auditorA)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventVerificationRequest), events[0].Action)
	s.Equal(audit.CategoryVerification, events[0].Category)
}

func (s *ServiceSuite) TestRequestTenderVerification() {
	s.Run("tender id zero", func() {
		_, err := s.service.RequestTenderVerification(call(auditorA, 0), 0)
		s.Require().ErrorIs(err, models.ErrInvalidTenderID)
	})

	s.Run("no snapshot", func() {
		_, err := s.service.RequestTenderVerification(call(auditorA, 0), 5)
		s.Require().ErrorIs(err, models.ErrNoTenderData)
		s.Equal(uint64(0), s.service.GetRequestCount(context.Background()))
	})
}

func (s *ServiceSuite) TestRequestBidVerification() {
	key := models.BidKey{TenderID: 2, BidID: 1}
	s.Require().NoError(s.service.RecordBidAudit(context.Background(), key, bidSnapshot()))

	s.Run("validates ids in order", func() {
		_, err := s.service.RequestBidVerification(call(auditorA, 0), 0, 0)
		s.Require().ErrorIs(err, models.ErrInvalidTenderID)
		_, err = s.service.RequestBidVerification(call(auditorA, 0), 2, 0)
		s.Require().ErrorIs(err, models.ErrInvalidBidID)
	})

	s.Run("key is the pair", func() {
		_, err := s.service.RequestBidVerification(call(auditorA, 0), 1, 2)
		s.Require().ErrorIs(err, models.ErrNoBidData)
	})

	s.Run("logs bid request", func() {
		requestID, err := s.service.RequestBidVerification(call(auditorA, 3), 2, 1)
		s.Require().NoError(err)
		r, ok := s.service.GetVerificationRequest(context.Background(), requestID)
		s.Require().True(ok)
		s.Require().NotNil(r.BidID)
		s.Equal(id.BidID(1), *r.BidID)
	})

	a, ok := s.service.GetBidAudit(context.Background(), 2, 1)
	s.Require().True(ok)
	s.Equal("sealed", a.Metadata)
}

func (s *ServiceSuite) TestQueryCapacity() {
	s.installAuthority()
	s.Require().ErrorIs(s.service.SetMaxQueries(call(authorityP, 0), 0), models.ErrInvalidThreshold)
	s.Require().NoError(s.service.SetMaxQueries(call(authorityP, 0), 2))
	s.Require().NoError(s.service.RecordTenderAudit(context.Background(), tenderSnapshot(1)))

	for range 2 {
		_, err := s.service.RequestTenderVerification(call(auditorA, 0), 1)
		s.Require().NoError(err)
	}
	_, err := s.service.RequestTenderVerification(call(auditorA, 0), 1)
	s.Require().ErrorIs(err, models.ErrQueryLimit)

	_, err = s.service.RequestTenderVerification(call(auditorA, 0), 9)
	s.Require().ErrorIs(err, models.ErrQueryLimit, "capacity is checked before snapshot presence")
	s.Equal(uint64(2), s.service.GetRequestCount(context.Background()))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("RequestTenderVerification", "111")))
}

func (s *ServiceSuite) TestVerifyRequest() {
	s.Require().NoError(s.service.RecordTenderAudit(context.Background(), tenderSnapshot(1)))
	requestID, err := s.service.RequestTenderVerification(call(auditorA, 0), 1)
	s.Require().NoError(err)

	s.Require().ErrorIs(s.service.VerifyRequest(call(authorityP, 0), 42), models.ErrInvalidRequestID)
	s.Require().ErrorIs(s.service.VerifyRequest(call(authorityP, 0), requestID), models.ErrNotAuthorized)

	s.installAuthority()
	s.Require().NoError(s.service.VerifyRequest(call(otherO, 0), requestID), "any caller once an authority exists")
}

func (s *ServiceSuite) TestStrictAuthority() {
	svc := New(store.NewInMemorySnapshots(), store.NewInMemoryRequests(),
		WithGate(authority.NewGate(authority.Strict(true))))
	s.Require().NoError(svc.SetAuthorityPrincipal(call(authorityP, 0), authorityP))
	s.Require().NoError(svc.RecordTenderAudit(context.Background(), tenderSnapshot(1)))
	requestID, err := svc.RequestTenderVerification(call(auditorA, 0), 1)
	s.Require().NoError(err)

	s.Require().ErrorIs(svc.VerifyRequest(call(otherO, 0), requestID), models.ErrNotAuthorized)
	s.Require().NoError(svc.VerifyRequest(call(authorityP, 0), requestID))
}

func (s *ServiceSuite) TestAuthorityBootstrap() {
	s.Require().ErrorIs(s.service.SetAuthorityPrincipal(call(otherO, 0), id.BurnAddress), models.ErrInvalidPrincipal)
	s.installAuthority()
	s.Require().ErrorIs(s.service.SetAuthorityPrincipal(call(otherO, 0), otherO), models.ErrNotAuthorized)
}

func (s *ServiceSuite) TestRecordSnapshots() {
	s.Run("rejects invalid tender snapshot", func() {
		bad := tenderSnapshot(1)
		bad.Status = "archived"
		s.Require().ErrorIs(s.service.RecordTenderAudit(context.Background(), bad), models.ErrInvalidStatus)
		_, ok := s.service.GetTenderAudit(context.Background(), 1)
		s.False(ok)
	})

	s.Run("replaces tender snapshot", func() {
		s.Require().NoError(s.service.RecordTenderAudit(context.Background(), tenderSnapshot(1)))
		closed := tenderSnapshot(1)
		closed.Status = models.SnapshotClosed
		s.Require().NoError(s.service.RecordTenderAudit(context.Background(), closed))
		a, ok := s.service.GetTenderAudit(context.Background(), 1)
		s.Require().True(ok)
		s.Equal(models.SnapshotClosed, a.Status)
	})

	s.Run("rejects empty bid hash", func() {
		bad := bidSnapshot()
		bad.BidHash = nil
		err := s.service.RecordBidAudit(context.Background(), models.BidKey{TenderID: 1, BidID: 1}, bad)
		s.Require().ErrorIs(err, models.ErrInvalidHash)
	})

	s.Equal(2.0, testutil.ToFloat64(s.metrics.SnapshotsIngested.WithLabelValues("tender")))
}
