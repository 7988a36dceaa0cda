package httptransport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"procurement/internal/fees"
	jwttoken "procurement/internal/jwt_token"
	"procurement/internal/ledger"
	"procurement/internal/tender"
	tenderservice "procurement/internal/tender/service"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/audit/publisher"
	"procurement/pkg/platform/audit/store/memory"
	"procurement/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	tokens  *jwttoken.JWTService
	router  http.Handler
	redisUp bool
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.tokens = jwttoken.NewJWTService("test-key", "procurement", "registry")
	s.redisUp = true

	ledgerStore := fees.NewInMemoryLedger()
	activity := publisher.NewPublisher(memory.NewInMemoryStore())
	tenders := tender.NewService(ledgerStore,
		tenderservice.WithLogger(logger),
		tenderservice.WithAuditPublisher(activity))

	s.router = NewRouter(Config{
		Logger:      logger,
		Validator:   jwttoken.NewJWTServiceAdapter(s.tokens),
		Clock:       ledger.NewManualClock(0),
		Fees:        ledgerStore,
		Activity:    activity,
		Metrics:     http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
		MetricsPath: "/metrics",
		Checks: map[string]HealthCheck{
			"redis": func(context.Context) error {
				if !s.redisUp {
					return errors.New("connection refused")
				}
				return nil
			},
		},
	}, tender.NewHandler(tenders, logger))
}

func (s *RouterSuite) do(method, path string, caller id.Principal, body any) (*httptest.ResponseRecorder, testutil.Envelope) {
	return testutil.Do(s.router, testutil.NewCallerRequest(s.T(), s.tokens, method, path, caller, body))
}

func (s *RouterSuite) createTender() {
	rec, _ := s.do(http.MethodPost, "/tenders/authority", "ST1AUTH", map[string]string{"principal": "ST1AUTH"})
	s.Require().Equal(http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodPost, "/tenders", "ST2CREATOR", map[string]any{
		"title":         "Road Project",
		"description":   "Build a road",
		"deadline":      100,
		"eligibility":   "Licensed contractors",
		"budget":        1000000,
		"category":      "infrastructure",
		"metadata_hash": strings.Repeat("ab", 32),
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
}

func (s *RouterSuite) TestPublicEndpoints() {
	s.Run("healthz reports dependencies", func() {
		rec, _ := s.do(http.MethodGet, "/healthz", "", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"healthy":true,"dependencies":{"redis":"up"}}`, rec.Body.String())

		s.redisUp = false
		rec, _ = s.do(http.MethodGet, "/healthz", "", nil)
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.JSONEq(`{"healthy":false,"dependencies":{"redis":"down"}}`, rec.Body.String())
	})

	s.Run("metrics needs no token", func() {
		rec, _ := s.do(http.MethodGet, "/metrics", "", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("# metrics", rec.Body.String())
	})

	s.Run("api needs a token", func() {
		rec, _ := s.do(http.MethodGet, "/tenders/count", "", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.NotEmpty(rec.Header().Get("X-Request-ID"))
	})
}

func (s *RouterSuite) TestFeeTransfers() {
	s.createTender()

	s.Run("defaults to the caller", func() {
		rec, env := s.do(http.MethodGet, "/fees/transfers", "ST2CREATOR", nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		transfers := testutil.DecodeValue[[]TransferResponse](s.T(), env)
		s.Require().Len(transfers, 1)
		s.Equal(uint64(500), transfers[0].Amount)
		s.Equal("ST1AUTH", transfers[0].To)
		s.Equal(fees.ReasonTenderRegistration, transfers[0].Reason)
	})

	s.Run("filters by payer", func() {
		_, env := s.do(http.MethodGet, "/fees/transfers?payer=ST9NOBODY", "ST2CREATOR", nil)
		s.JSONEq(`[]`, string(env.Value))
	})

	s.Run("blank and repeated payers collapse", func() {
		_, env := s.do(http.MethodGet, "/fees/transfers?payer=%20&payer=ST2CREATOR&payer=ST2CREATOR", "ST9READER", nil)
		s.Len(testutil.DecodeValue[[]TransferResponse](s.T(), env), 1)
	})

	s.Run("too many payers", func() {
		path := "/fees/transfers?payer=P0"
		for i := 1; i <= 20; i++ {
			path += "&payer=P" + strconv.Itoa(i)
		}
		rec, _ := s.do(http.MethodGet, path, "ST9READER", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterSuite) TestActivity() {
	s.createTender()

	s.Run("by principal", func() {
		rec, env := s.do(http.MethodGet, "/activity?principal=ST2CREATOR", "ST9READER", nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		events := testutil.DecodeValue[[]EventResponse](s.T(), env)
		s.Require().Len(events, 1)
		s.Equal("tender_created", events[0].Action)
		s.Equal("registry", events[0].Category)
	})

	s.Run("recent with limit", func() {
		_, env := s.do(http.MethodGet, "/activity?limit=1", "ST9READER", nil)
		s.Len(testutil.DecodeValue[[]EventResponse](s.T(), env), 1)
	})

	s.Run("bad limit", func() {
		rec, _ := s.do(http.MethodGet, "/activity?limit=zero", "ST9READER", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
