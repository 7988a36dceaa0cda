//go:build integration

package fees

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	id "procurement/pkg/domain"
	txcontext "procurement/pkg/platform/tx"
	"procurement/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	ledger *PostgresLedger
	ctx    context.Context
}

func TestPostgresLedgerSuite(t *testing.T) {
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.ledger = NewPostgresLedger(s.pg.DB)
	s.ctx = context.Background()
	s.Require().NoError(s.ledger.EnsureSchema(s.ctx))
}

func (s *PostgresLedgerSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, `TRUNCATE fee_transfers`)
	s.Require().NoError(err)
}

func (s *PostgresLedgerSuite) TestRecordAndList() {
	s.Require().NoError(s.ledger.Record(s.ctx, Transfer{Amount: 500, From: "C1", To: "A", Reason: ReasonTenderRegistration, BlockHeight: 3}))
	s.Require().NoError(s.ledger.Record(s.ctx, Transfer{Amount: 200, From: "C2", To: "A", Reason: ReasonBidderQualification, BlockHeight: 4}))

	s.Run("filters with array parameter", func() {
		got, err := s.ledger.ListByPayer(s.ctx, []id.Principal{"C2", "C3"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(uint64(200), got[0].Amount)
		s.Equal(uint64(4), got[0].BlockHeight)
	})

	s.Run("no filter lists all", func() {
		got, err := s.ledger.ListByPayer(s.ctx, nil)
		s.Require().NoError(err)
		s.Len(got, 2)
	})
}

func (s *PostgresLedgerSuite) TestWithinRollsBackOnFailedWrite() {
	writeFailed := errors.New("store write failed")
	err := Within(s.ctx, s.ledger, func(ctx context.Context) error {
		s.Require().NoError(s.ledger.Record(ctx, Transfer{Amount: 500, From: "C7", To: "A"}))
		return writeFailed
	})
	s.Require().ErrorIs(err, writeFailed)

	got, err := s.ledger.ListByPayer(s.ctx, []id.Principal{"C7"})
	s.Require().NoError(err)
	s.Empty(got)

	s.Require().NoError(Within(s.ctx, s.ledger, func(ctx context.Context) error {
		return s.ledger.Record(ctx, Transfer{Amount: 500, From: "C7", To: "A"})
	}))
	got, err = s.ledger.ListByPayer(s.ctx, []id.Principal{"C7"})
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *PostgresLedgerSuite) TestRollbackDiscardsTransfer() {
	failure := context.Canceled
	err := txcontext.Run(s.ctx, s.pg.DB, func(ctx context.Context) error {
		s.Require().NoError(s.ledger.Record(ctx, Transfer{Amount: 1, From: "C9", To: "A"}))
		return failure
	})
	s.Require().ErrorIs(err, failure)

	got, err := s.ledger.ListByPayer(s.ctx, []id.Principal{"C9"})
	s.Require().NoError(err)
	s.Empty(got)
}
