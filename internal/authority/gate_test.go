package authority

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	id "procurement/pkg/domain"
)

type GateSuite struct {
	suite.Suite
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) TestInstall() {
	s.Run("rejects burn address and stays empty", func() {
		g := NewGate()
		s.Require().ErrorIs(g.Install(id.BurnAddress), ErrBurnAddress)
		_, ok := g.Principal()
		s.False(ok)
	})

	s.Run("first install wins", func() {
		g := NewGate()
		s.Require().NoError(g.Install("ST1AUTH"))
		s.Require().ErrorIs(g.Install("ST2OTHER"), ErrAlreadyInstalled)
		p, ok := g.Principal()
		s.True(ok)
		s.Equal(id.Principal("ST1AUTH"), p)
	})

	s.Run("concurrent installs leave exactly one winner", func() {
		g := NewGate()
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for _, p := range []id.Principal{"A", "B", "C", "D"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.Install(p) == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		s.Equal(1, wins)
	})
}

func (s *GateSuite) TestAuthorize() {
	s.Run("fails without authority", func() {
		s.Require().ErrorIs(NewGate().Authorize("ST1AUTH"), ErrNotInstalled)
	})

	s.Run("loose mode accepts any caller once installed", func() {
		g := NewGate()
		s.Require().NoError(g.Install("ST1AUTH"))
		s.NoError(g.Authorize("ST9ANYONE"))
	})

	s.Run("strict mode requires the authority itself", func() {
		g := NewGate(Strict(true))
		s.Require().NoError(g.Install("ST1AUTH"))
		s.Require().ErrorIs(g.Authorize("ST9ANYONE"), ErrNotAuthority)
		s.NoError(g.Authorize("ST1AUTH"))
	})
}
