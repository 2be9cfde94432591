package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

func game(winner model.Team, reason model.TerminalReason, moves int) model.GameSummary {
	return model.GameSummary{
		SessionID:   "ABC123",
		Winner:      winner,
		Reason:      reason,
		Moves:       moves,
		CompletedAt: testutil.FixedTime,
	}
}

// Tally tests

func (s *ServiceSuite) TestTallyEmptyHistory() {
	standings := s.service.Tally(nil)

	s.Equal(0, standings.Games)
	s.Len(standings.Records, 2)
	s.Empty(standings.Leader)
	for _, r := range standings.Records {
		s.Zero(r.Wins)
		s.Zero(r.Losses)
		s.Zero(r.FastestWin)
	}
}

func (s *ServiceSuite) TestTallyCountsWinsAndLosses() {
	standings := s.service.Tally([]model.GameSummary{
		game(model.TeamRed, model.ReasonAllRevealed, 20),
		game(model.TeamBlue, model.ReasonAllRevealed, 18),
		game(model.TeamRed, model.ReasonAllRevealed, 12),
	})

	s.Equal(3, standings.Games)
	s.Equal(model.TeamRed, standings.Leader)

	s.Require().Len(standings.Records, 2)
	red, blue := standings.Records[0], standings.Records[1]
	s.Equal(model.TeamRed, red.Team)
	s.Equal(2, red.Wins)
	s.Equal(1, red.Losses)
	s.Equal(12, red.FastestWin)
	s.Equal(model.TeamBlue, blue.Team)
	s.Equal(1, blue.Wins)
	s.Equal(2, blue.Losses)
	s.Equal(18, blue.FastestWin)
}

func (s *ServiceSuite) TestTallyChargesAssassinToLoser() {
	standings := s.service.Tally([]model.GameSummary{
		game(model.TeamRed, model.ReasonAssassin, 3),
	})

	red, blue := standings.Records[0], standings.Records[1]
	s.Equal(model.TeamRed, red.Team)
	s.Zero(red.AssassinLosses)
	s.Equal(1, blue.AssassinLosses)
	s.Equal(1, blue.Losses)
}

func (s *ServiceSuite) TestTallyRanksBlueFirstWhenAhead() {
	standings := s.service.Tally([]model.GameSummary{
		game(model.TeamBlue, model.ReasonAllRevealed, 15),
	})

	s.Equal(model.TeamBlue, standings.Records[0].Team)
	s.Equal(model.TeamBlue, standings.Leader)
}

func (s *ServiceSuite) TestTallyTieHasNoLeader() {
	standings := s.service.Tally([]model.GameSummary{
		game(model.TeamBlue, model.ReasonAllRevealed, 15),
		game(model.TeamRed, model.ReasonAssassin, 4),
	})

	s.Empty(standings.Leader)
	s.Equal(model.TeamRed, standings.Records[0].Team)
}

func (s *ServiceSuite) TestTallyIgnoresUnknownWinner() {
	standings := s.service.Tally([]model.GameSummary{
		game("green", model.ReasonAllRevealed, 15),
	})

	s.Equal(1, standings.Games)
	s.Empty(standings.Leader)
}

// DetermineLeader tests

func (s *ServiceSuite) TestDetermineLeaderEmpty() {
	s.Empty(s.service.DetermineLeader(nil))
}

func (s *ServiceSuite) TestRankIsStable() {
	records := []model.TeamRecord{
		{Team: model.TeamBlue, Wins: 1},
		{Team: model.TeamRed, Wins: 1},
	}

	ranked := s.service.Rank(records)
	s.Equal(model.TeamBlue, ranked[0].Team)
	s.Equal(model.TeamBlue, records[0].Team)
}
