package scoring

import (
	"sort"

	"github.com/mcoot/codenames-go/internal/model"
)

// Service tallies lobby standings from finished games
type Service struct{}

// New creates a new ScoringService
func New() *Service {
	return &Service{}
}

// Tally builds the standings for a lobby's game history
func (s *Service) Tally(history []model.GameSummary) *model.Standings {
	records := map[model.Team]*model.TeamRecord{
		model.TeamRed:  {Team: model.TeamRed},
		model.TeamBlue: {Team: model.TeamBlue},
	}

	for _, g := range history {
		winner, ok := records[g.Winner]
		if !ok {
			continue
		}
		loser := records[g.Winner.Opponent()]

		winner.Wins++
		if winner.FastestWin == 0 || g.Moves < winner.FastestWin {
			winner.FastestWin = g.Moves
		}
		loser.Losses++
		if g.Reason == model.ReasonAssassin {
			loser.AssassinLosses++
		}
	}

	ranked := s.Rank([]model.TeamRecord{*records[model.TeamRed], *records[model.TeamBlue]})
	return &model.Standings{
		Games:   len(history),
		Records: ranked,
		Leader:  s.DetermineLeader(ranked),
	}
}

// Rank sorts records by wins descending. Ties keep their input order.
func (s *Service) Rank(records []model.TeamRecord) []model.TeamRecord {
	out := append([]model.TeamRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Wins > out[j].Wins
	})
	return out
}

// DetermineLeader returns the team with the most wins in ranked records, or
// empty string if tied
func (s *Service) DetermineLeader(ranked []model.TeamRecord) model.Team {
	if len(ranked) == 0 {
		return ""
	}

	top := ranked[0].Wins
	tieCount := 0
	for _, r := range ranked {
		if r.Wins == top {
			tieCount++
		}
	}

	if tieCount > 1 {
		return "" // Tie
	}

	return ranked[0].Team
}

// Interface for dependency injection
type ServiceInterface interface {
	Tally(history []model.GameSummary) *model.Standings
	Rank(records []model.TeamRecord) []model.TeamRecord
	DetermineLeader(ranked []model.TeamRecord) model.Team
}

var _ ServiceInterface = (*Service)(nil)
