package model

// TeamRecord is one team's results across a lobby's finished games
type TeamRecord struct {
	Team           Team `json:"team"`
	Wins           int  `json:"wins"`
	Losses         int  `json:"losses"`
	AssassinLosses int  `json:"assassin_losses"` // Losses from revealing the assassin
	FastestWin     int  `json:"fastest_win"`     // Fewest moves in a win, 0 without one
}

// Standings summarises a lobby's game history.
// Records are ordered by wins, most first.
type Standings struct {
	Games   int          `json:"games"`
	Records []TeamRecord `json:"records"`
	Leader  Team         `json:"leader,omitempty"` // Empty while tied
}
