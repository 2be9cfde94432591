package bot

import "github.com/mcoot/codenames-go/internal/model"

// Strategy decides what a bot does when its seat is up
type Strategy interface {
	// Clue chooses a clue for the team's spymaster. The session shows
	// every colour.
	Clue(session *model.Session, team model.Team) (text string, number int)
	// Pick chooses a word for the team's operative, or "" to end the turn.
	// The session is redacted the way an operative sees it.
	Pick(session *model.Session, team model.Team) string
}
