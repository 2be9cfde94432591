package model

// Team is one of the two competing sides
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opponent returns the other team
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// Valid returns true for red and blue
func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

// Color is the hidden affiliation of a word on the board
type Color string

const (
	ColorRed      Color = "red"
	ColorBlue     Color = "blue"
	ColorNeutral  Color = "neutral"
	ColorAssassin Color = "assassin"
	ColorHidden   Color = "unknown" // Unrevealed colour as seen by operatives
)

// TeamColor returns the board colour belonging to a team
func TeamColor(t Team) Color {
	if t == TeamBlue {
		return ColorBlue
	}
	return ColorRed
}

// Phase is the sub-phase within a team's turn
type Phase string

const (
	PhaseClue  Phase = "clue"  // Spymaster gives a clue
	PhaseGuess Phase = "guess" // Operatives select words
)

// Turn identifies the acting role of the session
type Turn string

const (
	TurnRedClue   Turn = "red_clue"
	TurnRedGuess  Turn = "red_guess"
	TurnBlueClue  Turn = "blue_clue"
	TurnBlueGuess Turn = "blue_guess"
)

// InitialTurn is the turn every new session starts in
const InitialTurn = TurnRedClue

// TurnOf builds a turn from a team and phase
func TurnOf(team Team, phase Phase) Turn {
	return Turn(string(team) + "_" + string(phase))
}

// Team returns the acting team
func (t Turn) Team() Team {
	switch t {
	case TurnBlueClue, TurnBlueGuess:
		return TeamBlue
	default:
		return TeamRed
	}
}

// Phase returns the acting phase
func (t Turn) Phase() Phase {
	switch t {
	case TurnRedGuess, TurnBlueGuess:
		return PhaseGuess
	default:
		return PhaseClue
	}
}

// Role returns the role the turn is waiting on
func (t Turn) Role() Role {
	if t.Phase() == PhaseClue {
		if t.Team() == TeamBlue {
			return RoleBlueSpymaster
		}
		return RoleRedSpymaster
	}
	if t.Team() == TeamBlue {
		return RoleBlueOperative
	}
	return RoleRedOperative
}

// Valid returns true for the four known turns
func (t Turn) Valid() bool {
	switch t {
	case TurnRedClue, TurnRedGuess, TurnBlueClue, TurnBlueGuess:
		return true
	}
	return false
}

// Role is a player's seat in a session
type Role string

const (
	RoleRedSpymaster  Role = "red_spymaster"
	RoleRedOperative  Role = "red_operative"
	RoleBlueSpymaster Role = "blue_spymaster"
	RoleBlueOperative Role = "blue_operative"
)

// AllRoles lists every assignable role
func AllRoles() []Role {
	return []Role{RoleRedSpymaster, RoleRedOperative, RoleBlueSpymaster, RoleBlueOperative}
}

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// Valid returns true for the four assignable roles
func (r Role) Valid() bool {
	switch r {
	case RoleRedSpymaster, RoleRedOperative, RoleBlueSpymaster, RoleBlueOperative:
		return true
	}
	return false
}

// Team returns the team the role plays for
func (r Role) Team() Team {
	switch r {
	case RoleBlueSpymaster, RoleBlueOperative:
		return TeamBlue
	default:
		return TeamRed
	}
}

// IsSpymaster returns true for either team's spymaster
func (r Role) IsSpymaster() bool {
	return r == RoleRedSpymaster || r == RoleBlueSpymaster
}

// IsOperative returns true for either team's operative
func (r Role) IsOperative() bool {
	return r == RoleRedOperative || r == RoleBlueOperative
}

// Phase returns the phase in which the role is allowed to act
func (r Role) Phase() Phase {
	if r.IsSpymaster() {
		return PhaseClue
	}
	return PhaseGuess
}

// Title returns the role name without its team
func (r Role) Title() string {
	if r.IsSpymaster() {
		return "spymaster"
	}
	return "operative"
}
