package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mcoot/codenames-go/internal/api/response"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/replica"
)

const boardColumns = 5

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return NewOutputTo(format, os.Stdout)
}

// NewOutputTo creates a new Output formatter writing to w
func NewOutputTo(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	if _, ok := data.(*replica.View); !ok {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printAuthResult(v)
	case response.Lobby:
		o.printLobby(v)
	case response.GameState:
		o.printGameState(v)
	case *replica.View:
		o.printView(v)
	case response.Health:
		o.printHealth(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p response.Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a response.AuthResponse) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printLobby(l response.Lobby) {
	fmt.Fprintf(o.w, "Lobby: %s\n", l.Code)
	fmt.Fprintf(o.w, "State: %s\n", l.State)
	fmt.Fprintf(o.w, "Members (%d):\n", len(l.Members))
	for _, m := range l.Members {
		seat := m.Role
		if seat == "" {
			seat = "spectator"
		}
		tags := ""
		if m.IsHost {
			tags += " [host]"
		}
		if m.IsBot {
			tags += " [bot]"
		}
		fmt.Fprintf(o.w, "  - %s (%s) - %s%s\n", m.DisplayName, m.PlayerID, seat, tags)
	}
	if len(l.GameHistory) > 0 {
		fmt.Fprintln(o.w, "Games:")
		for _, g := range l.GameHistory {
			fmt.Fprintf(o.w, "  - %s won (%s) after %d moves\n", g.Winner, g.Reason, g.Moves)
		}
	}
	if l.Standings != nil {
		o.printStandings(l.Standings)
	}
}

func (o *Output) printStandings(s *model.Standings) {
	leader := "tied"
	if s.Leader != "" {
		leader = string(s.Leader) + " leads"
	}
	fmt.Fprintf(o.w, "Standings after %d games (%s):\n", s.Games, leader)
	for _, r := range s.Records {
		fmt.Fprintf(o.w, "  %-4s %d-%d", r.Team, r.Wins, r.Losses)
		if r.AssassinLosses > 0 {
			fmt.Fprintf(o.w, ", %d to the assassin", r.AssassinLosses)
		}
		if r.FastestWin > 0 {
			fmt.Fprintf(o.w, ", fastest win %d moves", r.FastestWin)
		}
		fmt.Fprintln(o.w)
	}
}

// cell is one board word in display form
type cell struct {
	word     string
	color    string
	revealed bool
}

func (o *Output) printGameState(g response.GameState) {
	fmt.Fprintf(o.w, "Game: %s (version %d)\n", g.SessionID, g.Version)
	if g.ViewerRole != "" {
		fmt.Fprintf(o.w, "You: %s\n", g.ViewerRole)
	}

	cells := make([]cell, len(g.Cards))
	for i, c := range g.Cards {
		cells[i] = cell{word: c.Word, color: c.Color, revealed: c.Revealed}
	}

	var clue *model.Clue
	if g.ActiveClue != nil {
		clue = &model.Clue{Text: g.ActiveClue.Text, Number: g.ActiveClue.Number, RemainingGuesses: g.ActiveClue.RemainingGuesses}
	}
	var terminal *model.Terminal
	if g.Winner != "" {
		terminal = &model.Terminal{Winner: model.Team(g.Winner), Reason: model.TerminalReason(g.Reason)}
	}
	o.printSession(model.Turn(g.Turn), clue, terminal, cells, g.MoveLog)
}

func (o *Output) printView(v *replica.View) {
	fmt.Fprintf(o.w, "Game: %s (version %d)\n", v.SessionID, v.Version)

	cells := make([]cell, len(v.Cards))
	for i, c := range v.Cards {
		cells[i] = cell{word: c.Word, color: string(c.Color), revealed: c.Revealed}
	}
	o.printSession(v.Turn, v.ActiveClue, v.Terminal, cells, v.MoveLog)
}

func (o *Output) printSession(turn model.Turn, clue *model.Clue, terminal *model.Terminal, cells []cell, log []string) {
	if terminal != nil {
		fmt.Fprintf(o.w, "Winner: %s (%s)\n", terminal.Winner, terminal.Reason)
	} else {
		fmt.Fprintf(o.w, "Turn: %s %s\n", turn.Team(), turn.Phase())
		if clue != nil {
			fmt.Fprintf(o.w, "Clue: %s %d (%d left)\n", clue.Text, clue.Number, clue.RemainingGuesses)
		}
	}

	fmt.Fprintln(o.w)
	o.printBoard(cells)

	if len(log) > 0 {
		fmt.Fprintln(o.w, "\nMoves:")
		for i, entry := range log {
			fmt.Fprintf(o.w, "  %2d. %s\n", i+1, entry)
		}
	}
}

// printBoard lays the words out in rows. Revealed words are marked with
// asterisks and known colours are shown as a one-letter tag.
func (o *Output) printBoard(cells []cell) {
	if len(cells) == 0 {
		return
	}

	width := 0
	for _, c := range cells {
		width = max(width, len(c.word)+4)
	}

	for i, c := range cells {
		fmt.Fprintf(o.w, "%-*s", width+1, formatCell(c))
		if i%boardColumns == boardColumns-1 || i == len(cells)-1 {
			fmt.Fprintln(o.w)
		}
	}
}

func formatCell(c cell) string {
	tag := colorTag(c.color)
	if c.revealed {
		return "*" + tag + "* " + c.word
	}
	return "[" + tag + "] " + c.word
}

func colorTag(color string) string {
	switch model.Color(color) {
	case model.ColorRed:
		return "R"
	case model.ColorBlue:
		return "B"
	case model.ColorNeutral:
		return "N"
	case model.ColorAssassin:
		return "X"
	default:
		return " "
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Words: %d\n", h.WordCount)
}
