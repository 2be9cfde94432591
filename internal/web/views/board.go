// Package views renders server-side HTML for sessions
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/codenames-go/internal/model"
)

// BoardColumns is the width of the rendered grid
const BoardColumns = 5

// BoardPage renders a full page for one session as seen by the viewer.
// The session must already be redacted for that viewer.
func BoardPage(code model.LobbyCode, s *model.Session, viewer model.Role) templ.Component {
	return page("Codenames "+string(code), Board(s, viewer))
}

// WaitingPage renders the page shown while a lobby has no session
func WaitingPage(l *model.Lobby) templ.Component {
	return page("Codenames "+string(l.Code), Waiting(l))
}

// Board renders the grid in word order with the turn, clue, log and result
func Board(s *model.Session, viewer model.Role) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		fmt.Fprintf(&b, `<section id="session" data-session="%s" data-version="%d">`,
			templ.EscapeString(string(s.ID)), s.Version)
		writeStatus(&b, s, viewer)

		b.WriteString(`<table id="board"><tbody>`)
		words := s.Board.Words()
		for i, word := range words {
			if i%BoardColumns == 0 {
				b.WriteString(`<tr>`)
			}
			writeCard(&b, word, s.Board[word])
			if i%BoardColumns == BoardColumns-1 || i == len(words)-1 {
				b.WriteString(`</tr>`)
			}
		}
		b.WriteString(`</tbody></table>`)

		b.WriteString(`<ol id="move-log">`)
		for _, entry := range s.MoveLog {
			fmt.Fprintf(&b, `<li>%s</li>`, templ.EscapeString(entry))
		}
		b.WriteString(`</ol></section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Waiting renders the lobby seating while no game is running
func Waiting(l *model.Lobby) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section id="lobby" data-lobby="%s"><p id="status">Waiting for the host to start a game</p><ul id="members">`,
			templ.EscapeString(string(l.Code)))
		for _, m := range l.Members {
			seat := "spectator"
			if m.Role != "" {
				seat = strings.ReplaceAll(string(m.Role), "_", " ")
			}
			host := ""
			if m.IsHost {
				host = ` class="host"`
			}
			fmt.Fprintf(&b, `<li%s>%s <span class="seat">%s</span></li>`,
				host, templ.EscapeString(m.Player.DisplayName), templ.EscapeString(seat))
		}
		b.WriteString(`</ul>`)

		if len(l.GameHistory) > 0 {
			b.WriteString(`<ol id="history">`)
			for _, g := range l.GameHistory {
				fmt.Fprintf(&b, `<li>%s won (%s) in %d moves</li>`,
					templ.EscapeString(string(g.Winner)), templ.EscapeString(string(g.Reason)), g.Moves)
			}
			b.WriteString(`</ol>`)
		}
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeStatus(b *strings.Builder, s *model.Session, viewer model.Role) {
	if viewer != "" {
		fmt.Fprintf(b, `<p id="viewer">%s</p>`, templ.EscapeString(strings.ReplaceAll(string(viewer), "_", " ")))
	}

	if s.Terminal != nil {
		fmt.Fprintf(b, `<p id="winner" class="team-%s">%s wins (%s)</p>`,
			s.Terminal.Winner, templ.EscapeString(string(s.Terminal.Winner)), templ.EscapeString(reasonText(s.Terminal.Reason)))
		return
	}

	team := s.Turn.Team()
	fmt.Fprintf(b, `<p id="turn" class="team-%s">%s %s</p>`,
		team, templ.EscapeString(string(team)), templ.EscapeString(phaseText(s.Turn.Phase())))

	if c := s.ActiveClue; c != nil {
		fmt.Fprintf(b, `<p id="clue"><span class="clue-text">%s</span> <span class="clue-number">%d</span> <span class="clue-remaining">%d left</span></p>`,
			templ.EscapeString(c.Text), c.Number, c.RemainingGuesses)
	}
}

func writeCard(b *strings.Builder, word string, card model.WordCard) {
	classes := []string{"card", "card-" + string(card.Color)}
	if card.Revealed {
		classes = append(classes, "revealed")
	}
	fmt.Fprintf(b, `<td class="%s" data-word="%s">%s</td>`,
		strings.Join(classes, " "), templ.EscapeString(word), templ.EscapeString(word))
}

func phaseText(p model.Phase) string {
	if p == model.PhaseClue {
		return "spymaster is giving a clue"
	}
	return "operatives are guessing"
}

func reasonText(r model.TerminalReason) string {
	if r == model.ReasonAssassin {
		return "assassin revealed"
	}
	return "all words revealed"
}

func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body>`,
			templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
