package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/codenames-go/internal/api/apierr"
	"github.com/mcoot/codenames-go/internal/api/response"
	"github.com/mcoot/codenames-go/internal/feed"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/replica"
	"github.com/mcoot/codenames-go/internal/storage"
)

func newWatchCmd() *cobra.Command {
	var backoff time.Duration

	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Follow a lobby's game board live",
		Long: `Print the board whenever it changes, as you are allowed to see it.

A dropped connection is retried and the board is re-read from the server.
Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, client, strings.ToUpper(args[0]), NewOutput(cfg.Output), backoff)
		},
	}

	cmd.Flags().DurationVar(&backoff, "retry", 2*time.Second, "Wait before reconnecting a dropped feed")

	return cmd
}

func watch(ctx context.Context, c *Client, code string, out *Output, backoff time.Duration) error {
	follower := replica.NewFollower(&remoteSource{client: c}, model.SessionID(code),
		replica.WithBackoff(backoff),
		replica.OnChange(func(v *replica.View) {
			out.Print(v)
		}),
	)

	err := follower.Run(ctx)
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		out.PrintMessage(fmt.Sprintf("No game is running in lobby %s", code))
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}

var errSubscriptionEnded = errors.New("subscription ended")

// remoteSource reads a session through the HTTP API so a Follower can run
// against a remote server
type remoteSource struct {
	client *Client
}

var _ replica.Source = (*remoteSource)(nil)

func (s *remoteSource) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	var state response.GameState
	if err := s.client.DoContext(ctx, http.MethodGet, lobbyPath(string(id), "/game"), nil, &state); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == apierr.CodeSessionNotFound {
			return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
		}
		return nil, err
	}
	return sessionFromState(state), nil
}

// SubscribeSession opens the lobby's event stream. The subscription is lost
// when the stream ends or the game is abandoned.
func (s *remoteSource) SubscribeSession(ctx context.Context, id model.SessionID) (*storage.Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	resp, err := s.client.Stream(streamCtx, lobbyPath(string(id), "/events"))
	if err != nil {
		cancel()
		return nil, err
	}

	sub := storage.NewSubscription(streamCtx, id, 0, cancel)
	go func() {
		defer func() { _ = resp.Body.Close() }()

		err := readEvents(resp.Body, func(event, data string) error {
			switch event {
			case feed.EventChange:
				var msg feed.Message
				if err := json.Unmarshal([]byte(data), &msg); err != nil {
					return fmt.Errorf("bad change event: %w", err)
				}
				if msg.Change != nil && !sub.Deliver(*msg.Change) {
					return errSubscriptionEnded
				}
			case feed.EventAbandoned:
				return fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
			}
			return nil
		})
		if errors.Is(err, io.EOF) {
			err = errors.New("event stream closed")
		}
		sub.Lose(err)
	}()
	return sub, nil
}

// sessionFromState rebuilds the viewer's copy of a session
func sessionFromState(state response.GameState) *model.Session {
	board := make(model.Board, len(state.Cards))
	for _, c := range state.Cards {
		board[c.Word] = model.WordCard{
			Color:      model.Color(c.Color),
			Revealed:   c.Revealed,
			RevealedBy: model.Team(c.RevealedBy),
		}
	}

	session := &model.Session{
		ID:      model.SessionID(state.SessionID),
		Version: state.Version,
		Board:   board,
		Turn:    model.Turn(state.Turn),
		MoveLog: append([]string{}, state.MoveLog...),
	}
	if state.ActiveClue != nil {
		session.ActiveClue = &model.Clue{
			Text:             state.ActiveClue.Text,
			Number:           state.ActiveClue.Number,
			RemainingGuesses: state.ActiveClue.RemainingGuesses,
		}
	}
	if state.Winner != "" {
		session.Terminal = &model.Terminal{
			Winner: model.Team(state.Winner),
			Reason: model.TerminalReason(state.Reason),
		}
	}
	return session
}
