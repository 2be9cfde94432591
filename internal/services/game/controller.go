package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codenames-go/internal/dependencies/clock"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/rules"
	"github.com/mcoot/codenames-go/internal/storage"
)

// Config holds controller settings
type Config struct {
	// IdleTimeout is how long a session actor waits for work before retiring
	IdleTimeout time.Duration
}

// DefaultConfig returns the default controller configuration
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 5 * time.Minute,
	}
}

// Controller applies player actions to sessions. All actions for one
// session are handled in order by a single actor goroutine, which re-reads
// the stored snapshot inside the write so every move builds on the latest
// state.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config

	mu     sync.Mutex
	actors map[model.SessionID]*actor
	closed bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

type request struct {
	ctx      context.Context
	playerID model.PlayerID
	action   model.Action
	reply    chan result
}

type result struct {
	session *model.Session
	err     error
}

type actor struct {
	id    model.SessionID
	inbox chan request
	done  chan struct{}
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
		actors:  make(map[model.SessionID]*actor),
		stop:    make(chan struct{}),
	}
}

// StartSession stores a fresh session over the given board, replacing any
// previous session with the same id
func (c *Controller) StartSession(ctx context.Context, id model.SessionID, board model.Board) (*model.Session, error) {
	session, err := c.storage.SaveSession(ctx, model.NewSession(id, board, c.clock.Now()))
	if err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("session started",
		slog.String("session_id", string(id)),
		slog.Int("words", len(board)),
	)
	return session, nil
}

// GetSession returns the full stored snapshot
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// GetSessionFor returns the snapshot as seen by a player. Players without
// a role see it as a spectator.
func (c *Controller) GetSessionFor(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, model.Role, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, "", err
	}
	role, err := c.RoleOf(ctx, id, playerID)
	if err != nil {
		return nil, "", err
	}
	return session.RedactedFor(role), role, nil
}

// RoleOf returns the player's role in the session, or "" if none
func (c *Controller) RoleOf(ctx context.Context, id model.SessionID, playerID model.PlayerID) (model.Role, error) {
	assignments, err := c.storage.GetRoleAssignments(ctx, id)
	if err != nil {
		return "", err
	}
	role, _ := storage.RoleOf(assignments, playerID)
	return role, nil
}

// DeleteSession discards a session
func (c *Controller) DeleteSession(ctx context.Context, id model.SessionID) error {
	if err := c.storage.DeleteSession(ctx, id); err != nil {
		return err
	}
	c.logger.Info("session deleted", slog.String("session_id", string(id)))
	return nil
}

// GiveClue submits a clue on behalf of a player
func (c *Controller) GiveClue(ctx context.Context, id model.SessionID, playerID model.PlayerID, text string, number int) (*model.Session, error) {
	return c.Submit(ctx, id, playerID, model.GiveClue(text, number))
}

// SelectWord reveals a word on behalf of a player
func (c *Controller) SelectWord(ctx context.Context, id model.SessionID, playerID model.PlayerID, word string) (*model.Session, error) {
	return c.Submit(ctx, id, playerID, model.SelectWord(word))
}

// EndTurn ends the guessing phase on behalf of a player
func (c *Controller) EndTurn(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.Submit(ctx, id, playerID, model.EndTurn())
}

// Submit queues an action on the session's actor and waits for the outcome.
// Rejected actions leave the session untouched and are reported only to
// the caller.
func (c *Controller) Submit(ctx context.Context, id model.SessionID, playerID model.PlayerID, action model.Action) (*model.Session, error) {
	req := request{
		ctx:      ctx,
		playerID: playerID,
		action:   action,
		reply:    make(chan result, 1),
	}

	for {
		a, err := c.actorFor(id)
		if err != nil {
			return nil, err
		}

		select {
		case a.inbox <- req:
		case <-a.done:
			// Actor retired before taking the request; start another
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		select {
		case r := <-req.reply:
			return r.session, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// ActiveSessions returns the number of running session actors
func (c *Controller) ActiveSessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.actors)
}

// Close stops every actor and waits for in-flight actions to finish
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Controller) actorFor(id model.SessionID) (*actor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, model.ErrControllerClosed
	}
	if a, ok := c.actors[id]; ok {
		return a, nil
	}

	a := &actor{
		id:    id,
		inbox: make(chan request),
		done:  make(chan struct{}),
	}
	c.actors[id] = a
	c.wg.Add(1)
	go c.run(a)
	return a, nil
}

func (c *Controller) run(a *actor) {
	defer c.wg.Done()

	idle := time.NewTimer(c.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case req := <-a.inbox:
			session, err := c.apply(a.id, req)
			req.reply <- result{session: session, err: err}
			idle.Reset(c.cfg.IdleTimeout)
		case <-idle.C:
			c.retire(a)
			return
		case <-c.stop:
			c.retire(a)
			return
		}
	}
}

func (c *Controller) retire(a *actor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.actors[a.id] == a {
		delete(c.actors, a.id)
	}
	close(a.done)
}

func (c *Controller) apply(id model.SessionID, req request) (*model.Session, error) {
	// Once taken by the actor, an action runs to completion
	ctx := context.WithoutCancel(req.ctx)

	logger := c.logger.With(
		slog.String("session_id", string(id)),
		slog.String("player_id", string(req.playerID)),
		slog.String("action", string(req.action.Kind)),
	)

	role, err := c.RoleOf(ctx, id, req.playerID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, model.ErrNoRole
	}

	session, err := c.storage.UpdateSession(ctx, id, func(current *model.Session) (*model.Session, error) {
		next, err := rules.Apply(current, req.action, role)
		if err != nil {
			return nil, err
		}
		next.UpdatedAt = c.clock.Now()
		return next, nil
	})
	if err != nil {
		if model.IsActionError(err) {
			logger.Debug("action rejected", slog.String("error", err.Error()))
		} else {
			logger.Error("action failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("action applied",
		slog.String("role", string(role)),
		slog.String("turn", string(session.Turn)),
		slog.Int64("version", session.Version),
	)
	if session.Terminal != nil {
		logger.Info("session finished",
			slog.String("winner", string(session.Terminal.Winner)),
			slog.String("reason", string(session.Terminal.Reason)),
		)
	}
	return session, nil
}

// ControllerInterface for dependency injection
type ControllerInterface interface {
	StartSession(ctx context.Context, id model.SessionID, board model.Board) (*model.Session, error)
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	GetSessionFor(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, model.Role, error)
	RoleOf(ctx context.Context, id model.SessionID, playerID model.PlayerID) (model.Role, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	GiveClue(ctx context.Context, id model.SessionID, playerID model.PlayerID, text string, number int) (*model.Session, error)
	SelectWord(ctx context.Context, id model.SessionID, playerID model.PlayerID, word string) (*model.Session, error)
	EndTurn(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error)
	Submit(ctx context.Context, id model.SessionID, playerID model.PlayerID, action model.Action) (*model.Session, error)
}

var _ ControllerInterface = (*Controller)(nil)
