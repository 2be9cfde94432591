package replica

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codenames-go/internal/dependencies/clock"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/storage"
)

// Source is anything that can be read and subscribed to like the store
type Source interface {
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	SubscribeSession(ctx context.Context, id model.SessionID) (*storage.Subscription, error)
}

// Follower keeps a view of one session up to date. A lost subscription
// makes the view stale until a fresh read re-seeds it.
type Follower struct {
	source   Source
	id       model.SessionID
	clock    clock.Clock
	logger   *slog.Logger
	backoff  time.Duration
	onChange func(*View)

	mu   sync.RWMutex
	view *View
}

// Option configures a Follower
type Option func(*Follower)

// WithClock sets the clock used for resync backoff
func WithClock(c clock.Clock) Option {
	return func(f *Follower) { f.clock = c }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(f *Follower) { f.logger = l }
}

// WithBackoff sets the wait before resubscribing after a lost feed
func WithBackoff(d time.Duration) Option {
	return func(f *Follower) { f.backoff = d }
}

// OnChange registers a callback run with every new view
func OnChange(fn func(*View)) Option {
	return func(f *Follower) { f.onChange = fn }
}

// NewFollower creates a Follower for a session
func NewFollower(source Source, id model.SessionID, opts ...Option) *Follower {
	f := &Follower{
		source:  source,
		id:      id,
		clock:   clock.New(),
		logger:  slog.New(slog.DiscardHandler),
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// View returns the latest view, or nil before the first read
func (f *Follower) View() *View {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.view
}

// Run follows the session until ctx is cancelled or the session is gone
func (f *Follower) Run(ctx context.Context) error {
	for {
		err := f.follow(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, model.ErrSessionNotFound) {
			return err
		}

		f.logger.Warn("session feed interrupted, resyncing",
			slog.String("session_id", string(f.id)),
			slog.Any("error", err),
		)
		select {
		case <-f.clock.After(f.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// follow subscribes, seeds from a fresh read and folds notifications
// until the subscription ends
func (f *Follower) follow(ctx context.Context) error {
	// Subscribe before reading so no write falls between the two
	sub, err := f.source.SubscribeSession(ctx, f.id)
	if err != nil {
		return err
	}
	defer sub.Close()

	session, err := f.source.GetSession(ctx, f.id)
	if err != nil {
		return err
	}
	f.set(Seed(session))

	for n := range sub.C() {
		view := f.View()
		if NeedsSeed(view, n) {
			return fmt.Errorf("%w: notification for %s does not match view of %s",
				model.ErrSubscriptionLost, n.SessionID, view.SessionID)
		}
		f.set(Fold(view, n))
	}
	if err := sub.Err(); err != nil {
		return err
	}
	return model.ErrSubscriptionLost
}

func (f *Follower) set(v *View) {
	f.mu.Lock()
	f.view = v
	f.mu.Unlock()
	if f.onChange != nil {
		f.onChange(v)
	}
}
