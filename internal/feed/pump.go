package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codenames-go/internal/dependencies/clock"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/storage"
)

// pump copies a session's store feed into its hub. After a lost
// subscription it re-reads the session and broadcasts a full
// notification, so clients never fold over a gap.
type pump struct {
	store   storage.Storage
	hub     *Hub
	clock   clock.Clock
	logger  *slog.Logger
	backoff time.Duration
}

func (p *pump) run(ctx context.Context, ready chan<- struct{}) {
	var once sync.Once
	signal := func() { once.Do(func() { close(ready) }) }
	defer signal()

	resync := false
	for {
		err := p.follow(ctx, resync, signal)
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("session feed interrupted, resyncing", slog.Any("error", err))
		resync = true

		select {
		case <-p.clock.After(p.backoff):
		case <-ctx.Done():
			return
		}
	}
}

func (p *pump) follow(ctx context.Context, resync bool, subscribed func()) error {
	id := p.hub.SessionID()
	sub, err := p.store.SubscribeSession(ctx, id)
	subscribed()
	if err != nil {
		return err
	}
	defer sub.Close()

	if resync {
		session, err := p.store.GetSession(ctx, id)
		switch {
		case err == nil:
			full := model.FullNotification(session)
			p.hub.Broadcast(ctx, Message{Event: EventChange, Change: &full})
		case !errors.Is(err, model.ErrSessionNotFound):
			return err
		}
	}

	for n := range sub.C() {
		p.hub.Broadcast(ctx, Message{Event: EventChange, Change: &n})
	}
	if err := sub.Err(); err != nil {
		return err
	}
	return model.ErrSubscriptionLost
}
