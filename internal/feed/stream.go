package feed

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/codenames-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second
)

var (
	// ErrHubClosed is returned when streaming from a hub that has shut down
	ErrHubClosed = errors.New("feed hub closed")
	// ErrClientDropped is returned when the hub disconnects a client
	ErrClientDropped = errors.New("feed client dropped")
)

// Source resolves what a viewer is allowed to see of a session
type Source interface {
	GetSessionFor(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, model.Role, error)
	RoleOf(ctx context.Context, id model.SessionID, playerID model.PlayerID) (model.Role, error)
}

// Sink writes feed messages to one connection
type Sink interface {
	Send(msg Message) error
	Keepalive() error
}

// Stream writes a session's feed to sink, redacted for the viewer, until
// ctx ends or the hub drops the client. The first message is a full
// notification of the current snapshot when the session exists.
func Stream(ctx context.Context, hub *Hub, src Source, playerID model.PlayerID, sink Sink) error {
	client := NewClient(hub, playerID)
	// Register before reading so no write falls between the two
	if !hub.Register(client) {
		return ErrHubClosed
	}
	defer hub.Unregister(client)

	id := hub.SessionID()
	var last int64
	session, role, err := src.GetSessionFor(ctx, id, playerID)
	switch {
	case err == nil:
		full := model.FullNotification(session)
		if err := sink.Send(Message{Event: EventChange, Change: &full}); err != nil {
			return err
		}
		last = session.Version
	case errors.Is(err, model.ErrSessionNotFound):
		if role, err = src.RoleOf(ctx, id, playerID); err != nil {
			return err
		}
	default:
		return err
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				return ErrClientDropped
			}
			switch msg.Event {
			case EventChange:
				n := *msg.Change
				// Already covered by the snapshot
				if n.Version < last || (!n.Full && n.Version == last) {
					continue
				}
				// A full notification may start a new game with new seats
				if n.Full {
					if role, err = src.RoleOf(ctx, id, playerID); err != nil {
						return err
					}
				}
				last = n.Version
				redacted := n.RedactedFor(role)
				msg.Change = &redacted
			case EventAbandoned:
				last = 0
			}
			if err := sink.Send(msg); err != nil {
				return err
			}

		case <-ticker.C:
			if err := sink.Keepalive(); err != nil {
				return err
			}

		case <-ctx.Done():
			return nil
		}
	}
}
