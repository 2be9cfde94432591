package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/codenames-go/internal/model"
)

// DefaultSubscriptionBuffer is how many undelivered notifications a
// subscriber may fall behind before it is dropped
const DefaultSubscriptionBuffer = 64

// Subscription is a live feed of change notifications for one session.
// Notifications arrive on C in write order. C is closed when the
// subscription ends; Err then reports why.
type Subscription struct {
	sessionID model.SessionID

	mu      sync.Mutex
	ch      chan model.ChangeNotification
	done    chan struct{}
	err     error
	ended   bool
	onClose func()
}

// NewSubscription creates an open subscription. onClose runs once, in its
// own goroutine, when the subscription ends for any reason.
func NewSubscription(ctx context.Context, id model.SessionID, buffer int, onClose func()) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}
	sub := &Subscription{
		sessionID: id,
		ch:        make(chan model.ChangeNotification, buffer),
		done:      make(chan struct{}),
		onClose:   onClose,
	}
	context.AfterFunc(ctx, func() { sub.end(nil) })
	return sub
}

// SessionID returns the session being followed
func (s *Subscription) SessionID() model.SessionID {
	return s.sessionID
}

// C returns the notification channel
func (s *Subscription) C() <-chan model.ChangeNotification {
	return s.ch
}

// Done is closed once the subscription has ended
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns nil while open or after Close, and an error wrapping
// model.ErrSubscriptionLost if the feed was dropped
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription
func (s *Subscription) Close() error {
	s.end(nil)
	return nil
}

// Deliver queues a notification without blocking. A subscriber whose buffer
// is full is dropped and false is returned.
func (s *Subscription) Deliver(n model.ChangeNotification) bool {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return false
	}
	select {
	case s.ch <- n:
		s.mu.Unlock()
		return true
	default:
	}
	s.mu.Unlock()

	s.Lose(fmt.Errorf("subscriber fell %d notifications behind", cap(s.ch)))
	return false
}

// Lose ends the subscription with a lost-feed error
func (s *Subscription) Lose(cause error) {
	s.end(fmt.Errorf("%w: %s: %w", model.ErrSubscriptionLost, s.sessionID, cause))
}

func (s *Subscription) end(err error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.err = err
	close(s.ch)
	close(s.done)
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		go onClose()
	}
}
