package memory

import (
	"context"
	"sync"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	lobbies           map[model.LobbyCode]*model.Lobby
	sessions          map[model.SessionID]*model.Session
	roles             map[model.SessionID]map[model.PlayerID]model.RoleAssignment
	wordPool          []string

	// subMu guards subscribers and is always taken after mu
	subMu       sync.Mutex
	subscribers map[model.SessionID]map[*storage.Subscription]struct{}
	buffer      int
}

// Option configures the in-memory storage
type Option func(*Storage)

// WithSubscriptionBuffer sets how far a subscriber may fall behind
func WithSubscriptionBuffer(n int) Option {
	return func(s *Storage) {
		s.buffer = n
	}
}

// New creates a new in-memory storage instance
func New(opts ...Option) *Storage {
	s := &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		lobbies:           make(map[model.LobbyCode]*model.Lobby),
		sessions:          make(map[model.SessionID]*model.Session),
		roles:             make(map[model.SessionID]map[model.PlayerID]model.RoleAssignment),
		subscribers:       make(map[model.SessionID]map[*storage.Subscription]struct{}),
		buffer:            storage.DefaultSubscriptionBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *rp
	s.registeredPlayers[rp.PlayerID] = &r
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	playerID, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetRegisteredPlayer(ctx, playerID)
}

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lobby.Code] = lobby.Clone()
	return nil
}

func (s *Storage) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, model.ErrLobbyNotFound
	}
	return lobby.Clone(), nil
}

func (s *Storage) DeleteLobby(ctx context.Context, code model.LobbyCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, code)
	return nil
}

func (s *Storage) LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lobbies[code]
	return ok, nil
}

// Session operations

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(s.sessions[session.ID], session.Clone()), nil
}

func (s *Storage) UpdateSession(ctx context.Context, id model.SessionID, fn storage.UpdateFunc) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	return s.writeLocked(current, next.Clone()), nil
}

// writeLocked stores next as the new version and fans the change out
// while the write lock is still held, so notifications follow write order
func (s *Storage) writeLocked(prev, next *model.Session) *model.Session {
	next.Version = 1
	if prev != nil {
		next.Version = prev.Version + 1
	}
	s.sessions[next.ID] = next
	s.publish(model.Diff(prev, next))
	return next.Clone()
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) SubscribeSession(ctx context.Context, id model.SessionID) (*storage.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Registration happens under subMu, so onClose always finds the entry
	// it removes even when ctx ends straight away
	s.subMu.Lock()
	defer s.subMu.Unlock()

	var sub *storage.Subscription
	sub = storage.NewSubscription(ctx, id, s.buffer, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers[id], sub)
		if len(s.subscribers[id]) == 0 {
			delete(s.subscribers, id)
		}
	})

	if s.subscribers[id] == nil {
		s.subscribers[id] = make(map[*storage.Subscription]struct{})
	}
	s.subscribers[id][sub] = struct{}{}
	return sub, nil
}

// publish delivers to every live subscriber without blocking.
// Deliver drops subscribers that have fallen behind.
func (s *Storage) publish(n model.ChangeNotification) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for sub := range s.subscribers[n.SessionID] {
		sub.Deliver(n)
	}
}

// SubscriberCount returns the number of live subscriptions to a session
func (s *Storage) SubscriberCount(id model.SessionID) int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers[id])
}

// Role assignment operations

func (s *Storage) SaveRoleAssignment(ctx context.Context, ra *model.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roles[ra.SessionID] == nil {
		s.roles[ra.SessionID] = make(map[model.PlayerID]model.RoleAssignment)
	}
	s.roles[ra.SessionID][ra.PlayerID] = *ra
	return nil
}

func (s *Storage) GetRoleAssignments(ctx context.Context, id model.SessionID) ([]model.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RoleAssignment, 0, len(s.roles[id]))
	for _, ra := range s.roles[id] {
		out = append(out, ra)
	}
	storage.SortRoleAssignments(out)
	return out, nil
}

func (s *Storage) DeleteRoleAssignments(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, id)
	return nil
}

// Word pool operations

func (s *Storage) GetWordPool(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wordPool == nil {
		return nil, model.ErrWordPoolNotLoaded
	}
	result := make([]string, len(s.wordPool))
	copy(result, s.wordPool)
	return result, nil
}

func (s *Storage) SaveWordPool(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wordPool = make([]string, len(words))
	copy(s.wordPool, words)
	return nil
}
