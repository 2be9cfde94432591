package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/storage"
)

// ErrTooManyConflicts is returned when a contended session update keeps losing its WATCH
var ErrTooManyConflicts = errors.New("too many concurrent writers")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}
	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.getJSON(ctx, registeredPlayerKey(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	playerID, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerID))
}

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	data, err := json.Marshal(lobby)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, lobbyKey(lobby.Code), data, s.cfg.LobbyTTL).Err()
}

func (s *Storage) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	var lobby model.Lobby
	if err := s.getJSON(ctx, lobbyKey(code), &lobby, model.ErrLobbyNotFound); err != nil {
		return nil, err
	}
	return &lobby, nil
}

func (s *Storage) DeleteLobby(ctx context.Context, code model.LobbyCode) error {
	return s.client.Del(ctx, lobbyKey(code)).Err()
}

func (s *Storage) LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error) {
	exists, err := s.client.Exists(ctx, lobbyKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Session operations

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return decodeSession(data)
}

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	next := session.Clone()
	return s.write(ctx, session.ID, true, func(*model.Session) (*model.Session, error) {
		return next.Clone(), nil
	})
}

func (s *Storage) UpdateSession(ctx context.Context, id model.SessionID, fn storage.UpdateFunc) (*model.Session, error) {
	return s.write(ctx, id, false, fn)
}

// write runs fn against the stored snapshot under WATCH and commits the
// new snapshot together with its change notification in one MULTI.
// A concurrent writer aborts the transaction and fn is re-run on the
// fresh snapshot. Errors returned by fn are passed through untouched.
func (s *Storage) write(ctx context.Context, id model.SessionID, allowMissing bool, fn storage.UpdateFunc) (*model.Session, error) {
	key := sessionKey(id)
	var (
		result *model.Session
		fnErr  error
	)

	txf := func(tx *redis.Tx) error {
		var prev *model.Session
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if !allowMissing {
				fnErr = model.ErrSessionNotFound
				return fnErr
			}
		case err != nil:
			return err
		default:
			if prev, err = decodeSession(data); err != nil {
				return err
			}
		}

		next, err := fn(prev.Clone())
		if err != nil {
			fnErr = err
			return err
		}
		next = next.Clone()
		next.Version = 1
		if prev != nil {
			next.Version = prev.Version + 1
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		notification, err := json.Marshal(model.Diff(prev, next))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.cfg.SessionTTL)
			pipe.Publish(ctx, sessionChannel(id), notification)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for attempt := 0; attempt < max(s.cfg.MaxUpdateRetries, 1); attempt++ {
		fnErr = nil
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return result, nil
		case fnErr != nil:
			return nil, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, fmt.Errorf("%w: %w", model.ErrWrite, err)
		}
	}
	return nil, fmt.Errorf("%w: session %s: %w", model.ErrWrite, id, ErrTooManyConflicts)
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *Storage) SubscribeSession(ctx context.Context, id model.SessionID) (*storage.Subscription, error) {
	pubsub := s.client.Subscribe(ctx, sessionChannel(id))
	// Wait for the subscription to be confirmed so no later write is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	recvCtx, cancel := context.WithCancel(context.Background())
	sub := storage.NewSubscription(ctx, id, s.cfg.SubscriptionBuffer, func() {
		cancel()
		_ = pubsub.Close()
	})

	go func() {
		for {
			msg, err := pubsub.ReceiveMessage(recvCtx)
			if err != nil {
				select {
				case <-sub.Done():
				default:
					sub.Lose(err)
				}
				return
			}

			var n model.ChangeNotification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				sub.Lose(err)
				return
			}
			if !sub.Deliver(n) {
				return
			}
		}
	}()

	return sub, nil
}

// Role assignment operations

func (s *Storage) SaveRoleAssignment(ctx context.Context, ra *model.RoleAssignment) error {
	data, err := json.Marshal(ra)
	if err != nil {
		return err
	}

	key := rolesKey(ra.SessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, string(ra.PlayerID), data)
	pipe.Expire(ctx, key, s.cfg.LobbyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoleAssignments(ctx context.Context, id model.SessionID) ([]model.RoleAssignment, error) {
	values, err := s.client.HGetAll(ctx, rolesKey(id)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]model.RoleAssignment, 0, len(values))
	for _, v := range values {
		var ra model.RoleAssignment
		if err := json.Unmarshal([]byte(v), &ra); err != nil {
			continue // Skip invalid data
		}
		out = append(out, ra)
	}
	storage.SortRoleAssignments(out)
	return out, nil
}

func (s *Storage) DeleteRoleAssignments(ctx context.Context, id model.SessionID) error {
	return s.client.Del(ctx, rolesKey(id)).Err()
}

// Word pool operations

func (s *Storage) GetWordPool(ctx context.Context) ([]string, error) {
	key := wordPoolKey()

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrWordPoolNotLoaded
	}

	words, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(words)
	return words, nil
}

func (s *Storage) SaveWordPool(ctx context.Context, words []string) error {
	key := wordPoolKey()

	// Replace the existing pool atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.SAdd(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) getJSON(ctx context.Context, key string, v any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// attributeAssassin fills in who revealed the assassin on snapshots that
// predate revealed_by. The stored result names the loser; without one the
// snapshot cannot be scored and is rejected.
func attributeAssassin(session *model.Session) error {
	for word, card := range session.Board {
		if card.Color != model.ColorAssassin || !card.Revealed || card.RevealedBy.Valid() {
			continue
		}
		if session.Terminal == nil || !session.Terminal.Winner.Valid() {
			return fmt.Errorf("session %s: assassin revealed by an unknown team", session.ID)
		}
		card.RevealedBy = session.Terminal.Winner.Opponent()
		session.Board[word] = card
	}
	return nil
}

// decodeSession reads a stored snapshot, upgrading older layouts
func decodeSession(data []byte) (*model.Session, error) {
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	switch {
	case session.SchemaVersion == 0:
		// Snapshots written before the schema was versioned
		if err := attributeAssassin(&session); err != nil {
			return nil, err
		}
		session.SchemaVersion = model.SchemaVersion
	case session.SchemaVersion > model.SchemaVersion:
		return nil, fmt.Errorf("session %s: unsupported schema version %d", session.ID, session.SchemaVersion)
	}
	if session.MoveLog == nil {
		session.MoveLog = []string{}
	}
	return &session, nil
}
