package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/testutil"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GuestPlayerTTL = time.Hour
	cfg.LobbyTTL = time.Hour
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) receive(ch <-chan model.ChangeNotification) model.ChangeNotification {
	select {
	case n, ok := <-ch:
		s.Require().True(ok, "subscription closed")
		return n
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for notification")
	}
	return model.ChangeNotification{}
}

func appendMove(cur *model.Session) (*model.Session, error) {
	cur.MoveLog = append(cur.MoveLog, "move")
	return cur, nil
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice", CreatedAt: time.Now()}

	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.DisplayName, retrieved.DisplayName)
}

func (s *StorageSuite) TestGuestPlayerHasTTL() {
	player := &model.Player{ID: "guest-1", DisplayName: "Guest", IsGuest: true}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	s.Equal(time.Hour, s.mini.TTL(playerKey("guest-1")))
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Registered player tests

func (s *StorageSuite) TestGetRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{PlayerID: "player-1", Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.storage.SaveRegisteredPlayer(s.ctx, rp))

	retrieved, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)

	_, err = s.storage.GetRegisteredPlayerByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Lobby tests

func (s *StorageSuite) TestSaveAndGetLobby() {
	lobby := &model.Lobby{
		Code:  "ABC123",
		State: model.LobbyStateWaiting,
		Members: []model.LobbyMember{
			{Player: model.Player{ID: "p1", DisplayName: "Alice"}, Role: model.RoleRedSpymaster, IsHost: true},
		},
	}
	s.Require().NoError(s.storage.SaveLobby(s.ctx, lobby))

	retrieved, err := s.storage.GetLobby(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.RoleRedSpymaster, retrieved.Members[0].Role)
	s.Equal(time.Hour, s.mini.TTL(lobbyKey("ABC123")))

	exists, err := s.storage.LobbyExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestGetLobbyNotFound() {
	_, err := s.storage.GetLobby(s.ctx, "NONEXISTENT")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	saved, err := s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))
	s.Require().NoError(err)
	s.Equal(int64(1), saved.Version)

	retrieved, err := s.storage.GetSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.True(retrieved.Board.Equal(testutil.FixedBoard()))
	s.Equal(model.SchemaVersion, retrieved.SchemaVersion)
	s.Equal(time.Hour, s.mini.TTL(sessionKey("S1")))
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestGetSessionUpgradesUnversionedSnapshot() {
	s.Require().NoError(s.mini.Set(sessionKey("S1"), `{"id":"S1","version":3,"board":{},"turn":"red_clue"}`))

	session, err := s.storage.GetSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.Equal(model.SchemaVersion, session.SchemaVersion)
	s.NotNil(session.MoveLog)
}

func (s *StorageSuite) TestGetSessionRejectsNewerSchema() {
	s.Require().NoError(s.mini.Set(sessionKey("S1"), `{"id":"S1","schema_version":99}`))

	_, err := s.storage.GetSession(s.ctx, "S1")
	s.Error(err)
}

func (s *StorageSuite) TestLegacyAssassinTakesLoserFromResult() {
	s.Require().NoError(s.mini.Set(sessionKey("S1"),
		`{"id":"S1","board":{"ZEST":{"color":"assassin","revealed":true}},"turn":"red_guess",`+
			`"terminal":{"winner":"blue","reason":"assassin"}}`))

	session, err := s.storage.GetSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.Equal(model.TeamRed, session.Board["ZEST"].RevealedBy)
	s.Equal(model.TeamBlue, session.Terminal.Winner)
}

func (s *StorageSuite) TestLegacyAssassinWithoutResultIsRejected() {
	s.Require().NoError(s.mini.Set(sessionKey("S1"),
		`{"id":"S1","board":{"ZEST":{"color":"assassin","revealed":true}},"turn":"red_guess"}`))

	_, err := s.storage.GetSession(s.ctx, "S1")
	s.ErrorContains(err, "assassin revealed by an unknown team")
}

func (s *StorageSuite) TestUpdateSession() {
	_, _ = s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))

	updated, err := s.storage.UpdateSession(s.ctx, "S1", appendMove)
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)
	s.Equal([]string{"move"}, updated.MoveLog)
}

func (s *StorageSuite) TestUpdateSessionPassesThroughCallbackError() {
	_, _ = s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))

	_, err := s.storage.UpdateSession(s.ctx, "S1", func(*model.Session) (*model.Session, error) {
		return nil, model.ErrNotYourTurn
	})
	s.ErrorIs(err, model.ErrNotYourTurn)
	s.NotErrorIs(err, model.ErrWrite)

	current, _ := s.storage.GetSession(s.ctx, "S1")
	s.Equal(int64(1), current.Version)
}

func (s *StorageSuite) TestUpdateSessionNotFound() {
	_, err := s.storage.UpdateSession(s.ctx, "missing", appendMove)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestUpdateSessionWrapsStoreFailure() {
	_, _ = s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))
	s.mini.SetError("connection refused")
	defer s.mini.SetError("")

	_, err := s.storage.UpdateSession(s.ctx, "S1", appendMove)
	s.ErrorIs(err, model.ErrWrite)
}

func (s *StorageSuite) TestConcurrentUpdatesRetryInsteadOfLosingWrites() {
	s.storage.cfg.MaxUpdateRetries = 1000
	_, _ = s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.storage.UpdateSession(s.ctx, "S1", appendMove)
			s.NoError(err)
		}()
	}
	wg.Wait()

	current, err := s.storage.GetSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.Len(current.MoveLog, 10)
	s.Equal(int64(11), current.Version)
}

func (s *StorageSuite) TestSubscribeReceivesChanges() {
	_, _ = s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))
	sub, err := s.storage.SubscribeSession(s.ctx, "S1")
	s.Require().NoError(err)
	defer sub.Close()

	_, err = s.storage.UpdateSession(s.ctx, "S1", func(cur *model.Session) (*model.Session, error) {
		card := cur.Board["APPLE"]
		card.Revealed = true
		card.RevealedBy = model.TeamRed
		cur.Board["APPLE"] = card
		return cur, nil
	})
	s.Require().NoError(err)

	n := s.receive(sub.C())
	s.Equal(model.SessionID("S1"), n.SessionID)
	s.Equal(int64(2), n.Version)
	s.Equal([]model.Field{model.FieldBoard}, n.Changed)
	s.True(n.Board["APPLE"].Revealed)
}

func (s *StorageSuite) TestSubscribeDeliversInWriteOrder() {
	_, _ = s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))
	sub, err := s.storage.SubscribeSession(s.ctx, "S1")
	s.Require().NoError(err)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		_, err := s.storage.UpdateSession(s.ctx, "S1", appendMove)
		s.Require().NoError(err)
	}
	for v := int64(2); v <= 6; v++ {
		s.Equal(v, s.receive(sub.C()).Version)
	}
}

func (s *StorageSuite) TestSubscriptionLostWhenServerGoesAway() {
	sub, err := s.storage.SubscribeSession(s.ctx, "S1")
	s.Require().NoError(err)

	s.mini.Close()

	select {
	case <-sub.Done():
	case <-time.After(5 * time.Second):
		s.FailNow("subscription did not end")
	}
	s.True(errors.Is(sub.Err(), model.ErrSubscriptionLost))
	s.mini = nil
}

func (s *StorageSuite) TestDeleteSession() {
	_, _ = s.storage.SaveSession(s.ctx, testutil.NewSession("S1"))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "S1"))

	_, err := s.storage.GetSession(s.ctx, "S1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Role assignment tests

func (s *StorageSuite) TestRoleAssignments() {
	_ = s.storage.SaveRoleAssignment(s.ctx, &model.RoleAssignment{SessionID: "S1", PlayerID: "p2", Role: model.RoleBlueSpymaster})
	_ = s.storage.SaveRoleAssignment(s.ctx, &model.RoleAssignment{SessionID: "S1", PlayerID: "p1", Role: model.RoleRedOperative})
	_ = s.storage.SaveRoleAssignment(s.ctx, &model.RoleAssignment{SessionID: "S1", PlayerID: "p1", Role: model.RoleRedSpymaster})

	roles, err := s.storage.GetRoleAssignments(s.ctx, "S1")
	s.Require().NoError(err)
	s.Require().Len(roles, 2)
	s.Equal(model.RoleRedSpymaster, roles[0].Role)
	s.Equal(model.RoleBlueSpymaster, roles[1].Role)

	s.Require().NoError(s.storage.DeleteRoleAssignments(s.ctx, "S1"))
	roles, err = s.storage.GetRoleAssignments(s.ctx, "S1")
	s.Require().NoError(err)
	s.Empty(roles)
}

// Word pool tests

func (s *StorageSuite) TestSaveAndGetWordPool() {
	s.Require().NoError(s.storage.SaveWordPool(s.ctx, []string{"CHERRY", "APPLE", "BANANA"}))

	words, err := s.storage.GetWordPool(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"APPLE", "BANANA", "CHERRY"}, words)
}

func (s *StorageSuite) TestGetWordPoolNotLoaded() {
	_, err := s.storage.GetWordPool(s.ctx)
	s.ErrorIs(err, model.ErrWordPoolNotLoaded)
}
