package lobby

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codenames-go/internal/dependencies/mocks"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/board"
	"github.com/mcoot/codenames-go/internal/services/game"
	"github.com/mcoot/codenames-go/internal/services/wordpool"
	"github.com/mcoot/codenames-go/internal/storage"
	"github.com/mcoot/codenames-go/internal/storage/memory"
	"github.com/mcoot/codenames-go/internal/testutil"
)

const code model.LobbyCode = "ABC123"

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	games      *game.Controller
	words      *wordpool.Service
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
	host       model.Player
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(testutil.FixedTime)
	s.random = mocks.NewMockRandom()
	s.games = game.NewController(s.storage, s.clock, logger, game.DefaultConfig())
	s.words = wordpool.New(s.storage, logger)
	s.controller = NewController(s.storage, s.games, board.New(s.random), s.words, s.clock, s.random, logger)
	s.ctx = context.Background()

	s.Require().NoError(s.words.LoadWords(s.ctx, testutil.WordPool(model.BoardSize)))
	s.host = s.createPlayer("host-1", "Host")
}

func (s *ControllerSuite) TearDownTest() {
	s.games.Close()
}

func (s *ControllerSuite) createPlayer(id string, name string) model.Player {
	return model.Player{
		ID:          model.PlayerID(id),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	}
}

func (s *ControllerSuite) createLobby() *model.Lobby {
	s.random.QueueString(string(code))
	lobby, err := s.controller.CreateLobby(s.ctx, s.host)
	s.Require().NoError(err)
	return lobby
}

// seatTable fills all four roles, with the host as red spymaster
func (s *ControllerSuite) seatTable() {
	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleRedSpymaster))
	seats := map[string]model.Role{
		"red-op":   model.RoleRedOperative,
		"blue-spy": model.RoleBlueSpymaster,
		"blue-op":  model.RoleBlueOperative,
	}
	for id, role := range seats {
		p := s.createPlayer(id, id)
		s.Require().NoError(s.controller.JoinLobby(s.ctx, code, p))
		s.Require().NoError(s.controller.SelectRole(s.ctx, code, p.ID, role))
	}
}

func (s *ControllerSuite) startGame() *model.Session {
	s.createLobby()
	s.seatTable()
	session, err := s.controller.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)
	return session
}

// CreateLobby tests

func (s *ControllerSuite) TestCreateLobbySucceeds() {
	lobby := s.createLobby()

	s.Equal(code, lobby.Code)
	s.Equal(model.LobbyStateWaiting, lobby.State)
	s.Len(lobby.Members, 1)
	s.Equal(s.host.ID, lobby.Members[0].Player.ID)
	s.True(lobby.Members[0].IsHost)
	s.Empty(lobby.Members[0].Role)
}

func (s *ControllerSuite) TestCreateLobbyIsPersisted() {
	lobby := s.createLobby()

	retrieved, err := s.controller.GetLobby(s.ctx, lobby.Code)
	s.Require().NoError(err)
	s.Equal(lobby.Code, retrieved.Code)
}

func (s *ControllerSuite) TestCreateLobbySkipsTakenCodes() {
	s.createLobby()

	s.random.QueueString(string(code), "XYZ789")
	lobby, err := s.controller.CreateLobby(s.ctx, s.createPlayer("host-2", "Other"))
	s.Require().NoError(err)
	s.Equal(model.LobbyCode("XYZ789"), lobby.Code)
}

func (s *ControllerSuite) TestCreateLobbyGivesUpWithoutFreeCode() {
	_, err := s.controller.CreateLobby(s.ctx, s.host)
	s.ErrorIs(err, ErrNoFreeCode)
}

// JoinLobby tests

func (s *ControllerSuite) TestJoinLobbySucceeds() {
	s.createLobby()

	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Len(updated.Members, 2)
	s.Empty(updated.GetMember(player.ID).Role)
	s.False(updated.GetMember(player.ID).IsHost)
}

func (s *ControllerSuite) TestJoinLobbyDuringGameSpectates() {
	s.startGame()

	player := s.createPlayer("late", "Late")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Empty(updated.GetMember(player.ID).Role)

	role, err := s.games.RoleOf(s.ctx, model.SessionID(code), player.ID)
	s.Require().NoError(err)
	s.Empty(role)
}

func (s *ControllerSuite) TestJoinLobbyFailsIfAlreadyMember() {
	s.createLobby()
	err := s.controller.JoinLobby(s.ctx, code, s.host)
	s.ErrorIs(err, model.ErrAlreadyInLobby)
}

func (s *ControllerSuite) TestJoinLobbyFailsIfNotFound() {
	err := s.controller.JoinLobby(s.ctx, "NONEXISTENT", s.createPlayer("player-1", "Player"))
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

// LeaveLobby tests

func (s *ControllerSuite) TestLeaveLobbySucceeds() {
	s.createLobby()
	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	s.Require().NoError(s.controller.LeaveLobby(s.ctx, code, player.ID))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Len(updated.Members, 1)
	s.Nil(updated.GetMember(player.ID))
}

func (s *ControllerSuite) TestLeaveLobbyDeletesEmptyLobby() {
	s.createLobby()

	s.Require().NoError(s.controller.LeaveLobby(s.ctx, code, s.host.ID))

	_, err := s.controller.GetLobby(s.ctx, code)
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *ControllerSuite) TestLastMemberLeavingDiscardsSession() {
	s.startGame()
	for _, id := range []model.PlayerID{"red-op", "blue-spy", "blue-op", s.host.ID} {
		s.Require().NoError(s.controller.LeaveLobby(s.ctx, code, id))
	}

	_, err := s.storage.GetSession(s.ctx, model.SessionID(code))
	s.ErrorIs(err, model.ErrSessionNotFound)
	roles, err := s.storage.GetRoleAssignments(s.ctx, model.SessionID(code))
	s.Require().NoError(err)
	s.Empty(roles)
}

func (s *ControllerSuite) TestLeaveLobbyTransfersHost() {
	s.createLobby()
	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	s.Require().NoError(s.controller.LeaveLobby(s.ctx, code, s.host.ID))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.True(updated.Members[0].IsHost)
	s.Equal(player.ID, updated.Members[0].Player.ID)
}

func (s *ControllerSuite) TestLeaveLobbySkipsBotsWhenTransferringHost() {
	s.createLobby()
	bot := s.createPlayer("bot-1", "Bot 1")
	bot.IsBot = true
	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, bot))
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	s.Require().NoError(s.controller.LeaveLobby(s.ctx, code, s.host.ID))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.False(updated.GetMember(bot.ID).IsHost)
	s.True(updated.GetMember(player.ID).IsHost)
}

func (s *ControllerSuite) TestLeaveLobbyClosesWhenOnlyBotsRemain() {
	s.createLobby()
	bot := s.createPlayer("bot-1", "Bot 1")
	bot.IsBot = true
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, bot))

	s.Require().NoError(s.controller.LeaveLobby(s.ctx, code, s.host.ID))

	_, err := s.controller.GetLobby(s.ctx, code)
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *ControllerSuite) TestLeaveLobbyFailsIfNotMember() {
	s.createLobby()
	err := s.controller.LeaveLobby(s.ctx, code, "nonexistent")
	s.ErrorIs(err, model.ErrNotInLobby)
}

// SelectRole tests

func (s *ControllerSuite) TestSelectRoleSeatsMember() {
	s.createLobby()

	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleBlueOperative))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Equal(model.RoleBlueOperative, updated.GetMember(s.host.ID).Role)
}

func (s *ControllerSuite) TestSelectRoleLastWriteWins() {
	s.createLobby()

	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleBlueOperative))
	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleRedSpymaster))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Equal(model.RoleRedSpymaster, updated.GetMember(s.host.ID).Role)
	s.Empty(updated.MembersWithRole(model.RoleBlueOperative))
}

func (s *ControllerSuite) TestSelectRoleEmptyClearsSeat() {
	s.createLobby()
	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleRedOperative))

	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, ""))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Empty(updated.GetMember(s.host.ID).Role)
}

func (s *ControllerSuite) TestSelectRoleRejectsSecondSpymaster() {
	s.createLobby()
	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))
	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleRedSpymaster))

	err := s.controller.SelectRole(s.ctx, code, player.ID, model.RoleRedSpymaster)
	s.ErrorIs(err, model.ErrRoleTaken)

	// The holder may reselect their own seat
	s.NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleRedSpymaster))
}

func (s *ControllerSuite) TestSelectRoleAllowsSeveralOperatives() {
	s.createLobby()
	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleBlueOperative))
	s.Require().NoError(s.controller.SelectRole(s.ctx, code, player.ID, model.RoleBlueOperative))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Len(updated.MembersWithRole(model.RoleBlueOperative), 2)
}

func (s *ControllerSuite) TestSelectRoleRejectsUnknownRole() {
	s.createLobby()
	err := s.controller.SelectRole(s.ctx, code, s.host.ID, model.Role("captain"))
	s.ErrorIs(err, model.ErrInvalidRole)
}

func (s *ControllerSuite) TestSelectRoleFailsIfNotMember() {
	s.createLobby()
	err := s.controller.SelectRole(s.ctx, code, "nonexistent", model.RoleRedOperative)
	s.ErrorIs(err, model.ErrNotInLobby)
}

func (s *ControllerSuite) TestSelectRoleFrozenDuringGame() {
	s.startGame()
	err := s.controller.SelectRole(s.ctx, code, "red-op", model.RoleBlueOperative)
	s.ErrorIs(err, model.ErrGameInProgress)
}

// TransferHost tests

func (s *ControllerSuite) TestTransferHostSucceeds() {
	s.createLobby()
	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	s.Require().NoError(s.controller.TransferHost(s.ctx, code, s.host.ID, player.ID))

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.False(updated.GetMember(s.host.ID).IsHost)
	s.True(updated.GetMember(player.ID).IsHost)
}

func (s *ControllerSuite) TestTransferHostFailsIfNotHost() {
	s.createLobby()
	player := s.createPlayer("player-1", "Player")
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, player))

	err := s.controller.TransferHost(s.ctx, code, player.ID, player.ID)
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestTransferHostFailsIfTargetNotMember() {
	s.createLobby()
	err := s.controller.TransferHost(s.ctx, code, s.host.ID, "nonexistent")
	s.ErrorIs(err, model.ErrNotInLobby)
}

func (s *ControllerSuite) TestTransferHostRejectsBots() {
	s.createLobby()
	bot := s.createPlayer("bot-1", "Bot 1")
	bot.IsBot = true
	s.Require().NoError(s.controller.JoinLobby(s.ctx, code, bot))

	err := s.controller.TransferHost(s.ctx, code, s.host.ID, bot.ID)
	s.ErrorIs(err, model.ErrBotCannotHost)
}

// StartGame tests

func (s *ControllerSuite) TestStartGameSucceeds() {
	session := s.startGame()

	s.Equal(model.SessionID(code), session.ID)
	s.Equal(model.TurnRedClue, session.Turn)
	s.Equal(int64(1), session.Version)
	s.Equal(testutil.FixedBoard(), session.Board)

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Equal(model.LobbyStateInGame, updated.State)
}

func (s *ControllerSuite) TestStartGameSeatsPlayers() {
	s.startGame()

	roles, err := s.storage.GetRoleAssignments(s.ctx, model.SessionID(code))
	s.Require().NoError(err)
	s.Len(roles, 4)

	role, ok := storage.RoleOf(roles, s.host.ID)
	s.True(ok)
	s.Equal(model.RoleRedSpymaster, role)
	role, _ = storage.RoleOf(roles, "blue-op")
	s.Equal(model.RoleBlueOperative, role)
}

func (s *ControllerSuite) TestStartGameFailsIfNotHost() {
	s.createLobby()
	s.seatTable()
	_, err := s.controller.StartGame(s.ctx, code, "red-op")
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestStartGameNeedsEveryRole() {
	s.createLobby()
	s.Require().NoError(s.controller.SelectRole(s.ctx, code, s.host.ID, model.RoleRedSpymaster))

	_, err := s.controller.StartGame(s.ctx, code, s.host.ID)
	s.ErrorIs(err, model.ErrInsufficientPlayers)
}

func (s *ControllerSuite) TestStartGameFailsWhileRunning() {
	s.startGame()
	_, err := s.controller.StartGame(s.ctx, code, s.host.ID)
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ControllerSuite) TestStartGameFailsWithSmallWordPool() {
	s.Require().NoError(s.words.LoadWords(s.ctx, testutil.WordPool(model.BoardSize-1)))
	s.createLobby()
	s.seatTable()

	_, err := s.controller.StartGame(s.ctx, code, s.host.ID)
	s.ErrorIs(err, model.ErrInsufficientWordPool)

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Equal(model.LobbyStateWaiting, updated.State)
}

// AbandonGame tests

func (s *ControllerSuite) TestAbandonGameDiscardsSession() {
	s.startGame()

	s.Require().NoError(s.controller.AbandonGame(s.ctx, code, s.host.ID))

	_, err := s.storage.GetSession(s.ctx, model.SessionID(code))
	s.ErrorIs(err, model.ErrSessionNotFound)

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Equal(model.LobbyStateWaiting, updated.State)
	s.Empty(updated.GameHistory)
}

func (s *ControllerSuite) TestAbandonGameFailsIfNotHost() {
	s.startGame()
	err := s.controller.AbandonGame(s.ctx, code, "blue-spy")
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestAbandonGameFailsWithoutGame() {
	s.createLobby()
	err := s.controller.AbandonGame(s.ctx, code, s.host.ID)
	s.ErrorIs(err, model.ErrNoGameInProgress)
}

// CompleteGame tests

func (s *ControllerSuite) TestCompleteGameRecordsSummary() {
	s.startGame()
	id := model.SessionID(code)

	_, err := s.games.GiveClue(s.ctx, id, s.host.ID, "fruit", 1)
	s.Require().NoError(err)
	_, err = s.games.SelectWord(s.ctx, id, "red-op", testutil.AssassinWord)
	s.Require().NoError(err)

	summary, err := s.controller.CompleteGame(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.TeamBlue, summary.Winner)
	s.Equal(model.ReasonAssassin, summary.Reason)

	updated, _ := s.controller.GetLobby(s.ctx, code)
	s.Equal(model.LobbyStateWaiting, updated.State)
	s.Require().Len(updated.GameHistory, 1)
	s.Equal(id, updated.GameHistory[0].SessionID)

	// The final board stays readable
	session, err := s.storage.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.True(session.IsTerminal())
}

func (s *ControllerSuite) TestCompleteGameUnfrozenSeats() {
	s.startGame()
	id := model.SessionID(code)
	_, err := s.games.GiveClue(s.ctx, id, s.host.ID, "fruit", 1)
	s.Require().NoError(err)
	_, err = s.games.SelectWord(s.ctx, id, "red-op", testutil.AssassinWord)
	s.Require().NoError(err)
	_, err = s.controller.CompleteGame(s.ctx, code)
	s.Require().NoError(err)

	s.NoError(s.controller.SelectRole(s.ctx, code, "red-op", model.RoleBlueOperative))
}

func (s *ControllerSuite) TestGetLobbyRecordsFinishedGame() {
	s.startGame()
	id := model.SessionID(code)
	_, err := s.games.GiveClue(s.ctx, id, s.host.ID, "fruit", 1)
	s.Require().NoError(err)
	_, err = s.games.SelectWord(s.ctx, id, "red-op", testutil.AssassinWord)
	s.Require().NoError(err)

	lobby, err := s.controller.GetLobby(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.LobbyStateWaiting, lobby.State)
	s.Require().Len(lobby.GameHistory, 1)
	s.Equal(model.TeamBlue, lobby.GameHistory[0].Winner)

	// Recorded once only
	again, err := s.controller.GetLobby(s.ctx, code)
	s.Require().NoError(err)
	s.Len(again.GameHistory, 1)

	_, err = s.controller.CompleteGame(s.ctx, code)
	s.ErrorIs(err, model.ErrNoGameInProgress)
}

func (s *ControllerSuite) TestSelectRoleAfterFinishedGame() {
	s.startGame()
	id := model.SessionID(code)
	_, err := s.games.GiveClue(s.ctx, id, s.host.ID, "fruit", 1)
	s.Require().NoError(err)
	_, err = s.games.SelectWord(s.ctx, id, "red-op", testutil.AssassinWord)
	s.Require().NoError(err)

	s.NoError(s.controller.SelectRole(s.ctx, code, "red-op", model.RoleBlueOperative))

	stored, err := s.storage.GetLobby(s.ctx, code)
	s.Require().NoError(err)
	s.Len(stored.GameHistory, 1)
}

func (s *ControllerSuite) TestLobbyReopensWhenSessionIsGone() {
	s.startGame()
	s.Require().NoError(s.storage.DeleteSession(s.ctx, model.SessionID(code)))

	lobby, err := s.controller.GetLobby(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.LobbyStateWaiting, lobby.State)
	s.Empty(lobby.GameHistory)
}

func (s *ControllerSuite) TestCompleteGameFailsWhileRunning() {
	s.startGame()
	_, err := s.controller.CompleteGame(s.ctx, code)
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ControllerSuite) TestCompleteGameFailsWithoutGame() {
	s.createLobby()
	_, err := s.controller.CompleteGame(s.ctx, code)
	s.ErrorIs(err, model.ErrNoGameInProgress)
}
