package factory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codenames-go/internal/model"
	redisstorage "github.com/mcoot/codenames-go/internal/storage/redis"
	"github.com/mcoot/codenames-go/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context

	host, redOp, blueSpy, blueOp model.Player
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestWordPool(s.ctx))

	s.host = s.createPlayer("host", "Host Player")
	s.redOp = s.createPlayer("red-op", "Red Operative")
	s.blueSpy = s.createPlayer("blue-spy", "Blue Spymaster")
	s.blueOp = s.createPlayer("blue-op", "Blue Operative")
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) createPlayer(id, name string) model.Player {
	return model.Player{
		ID:          model.PlayerID(id),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.app.MockClock.Now(),
	}
}

// setupTable creates LOBBY1 with all four seats filled
func (s *IntegrationSuite) setupTable() model.LobbyCode {
	s.app.MockRandom.QueueString("LOBBY1")
	lobby, err := s.app.LobbyController.CreateLobby(s.ctx, s.host)
	s.Require().NoError(err)

	for _, p := range []model.Player{s.redOp, s.blueSpy, s.blueOp} {
		s.Require().NoError(s.app.LobbyController.JoinLobby(s.ctx, lobby.Code, p))
	}

	seats := map[model.PlayerID]model.Role{
		s.host.ID:    model.RoleRedSpymaster,
		s.redOp.ID:   model.RoleRedOperative,
		s.blueSpy.ID: model.RoleBlueSpymaster,
		s.blueOp.ID:  model.RoleBlueOperative,
	}
	for id, role := range seats {
		s.Require().NoError(s.app.LobbyController.SelectRole(s.ctx, lobby.Code, id, role))
	}
	return lobby.Code
}

func (s *IntegrationSuite) TestCompleteGameFlow() {
	code := s.setupTable()
	id := model.SessionID(code)

	session, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)
	s.Equal(model.TurnRedClue, session.Turn)
	s.True(session.Board.Equal(testutil.FixedBoard()))

	// Red clues all eight words and the operative finds every one
	_, err = s.app.GameController.GiveClue(s.ctx, id, s.host.ID, "orchard", 8)
	s.Require().NoError(err)
	for _, w := range testutil.RedWords {
		session, err = s.app.GameController.SelectWord(s.ctx, id, s.redOp.ID, w)
		s.Require().NoError(err)
	}

	s.Require().True(session.IsTerminal())
	s.Equal(model.TeamRed, session.Terminal.Winner)
	s.Equal(model.ReasonAllRevealed, session.Terminal.Reason)
	s.Equal("red wins: all red words revealed", session.MoveLog[len(session.MoveLog)-1])

	_, err = s.app.GameController.EndTurn(s.ctx, id, s.blueOp.ID)
	s.ErrorIs(err, model.ErrSessionTerminal)

	summary, err := s.app.LobbyController.CompleteGame(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.TeamRed, summary.Winner)

	lobby, err := s.app.LobbyController.GetLobby(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.LobbyStateWaiting, lobby.State)
	s.Require().Len(lobby.GameHistory, 1)
	s.Equal(len(session.MoveLog), lobby.GameHistory[0].Moves)
}

func (s *IntegrationSuite) TestAssassinEndsGame() {
	code := s.setupTable()
	id := model.SessionID(code)

	_, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)

	_, err = s.app.GameController.GiveClue(s.ctx, id, s.host.ID, "peel", 1)
	s.Require().NoError(err)
	session, err := s.app.GameController.SelectWord(s.ctx, id, s.redOp.ID, testutil.AssassinWord)
	s.Require().NoError(err)

	s.Require().NotNil(session.Terminal)
	s.Equal(model.TeamBlue, session.Terminal.Winner)
	s.Equal(model.ReasonAssassin, session.Terminal.Reason)
}

func (s *IntegrationSuite) TestFinishedGameReopensLobbyWithoutCompleteGame() {
	code := s.setupTable()
	id := model.SessionID(code)

	_, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)

	// The game ends through the session controller alone
	_, err = s.app.GameController.GiveClue(s.ctx, id, s.host.ID, "peel", 1)
	s.Require().NoError(err)
	session, err := s.app.GameController.SelectWord(s.ctx, id, s.redOp.ID, testutil.AssassinWord)
	s.Require().NoError(err)
	s.Require().True(session.IsTerminal())

	s.Require().NoError(s.app.LobbyController.SelectRole(s.ctx, code, s.redOp.ID, model.RoleRedOperative))

	restarted, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)
	s.False(restarted.IsTerminal())
	s.Equal(model.TurnRedClue, restarted.Turn)

	lobby, err := s.app.LobbyController.GetLobby(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.LobbyStateInGame, lobby.State)
	s.Require().Len(lobby.GameHistory, 1)
	s.Equal(model.TeamBlue, lobby.GameHistory[0].Winner)
	s.Equal(model.ReasonAssassin, lobby.GameHistory[0].Reason)
}

func (s *IntegrationSuite) TestTurnPassesBetweenTeams() {
	code := s.setupTable()
	id := model.SessionID(code)

	_, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)

	_, err = s.app.GameController.GiveClue(s.ctx, id, s.host.ID, "fruit", 2)
	s.Require().NoError(err)

	// Blue cannot act on red's turn
	_, err = s.app.GameController.SelectWord(s.ctx, id, s.blueOp.ID, "IRIS")
	s.ErrorIs(err, model.ErrNotYourTurn)

	session, err := s.app.GameController.SelectWord(s.ctx, id, s.redOp.ID, "QUINCE")
	s.Require().NoError(err)
	s.Equal(model.TurnBlueClue, session.Turn)
	s.Nil(session.ActiveClue)

	session, err = s.app.GameController.GiveClue(s.ctx, id, s.blueSpy.ID, "gems", 0)
	s.Require().NoError(err)
	s.Equal(model.TurnBlueGuess, session.Turn)

	session, err = s.app.GameController.EndTurn(s.ctx, id, s.blueOp.ID)
	s.Require().NoError(err)
	s.Equal(model.TurnRedClue, session.Turn)
	s.Equal([]string{
		"red spymaster: fruit (2)",
		"red operative selected: QUINCE (neutral)",
		"blue spymaster: gems (0)",
		"blue operative ended the turn",
	}, session.MoveLog)
}

func (s *IntegrationSuite) TestAbandonAndRestart() {
	code := s.setupTable()

	_, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.app.LobbyController.AbandonGame(s.ctx, code, s.host.ID))

	_, err = s.app.GameController.GetSession(s.ctx, model.SessionID(code))
	s.ErrorIs(err, model.ErrSessionNotFound)

	// Lobby seats outlive the discarded session
	session, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), session.Version)
}

func (s *IntegrationSuite) TestSpectatorSeesRedactedBoard() {
	code := s.setupTable()
	id := model.SessionID(code)

	_, err := s.app.LobbyController.StartGame(s.ctx, code, s.host.ID)
	s.Require().NoError(err)

	watcher := s.createPlayer("watcher", "Watcher")
	s.Require().NoError(s.app.LobbyController.JoinLobby(s.ctx, code, watcher))

	view, role, err := s.app.GameController.GetSessionFor(s.ctx, id, watcher.ID)
	s.Require().NoError(err)
	s.Empty(role)
	s.Equal(model.BoardSize, view.Board.Count(model.ColorHidden))

	view, role, err = s.app.GameController.GetSessionFor(s.ctx, id, s.blueSpy.ID)
	s.Require().NoError(err)
	s.Equal(model.RoleBlueSpymaster, role)
	s.Zero(view.Board.Count(model.ColorHidden))
}

func TestNewLoadsDefaultWordPool(t *testing.T) {
	app, err := New(context.Background(), Config{})
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.WordPool.IsLoaded())
	assert.GreaterOrEqual(t, app.WordPool.WordCount(), model.BoardSize)
	assert.True(t, app.WordPool.Contains("ice cream"))
}

func TestNewLoadsWordListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	lines := append([]string{"# party words", ""}, testutil.WordPool(30)...)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))

	app, err := New(context.Background(), Config{WordListPath: path})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, 30, app.WordPool.WordCount())
	stored, err := app.Storage.GetWordPool(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 30)
}

func TestNewFailsOnMissingWordList(t *testing.T) {
	_, err := New(context.Background(), Config{WordListPath: filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(context.Background(), Config{StorageType: "sqlite"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}

func TestNewWithRedisReusesStoredPool(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(testutil.WordPool(40), "\n")), 0o600))

	first, err := New(context.Background(), Config{StorageType: StorageTypeRedis, RedisConfig: &cfg, WordListPath: path})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// A restart without a word list picks up the persisted pool
	second, err := New(context.Background(), Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 40, second.WordPool.WordCount())
}
