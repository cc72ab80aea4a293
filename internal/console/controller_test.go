package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// brokenStore 写入全部失败的存储
type brokenStore struct {
	repository.Store
}

func (brokenStore) CreateGame(context.Context, *models.Game) error {
	return errors.New("disk full")
}

// ControllerTestSuite 终端控制器测试套件
type ControllerTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store repository.Store
	out   *bytes.Buffer
	ctx   context.Context
}

func (suite *ControllerTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.store = repository.NewManager(suite.db)
	suite.ctx = context.Background()
	_, err := suite.store.AddWord(suite.ctx, "planet")
	suite.Require().NoError(err)
	suite.out = &bytes.Buffer{}
}

func (suite *ControllerTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

func (suite *ControllerTestSuite) controller(input string, store repository.Store) *Controller {
	view := NewView(strings.NewReader(input), suite.out, false)
	return NewController(store, view, game.DefaultMaxErrors, zap.NewNop())
}

func (suite *ControllerTestSuite) onlyGame() models.Game {
	games, err := suite.store.ListGames(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Require().Len(games, 1)
	return games[0]
}

func (suite *ControllerTestSuite) TestNewGameWin() {
	state := suite.controller("Alice\np\nl\na\nn\ne\nt\n", suite.store).NewGame(suite.ctx)

	suite.Equal(game.StatusWon, state.Status())
	g := suite.onlyGame()
	suite.Equal("Alice", g.PlayerName)
	suite.Equal("planet", g.SecretWord)
	suite.Equal(models.ResultWin, g.Result)

	attempts, err := suite.store.ListAttempts(suite.ctx, g.ID)
	suite.Require().NoError(err)
	suite.Len(attempts, 6)
	suite.True(attempts[5].Success)

	out := suite.out.String()
	suite.Contains(out, "Word: _ _ _ _ _ _")
	suite.Contains(out, "Congratulations, Alice!")
}

func (suite *ControllerTestSuite) TestNewGameLose() {
	state := suite.controller("Bob\nb\nc\nd\nf\ng\nh\n", suite.store).NewGame(suite.ctx)

	suite.Equal(game.StatusLost, state.Status())
	suite.Equal(models.ResultLose, suite.onlyGame().Result)
	suite.Contains(suite.out.String(), "Sorry, Bob, you lost.")
	suite.Contains(suite.out.String(), game.Gallows(6))
}

// 测试输入校验与重复字母
func (suite *ControllerTestSuite) TestNewGameInputHandling() {
	input := "\n  Carol  \n\n7\nPx\np\nl\na\nn\ne\nt\n"
	state := suite.controller(input, suite.store).NewGame(suite.ctx)
	suite.Equal(game.StatusWon, state.Status())

	out := suite.out.String()
	suite.Contains(out, "Name cannot be empty")
	suite.Contains(out, "Empty input")
	suite.Contains(out, "Enter a single latin letter")
	suite.Contains(out, `Letter "p" was already used.`)

	g := suite.onlyGame()
	suite.Equal("Carol", g.PlayerName)
	attempts, err := suite.store.ListAttempts(suite.ctx, g.ID)
	suite.Require().NoError(err)
	suite.Len(attempts, 7)
	suite.Equal("p", attempts[1].Letter)
	suite.Equal(2, attempts[1].AttemptNo)
}

func (suite *ControllerTestSuite) TestNewGameEOF() {
	state := suite.controller("", suite.store).NewGame(suite.ctx)
	suite.Equal(game.StatusPlaying, state.Status())
	suite.Equal("Player", state.PlayerName())

	g := suite.onlyGame()
	suite.Equal(models.ResultInProgress, g.Result)
	suite.Contains(suite.out.String(), "the game was not finished")
}

func (suite *ControllerTestSuite) TestNewGameWithoutStorage() {
	store := brokenStore{Store: suite.store}
	state := suite.controller("Dan\np\nl\na\nn\ne\nt\n", store).NewGame(suite.ctx)

	suite.Equal(game.StatusWon, state.Status())
	games, err := suite.store.ListGames(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Empty(games)
}

func (suite *ControllerTestSuite) TestListGames() {
	suite.controller("", suite.store).ListGames(suite.ctx)
	suite.Contains(suite.out.String(), "No saved games yet.")

	g := repository.CreateTestGame(suite.T(), suite.store, "Evelyn-the-Great", "planet")
	suite.Require().NoError(suite.store.FinishGame(suite.ctx, g.ID, models.ResultLose))

	suite.out.Reset()
	suite.controller("", suite.store).ListGames(suite.ctx)
	out := suite.out.String()
	suite.Contains(out, "ID | Date")
	suite.Contains(out, "2024-05-01 12:00:00")
	suite.Contains(out, "Evelyn-the-")
	suite.NotContains(out, "Evelyn-the-Great")
	suite.Contains(out, "lost")
}

func (suite *ControllerTestSuite) TestReplayGame() {
	g := repository.CreateTestGame(suite.T(), suite.store, "Fay", "planet")
	repository.CreateTestAttempts(suite.T(), suite.store, g, "p", "z", "p", "l", "a", "n", "e", "t")
	suite.Require().NoError(suite.store.FinishGame(suite.ctx, g.ID, models.ResultWin))

	suite.True(suite.controller("", suite.store).ReplayGame(suite.ctx, g.ID))

	out := suite.out.String()
	suite.Contains(out, "Player: Fay")
	suite.Contains(out, "Result: won")
	suite.Contains(out, `Move #1: letter "p", hit`)
	suite.Contains(out, `Move #2: letter "z", miss`)
	suite.Contains(out, `Move #3: letter "p", hit, repeated`)
	suite.Contains(out, "Congratulations, Fay!")
}

func (suite *ControllerTestSuite) TestReplayMissing() {
	suite.False(suite.controller("", suite.store).ReplayGame(suite.ctx, 42))
	suite.Contains(suite.out.String(), "Game not found.")
	suite.False(suite.controller("", suite.store).ReplayGame(suite.ctx, 0))
}

// 测试交互菜单
func (suite *ControllerTestSuite) TestRunInteractive() {
	input := "9\n2\n\n3\nabc\n0\n\n0\n"
	suite.controller(input, suite.store).RunInteractive(suite.ctx)

	out := suite.out.String()
	suite.Contains(out, "1. New game")
	suite.Contains(out, "Invalid choice")
	suite.Contains(out, "No saved games yet.")
	suite.Contains(out, "Enter a non-negative integer.")
	suite.Contains(out, "Bye!")
}

func (suite *ControllerTestSuite) TestRunInteractiveEOF() {
	suite.controller("", suite.store).RunInteractive(suite.ctx)
	suite.Contains(suite.out.String(), "Bye!")
}

func (suite *ControllerTestSuite) TestRunInteractiveNewGame() {
	input := "1\nGus\np\nl\na\nn\ne\nt\n\n0\n"
	suite.controller(input, suite.store).RunInteractive(suite.ctx)
	suite.Equal(models.ResultWin, suite.onlyGame().Result)
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}
