package console

import (
	"context"
	"time"

	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
	"go.uber.org/zap"
)

const backToMenu = "Press Enter to return to the menu..."

// Controller 终端游戏控制器
type Controller struct {
	store     repository.Store
	view      *View
	maxErrors int
	logger    *zap.Logger
	now       func() time.Time
}

// NewController 创建控制器
func NewController(store repository.Store, view *View, maxErrors int, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store:     store,
		view:      view,
		maxErrors: maxErrors,
		logger:    log,
		now:       time.Now,
	}
}

// ShowHelp 显示用法
func (c *Controller) ShowHelp(name string) {
	c.view.ShowHelp(name)
}

// RunInteractive 交互式菜单，选择 0 或输入结束时返回
func (c *Controller) RunInteractive(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.view.ShowMainMenu()

		switch c.view.AskMenuChoice() {
		case "1":
			c.NewGame(ctx)
			c.view.WaitForEnter(backToMenu)
		case "2":
			c.ListGames(ctx)
			c.view.WaitForEnter(backToMenu)
		case "3":
			if id := c.view.AskReplayGameID(); id > 0 {
				c.ReplayGame(ctx, id)
			}
			c.view.WaitForEnter(backToMenu)
		case "0":
			c.view.ShowExit()
			return
		}
	}
}

// pickWord 从词库取词，失败时用内置词表
func (c *Controller) pickWord(ctx context.Context) string {
	word, err := c.store.RandomWord(ctx)
	if err == nil {
		return word
	}
	c.logger.Warn("从词库取词失败，使用默认词表", zap.Error(err))
	word, _ = game.RandomWord(game.DefaultWords)
	return word
}

// NewGame 进行一局，存储失败时继续游戏但不再保存
func (c *Controller) NewGame(ctx context.Context) *game.State {
	c.view.ShowWelcome()
	player := c.view.AskPlayerName()

	state := game.NewState(c.maxErrors)
	state.Start(player, c.pickWord(ctx))

	record := &models.Game{
		PlayerName: state.PlayerName(),
		SecretWord: state.SecretWord(),
		PlayedAt:   c.now().UTC(),
		Result:     models.ResultInProgress,
	}
	persist := true
	if err := c.store.CreateGame(ctx, record); err != nil {
		c.logger.Error("保存对局失败，本局不再记录", zap.Error(err))
		persist = false
	}

	attemptNo := 1
	for !state.IsOver() {
		c.view.RenderGameState(state.Snapshot(), attemptNo)

		letter, ok := c.view.AskLetter(attemptNo)
		if !ok {
			c.logger.Info("输入结束，对局未完成", zap.Uint("game_id", record.ID))
			c.view.RenderFinal(state)
			return state
		}

		out := state.Guess(letter)
		if persist {
			err := c.store.AddAttempt(ctx, &models.Attempt{
				GameID:    record.ID,
				AttemptNo: attemptNo,
				Letter:    out.Letter,
				Success:   out.Success,
			})
			if err != nil {
				c.logger.Error("记录猜测失败",
					zap.Uint("game_id", record.ID),
					zap.Int("attempt_no", attemptNo),
					zap.Error(err))
			}
		}
		c.view.ShowAttemptResult(out)
		attemptNo++
	}

	if persist {
		if err := c.store.FinishGame(ctx, record.ID, state.Status().Result()); err != nil {
			c.logger.Error("更新对局结果失败", zap.Uint("game_id", record.ID), zap.Error(err))
		}
	}
	c.view.RenderFinal(state)
	return state
}

// ListGames 列出全部对局
func (c *Controller) ListGames(ctx context.Context) {
	games, err := c.store.ListGames(ctx, nil)
	if err != nil {
		c.logger.Error("获取对局列表失败", zap.Error(err))
		c.view.ShowError("Could not load games.")
		return
	}
	c.view.RenderGamesList(games)
}

// ReplayGame 逐步回放对局
func (c *Controller) ReplayGame(ctx context.Context, id uint) bool {
	if id == 0 {
		return false
	}

	g, err := c.store.FindGame(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrGameNotFound) {
			c.view.ShowError("Game not found.")
		} else {
			c.logger.Error("读取对局失败", zap.Uint("game_id", id), zap.Error(err))
			c.view.ShowError("Could not load the game.")
		}
		return false
	}
	attempts, err := c.store.ListAttempts(ctx, id)
	if err != nil {
		c.logger.Error("读取猜测失败", zap.Uint("game_id", id), zap.Error(err))
		c.view.ShowError("Could not load the game.")
		return false
	}

	c.view.RenderReplayHeader(g)

	moves := make([]game.Move, 0, len(attempts))
	for _, a := range attempts {
		moves = append(moves, game.Move{AttemptNo: a.AttemptNo, Letter: a.Letter})
	}
	steps, state := game.Replay(g.PlayerName, g.SecretWord, c.maxErrors, moves)
	for _, step := range steps {
		c.view.RenderReplayStep(step, state.MaxErrors())
	}
	c.view.RenderFinal(state)
	return true
}
