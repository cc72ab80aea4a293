package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
	"go.uber.org/zap"
)

// playedAt 接受的时间格式
var playedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type gameService struct {
	store     repository.Store
	events    EventPublisher
	maxErrors int
	logger    *zap.Logger
}

// NewGameService 创建对局记录服务
func NewGameService(store repository.Store, config *Config, events EventPublisher, log *zap.Logger) GameService {
	if events == nil {
		events = NopPublisher{}
	}
	return &gameService{
		store:     store,
		events:    events,
		maxErrors: config.MaxErrors,
		logger:    log,
	}
}

// ListGames 列出对局，最新的在前
func (s *gameService) ListGames(ctx context.Context, pagination *repository.Pagination) ([]models.Game, error) {
	games, err := s.store.ListGames(ctx, pagination)
	if err != nil {
		return nil, fmt.Errorf("获取对局列表失败: %w", err)
	}
	return games, nil
}

// GetGame 获取对局及其猜测
func (s *gameService) GetGame(ctx context.Context, id uint) (*models.GameDetail, error) {
	if id == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidGameID)
	}
	g, err := s.store.FindGame(ctx, id)
	if err != nil {
		return nil, err
	}
	attempts, err := s.store.ListAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("获取猜测记录失败: %w", err)
	}
	return &models.GameDetail{Game: *g, Attempts: attempts}, nil
}

// CreateGame 创建进行中的对局
func (s *gameService) CreateGame(ctx context.Context, req *CreateGameRequest) (uint, error) {
	player := strings.TrimSpace(req.PlayerName)
	word := strings.TrimSpace(req.SecretWord)
	playedAtRaw := strings.TrimSpace(req.PlayedAt)
	if player == "" || word == "" || playedAtRaw == "" {
		return 0, apperrors.New(apperrors.ErrMissingFields)
	}

	word = strings.ToLower(word)
	if !game.IsValidWord(word) {
		return 0, apperrors.Newf(apperrors.ErrInvalidWord, "%q", req.SecretWord)
	}

	playedAt, err := ParsePlayedAt(playedAtRaw)
	if err != nil {
		return 0, err
	}

	g := &models.Game{
		PlayerName: player,
		SecretWord: word,
		PlayedAt:   playedAt,
		Result:     models.ResultInProgress,
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		return 0, fmt.Errorf("创建对局失败: %w", err)
	}

	s.logger.Info("对局已创建",
		zap.Uint("game_id", g.ID),
		zap.String("player", g.PlayerName),
	)
	publish(s.events, EventGameCreated, g.ID, map[string]interface{}{
		"gameId": g.ID,
		"game":   g,
	})
	return g.ID, nil
}

// AddStep 记录一次猜测，先确认对局存在再校验数据
func (s *gameService) AddStep(ctx context.Context, gameID uint, req *StepRequest) error {
	if gameID == 0 {
		return apperrors.New(apperrors.ErrInvalidGameID)
	}
	if _, err := s.store.FindGame(ctx, gameID); err != nil {
		return err
	}

	letter := strings.ToLower(strings.TrimSpace(req.Letter))
	if req.AttemptNo <= 0 || !game.IsValidLetter(letter) {
		return apperrors.New(apperrors.ErrInvalidAttempt)
	}

	// success 由客户端计算，原样保存
	a := &models.Attempt{
		GameID:    gameID,
		AttemptNo: req.AttemptNo,
		Letter:    letter,
		Success:   req.Success,
	}
	if err := s.store.AddAttempt(ctx, a); err != nil {
		return fmt.Errorf("记录猜测失败: %w", err)
	}

	publish(s.events, EventAttemptAdded, gameID, map[string]interface{}{
		"gameId":    gameID,
		"attemptNo": a.AttemptNo,
		"letter":    a.Letter,
		"success":   a.Success,
	})
	return nil
}

// FinishGame 写入对局结果 win/lose
func (s *gameService) FinishGame(ctx context.Context, gameID uint, req *FinishGameRequest) error {
	if gameID == 0 {
		return apperrors.New(apperrors.ErrInvalidGameID)
	}
	if _, err := s.store.FindGame(ctx, gameID); err != nil {
		return err
	}

	result := strings.ToLower(strings.TrimSpace(req.Result))
	if result != models.ResultWin && result != models.ResultLose {
		return apperrors.New(apperrors.ErrInvalidResult)
	}

	if err := s.store.FinishGame(ctx, gameID, result); err != nil {
		return fmt.Errorf("更新对局结果失败: %w", err)
	}

	s.logger.Info("对局已结束", zap.Uint("game_id", gameID), zap.String("result", result))
	publish(s.events, EventGameFinished, gameID, map[string]interface{}{
		"gameId": gameID,
		"result": result,
	})
	return nil
}

// DeleteGame 删除对局
func (s *gameService) DeleteGame(ctx context.Context, id uint) error {
	if id == 0 {
		return apperrors.New(apperrors.ErrInvalidGameID)
	}
	if err := s.store.DeleteGame(ctx, id); err != nil {
		return err
	}
	publish(s.events, EventGameDeleted, id, map[string]interface{}{"gameId": id})
	return nil
}

// ReplayGame 按记录重建对局
func (s *gameService) ReplayGame(ctx context.Context, id uint) (*ReplayResult, error) {
	detail, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	moves := make([]game.Move, 0, len(detail.Attempts))
	for _, a := range detail.Attempts {
		moves = append(moves, game.Move{AttemptNo: a.AttemptNo, Letter: a.Letter})
	}
	steps, state := game.Replay(detail.Game.PlayerName, detail.Game.SecretWord, s.maxErrors, moves)

	return &ReplayResult{
		Game:     detail.Game,
		Steps:    steps,
		Status:   state.Status(),
		Complete: state.IsOver(),
	}, nil
}

// ParsePlayedAt 解析对局时间
func ParsePlayedAt(raw string) (time.Time, error) {
	for _, layout := range playedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Newf(apperrors.ErrInvalidParam, "playedAt: %q", raw)
}
