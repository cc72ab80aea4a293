package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
	"go.uber.org/zap"
)

// playSession 服务端对局会话
type playSession struct {
	mu         sync.Mutex
	id         string
	gameID     uint
	state      *game.State
	attemptNo  int
	lastActive time.Time
}

func (ps *playSession) snapshot() *PlaySnapshot {
	return &PlaySnapshot{
		SessionID: ps.id,
		GameID:    ps.gameID,
		Snapshot:  ps.state.Snapshot(),
		Gallows:   game.Gallows(ps.state.Errors()),
	}
}

type playService struct {
	store  repository.Store
	events EventPublisher
	config *Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*playSession
}

// NewPlayService 创建服务端对局服务
func NewPlayService(store repository.Store, config *Config, events EventPublisher, log *zap.Logger) PlayService {
	if events == nil {
		events = NopPublisher{}
	}
	return &playService{
		store:    store,
		events:   events,
		config:   config,
		logger:   log,
		now:      time.Now,
		sessions: make(map[string]*playSession),
	}
}

// Start 开始一局，随机取词并创建进行中的对局记录
func (s *playService) Start(ctx context.Context, playerName string) (*PlaySnapshot, error) {
	s.Cleanup()
	if s.config.MaxSessions > 0 && s.ActiveSessions() >= s.config.MaxSessions {
		return nil, apperrors.Newf(apperrors.ErrSessionLimit, "max=%d", s.config.MaxSessions)
	}

	word, err := s.store.RandomWord(ctx)
	if err != nil {
		// 词库不可用时退回内置词表
		s.logger.Warn("从词库取词失败，使用默认词表", zap.Error(err))
		if word, err = game.RandomWord(game.DefaultWords); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrNoWords)
		}
	}

	state := game.NewState(s.config.MaxErrors)
	state.Start(strings.TrimSpace(playerName), word)

	g := &models.Game{
		PlayerName: state.PlayerName(),
		SecretWord: state.SecretWord(),
		PlayedAt:   s.now().UTC(),
		Result:     models.ResultInProgress,
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建对局失败")
	}

	sess := &playSession{
		id:         uuid.NewString(),
		gameID:     g.ID,
		state:      state,
		lastActive: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	snap := sess.snapshot()
	s.logger.Info("服务端对局开始",
		zap.String("session_id", sess.id),
		zap.Uint("game_id", g.ID),
		zap.String("player", g.PlayerName),
	)
	publish(s.events, EventPlayStarted, g.ID, snap)
	return snap, nil
}

// Resume 按猜测记录重建进行中的对局会话，同一局已有会话时直接返回
func (s *playService) Resume(ctx context.Context, gameID uint) (*PlaySnapshot, error) {
	if gameID == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidGameID)
	}
	if sess := s.sessionByGame(gameID); sess != nil {
		return s.reuse(sess)
	}

	g, err := s.store.FindGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.IsFinished() {
		return nil, apperrors.Newf(apperrors.ErrGameFinished, "id=%d", gameID)
	}
	attempts, err := s.store.ListAttempts(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("读取猜测记录失败: %w", err)
	}

	moves := make([]game.Move, 0, len(attempts))
	lastNo := 0
	for _, a := range attempts {
		moves = append(moves, game.Move{AttemptNo: a.AttemptNo, Letter: a.Letter})
		if a.AttemptNo > lastNo {
			lastNo = a.AttemptNo
		}
	}
	_, state := game.Replay(g.PlayerName, g.SecretWord, s.config.MaxErrors, moves)

	// 记录里已分出胜负但结果没有写入
	if state.IsOver() {
		res := state.Status().Result()
		if err := s.store.FinishGame(ctx, gameID, res); err != nil {
			s.logger.Error("补写对局结果失败", zap.Uint("game_id", gameID), zap.Error(err))
		}
		return nil, apperrors.Newf(apperrors.ErrGameFinished, "id=%d result=%s", gameID, res)
	}

	s.Cleanup()

	// 读取存储期间可能已有并发请求恢复了同一局，检查和插入在同一把锁内
	s.mu.Lock()
	if existing := s.sessionByGameLocked(gameID); existing != nil {
		s.mu.Unlock()
		return s.reuse(existing)
	}
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		return nil, apperrors.Newf(apperrors.ErrSessionLimit, "max=%d", s.config.MaxSessions)
	}
	sess := &playSession{
		id:         uuid.NewString(),
		gameID:     gameID,
		state:      state,
		attemptNo:  lastNo,
		lastActive: s.now(),
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	snap := sess.snapshot()
	s.logger.Info("对局已恢复",
		zap.String("session_id", sess.id),
		zap.Uint("game_id", gameID),
		zap.Int("attempts", len(attempts)),
	)
	publish(s.events, EventPlayStarted, gameID, snap)
	return snap, nil
}

// Guess 猜一个字母，每个合法字母（包括重复字母）都记录一次
func (s *playService) Guess(ctx context.Context, sessionID, letter string) (*GuessResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.IsOver() {
		return nil, apperrors.Newf(apperrors.ErrGameFinished, "session=%s", sessionID)
	}
	l := strings.ToLower(strings.TrimSpace(letter))
	if !game.IsValidLetter(l) {
		return nil, apperrors.Newf(apperrors.ErrInvalidLetter, "%q", letter)
	}

	out := sess.state.Guess(l)
	sess.attemptNo++
	sess.lastActive = s.now()

	// 存储失败只记录日志，内存中的对局继续
	attempt := &models.Attempt{
		GameID:    sess.gameID,
		AttemptNo: sess.attemptNo,
		Letter:    out.Letter,
		Success:   out.Success,
	}
	if err := s.store.AddAttempt(ctx, attempt); err != nil {
		s.logger.Error("记录猜测失败",
			zap.Uint("game_id", sess.gameID),
			zap.Int("attempt_no", sess.attemptNo),
			zap.Error(err),
		)
	}

	snap := sess.snapshot()
	result := &GuessResult{Outcome: out, GameID: sess.gameID, AttemptNo: sess.attemptNo, State: snap}
	publish(s.events, EventPlayGuess, sess.gameID, result)

	if sess.state.IsOver() {
		res := sess.state.Status().Result()
		if err := s.store.FinishGame(ctx, sess.gameID, res); err != nil {
			s.logger.Error("更新对局结果失败", zap.Uint("game_id", sess.gameID), zap.Error(err))
		}
		s.logger.Info("服务端对局结束",
			zap.String("session_id", sess.id),
			zap.Uint("game_id", sess.gameID),
			zap.String("result", res),
		)
		publish(s.events, EventGameFinished, sess.gameID, map[string]interface{}{
			"gameId": sess.gameID,
			"result": res,
		})
	}
	return result, nil
}

// Get 获取会话快照
func (s *playService) Get(sessionID string) (*PlaySnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = s.now()
	return sess.snapshot(), nil
}

// End 结束会话，未完成的对局保持 in-progress
func (s *playService) End(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return apperrors.Newf(apperrors.ErrSessionNotFound, "session=%s", sessionID)
	}
	delete(s.sessions, sessionID)
	return nil
}

// ActiveSessions 当前会话数
func (s *playService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup 清理空闲超时的会话，返回清理数量
func (s *playService) Cleanup() int {
	if s.config.SessionTimeout <= 0 {
		return 0
	}
	deadline := s.now().Add(-s.config.SessionTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastActive.Before(deadline)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("清理空闲会话", zap.Int("count", removed))
	}
	return removed
}

// Run 定期清理空闲会话
func (s *playService) Run(ctx context.Context) {
	interval := s.config.SessionTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// reuse 返回已有会话的快照，会话已分出胜负时按已结束处理
func (s *playService) reuse(sess *playSession) (*PlaySnapshot, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.IsOver() {
		return nil, apperrors.Newf(apperrors.ErrGameFinished, "id=%d session=%s", sess.gameID, sess.id)
	}
	sess.lastActive = s.now()
	return sess.snapshot(), nil
}

func (s *playService) sessionByGame(gameID uint) *playSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionByGameLocked(gameID)
}

func (s *playService) sessionByGameLocked(gameID uint) *playSession {
	for _, sess := range s.sessions {
		if sess.gameID == gameID {
			return sess
		}
	}
	return nil
}

func (s *playService) session(id string) (*playSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrSessionNotFound, "session=%s", id)
	}
	return sess, nil
}
