package service

import (
	"context"

	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/logger"
	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
)

// GameService 对局记录服务接口
type GameService interface {
	ListGames(ctx context.Context, pagination *repository.Pagination) ([]models.Game, error)
	GetGame(ctx context.Context, id uint) (*models.GameDetail, error)
	CreateGame(ctx context.Context, req *CreateGameRequest) (uint, error)
	AddStep(ctx context.Context, gameID uint, req *StepRequest) error
	FinishGame(ctx context.Context, gameID uint, req *FinishGameRequest) error
	DeleteGame(ctx context.Context, id uint) error
	ReplayGame(ctx context.Context, id uint) (*ReplayResult, error)
}

// PlayService 服务端对局服务接口
type PlayService interface {
	Start(ctx context.Context, playerName string) (*PlaySnapshot, error)
	// Resume 按猜测记录恢复进行中的对局
	Resume(ctx context.Context, gameID uint) (*PlaySnapshot, error)
	Guess(ctx context.Context, sessionID, letter string) (*GuessResult, error)
	Get(sessionID string) (*PlaySnapshot, error)
	End(sessionID string) error
	ActiveSessions() int
	// Run 定期清理空闲会话，直到 ctx 结束
	Run(ctx context.Context)
}

// WordService 词库服务接口
type WordService interface {
	Random(ctx context.Context) (string, error)
	Add(ctx context.Context, word string) (bool, error)
	List(ctx context.Context) ([]models.Word, error)
	Count(ctx context.Context) (int64, error)
}

// 事件类型
const (
	EventGameCreated  = "game_created"
	EventAttemptAdded = "attempt_added"
	EventGameFinished = "game_finished"
	EventGameDeleted  = "game_deleted"
	EventPlayStarted  = "play_started"
	EventPlayGuess    = "play_guess"
)

// EventPublisher 事件发布接口
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

// Publish 实现 EventPublisher
func (NopPublisher) Publish(string, interface{}) {}

// publish 写入对局事件日志后推送给订阅者
func publish(events EventPublisher, eventType string, gameID uint, payload interface{}) {
	logger.LogGameEvent(eventType, gameID)
	events.Publish(eventType, payload)
}

// CreateGameRequest 创建对局请求
type CreateGameRequest struct {
	PlayerName string `json:"playerName"`
	SecretWord string `json:"secretWord"`
	PlayedAt   string `json:"playedAt"`
}

// StepRequest 记录猜测请求
type StepRequest struct {
	AttemptNo int    `json:"attemptNo"`
	Letter    string `json:"letter"`
	Success   bool   `json:"success"`
}

// FinishGameRequest 结束对局请求
type FinishGameRequest struct {
	Result string `json:"result"`
}

// ReplayResult 对局回放
type ReplayResult struct {
	Game     models.Game       `json:"game"`
	Steps    []game.ReplayStep `json:"steps"`
	Status   game.Status       `json:"status"`
	Complete bool              `json:"complete"`
}

// PlaySnapshot 服务端对局快照
type PlaySnapshot struct {
	SessionID string `json:"sessionId"`
	GameID    uint   `json:"gameId"`
	game.Snapshot
	Gallows string `json:"gallows"`
}

// GuessResult 一次猜测的结果
type GuessResult struct {
	game.Outcome
	GameID    uint          `json:"gameId"`
	AttemptNo int           `json:"attemptNo"`
	State     *PlaySnapshot `json:"state"`
}
