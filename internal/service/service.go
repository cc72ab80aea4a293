package service

import (
	"time"

	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/repository"
	"go.uber.org/zap"
)

// Config 服务配置
type Config struct {
	MaxErrors      int
	SessionTimeout time.Duration
	MaxSessions    int
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxErrors:      game.DefaultMaxErrors,
		SessionTimeout: 30 * time.Minute,
		MaxSessions:    1000,
	}
}

// Services 服务集合
type Services struct {
	Game GameService
	Play PlayService
	Word WordService
}

// NewServices 创建服务集合
func NewServices(store repository.Store, config *Config, events EventPublisher, log *zap.Logger) *Services {
	if config == nil {
		config = DefaultConfig()
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &Services{
		Game: NewGameService(store, config, events, log),
		Play: NewPlayService(store, config, events, log),
		Word: NewWordService(store, log),
	}
}
