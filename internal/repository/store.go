package repository

import (
	"context"

	"github.com/wfunc/hangman/internal/models"
)

// Store 对局存储，GORM 和原生SQL两种实现
//
// 未找到对局时返回 ErrGameNotFound 错误码，词库为空时返回 ErrNoWords。
type Store interface {
	CreateGame(ctx context.Context, game *models.Game) error
	FinishGame(ctx context.Context, id uint, result string) error
	DeleteGame(ctx context.Context, id uint) error
	ListGames(ctx context.Context, pagination *Pagination) ([]models.Game, error)
	FindGame(ctx context.Context, id uint) (*models.Game, error)

	AddAttempt(ctx context.Context, attempt *models.Attempt) error
	ListAttempts(ctx context.Context, gameID uint) ([]models.Attempt, error)

	RandomWord(ctx context.Context) (string, error)
	AddWord(ctx context.Context, word string) (bool, error)
	ListWords(ctx context.Context) ([]models.Word, error)
	CountWords(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}
