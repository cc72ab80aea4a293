package repository

import (
	"context"
	"sync"

	"github.com/wfunc/hangman/internal/models"
	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口，并实现 Store
type Manager struct {
	db *gorm.DB

	txManager TransactionManager

	// 仓储实例（懒加载）
	gameOnce sync.Once
	game     GameRepository

	attemptOnce sync.Once
	attempt     AttemptRepository

	wordOnce sync.Once
	word     WordRepository
}

var _ Store = (*Manager)(nil)

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:        db,
		txManager: NewTransactionManager(db),
	}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// Transaction 获取事务管理器
func (m *Manager) Transaction() TransactionManager {
	return m.txManager
}

// Game 获取对局仓储
func (m *Manager) Game() GameRepository {
	m.gameOnce.Do(func() {
		m.game = NewGameRepository(m.db)
	})
	return m.game
}

// Attempt 获取猜测记录仓储
func (m *Manager) Attempt() AttemptRepository {
	m.attemptOnce.Do(func() {
		m.attempt = NewAttemptRepository(m.db)
	})
	return m.attempt
}

// Word 获取词库仓储
func (m *Manager) Word() WordRepository {
	m.wordOnce.Do(func() {
		m.word = NewWordRepository(m.db)
	})
	return m.word
}

// CreateGame 创建对局
func (m *Manager) CreateGame(ctx context.Context, game *models.Game) error {
	return m.Game().Create(ctx, game)
}

// FinishGame 写入对局结果
func (m *Manager) FinishGame(ctx context.Context, id uint, result string) error {
	return m.Game().UpdateResult(ctx, id, result)
}

// DeleteGame 删除对局及其猜测记录
func (m *Manager) DeleteGame(ctx context.Context, id uint) error {
	return m.Game().Delete(ctx, id)
}

// ListGames 列出对局
func (m *Manager) ListGames(ctx context.Context, pagination *Pagination) ([]models.Game, error) {
	return m.Game().List(ctx, pagination)
}

// FindGame 查找对局
func (m *Manager) FindGame(ctx context.Context, id uint) (*models.Game, error) {
	return m.Game().FindByID(ctx, id)
}

// AddAttempt 在事务中确认对局存在并追加猜测
func (m *Manager) AddAttempt(ctx context.Context, attempt *models.Attempt) error {
	return m.txManager.WithTransaction(ctx, func(tx *Transaction) error {
		if _, err := tx.Games().FindByID(ctx, attempt.GameID); err != nil {
			return err
		}
		return tx.Attempts().Create(ctx, attempt)
	})
}

// ListAttempts 列出对局的猜测
func (m *Manager) ListAttempts(ctx context.Context, gameID uint) ([]models.Attempt, error) {
	return m.Attempt().ListByGame(ctx, gameID)
}

// RandomWord 随机取词
func (m *Manager) RandomWord(ctx context.Context) (string, error) {
	return m.Word().Random(ctx)
}

// AddWord 添加单词
func (m *Manager) AddWord(ctx context.Context, word string) (bool, error) {
	return m.Word().Add(ctx, word)
}

// ListWords 列出单词
func (m *Manager) ListWords(ctx context.Context) ([]models.Word, error) {
	return m.Word().List(ctx)
}

// CountWords 单词数量
func (m *Manager) CountWords(ctx context.Context) (int64, error) {
	return m.Word().Count(ctx)
}

// Ping 检查连接
func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
