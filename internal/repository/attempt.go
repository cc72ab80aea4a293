package repository

import (
	"context"

	"github.com/wfunc/hangman/internal/models"
	"gorm.io/gorm"
)

// AttemptRepository 猜测记录仓储接口
type AttemptRepository interface {
	BaseRepository
	Create(ctx context.Context, attempt *models.Attempt) error
	ListByGame(ctx context.Context, gameID uint) ([]models.Attempt, error)
	CountByGame(ctx context.Context, gameID uint) (int64, error)
	WithTx(tx *gorm.DB) AttemptRepository
}

type attemptRepo struct {
	*BaseRepo
}

// NewAttemptRepository 创建猜测记录仓储
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 追加一条猜测记录
func (r *attemptRepo) Create(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

// ListByGame 按序号升序列出对局的猜测
func (r *attemptRepo) ListByGame(ctx context.Context, gameID uint) ([]models.Attempt, error) {
	attempts := []models.Attempt{}
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("attempt_no ASC").
		Order("id ASC").
		Find(&attempts).Error
	return attempts, err
}

// CountByGame 对局的猜测次数
func (r *attemptRepo) CountByGame(ctx context.Context, gameID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Attempt{}).Where("game_id = ?", gameID).Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *attemptRepo) WithTx(tx *gorm.DB) AttemptRepository {
	return &attemptRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
