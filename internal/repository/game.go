package repository

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/models"
	"gorm.io/gorm"
)

// GameRepository 对局仓储接口
type GameRepository interface {
	BaseRepository
	Create(ctx context.Context, game *models.Game) error
	FindByID(ctx context.Context, id uint) (*models.Game, error)
	List(ctx context.Context, pagination *Pagination) ([]models.Game, error)
	UpdateResult(ctx context.Context, id uint, result string) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) GameRepository
}

// gameRepo 对局仓储实现
type gameRepo struct {
	*BaseRepo
}

// NewGameRepository 创建对局仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建对局，未设置结果时为 in-progress
func (r *gameRepo) Create(ctx context.Context, game *models.Game) error {
	if game.Result == "" {
		game.Result = models.ResultInProgress
	}
	return r.db.WithContext(ctx).Create(game).Error
}

// FindByID 根据ID查找对局
func (r *gameRepo) FindByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", id)
		}
		return nil, err
	}
	return &game, nil
}

// List 按ID倒序列出对局
func (r *gameRepo) List(ctx context.Context, pagination *Pagination) ([]models.Game, error) {
	if pagination != nil {
		total, err := r.Count(ctx)
		if err != nil {
			return nil, err
		}
		pagination.Total = total
	}

	games := []models.Game{}
	err := r.db.WithContext(ctx).Scopes(Paginate(pagination)).Order("id DESC").Find(&games).Error
	return games, err
}

// UpdateResult 更新对局结果
func (r *gameRepo) UpdateResult(ctx context.Context, id uint, result string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", id).
		Update("result", result)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", id)
	}
	return nil
}

// Delete 删除对局，猜测记录由外键级联删除
func (r *gameRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Game{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", id)
	}
	return nil
}

// Count 对局总数
func (r *gameRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Game{}).Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *gameRepo) WithTx(tx *gorm.DB) GameRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
