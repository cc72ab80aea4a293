package repository

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WordRepository 词库仓储接口
type WordRepository interface {
	BaseRepository
	Add(ctx context.Context, word string) (bool, error)
	Random(ctx context.Context) (string, error)
	List(ctx context.Context) ([]models.Word, error)
	Count(ctx context.Context) (int64, error)
}

type wordRepo struct {
	*BaseRepo
}

// NewWordRepository 创建词库仓储
func NewWordRepository(db *gorm.DB) WordRepository {
	return &wordRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// PrepareWord 规范化单词并校验为6个小写字母
func PrepareWord(word string) (string, error) {
	w := game.NormalizeWord(word)
	if len(w) != game.WordLength || !game.IsValidWord(w) {
		return "", apperrors.Newf(apperrors.ErrInvalidWord, "%q", word)
	}
	return w, nil
}

// Add 添加单词，已存在时忽略，返回是否新增
func (r *wordRepo) Add(ctx context.Context, word string) (bool, error) {
	w, err := PrepareWord(word)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Word{Word: w})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Random 随机取一个单词
func (r *wordRepo) Random(ctx context.Context) (string, error) {
	order := "RANDOM()"
	if r.db.Dialector.Name() == "mysql" {
		order = "RAND()"
	}

	var w models.Word
	err := r.db.WithContext(ctx).Order(order).Take(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.New(apperrors.ErrNoWords)
		}
		return "", err
	}
	return w.Word, nil
}

// List 按字母顺序列出单词
func (r *wordRepo) List(ctx context.Context) ([]models.Word, error) {
	words := []models.Word{}
	err := r.db.WithContext(ctx).Order("word ASC").Find(&words).Error
	return words, err
}

// Count 单词数量
func (r *wordRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Word{}).Count(&count).Error
	return count, err
}
