package service

import (
	"context"

	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
	"go.uber.org/zap"
)

type wordService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewWordService 创建词库服务
func NewWordService(store repository.Store, log *zap.Logger) WordService {
	return &wordService{store: store, logger: log}
}

// Random 随机取词
func (s *wordService) Random(ctx context.Context) (string, error) {
	return s.store.RandomWord(ctx)
}

// Add 添加单词，返回是否新增
func (s *wordService) Add(ctx context.Context, word string) (bool, error) {
	added, err := s.store.AddWord(ctx, word)
	if err != nil {
		return false, err
	}
	if added {
		s.logger.Info("新增单词", zap.String("word", word))
	}
	return added, nil
}

// List 列出单词
func (s *wordService) List(ctx context.Context) ([]models.Word, error) {
	return s.store.ListWords(ctx)
}

// Count 单词数量
func (s *wordService) Count(ctx context.Context) (int64, error) {
	return s.store.CountWords(ctx)
}
