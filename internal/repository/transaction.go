package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TransactionManager 事务管理器接口
type TransactionManager interface {
	// Begin 开始事务
	Begin(ctx context.Context) (*Transaction, error)
	// WithTransaction 在事务中执行函数，返回错误或panic时回滚
	WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error
}

// Transaction 事务包装器
type Transaction struct {
	tx         *gorm.DB
	committed  bool
	rolledback bool

	games    GameRepository
	attempts AttemptRepository
}

type txManager struct {
	db *gorm.DB
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &txManager{db: db}
}

// Begin 开始事务
func (m *txManager) Begin(ctx context.Context) (*Transaction, error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Transaction{tx: tx}, nil
}

// WithTransaction 在事务中执行函数
func (m *txManager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) (err error) {
	tx, err := m.Begin(ctx)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("回滚失败: %v (原错误: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if t.committed || t.rolledback {
		return fmt.Errorf("事务已结束")
	}
	if err := t.tx.Commit().Error; err != nil {
		return err
	}
	t.committed = true
	return nil
}

// Rollback 回滚事务
func (t *Transaction) Rollback() error {
	if t.committed || t.rolledback {
		return nil
	}
	if err := t.tx.Rollback().Error; err != nil {
		return err
	}
	t.rolledback = true
	return nil
}

// DB 事务中的数据库实例
func (t *Transaction) DB() *gorm.DB {
	return t.tx
}

// Games 事务中的对局仓储
func (t *Transaction) Games() GameRepository {
	if t.games == nil {
		t.games = NewGameRepository(t.tx)
	}
	return t.games
}

// Attempts 事务中的猜测记录仓储
func (t *Transaction) Attempts() AttemptRepository {
	if t.attempts == nil {
		t.attempts = NewAttemptRepository(t.tx)
	}
	return t.attempts
}
