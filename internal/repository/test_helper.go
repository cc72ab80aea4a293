package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/hangman/internal/database"
	"github.com/wfunc/hangman/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 创建迁移好的内存数据库
func SetupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 内存库每个连接都是独立的数据库
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		panic(err)
	}
	return db
}

// CleanupTestDB 关闭测试数据库
func CleanupTestDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// CreateTestGame 创建测试对局
func CreateTestGame(t *testing.T, store Store, player, word string) *models.Game {
	t.Helper()
	g := &models.Game{
		PlayerName: player,
		SecretWord: word,
		PlayedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Result:     models.ResultInProgress,
	}
	require.NoError(t, store.CreateGame(context.Background(), g))
	return g
}

// CreateTestAttempts 按顺序为对局写入猜测，success 按单词计算
func CreateTestAttempts(t *testing.T, store Store, g *models.Game, letters ...string) {
	t.Helper()
	for i, l := range letters {
		a := &models.Attempt{
			GameID:    g.ID,
			AttemptNo: i + 1,
			Letter:    l,
			Success:   containsLetter(g.SecretWord, l),
		}
		require.NoError(t, store.AddAttempt(context.Background(), a))
	}
}

func containsLetter(word, letter string) bool {
	for i := 0; i < len(word); i++ {
		if word[i:i+1] == letter {
			return true
		}
	}
	return false
}
