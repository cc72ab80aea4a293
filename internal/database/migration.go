package database

import (
	"fmt"

	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate 自动迁移表结构
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}

	if dbPath := sqliteFilePath(db); dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath, log)
		if err != nil {
			log.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile, log)
	}

	log.Info("开始数据库迁移...")
	for _, model := range models.AllModels() {
		if err := db.AutoMigrate(model); err != nil {
			log.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return fmt.Errorf("迁移 %T 失败: %w", model, err)
		}
		log.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}
	log.Info("数据库迁移完成")
	return nil
}

// SeedWords 词库为空时写入默认单词
func SeedWords(db *gorm.DB, log *zap.Logger) (int, error) {
	var count int64
	if err := db.Model(&models.Word{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计单词失败: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	words := make([]models.Word, 0, len(game.DefaultWords))
	for _, w := range game.DefaultWords {
		words = append(words, models.Word{Word: game.NormalizeWord(w)})
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&words)
	if result.Error != nil {
		return 0, fmt.Errorf("写入默认单词失败: %w", result.Error)
	}

	log.Info("默认词库初始化完成", zap.Int64("count", result.RowsAffected))
	return int(result.RowsAffected), nil
}

// Setup 按配置完成迁移和词库初始化
func Setup(db *gorm.DB, migrate, seed bool, log *zap.Logger) error {
	if migrate {
		if err := AutoMigrate(db, log); err != nil {
			return err
		}
	}
	if seed {
		if _, err := SeedWords(db, log); err != nil {
			return err
		}
	}
	return nil
}

// DropAllTables 删除所有表（仅用于测试）
func DropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Attempt{}, &models.Game{}, &models.Word{})
}
