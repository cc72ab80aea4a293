// Package storage 按配置选择 ORM 或原生 SQL 存储
package storage

import (
	"context"

	"github.com/wfunc/hangman/internal/config"
	"github.com/wfunc/hangman/internal/database"
	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/repository"
	"github.com/wfunc/hangman/internal/sqlstore"
	"go.uber.org/zap"
)

// Open 打开 database.engine 指定的存储，返回的 close 释放连接
func Open(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (repository.Store, func() error, error) {
	switch cfg.Engine {
	case config.EngineSQL:
		return openSQL(ctx, cfg, log)
	case config.EngineORM, "":
		return openORM(cfg, log)
	default:
		return nil, nil, apperrors.Newf(apperrors.ErrConfigValidate, "engine=%s", cfg.Engine)
	}
}

func openORM(cfg *config.DatabaseConfig, log *zap.Logger) (repository.Store, func() error, error) {
	db, err := database.Open(cfg, log.Named("database"))
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrDatabaseConnect)
	}
	closeFn := func() error { return database.Close(db) }

	if err := database.Setup(db, cfg.AutoMigrate, cfg.SeedWords, log.Named("database")); err != nil {
		closeFn()
		return nil, nil, apperrors.Wrap(err, apperrors.ErrDatabaseMigrate)
	}

	log.Info("使用ORM存储", zap.String("driver", cfg.Driver))
	return repository.NewManager(db), closeFn, nil
}

func openSQL(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (repository.Store, func() error, error) {
	db, err := sqlstore.Open(cfg.DSN)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrDatabaseConnect)
	}

	if cfg.AutoMigrate {
		if err := sqlstore.Migrate(db); err != nil {
			db.Close()
			return nil, nil, apperrors.Wrap(err, apperrors.ErrDatabaseMigrate)
		}
	}

	store := sqlstore.New(db, log.Named("sqlstore"))
	if cfg.SeedWords {
		if _, err := store.SeedWords(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	log.Info("使用原生SQL存储", zap.String("dsn", cfg.DSN))
	return store, db.Close, nil
}
