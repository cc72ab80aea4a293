package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/logger"
	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
	"go.uber.org/zap"
)

// Open 打开sqlite数据库，文件不存在时创建
func Open(dsn string) (*sql.DB, error) {
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("创建数据目录 %s 失败: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", withParams(dsn))
	if err != nil {
		return nil, err
	}
	// sqlite 单写者，内存库每个连接都是独立的数据库
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	return db, nil
}

func withParams(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "_busy_timeout") {
		dsn += sep + "_busy_timeout=5000"
		sep = "&"
	}
	if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk=") {
		dsn += sep + "_foreign_keys=on"
	}
	return dsn
}

// Store 原生SQL实现的存储
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// New 创建存储，db 需已完成迁移
func New(db *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log.Named("sqlstore")}
}

// DB 底层连接
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) observe(op, table string, start time.Time, err error) {
	// 未找到属于正常结果
	if apperrors.Is(err, apperrors.ErrGameNotFound) || apperrors.Is(err, apperrors.ErrNoWords) {
		err = nil
	}
	logger.LogDatabaseOperation(op, table, time.Since(start), err)
}

// CreateGame 创建对局
func (s *Store) CreateGame(ctx context.Context, g *models.Game) (err error) {
	defer func(start time.Time) { s.observe("insert", "games", start, err) }(time.Now())

	if g.Result == "" {
		g.Result = models.ResultInProgress
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (player_name, secret_word, played_at, result) VALUES (?, ?, ?, ?)`,
		g.PlayerName, g.SecretWord, g.PlayedAt, g.Result)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	g.ID = uint(id)
	return nil
}

// FinishGame 写入对局结果
func (s *Store) FinishGame(ctx context.Context, id uint, result string) (err error) {
	defer func(start time.Time) { s.observe("update", "games", start, err) }(time.Now())

	res, err := s.db.ExecContext(ctx, `UPDATE games SET result = ? WHERE id = ?`, result, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}
	return requireAffected(res, id)
}

// DeleteGame 删除对局，猜测记录由外键级联删除
func (s *Store) DeleteGame(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { s.observe("delete", "games", start, err) }(time.Now())

	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id uint) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}
	if n == 0 {
		return apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", id)
	}
	return nil
}

// ListGames 按ID倒序列出对局
func (s *Store) ListGames(ctx context.Context, p *repository.Pagination) (games []models.Game, err error) {
	defer func(start time.Time) { s.observe("select", "games", start, err) }(time.Now())

	query := `SELECT id, player_name, secret_word, played_at, result FROM games ORDER BY id DESC`
	var args []interface{}
	if p != nil {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&p.Total); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, p.PageSize, p.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	defer rows.Close()

	games = []models.Game{}
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.PlayerName, &g.SecretWord, &g.PlayedAt, &g.Result); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return games, nil
}

// FindGame 查找对局
func (s *Store) FindGame(ctx context.Context, id uint) (g *models.Game, err error) {
	defer func(start time.Time) { s.observe("select", "games", start, err) }(time.Now())

	var out models.Game
	err = s.db.QueryRowContext(ctx,
		`SELECT id, player_name, secret_word, played_at, result FROM games WHERE id = ?`, id).
		Scan(&out.ID, &out.PlayerName, &out.SecretWord, &out.PlayedAt, &out.Result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &out, nil
}

// AddAttempt 在事务中确认对局存在并追加猜测
func (s *Store) AddAttempt(ctx context.Context, a *models.Attempt) (err error) {
	defer func(start time.Time) { s.observe("insert", "attempts", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM games WHERE id = ?`, a.GameID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", a.GameID)
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (game_id, attempt_no, letter, success) VALUES (?, ?, ?, ?)`,
		a.GameID, a.AttemptNo, a.Letter, a.Success)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	a.ID = uint(id)
	return nil
}

// ListAttempts 按序号升序列出对局的猜测
func (s *Store) ListAttempts(ctx context.Context, gameID uint) (attempts []models.Attempt, err error) {
	defer func(start time.Time) { s.observe("select", "attempts", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, attempt_no, letter, success FROM attempts WHERE game_id = ? ORDER BY attempt_no ASC, id ASC`,
		gameID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	defer rows.Close()

	attempts = []models.Attempt{}
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.GameID, &a.AttemptNo, &a.Letter, &a.Success); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return attempts, nil
}

// RandomWord 随机取一个单词
func (s *Store) RandomWord(ctx context.Context) (word string, err error) {
	defer func(start time.Time) { s.observe("select", "words", start, err) }(time.Now())

	err = s.db.QueryRowContext(ctx, `SELECT word FROM words ORDER BY RANDOM() LIMIT 1`).Scan(&word)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.New(apperrors.ErrNoWords)
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return word, nil
}

// AddWord 添加单词，已存在时忽略
func (s *Store) AddWord(ctx context.Context, word string) (added bool, err error) {
	defer func(start time.Time) { s.observe("insert", "words", start, err) }(time.Now())

	w, err := repository.PrepareWord(word)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO words (word) VALUES (?)`, w)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return n > 0, nil
}

// ListWords 按字母顺序列出单词
func (s *Store) ListWords(ctx context.Context) (words []models.Word, err error) {
	defer func(start time.Time) { s.observe("select", "words", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, word FROM words ORDER BY word ASC`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	defer rows.Close()

	words = []models.Word{}
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.Word); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return words, nil
}

// CountWords 单词数量
func (s *Store) CountWords(ctx context.Context) (n int64, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return n, nil
}

// SeedWords 词库为空时写入默认单词
func (s *Store) SeedWords(ctx context.Context) (int, error) {
	count, err := s.CountWords(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO words (word) VALUES (?)`)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	defer stmt.Close()

	inserted := 0
	for _, w := range game.DefaultWords {
		res, err := stmt.ExecContext(ctx, game.NormalizeWord(w))
		if err != nil {
			return 0, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}

	s.log.Info("默认词库初始化完成", zap.Int("count", inserted))
	return inserted, nil
}

// Ping 检查连接
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
