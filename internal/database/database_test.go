package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/hangman/internal/config"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseTestSuite 数据库测试套件
type DatabaseTestSuite struct {
	suite.Suite
	db  *gorm.DB
	dir string
}

func (s *DatabaseTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(s.dir, "hangman.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}
	db, err := Open(cfg, zap.NewNop())
	s.Require().NoError(err)
	s.db = db
}

func (s *DatabaseTestSuite) TearDownTest() {
	s.NoError(Close(s.db))
}

func (s *DatabaseTestSuite) TestAutoMigrateCreatesTables() {
	s.Require().NoError(AutoMigrate(s.db, zap.NewNop()))

	m := s.db.Migrator()
	s.True(m.HasTable(&models.Word{}))
	s.True(m.HasTable(&models.Game{}))
	s.True(m.HasTable(&models.Attempt{}))

	// 锁文件已释放
	_, err := os.Stat(filepath.Join(s.dir, "hangman.db") + ".migration.lock")
	s.True(os.IsNotExist(err))

	// 重复迁移无副作用
	s.NoError(AutoMigrate(s.db, zap.NewNop()))
}

func (s *DatabaseTestSuite) TestSeedWordsOnlyWhenEmpty() {
	s.Require().NoError(AutoMigrate(s.db, zap.NewNop()))

	n, err := SeedWords(s.db, zap.NewNop())
	s.Require().NoError(err)
	s.Equal(len(game.DefaultWords), n)

	n, err = SeedWords(s.db, zap.NewNop())
	s.Require().NoError(err)
	s.Zero(n)

	var count int64
	s.db.Model(&models.Word{}).Count(&count)
	s.Equal(int64(len(game.DefaultWords)), count)
}

func (s *DatabaseTestSuite) TestCascadeDeleteAttempts() {
	s.Require().NoError(Setup(s.db, true, false, zap.NewNop()))

	g := models.Game{PlayerName: "ann", SecretWord: "planet", PlayedAt: time.Now(), Result: models.ResultInProgress}
	s.Require().NoError(s.db.Create(&g).Error)
	s.Require().NoError(s.db.Create(&models.Attempt{GameID: g.ID, AttemptNo: 1, Letter: "p", Success: true}).Error)

	s.Require().NoError(s.db.Delete(&models.Game{}, g.ID).Error)

	var count int64
	s.db.Model(&models.Attempt{}).Where("game_id = ?", g.ID).Count(&count)
	s.Zero(count)
}

func (s *DatabaseTestSuite) TestIsConnected() {
	s.True(IsConnected(s.T().Context(), s.db))
	s.False(IsConnected(s.T().Context(), nil))
}

func (s *DatabaseTestSuite) TestDropAllTables() {
	s.Require().NoError(AutoMigrate(s.db, zap.NewNop()))
	s.Require().NoError(DropAllTables(s.db))
	s.False(s.db.Migrator().HasTable(&models.Game{}))
}

func TestDatabaseSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"sqlite", "sqlite3", "mysql", "postgres", "postgresql"} {
		d, err := Dialector(driver, "dsn")
		assert.NoError(t, err, driver)
		assert.NotNil(t, d, driver)
	}
	_, err := Dialector("oracle", "dsn")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "hangman.db?_foreign_keys=on", SQLiteDSN("hangman.db"))
	assert.Equal(t, "file:h.db?cache=shared&_foreign_keys=on", SQLiteDSN("file:h.db?cache=shared"))
	assert.Equal(t, "h.db?_fk=1", SQLiteDSN("h.db?_fk=1"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, ParseLogLevel("error"))
	assert.Equal(t, gormlogger.Info, ParseLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, ParseLogLevel(""))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle", DSN: "x"}, zap.NewNop())
	require.Error(t, err)
}
