package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, EngineORM, cfg.Database.Engine)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 6, cfg.Game.MaxErrors)
	assert.Equal(t, 30*time.Minute, cfg.Game.SessionTimeout)
	assert.Equal(t, "/ws/events", cfg.WebSocket.Path)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  shutdown_timeout: 3s
database:
  engine: sql
  driver: sqlite3
  dsn: ./hangman-test.db
game:
  max_errors: 8
`)

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, EngineSQL, cfg.Database.Engine)
	assert.Equal(t, "./hangman-test.db", cfg.Database.DSN)
	assert.Equal(t, 8, cfg.Game.MaxErrors)
	// 未配置的键保留默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Database.SeedWords)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("HANGMAN_SERVER_PORT", "7070")
	t.Setenv("HANGMAN_GAME_MAX_ERRORS", "4")

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Game.MaxErrors)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"默认配置", func(c *Config) {}, false},
		{"未知引擎", func(c *Config) { c.Database.Engine = "mongo" }, true},
		{"原生SQL只支持sqlite", func(c *Config) {
			c.Database.Engine = EngineSQL
			c.Database.Driver = "mysql"
		}, true},
		{"原生SQL使用sqlite3", func(c *Config) {
			c.Database.Engine = EngineSQL
			c.Database.Driver = "sqlite3"
		}, false},
		{"空DSN", func(c *Config) { c.Database.DSN = "" }, true},
		{"错误次数为0", func(c *Config) { c.Game.MaxErrors = 0 }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")), "文件不存在时忽略")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HANGMAN_DOTENV_CHECK=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("HANGMAN_DOTENV_CHECK") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("HANGMAN_DOTENV_CHECK"))
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", s.Addr())
}
