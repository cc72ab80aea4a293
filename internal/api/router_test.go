package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/hangman/internal/config"
	"github.com/wfunc/hangman/internal/logger"
	"github.com/wfunc/hangman/internal/models"
	"github.com/wfunc/hangman/internal/repository"
	"github.com/wfunc/hangman/internal/service"
	ws "github.com/wfunc/hangman/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterTestSuite API路由测试套件
type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	cfg    *config.Config
	hub    *ws.Hub
	cancel context.CancelFunc
	router *Router
}

func (suite *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(logger.Init(&config.LogConfig{Level: "error", Output: "none"}))
}

func (suite *RouterTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	store := repository.NewManager(suite.db)
	_, err := store.AddWord(context.Background(), "planet")
	suite.Require().NoError(err)

	suite.cfg = config.Default()
	suite.cfg.Server.Mode = gin.TestMode
	suite.cfg.Server.StaticDir = suite.T().TempDir()

	suite.hub = ws.NewHub(HubOptions(&suite.cfg.WebSocket), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	go suite.hub.Run(ctx)

	services := service.NewServices(store, service.DefaultConfig(), suite.hub, zap.NewNop())
	suite.router = NewRouter(suite.cfg, store, services, suite.hub, zap.NewNop())
}

func (suite *RouterTestSuite) TearDownTest() {
	suite.cancel()
	repository.CleanupTestDB(suite.db)
}

func (suite *RouterTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.GetEngine().ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (suite *RouterTestSuite) assertError(w *httptest.ResponseRecorder, status int, message string) {
	suite.Equal(status, w.Code, w.Body.String())
	var resp ErrorResponse
	suite.decode(w, &resp)
	suite.Equal(message, resp.Error)
}

func (suite *RouterTestSuite) createGame() uint {
	w := suite.do(http.MethodPost, "/games", map[string]string{
		"playerName": "Alice",
		"secretWord": "Planet",
		"playedAt":   "2024-05-01 10:00:00",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp IDResponse
	suite.decode(w, &resp)
	suite.Require().NotZero(resp.ID)
	return resp.ID
}

func (suite *RouterTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	suite.Equal("healthy", resp["status"])
	suite.NotEmpty(w.Header().Get("X-Request-ID"))
}

// 测试对局记录完整流程
func (suite *RouterTestSuite) TestGameLifecycle() {
	id := suite.createGame()
	path := "/games/" + itoa(id)

	for i, l := range []string{"p", "X", "l"} {
		w := suite.do(http.MethodPost, "/step/"+itoa(id), map[string]interface{}{
			"attemptNo": i + 1,
			"letter":    l,
			"success":   l != "X",
		})
		suite.Equal(http.StatusCreated, w.Code, w.Body.String())
		suite.JSONEq(`{"status":"ok"}`, w.Body.String())
	}

	w := suite.do(http.MethodPost, path, map[string]string{"result": " WIN "})
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"ok"}`, w.Body.String())

	w = suite.do(http.MethodGet, path, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var detail models.GameDetail
	suite.decode(w, &detail)
	suite.Equal("Alice", detail.Game.PlayerName)
	suite.Equal("planet", detail.Game.SecretWord)
	suite.Equal(models.ResultWin, detail.Game.Result)
	suite.Require().Len(detail.Attempts, 3)
	suite.Equal("x", detail.Attempts[1].Letter)
	suite.False(detail.Attempts[1].Success)
	suite.Equal(3, detail.Attempts[2].AttemptNo)

	// attempts 不暴露内部ID
	suite.NotContains(w.Body.String(), `"gameId"`)

	w = suite.do(http.MethodGet, "/games", nil)
	suite.Equal(http.StatusOK, w.Code)
	var list []map[string]interface{}
	suite.decode(w, &list)
	suite.Require().Len(list, 1)
	suite.Equal("Alice", list[0]["playerName"])
	suite.Contains(list[0], "playedAt")
	suite.Equal("win", list[0]["result"])
}

func (suite *RouterTestSuite) TestListEmptyAndPaged() {
	w := suite.do(http.MethodGet, "/games", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())

	first := suite.createGame()
	second := suite.createGame()

	w = suite.do(http.MethodGet, "/games?page=1&pageSize=1", nil)
	var list []models.Game
	suite.decode(w, &list)
	suite.Require().Len(list, 1)
	suite.Equal(second, list[0].ID)

	w = suite.do(http.MethodGet, "/games?page=2&pageSize=1", nil)
	suite.decode(w, &list)
	suite.Require().Len(list, 1)
	suite.Equal(first, list[0].ID)
}

func (suite *RouterTestSuite) TestCreateValidation() {
	w := suite.do(http.MethodPost, "/games", map[string]string{"playerName": "Bob", "secretWord": "planet"})
	suite.assertError(w, http.StatusBadRequest, "Missing required fields")

	w = suite.do(http.MethodPost, "/games", map[string]string{"playerName": "  ", "secretWord": "planet", "playedAt": "2024-05-01 10:00:00"})
	suite.assertError(w, http.StatusBadRequest, "Missing required fields")

	w = suite.do(http.MethodPost, "/games", "{not json")
	suite.assertError(w, http.StatusBadRequest, "Invalid JSON body")

	w = suite.do(http.MethodPost, "/games", `{"playerName": 7}`)
	suite.assertError(w, http.StatusBadRequest, "Invalid JSON body")

	w = suite.do(http.MethodPost, "/games", map[string]string{"playerName": "Bob", "secretWord": "pla2et", "playedAt": "2024-05-01 10:00:00"})
	suite.assertError(w, http.StatusBadRequest, "Invalid word")

	w = suite.do(http.MethodPost, "/games", map[string]string{"playerName": "Bob", "secretWord": "planet", "playedAt": "yesterday"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestStepValidation() {
	// 对局不存在优先于数据校验
	w := suite.do(http.MethodPost, "/step/999", map[string]interface{}{"attemptNo": 0, "letter": "1"})
	suite.assertError(w, http.StatusNotFound, "Game not found")

	id := suite.createGame()
	cases := []map[string]interface{}{
		{"attemptNo": 0, "letter": "a"},
		{"attemptNo": 1, "letter": "ab"},
		{"attemptNo": 1, "letter": "1"},
		{"attemptNo": 1},
	}
	for _, body := range cases {
		w = suite.do(http.MethodPost, "/step/"+itoa(id), body)
		suite.assertError(w, http.StatusBadRequest, "Invalid attempt data")
	}

	w = suite.do(http.MethodPost, "/step/"+itoa(id), `{"attemptNo": 1, "letter": "a"`)
	suite.assertError(w, http.StatusBadRequest, "Invalid JSON body")
}

func (suite *RouterTestSuite) TestFinishValidation() {
	w := suite.do(http.MethodPost, "/games/999", map[string]string{"result": "draw"})
	suite.assertError(w, http.StatusNotFound, "Game not found")

	id := suite.createGame()
	w = suite.do(http.MethodPost, "/games/"+itoa(id), map[string]string{"result": "draw"})
	suite.assertError(w, http.StatusBadRequest, "Invalid result value")

	w = suite.do(http.MethodPost, "/games/"+itoa(id), nil)
	suite.assertError(w, http.StatusBadRequest, "Invalid result value")
}

func (suite *RouterTestSuite) TestInvalidID() {
	for _, path := range []string{"/games/abc", "/games/0", "/games/-1"} {
		suite.assertError(suite.do(http.MethodGet, path, nil), http.StatusBadRequest, "Invalid game id")
	}
	suite.assertError(suite.do(http.MethodPost, "/step/x", map[string]interface{}{"attemptNo": 1, "letter": "a"}),
		http.StatusBadRequest, "Invalid game id")
	suite.assertError(suite.do(http.MethodGet, "/games/12", nil), http.StatusNotFound, "Game not found")
}

func (suite *RouterTestSuite) TestDeleteAndReplay() {
	id := suite.createGame()
	for i, l := range []string{"p", "z"} {
		suite.do(http.MethodPost, "/step/"+itoa(id), map[string]interface{}{"attemptNo": i + 1, "letter": l})
	}

	w := suite.do(http.MethodGet, "/games/"+itoa(id)+"/replay", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var replay map[string]interface{}
	suite.decode(w, &replay)
	suite.Len(replay["steps"], 2)
	suite.Equal(false, replay["complete"])

	w = suite.do(http.MethodDelete, "/games/"+itoa(id), nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.assertError(suite.do(http.MethodGet, "/games/"+itoa(id), nil), http.StatusNotFound, "Game not found")
	suite.assertError(suite.do(http.MethodDelete, "/games/"+itoa(id), nil), http.StatusNotFound, "Game not found")
}

func (suite *RouterTestSuite) TestWords() {
	w := suite.do(http.MethodPost, "/words", map[string]string{"word": " Garden "})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.JSONEq(`{"word":"garden","added":true}`, w.Body.String())

	w = suite.do(http.MethodPost, "/words", map[string]string{"word": "garden"})
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"word":"garden","added":false}`, w.Body.String())

	suite.assertError(suite.do(http.MethodPost, "/words", map[string]string{"word": "cat"}), http.StatusBadRequest, "Invalid word")

	w = suite.do(http.MethodGet, "/words", nil)
	var words []models.Word
	suite.decode(w, &words)
	suite.Require().Len(words, 2)
	suite.Equal("garden", words[0].Word)
	suite.Equal("planet", words[1].Word)
}

// 测试服务端对局
func (suite *RouterTestSuite) TestPlay() {
	w := suite.do(http.MethodPost, "/play", map[string]string{"playerName": "Carol"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var snap service.PlaySnapshot
	suite.decode(w, &snap)
	suite.NotEmpty(snap.SessionID)
	suite.Equal("_ _ _ _ _ _", snap.MaskedWord)
	suite.Empty(snap.SecretWord)

	base := "/play/" + snap.SessionID
	suite.assertError(suite.do(http.MethodPost, base+"/guess", map[string]string{"letter": "7"}), http.StatusBadRequest, "Invalid letter")

	var result service.GuessResult
	for _, l := range []string{"p", "l", "a", "n", "e", "t"} {
		w = suite.do(http.MethodPost, base+"/guess", map[string]string{"letter": l})
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		suite.decode(w, &result)
	}
	suite.True(result.Success)
	suite.Equal(6, result.AttemptNo)
	suite.Equal("p l a n e t", result.State.MaskedWord)

	suite.assertError(suite.do(http.MethodPost, base+"/guess", map[string]string{"letter": "q"}), http.StatusConflict, "Game already finished")

	w = suite.do(http.MethodGet, "/games/"+itoa(snap.GameID), nil)
	var detail models.GameDetail
	suite.decode(w, &detail)
	suite.Equal(models.ResultWin, detail.Game.Result)
	suite.Len(detail.Attempts, 6)

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, base, nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, base, nil).Code)
	suite.assertError(suite.do(http.MethodGet, base, nil), http.StatusNotFound, "Session not found")
}

func (suite *RouterTestSuite) TestResume() {
	id := suite.createGame()
	w := suite.do(http.MethodPost, "/step/"+itoa(id), map[string]interface{}{
		"attemptNo": 1,
		"letter":    "p",
		"success":   true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do(http.MethodPost, "/games/"+itoa(id)+"/resume", nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var snap service.PlaySnapshot
	suite.decode(w, &snap)
	suite.Equal(id, snap.GameID)
	suite.Equal("Alice", snap.PlayerName)
	suite.Equal("p _ _ _ _ _", snap.MaskedWord)

	w = suite.do(http.MethodPost, "/play/"+snap.SessionID+"/guess", map[string]string{"letter": "l"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result service.GuessResult
	suite.decode(w, &result)
	suite.Equal(2, result.AttemptNo)

	suite.assertError(suite.do(http.MethodPost, "/games/abc/resume", nil), http.StatusBadRequest, "Invalid game id")
	suite.assertError(suite.do(http.MethodPost, "/games/999/resume", nil), http.StatusNotFound, "Game not found")

	suite.Equal(http.StatusOK, suite.do(http.MethodPost, "/games/"+itoa(id), map[string]string{"result": "lose"}).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, "/play/"+snap.SessionID, nil).Code)
	suite.assertError(suite.do(http.MethodPost, "/games/"+itoa(id)+"/resume", nil), http.StatusConflict, "Game already finished")
}

func (suite *RouterTestSuite) TestStaticAndFallback() {
	suite.assertError(suite.do(http.MethodGet, "/", nil), http.StatusNotFound, "Not found")

	suite.Require().NoError(os.WriteFile(filepath.Join(suite.cfg.Server.StaticDir, "index.html"), []byte("<h1>hangman</h1>"), 0o644))
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.cfg.Server.StaticDir, "app.js"), []byte("start()"), 0o644))

	// 首页和 /index.html 都直接返回页面，不产生跳转
	for _, path := range []string{"/", "/index.html"} {
		w := suite.do(http.MethodGet, path, nil)
		suite.Equal(http.StatusOK, w.Code, path)
		suite.Empty(w.Header().Get("Location"), path)
		suite.Contains(w.Body.String(), "hangman", path)
		suite.Contains(w.Header().Get("Content-Type"), "text/html", path)
	}

	w := suite.do(http.MethodGet, "/app.js", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("start()", w.Body.String())

	suite.assertError(suite.do(http.MethodGet, "/../../etc/passwd", nil), http.StatusNotFound, "Not found")
	suite.assertError(suite.do(http.MethodGet, "/missing", nil), http.StatusNotFound, "Not found")
}

func (suite *RouterTestSuite) TestNoStaticDir() {
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	store := repository.NewManager(suite.db)
	services := service.NewServices(store, service.DefaultConfig(), nil, zap.NewNop())
	suite.router = NewRouter(cfg, store, services, nil, zap.NewNop())

	suite.assertError(suite.do(http.MethodGet, "/", nil), http.StatusNotFound, "Not found")
	suite.assertError(suite.do(http.MethodGet, "/index.html", nil), http.StatusNotFound, "Not found")
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/health", nil).Code)
}

func (suite *RouterTestSuite) TestOpenAPI() {
	w := suite.do(http.MethodGet, "/openapi", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "openapi: 3.0.3")
	suite.Contains(w.Body.String(), "/step/{id}")

	w = suite.do(http.MethodGet, "/docs/redoc", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "/openapi")
}

// 测试事件流
func (suite *RouterTestSuite) TestEventStream() {
	server := httptest.NewServer(suite.router.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + suite.cfg.WebSocket.Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	defer conn.Close()

	read := func() ws.Message {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg ws.Message
		suite.Require().NoError(conn.ReadJSON(&msg))
		return msg
	}
	suite.Equal(ws.MessageTypeConnected, read().Type)

	id := suite.createGame()
	msg := read()
	suite.Equal(service.EventGameCreated, msg.Type)
	suite.Equal(id, msg.GameID)
	suite.Contains(string(msg.Data), `"playerName":"Alice"`)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestCORSConfig(t *testing.T) {
	c := corsConfig([]string{"*"})
	if !c.AllowAllOrigins {
		t.Fatal("wildcard should allow all origins")
	}
	c = corsConfig([]string{"http://localhost:3000"})
	if c.AllowAllOrigins || len(c.AllowOrigins) != 1 {
		t.Fatalf("unexpected cors config: %+v", c)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
