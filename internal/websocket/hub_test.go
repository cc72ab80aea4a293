package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// HubTestSuite Hub测试套件
type HubTestSuite struct {
	suite.Suite
	hub    *Hub
	cancel context.CancelFunc
	server *httptest.Server
}

func (suite *HubTestSuite) SetupTest() {
	suite.hub = NewHub(DefaultOptions(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	go suite.hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(suite.hub, conn).Serve()
	}))
}

func (suite *HubTestSuite) TearDownTest() {
	suite.server.Close()
	suite.cancel()
}

func (suite *HubTestSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(suite.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)

	msg := suite.read(conn)
	suite.Equal(MessageTypeConnected, msg.Type)
	return conn
}

func (suite *HubTestSuite) read(conn *websocket.Conn) Message {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	suite.Require().NoError(conn.ReadJSON(&msg))
	return msg
}

func (suite *HubTestSuite) send(conn *websocket.Conn, msg Message) {
	suite.Require().NoError(conn.WriteJSON(msg))
}

// 测试事件广播
func (suite *HubTestSuite) TestPublishBroadcast() {
	a := suite.dial()
	defer a.Close()
	b := suite.dial()
	defer b.Close()

	suite.Eventually(func() bool { return suite.hub.OnlineCount() == 2 }, time.Second, 10*time.Millisecond)

	suite.hub.Publish("game_created", map[string]interface{}{"gameId": 7, "game": map[string]string{"playerName": "Ann"}})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := suite.read(conn)
		suite.Equal("game_created", msg.Type)
		suite.Equal(uint(7), msg.GameID)
		suite.Contains(string(msg.Data), `"playerName":"Ann"`)
		suite.NotZero(msg.Timestamp)
	}
}

// 测试按对局订阅过滤
func (suite *HubTestSuite) TestSubscribeFilter() {
	conn := suite.dial()
	defer conn.Close()

	suite.send(conn, Message{Type: MessageTypeSubscribe, GameID: 2})
	msg := suite.read(conn)
	suite.Equal(MessageTypeSubscribed, msg.Type)
	suite.Equal(uint(2), msg.GameID)

	suite.hub.Publish("attempt_added", map[string]interface{}{"gameId": 1})
	suite.hub.Publish("attempt_added", map[string]interface{}{"gameId": 2, "letter": "a"})

	msg = suite.read(conn)
	suite.Equal("attempt_added", msg.Type)
	suite.Equal(uint(2), msg.GameID)

	// 取消订阅后收到全部事件
	suite.send(conn, Message{Type: MessageTypeUnsubscribe})
	suite.Equal(MessageTypeSubscribed, suite.read(conn).Type)
	suite.hub.Publish("game_deleted", map[string]interface{}{"gameId": 9})
	suite.Equal(uint(9), suite.read(conn).GameID)
}

// 测试ping与错误消息
func (suite *HubTestSuite) TestPingAndErrors() {
	conn := suite.dial()
	defer conn.Close()

	suite.send(conn, Message{Type: MessageTypePing})
	suite.Equal(MessageTypePong, suite.read(conn).Type)

	suite.send(conn, Message{Type: "spin"})
	msg := suite.read(conn)
	suite.Equal(MessageTypeError, msg.Type)

	var body map[string]string
	suite.Require().NoError(json.Unmarshal(msg.Data, &body))
	suite.Contains(body["error"], "spin")

	suite.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	suite.Equal(MessageTypeError, suite.read(conn).Type)
}

// 测试断开后注销
func (suite *HubTestSuite) TestUnregisterOnClose() {
	conn := suite.dial()
	suite.Eventually(func() bool { return suite.hub.OnlineCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	suite.Eventually(func() bool { return suite.hub.OnlineCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// 测试Hub停止后关闭连接且发布不阻塞
func (suite *HubTestSuite) TestStopClosesClients() {
	conn := suite.dial()
	defer conn.Close()

	suite.cancel()
	suite.Eventually(func() bool { return suite.hub.OnlineCount() == 0 }, time.Second, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	suite.Error(err)

	suite.hub.Publish("game_created", map[string]interface{}{"gameId": 1})
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubTestSuite))
}

func TestNewHubPingPeriod(t *testing.T) {
	opts := DefaultOptions()
	opts.PingPeriod = 0
	opts.PongWait = 10 * time.Second
	h := NewHub(opts, zap.NewNop())
	if h.Options().PingPeriod != 9*time.Second {
		t.Fatalf("ping period = %v", h.Options().PingPeriod)
	}
}
