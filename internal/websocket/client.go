package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/hangman/internal/logger"
	"go.uber.org/zap"
)

// Client WebSocket客户端
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	mu     sync.RWMutex
	gameID uint // 0 表示接收全部事件
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, hub.options.SendBuffer),
	}
}

// Serve 注册到Hub并启动读写协程
func (c *Client) Serve() {
	c.Hub.Register(c)
	go c.WritePump()
	go c.ReadPump()
}

func (c *Client) wants(gameID uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID == 0 || gameID == 0 || c.gameID == gameID
}

func (c *Client) subscribe(gameID uint) {
	c.mu.Lock()
	c.gameID = gameID
	c.mu.Unlock()
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	opts := c.Hub.options
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(opts.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(opts.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	opts := c.Hub.options
	ticker := time.NewTicker(opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理客户端消息：ping、订阅某局、取消订阅
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		c.sendError("消息格式错误")
		return
	}
	logger.LogWebSocketMessage("receive", msg.Type, msg.GameID)

	switch msg.Type {
	case MessageTypePing:
		c.reply(MessageTypePong, 0)
	case MessageTypeSubscribe:
		c.subscribe(msg.GameID)
		c.reply(MessageTypeSubscribed, msg.GameID)
	case MessageTypeUnsubscribe:
		c.subscribe(0)
		c.reply(MessageTypeSubscribed, 0)
	default:
		c.Hub.logger.Warn("收到不支持的消息类型",
			zap.String("client_id", c.ID),
			zap.String("type", msg.Type))
		c.sendError("不支持的消息类型: " + msg.Type)
	}
}

func (c *Client) reply(msgType string, gameID uint) {
	c.Hub.sendTo(c, &Message{
		Type:      msgType,
		GameID:    gameID,
		Timestamp: time.Now().Unix(),
	})
}

func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	c.Hub.sendTo(c, &Message{
		Type:      MessageTypeError,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}
