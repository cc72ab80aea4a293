package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wfunc/hangman/internal/config"
	"github.com/wfunc/hangman/internal/middleware"
	"github.com/wfunc/hangman/internal/repository"
	"github.com/wfunc/hangman/internal/service"
	ws "github.com/wfunc/hangman/internal/websocket"
	"go.uber.org/zap"
)

// Router API路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	store    repository.Store
	services *service.Services
	hub      *ws.Hub

	gameHandler *GameHandler
	wordHandler *WordHandler
	playHandler *PlayHandler
	wsHandler   *WebSocketHandler

	log *zap.Logger
}

// NewRouter 创建路由器，hub 为 nil 时不注册事件流
func NewRouter(cfg *config.Config, store repository.Store, services *service.Services, hub *ws.Hub, log *zap.Logger) *Router {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog())
	engine.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	router := &Router{
		engine:      engine,
		cfg:         cfg,
		store:       store,
		services:    services,
		hub:         hub,
		gameHandler: NewGameHandler(services.Game, log),
		wordHandler: NewWordHandler(services.Word, log),
		playHandler: NewPlayHandler(services.Play, log),
		log:         log,
	}
	if hub != nil && cfg.WebSocket.Enabled {
		router.wsHandler = NewWebSocketHandler(hub, &cfg.WebSocket, log)
	}

	router.setupRoutes()
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	c.ExposeHeaders = []string{middleware.RequestIDHeader}
	c.MaxAge = 12 * time.Hour

	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)

	// 对局记录
	games := r.engine.Group("/games")
	{
		games.GET("", r.gameHandler.List)
		games.POST("", r.gameHandler.Create)
		games.GET("/:id", r.gameHandler.Get)
		games.POST("/:id", r.gameHandler.Finish)
		games.DELETE("/:id", r.gameHandler.Delete)
		games.GET("/:id/replay", r.gameHandler.Replay)
		games.POST("/:id/resume", r.playHandler.Resume)
	}
	r.engine.POST("/step/:id", r.gameHandler.Step)

	// 词库
	words := r.engine.Group("/words")
	{
		words.GET("", r.wordHandler.List)
		words.POST("", r.wordHandler.Add)
	}

	// 服务端对局
	play := r.engine.Group("/play")
	{
		play.POST("", r.playHandler.Start)
		play.GET("/:session", r.playHandler.Get)
		play.DELETE("/:session", r.playHandler.End)
		play.POST("/:session/guess", r.playHandler.Guess)
	}

	if r.wsHandler != nil {
		r.engine.GET(r.cfg.WebSocket.Path, r.wsHandler.Events)
	}

	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	if r.cfg.Server.StaticDir != "" {
		r.engine.GET("/", r.index)
	}

	r.engine.NoRoute(r.noRoute)
}

// index 首页直接返回静态目录下的 index.html
func (r *Router) index(c *gin.Context) {
	if !r.serveStatic(c, "index.html") {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	}
}

// noRoute 配置了静态目录时尝试返回文件，否则404
func (r *Router) noRoute(c *gin.Context) {
	if c.Request.Method == http.MethodGet && r.serveStatic(c, c.Request.URL.Path) {
		return
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
}

// serveStatic 返回静态目录中的普通文件，用 ServeContent 避免 index.html 被重定向
func (r *Router) serveStatic(c *gin.Context, path string) bool {
	dir := r.cfg.Server.StaticDir
	if dir == "" {
		return false
	}
	name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
	if !strings.HasPrefix(name, filepath.Clean(dir)) {
		return false
	}

	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	if err := r.store.Ping(c.Request.Context()); err != nil {
		r.log.Warn("健康检查失败", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": "数据库不可用",
		})
		return
	}

	resp := gin.H{
		"status":         "healthy",
		"activeSessions": r.services.Play.ActiveSessions(),
	}
	if r.hub != nil {
		resp["subscribers"] = r.hub.OnlineCount()
	}
	c.JSON(http.StatusOK, resp)
}

// Handler 返回 http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
