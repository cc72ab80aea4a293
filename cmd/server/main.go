package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/wfunc/hangman/internal/api"
	"github.com/wfunc/hangman/internal/config"
	apperrors "github.com/wfunc/hangman/internal/errors"
	"github.com/wfunc/hangman/internal/logger"
	"github.com/wfunc/hangman/internal/repository"
	"github.com/wfunc/hangman/internal/service"
	"github.com/wfunc/hangman/internal/storage"
	ws "github.com/wfunc/hangman/internal/websocket"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	loader *config.Loader
	cfg    *config.Config
	logger *zap.Logger

	store      repository.Store
	closeStore func() error
	hub        *ws.Hub
	services   *service.Services
	httpServer *http.Server

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	loader, err := config.NewLoader(*configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	server := NewServer(loader)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(loader *config.Loader) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		loader:     loader,
		cfg:        loader.Config(),
		logger:     logger.GetLogger(),
		shutdownCh: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动Hangman服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
		zap.String("engine", s.cfg.Database.Engine),
	)

	if err := s.initComponents(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrUnknown, "初始化组件失败")
	}
	s.startServices()

	// 监听配置变化
	if s.loader.ConfigFile() != "" {
		s.loader.Watch(s.reloadConfig)
	}

	s.logger.Info("服务器启动成功", zap.String("http", s.cfg.Server.Addr()))
	return nil
}

// initComponents 初始化存储、事件中心、服务与路由
func (s *Server) initComponents() error {
	store, closeStore, err := storage.Open(s.ctx, &s.cfg.Database, s.logger)
	if err != nil {
		return err
	}
	s.store = store
	s.closeStore = closeStore

	var events service.EventPublisher = service.NopPublisher{}
	if s.cfg.WebSocket.Enabled {
		s.hub = ws.NewHub(api.HubOptions(&s.cfg.WebSocket), logger.GetModuleLogger("websocket"))
		events = s.hub
	}

	s.services = service.NewServices(store, &service.Config{
		MaxErrors:      s.cfg.Game.MaxErrors,
		SessionTimeout: s.cfg.Game.SessionTimeout,
		MaxSessions:    s.cfg.Game.MaxSessions,
	}, events, logger.GetModuleLogger("service"))

	router := api.NewRouter(s.cfg, store, s.services, s.hub, logger.GetModuleLogger("api"))
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.logger.Info("所有组件初始化完成")
	return nil
}

// startServices 启动后台协程
func (s *Server) startServices() {
	if s.hub != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.hub.Run(s.ctx)
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.services.Play.Run(s.ctx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP服务异常退出", zap.Error(err))
			close(s.shutdownCh)
		}
	}()
}

// WaitForShutdown 等待退出信号或HTTP服务异常
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
	case <-s.shutdownCh:
	}
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 停止接收新请求
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP服务关闭失败", zap.Error(err))
	}

	// 取消主上下文，触发所有goroutine退出
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("所有服务已正常关闭")
	case <-shutdownCtx.Done():
		s.logger.Warn("关闭超时，强制退出")
		return apperrors.New(apperrors.ErrTimeout, "关闭超时")
	}

	if err := s.closeStore(); err != nil {
		s.logger.Error("关闭存储失败", zap.Error(err))
	}

	if err := logger.Sync(); err != nil {
		fmt.Printf("同步日志失败: %v\n", err)
	}
	return nil
}

// reloadConfig 应用热更新的配置，目前只有日志级别即时生效
func (s *Server) reloadConfig(newCfg *config.Config, err error) {
	if err != nil {
		s.logger.Warn("配置重载失败，保留旧配置", zap.Error(err))
		return
	}
	logger.SetLevel(newCfg.Log.Level)
	s.logger.Info("配置已重新加载", zap.String("log_level", logger.Level()))
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Hangman服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
