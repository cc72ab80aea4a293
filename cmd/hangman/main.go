package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/wfunc/hangman/internal/config"
	"github.com/wfunc/hangman/internal/console"
	"github.com/wfunc/hangman/internal/logger"
	"github.com/wfunc/hangman/internal/storage"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	name := filepath.Base(os.Args[0])

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	var (
		newGame    = flags.BoolP("new", "n", false, "开始新的一局")
		list       = flags.BoolP("list", "l", false, "列出保存的对局")
		replayID   = flags.UintP("replay", "r", 0, "逐步回放指定ID的对局")
		help       = flags.BoolP("help", "h", false, "显示帮助")
		configPath = flags.String("config", "", "配置文件路径")
		noClear    = flags.Bool("no-clear", false, "不清屏")
	)
	flags.SetOutput(os.Stderr)
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	view := console.NewView(os.Stdin, os.Stdout, !*noClear)
	if *help {
		view.ShowHelp(name)
		return 0
	}

	cfg, err := config.New(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return 1
	}

	// 终端里只写文件日志，避免和游戏画面混在一起
	if cfg.Log.Output != "file" {
		cfg.Log.Output = "none"
	}
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		return 1
	}
	defer logger.Cleanup()
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, &cfg.Database, log)
	if err != nil {
		log.Error("打开存储失败", zap.Error(err))
		fmt.Fprintf(os.Stderr, "打开存储失败: %v\n", err)
		return 1
	}
	defer closeStore()

	ctrl := console.NewController(store, view, cfg.Game.MaxErrors, log.Named("console"))

	switch {
	case *list:
		ctrl.ListGames(ctx)
	case flags.Changed("replay"):
		if !ctrl.ReplayGame(ctx, *replayID) {
			return 1
		}
	case *newGame:
		ctrl.NewGame(ctx)
	default:
		ctrl.RunInteractive(ctx)
	}
	return 0
}
