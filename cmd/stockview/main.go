package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockview/internal/config"
	"stockview/internal/gateway/database"
	"stockview/internal/gateway/eastmoney"
	"stockview/internal/logger"
	"stockview/internal/transport/http/chartapi"
	"stockview/internal/watchlist"
)

func main() {
	cfgPath := flag.String("config", "stockview.toml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Errorf("加载配置失败: %v", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Errorf("初始化日志失败: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cache, err := database.Open(cfg.Data.CachePath)
	if err != nil {
		logger.Errorf("打开日K缓存失败: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	source := eastmoney.New(eastmoney.Config{
		BaseURL:     cfg.Data.BaseURL,
		HTTPTimeout: time.Duration(cfg.Data.TimeoutSeconds) * time.Second,
	})

	snapshotBase := ""
	if cfg.Chart.SnapshotEnabled {
		snapshotBase = "http://127.0.0.1" + cfg.Server.Addr
	}
	router := chartapi.NewRouter(chartapi.Options{
		Source:          database.NewCachedSource(source, cache),
		Watchlist:       watchlist.New(cfg.Data.WatchlistPath),
		Periods:         cfg.Chart.Periods,
		DefaultLookback: cfg.Chart.DefaultLookbackDays,
		SnapshotBase:    snapshotBase,
	})
	server := chartapi.NewServer(cfg.Server.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Infof("stockview 启动，监听 %s", cfg.Server.Addr)
	if err := server.Start(ctx); err != nil {
		logger.Errorf("HTTP 服务退出: %v", err)
		os.Exit(1)
	}
}
