package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config 是服务的启动配置，来自 TOML 文件；缺省字段逐项补默认值。
type Config struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Chart  ChartConfig  `toml:"chart"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DataConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CachePath      string `toml:"cache_path"`
	WatchlistPath  string `toml:"watchlist_path"`
}

type ChartConfig struct {
	Periods             []int `toml:"periods"`
	DefaultLookbackDays int   `toml:"default_lookback_days"`
	SnapshotEnabled     bool  `toml:"snapshot_enabled"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Load 读取并解析配置文件；path 为空或文件不存在时返回默认配置。
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("读取配置 %s 失败: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("解析配置 %s 失败: %w", path, err)
		}
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	out := c
	if out.Server.Addr == "" {
		out.Server.Addr = ":9980"
	}
	if out.Data.TimeoutSeconds <= 0 {
		out.Data.TimeoutSeconds = 10
	}
	if out.Data.CachePath == "" {
		out.Data.CachePath = "stockview.db"
	}
	if out.Data.WatchlistPath == "" {
		out.Data.WatchlistPath = "watchlist.yaml"
	}
	if len(out.Chart.Periods) == 0 {
		out.Chart.Periods = []int{5, 10, 20, 30, 60}
	}
	if out.Chart.DefaultLookbackDays <= 0 {
		out.Chart.DefaultLookbackDays = 120
	}
	if out.Log.Level == "" {
		out.Log.Level = "info"
	}
	return out
}
