package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("文件不存在不应报错: %v", err)
	}
	if cfg.Server.Addr != ":9980" {
		t.Fatalf("默认监听地址不对: %s", cfg.Server.Addr)
	}
	if cfg.Data.TimeoutSeconds != 10 || cfg.Chart.DefaultLookbackDays != 120 {
		t.Fatalf("默认值不对: %+v", cfg)
	}
	if len(cfg.Chart.Periods) != 5 || cfg.Chart.Periods[0] != 5 {
		t.Fatalf("默认均线周期不对: %v", cfg.Chart.Periods)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("默认日志级别不对: %s", cfg.Log.Level)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockview.toml")
	raw := `
[server]
addr = ":8080"

[chart]
periods = [5, 20]
default_lookback_days = 250

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Log.Level != "debug" {
		t.Fatalf("文件值未生效: %+v", cfg)
	}
	if len(cfg.Chart.Periods) != 2 || cfg.Chart.DefaultLookbackDays != 250 {
		t.Fatalf("图表配置未生效: %+v", cfg)
	}
	// 文件没写的字段仍取默认。
	if cfg.Data.TimeoutSeconds != 10 || cfg.Data.CachePath != "stockview.db" {
		t.Fatalf("缺省字段未补默认: %+v", cfg)
	}
}

func TestLoadRejectsBrokenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("server = {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("损坏的 TOML 应报错")
	}
}
