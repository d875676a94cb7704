package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 包级 logger，默认输出到 stderr 的 info 级别；Init 可重新配置。
var (
	mu    sync.RWMutex
	sugar = newSugar(zapcore.InfoLevel, "")
)

// Init 重新初始化全局日志。level 取 debug/info/warn/error，
// file 非空时同时写入该文件。
func Init(level, file string) error {
	var lv zapcore.Level
	if err := lv.Set(level); err != nil {
		return fmt.Errorf("非法日志级别 %q: %w", level, err)
	}
	mu.Lock()
	defer mu.Unlock()
	sugar = newSugar(lv, file)
	return nil
}

func newSugar(level zapcore.Level, file string) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level),
	}
	if file != "" {
		if f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(f), level))
		}
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

func Debugf(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, args...)
}

// Sync 刷新缓冲，进程退出前调用。
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}
