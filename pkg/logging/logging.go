// Package logging 管理进程级 zerolog 日志器。每个系统
// 获取带组件名标签的子日志器
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// ParseLevel 将配置字符串转换为 zerolog 级别, 默认 info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Setup 替换基础日志器。控制台输出总是写到 stderr;
// 额外的 writer(通常是日志文件)接收 JSON 行。
// verbose 强制 debug 级别, 否则直接使用配置的级别
func Setup(level string, verbose bool, extra ...io.Writer) zerolog.Logger {
	lvl := ParseLevel(level)
	if verbose {
		lvl = zerolog.DebugLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger().Level(lvl)
	SetLogger(logger)
	return logger
}

// SetLogger 安装 l 作为基础日志器, 测试用它捕获输出
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

// Logger 返回基础日志器
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// For 返回带 component 标签的子日志器
func For(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}

// LogFilePath 生成每个会话的日志文件路径
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// OpenLogFile 按需创建 logsDir 并打开新的会话日志
func OpenLogFile(logsDir, appName string, sessionStart time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	f, err := os.OpenFile(LogFilePath(logsDir, appName, sessionStart), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
