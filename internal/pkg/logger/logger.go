// Package logger 构造进程级 slog 日志器。
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewDefault 根据配置的级别创建文本格式日志器。
//
// 未知级别回退到 info。
func NewDefault(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lv})
	return slog.New(handler)
}
