// Package manifest 读取管理员候选清单。
//
// 清单是一个 YAML 或 JSON 文件，顶层 admins 键下是 {username, email} 列表，
// 在启动时（以及管理端点触发时）用于把既有账号提升为管理员。
package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ErrNotFound 清单文件不存在。
var ErrNotFound = errors.New("admin manifest not found")

// Entry 清单中的一条管理员候选记录。
type Entry struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
}

// Reader 从固定路径读取清单。
type Reader struct {
	path string
}

// NewReader 创建清单读取器。
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// ReadEntries 读取全部候选记录。
//
// 文件不存在返回 ErrNotFound；格式错误返回解析错误。
// 每次调用都重新读取文件，不做缓存。
func (r *Reader) ReadEntries() ([]Entry, error) {
	if r == nil || r.path == "" {
		return nil, ErrNotFound
	}
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, ErrNotFound
	}

	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read admin manifest: %w", err)
	}

	var entries []Entry
	if err := v.UnmarshalKey("admins", &entries); err != nil {
		return nil, fmt.Errorf("parse admin manifest: %w", err)
	}
	return entries, nil
}
