// Package adminlog 持久化记录管理员提升操作。
//
// 原型系统把提升结果回写进 YAML 配置文件，这里改为写入 Redis 哈希，
// 由独立的协作方承担副作用，核心逻辑保持纯净。
package adminlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const adminHashKey = "taskhub:admins"

// Record 一条已记录的提升信息。
type Record struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Recorder 基于 Redis 哈希的提升记录器。
type Recorder struct {
	rdb *redis.Client
}

// NewRecorder 创建记录器。rdb 为 nil 时所有操作都是 no-op。
func NewRecorder(rdb *redis.Client) *Recorder {
	return &Recorder{rdb: rdb}
}

// RecordPromotion 记录一次管理员提升。
func (r *Recorder) RecordPromotion(ctx context.Context, id uint, username, email string) error {
	if r == nil || r.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(Record{ID: id, Username: username, Email: email})
	if err != nil {
		return fmt.Errorf("adminlog marshal: %w", err)
	}
	field := fmt.Sprintf("admin-%d", id)
	if err := r.rdb.HSet(ctx, adminHashKey, field, payload).Err(); err != nil {
		return fmt.Errorf("adminlog hset: %w", err)
	}
	return nil
}

// List 返回全部已记录的提升。
func (r *Recorder) List(ctx context.Context) ([]Record, error) {
	if r == nil || r.rdb == nil {
		return nil, nil
	}
	raw, err := r.rdb.HGetAll(ctx, adminHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("adminlog hgetall: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for _, v := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue // skip entries written by older versions
		}
		records = append(records, rec)
	}
	return records, nil
}
