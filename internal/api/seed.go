package api

import (
	"context"
	"errors"
	"net/http"

	"taskhub/internal/model"
	"taskhub/internal/pkg/manifest"
	"taskhub/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PromoteAdminsFromManifest 根据管理员清单晋升已注册的账号。
//
// 清单中的条目按邮箱匹配已有账号：匹配到的提升为 ADMIN，
// 未注册的条目跳过并记录日志。晋升结果同时写入 Redis 记录，
// 写入失败只告警。返回本次实际晋升的数量。
func (s *Server) PromoteAdminsFromManifest(ctx context.Context) (int, error) {
	entries, err := s.manifest.ReadEntries()
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, entry := range entries {
		user, err := s.accounts.FindAccountByEmail(ctx, entry.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Info("manifest entry not registered, skip",
					"username", entry.Username, "email", entry.Email)
				continue
			}
			return promoted, err
		}
		if user.Role == model.RoleAdmin {
			continue
		}

		user.Role = model.RoleAdmin
		if err := s.accounts.SaveAccount(ctx, user); err != nil {
			return promoted, err
		}
		promoted++
		metrics.AdminPromotedTotal.Inc()

		if err := s.recorder.RecordPromotion(ctx, user.ID, user.Username, user.Email); err != nil {
			s.logger.Warn("record promotion failed", "error", err, "user_id", user.ID)
		}
		s.logger.Info("promoted to admin", "username", user.Username, "user_id", user.ID)
	}
	return promoted, nil
}

// handleRegisterAdmins 按需重新执行清单晋升。仅限 ADMIN。
//
// 清单文件缺失返回 404，晋升过程中持久化失败返回 409。
func (s *Server) handleRegisterAdmins(c *gin.Context) {
	if getUserRole(c) != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	promoted, err := s.PromoteAdminsFromManifest(c.Request.Context())
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "admin manifest not found"})
			return
		}
		s.logger.Error("manifest promotion failed", "error", err)
		c.JSON(http.StatusConflict, gin.H{"error": "admin promotion conflict"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"promoted": promoted})
}
