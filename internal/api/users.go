package api

import (
	"errors"
	"net/http"
	"strconv"

	"taskhub/internal/model"
	"taskhub/internal/pkg/metrics"
	"taskhub/internal/pkg/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// userResponse 用户的对外表示，不含密码散列。
type userResponse struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// handleGetUser 按用户名查询用户。ADMIN 可查任何人，普通用户只能查自己。
func (s *Server) handleGetUser(c *gin.Context) {
	username := c.Param("id")

	user, err := s.accounts.FindAccountByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.logger.Error("load user failed", "error", err, "username", username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if !policy.Allowed(getUserRole(c), getUserID(c), user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// handleAssignRole 修改用户角色。仅限 ADMIN。
//
// 根管理员的角色不允许改动。晋升为 ADMIN 时写入 Redis 晋升记录，
// 记录失败只告警，不影响角色变更本身。
func (s *Server) handleAssignRole(c *gin.Context) {
	if getUserRole(c) != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	role, ok := model.ParseRole(c.Query("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if uint(id) == s.cfg.Security.RootAdminID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root admin role cannot be changed"})
		return
	}

	user, err := s.accounts.FindAccountByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.logger.Error("load user failed", "error", err, "user_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	user.Role = role
	if err := s.accounts.SaveAccount(c.Request.Context(), user); err != nil {
		s.logger.Error("save user failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusConflict, gin.H{"error": "role update conflict"})
		return
	}

	if role == model.RoleAdmin {
		metrics.AdminPromotedTotal.Inc()
		if err := s.recorder.RecordPromotion(c.Request.Context(), user.ID, user.Username, user.Email); err != nil {
			s.logger.Warn("record promotion failed", "error", err, "user_id", user.ID)
		}
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// handleUserTasks 查询某用户相关的任务列表。
//
// 查询参数:
//
//	as_author: true 时列出其创建的任务，否则列出指派给他的任务
//	status / priority: 可选过滤条件
//
// ADMIN 可查任何人，普通用户只能查自己。
func (s *Server) handleUserTasks(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if !policy.Allowed(getUserRole(c), getUserID(c), uint(id)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if _, err := s.accounts.FindAccountByID(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.logger.Error("load user failed", "error", err, "user_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	statusFilter, hasStatus := model.ParseTaskStatus(c.Query("status"))
	priorityFilter, hasPriority := model.ParseTaskPriority(c.Query("priority"))
	if c.Query("status") != "" && !hasStatus {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if c.Query("priority") != "" && !hasPriority {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}

	var tasks []model.Task
	if c.Query("as_author") == "true" {
		tasks, err = s.tasks.TasksByAuthor(c.Request.Context(), uint(id))
	} else {
		tasks, err = s.tasks.TasksByAssignee(c.Request.Context(), uint(id))
	}
	if err != nil {
		s.logger.Error("list tasks failed", "error", err, "user_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if hasStatus && t.Status != statusFilter {
			continue
		}
		if hasPriority && t.Priority != priorityFilter {
			continue
		}
		resp = append(resp, newTaskResponse(t))
	}

	c.JSON(http.StatusOK, resp)
}
