package api

import (
	"errors"
	"net/http"
	"strconv"

	"taskhub/internal/model"
	"taskhub/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// createTaskRequest 创建任务的请求体。
type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"required"`
	Assignee    string `json:"assignee"` // 执行者用户名，可选
}

// updateTaskRequest 更新任务的请求体。字段均为可选，nil 表示不修改。
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	Assignee    *string `json:"assignee"`
}

// taskResponse 任务的对外表示。
type taskResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    model.TaskPriority `json:"priority"`
	Status      model.TaskStatus   `json:"status"`
	Author      string             `json:"author"`
	Assignee    string             `json:"assignee,omitempty"`
}

func newTaskResponse(t *model.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Author:      t.Author.Username,
	}
	if t.Assignee != nil {
		resp.Assignee = t.Assignee.Username
	}
	return resp
}

// handleCreateTask 创建任务。仅限 ADMIN。
//
// 新任务状态强制为 WAITING，创建者为当前调用者。
// 指派了执行者时会尽力发送邮件通知，发送失败不影响创建结果。
func (s *Server) handleCreateTask(c *gin.Context) {
	if getUserRole(c) != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	priority, ok := model.ParseTaskPriority(req.Priority)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      model.StatusWaiting,
		AuthorID:    getUserID(c),
	}

	if req.Assignee != "" {
		assignee, err := s.accounts.FindAccountByUsername(c.Request.Context(), req.Assignee)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "assignee not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		task.AssigneeID = &assignee.ID
		task.Assignee = assignee
	}

	if err := s.tasks.SaveTask(c.Request.Context(), task); err != nil {
		s.logger.Error("save task failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if task.Assignee != nil {
		if err := s.notifier.SendTaskAssigned(c.Request.Context(), task.Assignee.Email, task.Title, task.Priority); err != nil {
			s.logger.Warn("assignment notification failed", "error", err, "task_id", task.ID)
		}
	}

	author, err := s.accounts.FindAccountByID(c.Request.Context(), task.AuthorID)
	if err == nil {
		task.Author = *author
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

// handleUpdateTask 更新任务字段。仅限 ADMIN。
//
// 请求体中省略的字段保持不变；状态变更依然要通过状态机校验。
func (s *Server) handleUpdateTask(c *gin.Context) {
	if getUserRole(c) != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	task, ok := s.taskByParam(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		priority, ok := model.ParseTaskPriority(*req.Priority)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return
		}
		task.Priority = priority
	}
	if req.Status != nil {
		status, ok := model.ParseTaskStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		if err := model.ValidateTransition(task.Status, status); err != nil {
			metrics.TransitionRejectedTotal.Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		task.Status = status
	}
	if req.Assignee != nil {
		if *req.Assignee == "" {
			task.AssigneeID = nil
			task.Assignee = nil
		} else {
			assignee, err := s.accounts.FindAccountByUsername(c.Request.Context(), *req.Assignee)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "assignee not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			task.AssigneeID = &assignee.ID
			task.Assignee = assignee
		}
	}

	if err := s.tasks.SaveTask(c.Request.Context(), task); err != nil {
		s.logger.Error("save task failed", "error", err, "task_id", task.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// handleDeleteTask 删除任务。仅限 ADMIN，成功返回 204。
func (s *Server) handleDeleteTask(c *gin.Context) {
	if getUserRole(c) != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	task, ok := s.taskByParam(c)
	if !ok {
		return
	}

	if err := s.tasks.DeleteTask(c.Request.Context(), task); err != nil {
		s.logger.Error("delete task failed", "error", err, "task_id", task.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// handleUpdateTaskStatus 推进任务状态。
//
// 状态与优先级均通过查询参数传入且都是必填项。
// ADMIN 或任务参与者（创建者/执行者）可以调用。
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	status, ok := model.ParseTaskStatus(c.Query("status"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	priority, ok := model.ParseTaskPriority(c.Query("priority"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}

	task, ok := s.taskByParam(c)
	if !ok {
		return
	}

	role, actorID := getUserRole(c), getUserID(c)
	if role != model.RoleAdmin && !task.IsParticipant(actorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a task participant"})
		return
	}

	if err := model.ValidateTransition(task.Status, status); err != nil {
		metrics.TransitionRejectedTotal.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task.Status = status
	task.Priority = priority
	if err := s.tasks.SaveTask(c.Request.Context(), task); err != nil {
		s.logger.Error("save task failed", "error", err, "task_id", task.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// taskByParam 从路径参数解析任务 ID 并加载任务。
// 解析失败或任务不存在时直接写入响应并返回 false。
func (s *Server) taskByParam(c *gin.Context) (*model.Task, bool) {
	id, err := strconv.ParseUint(c.Param("taskId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return nil, false
	}

	task, err := s.tasks.FindTaskByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return nil, false
		}
		s.logger.Error("load task failed", "error", err, "task_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return task, true
}
