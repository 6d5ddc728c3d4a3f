package api

import (
	"errors"
	"net/http"
	"strconv"

	"taskhub/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// commentResponse 评论的对外表示。
type commentResponse struct {
	ID     uint   `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
	TaskID uint   `json:"task_id"`
}

func newCommentResponse(cm *model.Comment) commentResponse {
	return commentResponse{
		ID:     cm.ID,
		Text:   cm.Text,
		Author: cm.Author.Username,
		TaskID: cm.TaskID,
	}
}

// handleAddComment 在任务下添加评论。
//
// ADMIN 或任务参与者可以评论，评论作者固定为当前调用者。
func (s *Server) handleAddComment(c *gin.Context) {
	task, ok := s.taskByParam(c)
	if !ok {
		return
	}

	role, actorID := getUserRole(c), getUserID(c)
	if role != model.RoleAdmin && !task.IsParticipant(actorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a task participant"})
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment := &model.Comment{
		Text:     req.Text,
		AuthorID: actorID,
		TaskID:   task.ID,
	}
	if err := s.comments.SaveComment(c.Request.Context(), comment); err != nil {
		s.logger.Error("save comment failed", "error", err, "task_id", task.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	author, err := s.accounts.FindAccountByID(c.Request.Context(), actorID)
	if err == nil {
		comment.Author = *author
	}

	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// handleTaskComments 列出任务下的全部评论。
//
// ADMIN 或任务参与者可以查看；任务不存在时返回 404。
func (s *Server) handleTaskComments(c *gin.Context) {
	task, ok := s.taskByParam(c)
	if !ok {
		return
	}

	role, actorID := getUserRole(c), getUserID(c)
	if role != model.RoleAdmin && !task.IsParticipant(actorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a task participant"})
		return
	}

	comments, err := s.comments.CommentsByTask(c.Request.Context(), task.ID)
	if err != nil {
		s.logger.Error("list comments failed", "error", err, "task_id", task.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, newCommentResponse(&comments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// handleDeleteComment 删除评论。ADMIN 或评论作者可以操作，成功返回 204。
func (s *Server) handleDeleteComment(c *gin.Context) {
	task, ok := s.taskByParam(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("commentId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	comment, err := s.comments.FindCommentByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
			return
		}
		s.logger.Error("load comment failed", "error", err, "comment_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if comment.TaskID != task.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}

	role, actorID := getUserRole(c), getUserID(c)
	if role != model.RoleAdmin && comment.AuthorID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the comment author"})
		return
	}

	if err := s.comments.DeleteComment(c.Request.Context(), comment); err != nil {
		s.logger.Error("delete comment failed", "error", err, "comment_id", comment.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// handleUserComments 列出某用户发表的全部评论。
//
// 任何已认证用户都可以查询；该用户没有任何评论时返回 404。
func (s *Server) handleUserComments(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	comments, err := s.comments.CommentsByAuthor(c.Request.Context(), uint(id))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("list comments failed", "error", err, "user_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if len(comments) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no comments found"})
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, newCommentResponse(&comments[i]))
	}
	c.JSON(http.StatusOK, resp)
}
