package model

import (
	"time"
)

// TaskStatus 表示任务状态。
//
// 状态沿 WAITING → IN_PROCESS → COMPLETED 单向推进，
// 合法性由 ValidateTransition 判定。
type TaskStatus string

const (
	StatusWaiting   TaskStatus = "WAITING"    // 等待处理
	StatusInProcess TaskStatus = "IN_PROCESS" // 处理中
	StatusCompleted TaskStatus = "COMPLETED"  // 已完成（终态）
)

// TaskPriority 表示任务优先级。优先级不受状态机约束，可随时修改。
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// ParseTaskStatus 解析状态字符串。
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case StatusWaiting, StatusInProcess, StatusCompleted:
		return TaskStatus(s), true
	}
	return "", false
}

// ParseTaskPriority 解析优先级字符串。
func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(s), true
	}
	return "", false
}

// Task 表示一个待办任务。
//
// Author 在创建时确定且不可变；Assignee 可选，可由更新操作修改。
// 状态变更必须先通过 ValidateTransition 校验，由调用方负责持久化。
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string       `gorm:"type:varchar(191);not null" json:"title"`      // 任务标题
	Description string       `gorm:"type:text" json:"description"`                 // 任务描述
	Priority    TaskPriority `gorm:"type:varchar(16);not null" json:"priority"`    // 优先级: LOW / MEDIUM / HIGH
	Status      TaskStatus   `gorm:"type:varchar(16);default:WAITING" json:"status"` // 状态: WAITING / IN_PROCESS / COMPLETED

	AuthorID   uint  `gorm:"not null;index" json:"author_id"` // 创建者 ID（不可变）
	Author     User  `gorm:"foreignKey:AuthorID" json:"-"`
	AssigneeID *uint `gorm:"index" json:"assignee_id"` // 执行者 ID（可为空）
	Assignee   *User `gorm:"foreignKey:AssigneeID" json:"-"`
}

// Comment 表示任务下的评论。创建后不可修改，只能删除。
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Text     string `gorm:"type:text;not null" json:"text"` // 评论内容
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"-"`
	TaskID   uint   `gorm:"not null;index" json:"task_id"`
	Task     Task   `gorm:"foreignKey:TaskID" json:"-"`
}

// IsParticipant 判断用户是否为任务参与者（创建者或执行者）。
func (t *Task) IsParticipant(userID uint) bool {
	if t.AuthorID == userID {
		return true
	}
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
