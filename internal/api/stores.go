package api

import (
	"context"

	"taskhub/internal/model"

	"gorm.io/gorm"
)

// AccountStore 账号存取接口。查询未命中返回 gorm.ErrRecordNotFound。
type AccountStore interface {
	FindAccountByID(ctx context.Context, id uint) (*model.User, error)
	FindAccountByEmail(ctx context.Context, email string) (*model.User, error)
	FindAccountByUsername(ctx context.Context, username string) (*model.User, error)
	AccountExistsByEmail(ctx context.Context, email string) (bool, error)
	AccountExistsByUsername(ctx context.Context, username string) (bool, error)
	SaveAccount(ctx context.Context, user *model.User) error
}

// TaskStore 任务存取接口。
type TaskStore interface {
	FindTaskByID(ctx context.Context, id uint) (*model.Task, error)
	TasksByAuthor(ctx context.Context, authorID uint) ([]model.Task, error)
	TasksByAssignee(ctx context.Context, assigneeID uint) ([]model.Task, error)
	TaskExists(ctx context.Context, id uint) (bool, error)
	SaveTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, task *model.Task) error
}

// CommentStore 评论存取接口。
type CommentStore interface {
	FindCommentByID(ctx context.Context, id uint) (*model.Comment, error)
	CommentsByTask(ctx context.Context, taskID uint) ([]model.Comment, error)
	CommentsByAuthor(ctx context.Context, authorID uint) ([]model.Comment, error)
	SaveComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, comment *model.Comment) error
}

// gormStore 基于 gorm 的存储实现，同时满足上面三个接口。
type gormStore struct {
	db *gorm.DB
}

func newGormStore(db *gorm.DB) *gormStore {
	return &gormStore{db: db}
}

func (s *gormStore) FindAccountByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindAccountByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindAccountByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) AccountExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *gormStore) AccountExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *gormStore) SaveAccount(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

func (s *gormStore) FindTaskByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Assignee").
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *gormStore) TasksByAuthor(ctx context.Context, authorID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Assignee").
		Where("author_id = ?", authorID).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

func (s *gormStore) TasksByAssignee(ctx context.Context, assigneeID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Assignee").
		Where("assignee_id = ?", assigneeID).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

func (s *gormStore) TaskExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *gormStore) SaveTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Save(task).Error
}

func (s *gormStore) DeleteTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Delete(task).Error
}

func (s *gormStore) FindCommentByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Task").
		First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *gormStore) CommentsByTask(ctx context.Context, taskID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Task").
		Where("task_id = ?", taskID).
		Order("id").
		Find(&comments).Error
	return comments, err
}

func (s *gormStore) CommentsByAuthor(ctx context.Context, authorID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Task").
		Where("author_id = ?", authorID).
		Order("id").
		Find(&comments).Error
	return comments, err
}

func (s *gormStore) SaveComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Save(comment).Error
}

func (s *gormStore) DeleteComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Delete(comment).Error
}
