package notify

import (
	"context"

	"taskhub/internal/model"
)

// Notifier 定义任务指派通知接口。
type Notifier interface {
	// SendTaskAssigned 通知执行者有任务指派给了自己。
	//
	// 参数:
	//   ctx: 上下文
	//   toEmail: 执行者邮箱
	//   title: 任务标题
	//   priority: 任务优先级
	SendTaskAssigned(ctx context.Context, toEmail string, title string, priority model.TaskPriority) error
}
