package model

import "errors"

// ErrTaskCompleted 已完成的任务不允许任何状态变更。
var ErrTaskCompleted = errors.New("task already completed")

// ErrRevertToWaiting 处理中的任务不允许退回等待状态。
var ErrRevertToWaiting = errors.New("cannot revert in-process task to waiting")

// ValidateTransition 校验状态迁移是否合法。
//
// 规则：
//  1. COMPLETED 为终态，任何迁移请求（包括原地迁移）都返回 ErrTaskCompleted；
//  2. IN_PROCESS 不允许退回 WAITING；
//  3. 其余组合（含同状态的 no-op）全部放行。
//
// 纯函数，不做任何持久化；迁移成功后由调用方写库。
func ValidateTransition(current, next TaskStatus) error {
	if current == StatusCompleted {
		return ErrTaskCompleted
	}
	if current == StatusInProcess && next == StatusWaiting {
		return ErrRevertToWaiting
	}
	return nil
}
