// Package policy 实现角色与资源归属的访问判定。
//
// 纯函数，无任何 I/O；调用方在每个操作入口处先行调用。
package policy

import "taskhub/internal/model"

// Decision 表示授权结果。
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Authorize 判定 actor 是否可以访问某资源。
//
// 规则：
//  1. ADMIN 无条件放行；
//  2. 其他角色仅当 actorID 出现在 ownerIDs 中时放行；
//  3. ownerIDs 为空表示仅限管理员的操作。
//
// ownerIDs 由调用方给出，对任务类资源传创建者和执行者两个 ID
// 即可表达"参与者可访问"的语义。
func Authorize(role model.Role, actorID uint, ownerIDs ...uint) Decision {
	if role == model.RoleAdmin {
		return Allow
	}
	for _, owner := range ownerIDs {
		if owner == actorID {
			return Allow
		}
	}
	return Deny
}

// Allowed 是 Authorize 的布尔便捷形式。
func Allowed(role model.Role, actorID uint, ownerIDs ...uint) bool {
	return Authorize(role, actorID, ownerIDs...) == Allow
}
