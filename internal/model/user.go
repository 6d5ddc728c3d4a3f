package model

import "time"

// Role 表示用户角色。
type Role string

const (
	RoleAdmin Role = "ADMIN" // 管理员：通过所有权限检查
	RoleUser  Role = "USER"  // 普通用户：仅能访问自己名下的资源
)

// ParseRole 解析角色字符串。
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	}
	return "", false
}

// User 表示系统用户。
//
// Password 存储 bcrypt 哈希，永远不会被序列化到响应中。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"` // 用户名（唯一）
	Email     string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`   // 邮箱（唯一）
	Password  string    `gorm:"not null" json:"-"`                                     // bcrypt 哈希
	Role      Role      `gorm:"type:varchar(16);default:USER" json:"role"`             // 角色: ADMIN / USER
	CreatedAt time.Time `json:"created_at"`                                            // 创建时间

	Tasks []Task `gorm:"foreignKey:AuthorID" json:"-"`
}
