package entity

import (
	"time"
)

// Role 用户角色
type Role string

// 角色常量
const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleHOD       Role = "hod"
	RoleAdmin     Role = "admin"
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleHOD, RoleAdmin:
		return true
	}
	return false
}

// CanReview 角色是否具备评审能力
func (r Role) CanReview() bool {
	return r == RoleProfessor || r == RoleHOD
}

// User 用户实体
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Email        string     `json:"email" gorm:"size:256;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Role         Role       `json:"role" gorm:"size:16;not null;default:student"`
	DepartmentID string     `json:"department_id" gorm:"size:32"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	// 关联
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (User) TableName() string {
	return "users"
}
