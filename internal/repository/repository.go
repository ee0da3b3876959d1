package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus 条件更新未命中任何行：记录状态已被并发请求改变。
	ErrStaleStatus = errors.New("assignment status changed concurrently")
)

// Repositories 仓库集合
type Repositories struct {
	User       *UserRepository
	Department *DepartmentRepository
	Assignment *AssignmentRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Department: NewDepartmentRepository(db),
		Assignment: NewAssignmentRepository(db),
	}
}
