package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
)

// UserService 用户管理服务
type UserService struct {
	userRepo       *repository.UserRepository
	deptRepo       *repository.DepartmentRepository
	assignmentRepo *repository.AssignmentRepository
}

// NewUserService 创建用户管理服务
func NewUserService(userRepo *repository.UserRepository, deptRepo *repository.DepartmentRepository, assignmentRepo *repository.AssignmentRepository) *UserService {
	return &UserService{
		userRepo:       userRepo,
		deptRepo:       deptRepo,
		assignmentRepo: assignmentRepo,
	}
}

// UpdateUserRequest 更新用户请求（管理员操作）
type UpdateUserRequest struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
}

// UserListResult 用户列表结果
type UserListResult struct {
	Items      []entity.User `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Get 获取用户详情
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// List 获取用户列表
func (s *UserService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) (*UserListResult, error) {
	users, total, err := s.userRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &UserListResult{
		Items:      users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListReviewers 获取可担任评审人的用户（教授与系主任），供提交/转交时选择
func (s *UserService) ListReviewers(ctx context.Context, departmentID string) ([]entity.User, error) {
	filters := map[string]interface{}{"role": string(entity.RoleProfessor)}
	if departmentID != "" {
		filters["department_id"] = departmentID
	}
	professors, _, err := s.userRepo.List(ctx, 1, 1000, filters)
	if err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}

	filters["role"] = string(entity.RoleHOD)
	hods, _, err := s.userRepo.List(ctx, 1, 1000, filters)
	if err != nil {
		return nil, fmt.Errorf("list hods: %w", err)
	}

	return append(professors, hods...), nil
}

// Update 更新用户（管理员可改角色与所属院系）
func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		role := entity.Role(req.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: invalid role %q", workflow.ErrValidation, req.Role)
		}
		user.Role = role
	}
	if req.DepartmentID != "" {
		if _, err := s.deptRepo.FindByID(ctx, req.DepartmentID); err != nil {
			return nil, fmt.Errorf("%w: department not found", workflow.ErrValidation)
		}
		user.DepartmentID = req.DepartmentID
	}

	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// Delete 软删除用户
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	return s.userRepo.Delete(ctx, id)
}

// Overview 系统概览统计
type Overview struct {
	Departments int64            `json:"departments"`
	Users       int64            `json:"users"`
	UsersByRole map[string]int64 `json:"users_by_role"`
	Assignments map[string]int64 `json:"assignments_by_status"`
}

// GetOverview 获取概览统计（管理员）
func (s *UserService) GetOverview(ctx context.Context) (*Overview, error) {
	deptCount, err := s.deptRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count departments: %w", err)
	}

	userCount, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	byRole := make(map[string]int64)
	for _, role := range []entity.Role{entity.RoleStudent, entity.RoleProfessor, entity.RoleHOD, entity.RoleAdmin} {
		n, err := s.userRepo.CountByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("count users by role: %w", err)
		}
		byRole[string(role)] = n
	}

	byStatus := make(map[string]int64)
	for _, st := range []workflow.Status{
		workflow.StatusDraft, workflow.StatusSubmitted, workflow.StatusApproved,
		workflow.StatusRejected, workflow.StatusForwarded,
	} {
		n, err := s.assignmentRepo.CountByStatus(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("count assignments by status: %w", err)
		}
		byStatus[string(st)] = n
	}

	return &Overview{
		Departments: deptCount,
		Users:       userCount,
		UsersByRole: byRole,
		Assignments: byStatus,
	}, nil
}
