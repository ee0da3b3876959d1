package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
	"github.com/google/uuid"
)

// DepartmentService 院系管理服务
type DepartmentService struct {
	deptRepo *repository.DepartmentRepository
	userRepo *repository.UserRepository
}

// NewDepartmentService 创建院系管理服务
func NewDepartmentService(deptRepo *repository.DepartmentRepository, userRepo *repository.UserRepository) *DepartmentService {
	return &DepartmentService{
		deptRepo: deptRepo,
		userRepo: userRepo,
	}
}

// CreateDepartmentRequest 创建院系请求
type CreateDepartmentRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// UpdateDepartmentRequest 更新院系请求
type UpdateDepartmentRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Create 创建院系，名称唯一
func (s *DepartmentService) Create(ctx context.Context, req *CreateDepartmentRequest) (*entity.Department, error) {
	if _, err := s.deptRepo.FindByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("%w: department %q already exists", workflow.ErrValidation, req.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find department: %w", err)
	}

	now := time.Now()
	dept := &entity.Department{
		ID:        uuid.New().String()[:32],
		Code:      req.Code,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.deptRepo.Create(ctx, dept); err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}

	return dept, nil
}

// Get 获取院系详情
func (s *DepartmentService) Get(ctx context.Context, id string) (*entity.Department, error) {
	return s.deptRepo.FindByID(ctx, id)
}

// List 获取院系列表
func (s *DepartmentService) List(ctx context.Context) ([]entity.Department, error) {
	return s.deptRepo.List(ctx)
}

// Update 更新院系基本信息
func (s *DepartmentService) Update(ctx context.Context, id string, req *UpdateDepartmentRequest) (*entity.Department, error) {
	dept, err := s.deptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find department: %w", err)
	}

	if req.Code != "" {
		dept.Code = req.Code
	}
	if req.Name != "" {
		dept.Name = req.Name
	}
	dept.UpdatedAt = time.Now()

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		return nil, fmt.Errorf("update department: %w", err)
	}

	return dept, nil
}

// AssignHOD 指派系主任。目标用户必须存在且角色为hod。
func (s *DepartmentService) AssignHOD(ctx context.Context, id, userID string) (*entity.Department, error) {
	dept, err := s.deptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find department: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", workflow.ErrValidation)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.Role != entity.RoleHOD {
		return nil, fmt.Errorf("%w: user %s is not a head of department", workflow.ErrValidation, userID)
	}

	dept.HODID = userID
	dept.UpdatedAt = time.Now()

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		return nil, fmt.Errorf("update department: %w", err)
	}

	return s.deptRepo.FindByID(ctx, id)
}

// Delete 删除院系
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.deptRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("find department: %w", err)
	}
	return s.deptRepo.Delete(ctx, id)
}
