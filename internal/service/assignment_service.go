package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
)

// AssignmentService 作业服务：草稿CRUD、文件存取与台账导出。
// 状态迁移见 WorkflowService。
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	deptRepo       *repository.DepartmentRepository
	minioClient    *minio.Client
	bucketName     string
}

// NewAssignmentService 创建作业服务
func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	deptRepo *repository.DepartmentRepository,
	minioClient *minio.Client,
	bucketName string,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		deptRepo:       deptRepo,
		minioClient:    minioClient,
		bucketName:     bucketName,
	}
}

// CreateAssignmentRequest 创建作业请求
type CreateAssignmentRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category" binding:"required"`
	DepartmentID string `json:"department_id"`
}

// UpdateAssignmentRequest 更新作业请求
type UpdateAssignmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// AssignmentListResult 作业列表结果
type AssignmentListResult struct {
	Items      []entity.Assignment `json:"items"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

// Create 创建草稿作业
func (s *AssignmentService) Create(ctx context.Context, studentID string, req *CreateAssignmentRequest) (*entity.Assignment, error) {
	if !entity.ValidCategory(req.Category) {
		return nil, fmt.Errorf("%w: invalid category %q", workflow.ErrValidation, req.Category)
	}

	if req.DepartmentID != "" {
		if _, err := s.deptRepo.FindByID(ctx, req.DepartmentID); err != nil {
			return nil, fmt.Errorf("%w: department not found", workflow.ErrValidation)
		}
	}

	now := time.Now()
	a := &entity.Assignment{
		ID:           uuid.New().String()[:32],
		StudentID:    studentID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Status:       workflow.StatusDraft,
		DepartmentID: req.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	return a, nil
}

// Get 获取作业详情（含历史）
func (s *AssignmentService) Get(ctx context.Context, id string) (*entity.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return a, nil
}

// CanView 访问方是否可见该作业：所有者、初始/当前评审人或管理员
func (s *AssignmentService) CanView(a *entity.Assignment, userID string, role entity.Role) bool {
	if role == entity.RoleAdmin {
		return true
	}
	return a.StudentID == userID || a.ReviewerID == userID || a.CurrentReviewer == userID
}

// Update 更新作业基本信息，仅所有者在 draft 或 rejected 状态下可修改
func (s *AssignmentService) Update(ctx context.Context, id, actorID string, req *UpdateAssignmentRequest) (*entity.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}

	if a.StudentID != actorID {
		return nil, fmt.Errorf("%w: only the owner can update", workflow.ErrForbidden)
	}
	if a.Status != workflow.StatusDraft && a.Status != workflow.StatusRejected {
		return nil, fmt.Errorf("%w: assignment can only be updated in draft or rejected status", workflow.ErrInvalidTransition)
	}

	if req.Title != "" {
		a.Title = req.Title
	}
	if req.Description != "" {
		a.Description = req.Description
	}
	if req.Category != "" {
		if !entity.ValidCategory(req.Category) {
			return nil, fmt.Errorf("%w: invalid category %q", workflow.ErrValidation, req.Category)
		}
		a.Category = req.Category
	}

	a.UpdatedAt = time.Now()

	if err := s.assignmentRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	return a, nil
}

// List 获取作业列表。角色决定可见范围：学生只看自己的，
// 评审角色看指派给自己的，管理员不受限。
func (s *AssignmentService) List(ctx context.Context, userID string, role entity.Role, page, pageSize int, filters map[string]interface{}) (*AssignmentListResult, error) {
	switch role {
	case entity.RoleStudent:
		filters["student_id"] = userID
	case entity.RoleProfessor, entity.RoleHOD:
		filters["reviewer_id"] = userID
	}

	assignments, total, err := s.assignmentRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &AssignmentListResult{
		Items:      assignments,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Delete 删除作业（仅管理员，管理操作不产生历史记录）
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.assignmentRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("find assignment: %w", err)
	}
	return s.assignmentRepo.Delete(ctx, id)
}

// History 获取作业历史记录
func (s *AssignmentService) History(ctx context.Context, id string) ([]entity.AssignmentHistory, error) {
	if _, err := s.assignmentRepo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return s.assignmentRepo.ListHistory(ctx, id)
}

// UploadFile 上传文件到对象存储，返回文件引用。
// 旧文件不删除，历史记录中的路径始终可解引用。
func (s *AssignmentService) UploadFile(ctx context.Context, reader io.Reader, fileName string, fileSize int64, contentType string) (*FileRef, error) {
	if s.minioClient == nil {
		return nil, errors.New("storage not configured")
	}

	objectName := fmt.Sprintf("assignments/%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	return &FileRef{
		Path:         objectName,
		OriginalName: fileName,
		Size:         fileSize,
	}, nil
}

// AttachFile 为草稿作业挂接文件引用
func (s *AssignmentService) AttachFile(ctx context.Context, id, actorID string, ref *FileRef) (*entity.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}

	if a.StudentID != actorID {
		return nil, fmt.Errorf("%w: only the owner can attach a file", workflow.ErrForbidden)
	}
	if a.Status != workflow.StatusDraft {
		return nil, fmt.Errorf("%w: file can only be attached in draft status", workflow.ErrInvalidTransition)
	}

	a.FilePath = ref.Path
	a.FileOriginalName = ref.OriginalName
	a.FileSize = ref.Size
	a.UpdatedAt = time.Now()

	if err := s.assignmentRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	return a, nil
}

// Download 下载作业当前文件
func (s *AssignmentService) Download(ctx context.Context, id string) (io.ReadCloser, *entity.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("find assignment: %w", err)
	}

	if a.FilePath == "" {
		return nil, a, fmt.Errorf("%w: assignment has no file", workflow.ErrValidation)
	}
	if s.minioClient == nil {
		return nil, a, errors.New("storage not configured")
	}

	object, err := s.minioClient.GetObject(ctx, s.bucketName, a.FilePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}

	return object, a, nil
}

// ExportRegister 导出作业台账（xlsx）
func (s *AssignmentService) ExportRegister(ctx context.Context, filters map[string]interface{}) (*excelize.File, error) {
	assignments, _, err := s.assignmentRepo.List(ctx, 1, 10000, filters)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Assignments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Category", "Student", "Status", "Reviewer", "Current Reviewer", "Department", "File", "Created At", "Updated At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, a := range assignments {
		studentName := a.StudentID
		if a.Student != nil {
			studentName = a.Student.Name
		}
		deptName := a.DepartmentID
		if a.Department != nil {
			deptName = a.Department.Name
		}

		values := []interface{}{
			a.ID, a.Title, a.Category, studentName, string(a.Status),
			a.ReviewerID, a.CurrentReviewer, deptName, a.FileOriginalName,
			a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}
