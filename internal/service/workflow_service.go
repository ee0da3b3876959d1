package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
)

// WorkflowService 作业评审工作流服务。
// 每个操作都是一次有条件的读-改-写：读取当前状态、校验守卫、
// 计算目标状态、追加一条历史记录并落库。
type WorkflowService struct {
	assignmentRepo *repository.AssignmentRepository
	userRepo       *repository.UserRepository
}

// NewWorkflowService 创建工作流服务
func NewWorkflowService(assignmentRepo *repository.AssignmentRepository, userRepo *repository.UserRepository) *WorkflowService {
	return &WorkflowService{
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
	}
}

// FileRef 已存入对象存储的文件引用
type FileRef struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

// Submit 学生提交作业评审：draft -> submitted。
// 要求作业有文件引用且指定了具备评审能力的评审人。
func (s *WorkflowService) Submit(ctx context.Context, id, actorID string, file *FileRef, reviewerID string) (*entity.Assignment, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.StudentID != actorID {
		return nil, fmt.Errorf("%w: only the owner can submit", workflow.ErrForbidden)
	}

	next, err := workflow.Next(a.Status, workflow.OpSubmit)
	if err != nil {
		return nil, err
	}

	if reviewerID == "" {
		return nil, fmt.Errorf("%w: reviewer is required", workflow.ErrValidation)
	}
	reviewer, err := s.userRepo.FindByID(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: reviewer not found", workflow.ErrValidation)
		}
		return nil, fmt.Errorf("%w: find reviewer: %v", workflow.ErrStorageUnavailable, err)
	}
	if !reviewer.Role.CanReview() {
		return nil, fmt.Errorf("%w: user %s cannot review assignments", workflow.ErrValidation, reviewerID)
	}

	// 文件可随提交一并替换；提交后作业必须持有文件引用
	if file == nil && a.FilePath == "" {
		return nil, fmt.Errorf("%w: file is required for submission", workflow.ErrValidation)
	}

	upd := &repository.TransitionUpdate{
		FromStatus:         a.Status,
		ToStatus:           next,
		SetReviewerID:      reviewerID,
		SetCurrentReviewer: reviewerID,
		History: entity.AssignmentHistory{
			Action: workflow.OpSubmit.ActionOf(),
		},
	}
	if file != nil {
		upd.File = &repository.FileUpdate{
			Path:         file.Path,
			OriginalName: file.OriginalName,
			Size:         file.Size,
		}
	}

	return s.apply(ctx, id, upd)
}

// Approve 评审通过：submitted|forwarded -> approved。仅当前评审人可操作。
func (s *WorkflowService) Approve(ctx context.Context, id, actorID, remark, signature string) (*entity.Assignment, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Next(a.Status, workflow.OpApprove)
	if err != nil {
		return nil, err
	}

	if a.CurrentReviewer != actorID {
		return nil, fmt.Errorf("%w: only the current reviewer can approve", workflow.ErrForbidden)
	}

	actor := actorID
	return s.apply(ctx, id, &repository.TransitionUpdate{
		FromStatus:   a.Status,
		FromReviewer: a.CurrentReviewer,
		ToStatus:     next,
		History: entity.AssignmentHistory{
			ReviewerID: &actor,
			Action:     workflow.OpApprove.ActionOf(),
			Remark:     remark,
			Signature:  signature,
		},
	})
}

// Reject 评审驳回：submitted|forwarded -> rejected。必须填写驳回意见。
func (s *WorkflowService) Reject(ctx context.Context, id, actorID, remark, signature string) (*entity.Assignment, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Next(a.Status, workflow.OpReject)
	if err != nil {
		return nil, err
	}

	if a.CurrentReviewer != actorID {
		return nil, fmt.Errorf("%w: only the current reviewer can reject", workflow.ErrForbidden)
	}

	if remark == "" {
		return nil, fmt.Errorf("%w: remark is required for rejection", workflow.ErrValidation)
	}

	actor := actorID
	return s.apply(ctx, id, &repository.TransitionUpdate{
		FromStatus:   a.Status,
		FromReviewer: a.CurrentReviewer,
		ToStatus:     next,
		History: entity.AssignmentHistory{
			ReviewerID: &actor,
			Action:     workflow.OpReject.ActionOf(),
			Remark:     remark,
			Signature:  signature,
		},
	})
}

// Forward 转交评审：submitted|forwarded -> forwarded。
// 只改变当前评审人，初始评审人保持不变。
func (s *WorkflowService) Forward(ctx context.Context, id, actorID, newReviewerID, remark string) (*entity.Assignment, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Next(a.Status, workflow.OpForward)
	if err != nil {
		return nil, err
	}

	if a.CurrentReviewer != actorID {
		return nil, fmt.Errorf("%w: only the current reviewer can forward", workflow.ErrForbidden)
	}

	if newReviewerID == "" {
		return nil, fmt.Errorf("%w: target reviewer is required", workflow.ErrValidation)
	}
	target, err := s.userRepo.FindByID(ctx, newReviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: target reviewer not found", workflow.ErrValidation)
		}
		return nil, fmt.Errorf("%w: find target reviewer: %v", workflow.ErrStorageUnavailable, err)
	}
	if !target.Role.CanReview() {
		return nil, fmt.Errorf("%w: user %s cannot review assignments", workflow.ErrValidation, newReviewerID)
	}

	actor := actorID
	return s.apply(ctx, id, &repository.TransitionUpdate{
		FromStatus:         a.Status,
		FromReviewer:       a.CurrentReviewer,
		ToStatus:           next,
		SetCurrentReviewer: newReviewerID,
		History: entity.AssignmentHistory{
			ReviewerID: &actor,
			Action:     workflow.OpForward.ActionOf(),
			Remark:     remark,
		},
	})
}

// Resubmit 学生重新提交：rejected -> submitted。
// 必须提供新文件引用；被替换的旧文件路径保留在历史记录中，不删除旧文件。
func (s *WorkflowService) Resubmit(ctx context.Context, id, actorID string, file *FileRef) (*entity.Assignment, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.StudentID != actorID {
		return nil, fmt.Errorf("%w: only the owner can resubmit", workflow.ErrForbidden)
	}

	next, err := workflow.Next(a.Status, workflow.OpResubmit)
	if err != nil {
		return nil, err
	}

	if file == nil || file.Path == "" {
		return nil, fmt.Errorf("%w: new file is required for resubmission", workflow.ErrValidation)
	}

	return s.apply(ctx, id, &repository.TransitionUpdate{
		FromStatus: a.Status,
		ToStatus:   next,
		File: &repository.FileUpdate{
			Path:         file.Path,
			OriginalName: file.OriginalName,
			Size:         file.Size,
		},
		History: entity.AssignmentHistory{
			Action:      workflow.OpResubmit.ActionOf(),
			OldFilePath: a.FilePath,
		},
	})
}

// find 读取作业，把存储错误归入工作流错误分类
func (s *WorkflowService) find(ctx context.Context, id string) (*entity.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: find assignment: %v", workflow.ErrStorageUnavailable, err)
	}
	return a, nil
}

// apply 执行迁移并返回更新后的完整作业记录。
// 条件更新未命中说明状态或当前评审人已被并发请求改变，按非法迁移处理。
func (s *WorkflowService) apply(ctx context.Context, id string, upd *repository.TransitionUpdate) (*entity.Assignment, error) {
	if err := s.assignmentRepo.Transition(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: assignment changed since it was read in status %q", workflow.ErrInvalidTransition, upd.FromStatus)
		}
		return nil, fmt.Errorf("%w: apply transition: %v", workflow.ErrStorageUnavailable, err)
	}
	return s.find(ctx, id)
}
