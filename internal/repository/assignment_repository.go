package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentRepository 作业仓库
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository 创建作业仓库
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID 根据ID查找作业（含历史记录，按序号排列）
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*entity.Assignment, error) {
	var a entity.Assignment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Reviewer").
		Preload("Department").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Preload("History.Reviewer").
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create 创建作业
func (r *AssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Update 更新作业
func (r *AssignmentRepository) Update(ctx context.Context, a *entity.Assignment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Delete 删除作业及其历史记录（管理操作，不属于工作流迁移）
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.AssignmentHistory{}, "assignment_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Assignment{}, "id = ?", id).Error
	})
}

// List 获取作业列表
func (r *AssignmentRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Assignment, int64, error) {
	var assignments []entity.Assignment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Assignment{})

	// 应用过滤条件
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("title ILIKE ?", "%"+keyword+"%")
	}
	if studentID, ok := filters["student_id"].(string); ok && studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if reviewerID, ok := filters["reviewer_id"].(string); ok && reviewerID != "" {
		query = query.Where("reviewer_id = ? OR current_reviewer = ?", reviewerID, reviewerID)
	}
	if departmentID, ok := filters["department_id"].(string); ok && departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if category, ok := filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := query.
		Preload("Student").
		Preload("Reviewer").
		Preload("Department").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&assignments).Error
	if err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

// ListHistory 获取作业历史记录
func (r *AssignmentRepository) ListHistory(ctx context.Context, assignmentID string) ([]entity.AssignmentHistory, error) {
	var history []entity.AssignmentHistory
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Preload("Reviewer").
		Order("seq ASC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// FileUpdate 迁移时替换的文件字段
type FileUpdate struct {
	Path         string
	OriginalName string
	Size         int64
}

// TransitionUpdate 一次工作流迁移要落库的变更
type TransitionUpdate struct {
	FromStatus         workflow.Status // 决策时读到的状态，条件更新的比较值
	FromReviewer       string          // 非空时附加当前评审人比较，forward 不改变 status，仅靠它失效过期决策
	ToStatus           workflow.Status
	SetReviewerID      string // 非空时设置初始评审人
	SetCurrentReviewer string // 非空时设置当前评审人
	File               *FileUpdate
	History            entity.AssignmentHistory
}

// Transition 原子化执行一次状态迁移：
// 状态更新以 FromStatus（及评审决策时的 FromReviewer）为条件（compare-and-swap），
// 未命中任何行返回 ErrStaleStatus；历史记录在同一事务内以下一个序号追加。
func (r *AssignmentRepository) Transition(ctx context.Context, id string, upd *TransitionUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		updates := map[string]interface{}{
			"status":     upd.ToStatus,
			"updated_at": now,
		}
		if upd.SetReviewerID != "" {
			updates["reviewer_id"] = upd.SetReviewerID
		}
		if upd.SetCurrentReviewer != "" {
			updates["current_reviewer"] = upd.SetCurrentReviewer
		}
		if upd.File != nil {
			updates["file_path"] = upd.File.Path
			updates["file_original_name"] = upd.File.OriginalName
			updates["file_size"] = upd.File.Size
		}

		query := tx.Model(&entity.Assignment{}).
			Where("id = ? AND status = ?", id, upd.FromStatus)
		if upd.FromReviewer != "" {
			query = query.Where("current_reviewer = ?", upd.FromReviewer)
		}

		res := query.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		// 下一个历史序号
		var maxSeq int
		if err := tx.Model(&entity.AssignmentHistory{}).
			Where("assignment_id = ?", id).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		h := upd.History
		h.ID = uuid.New().String()[:32]
		h.AssignmentID = id
		h.Seq = maxSeq + 1
		if h.Date.IsZero() {
			h.Date = now
		}

		return tx.Create(&h).Error
	})
}

// CountByStatus 按状态统计作业数量
func (r *AssignmentRepository) CountByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Assignment{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
