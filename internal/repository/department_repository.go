package repository

import (
	"context"
	"errors"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"gorm.io/gorm"
)

// DepartmentRepository 院系仓库
type DepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建院系仓库
func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// FindByID 根据ID查找院系
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*entity.Department, error) {
	var dept entity.Department
	err := r.db.WithContext(ctx).
		Preload("HOD").
		Where("id = ?", id).
		First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

// FindByName 根据名称查找院系
func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*entity.Department, error) {
	var dept entity.Department
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

// Create 创建院系
func (r *DepartmentRepository) Create(ctx context.Context, dept *entity.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

// Update 更新院系
func (r *DepartmentRepository) Update(ctx context.Context, dept *entity.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

// Delete 删除院系
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Department{}, "id = ?", id).Error
}

// List 获取院系列表
func (r *DepartmentRepository) List(ctx context.Context) ([]entity.Department, error) {
	var depts []entity.Department
	err := r.db.WithContext(ctx).
		Preload("HOD").
		Order("name ASC").
		Find(&depts).Error
	if err != nil {
		return nil, err
	}
	return depts, nil
}

// Count 统计院系数量
func (r *DepartmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Department{}).
		Count(&count).Error
	return count, err
}
