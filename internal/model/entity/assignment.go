package entity

import (
	"time"

	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
)

// 作业类别
const (
	CategoryAssignment = "Assignment"
	CategoryThesis     = "Thesis"
	CategoryReport     = "Report"
)

// ValidCategory 类别是否合法
func ValidCategory(c string) bool {
	switch c {
	case CategoryAssignment, CategoryThesis, CategoryReport:
		return true
	}
	return false
}

// Assignment 作业实体
type Assignment struct {
	ID               string          `json:"id" gorm:"primaryKey;size:32"`
	StudentID        string          `json:"student_id" gorm:"size:32;not null;index"`
	Title            string          `json:"title" gorm:"size:256;not null"`
	Description      string          `json:"description" gorm:"type:text"`
	Category         string          `json:"category" gorm:"size:32;not null"`
	FilePath         string          `json:"file_path" gorm:"size:512"`
	FileOriginalName string          `json:"file_original_name" gorm:"size:256"`
	FileSize         int64           `json:"file_size"`
	Status           workflow.Status `json:"status" gorm:"size:16;not null;default:draft"`
	ReviewerID       string          `json:"reviewer_id" gorm:"size:32;index"`
	CurrentReviewer  string          `json:"current_reviewer" gorm:"size:32;index"`
	DepartmentID     string          `json:"department_id" gorm:"size:32;index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// 关联
	Student    *User               `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Reviewer   *User               `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Department *Department         `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	History    []AssignmentHistory `json:"history,omitempty" gorm:"foreignKey:AssignmentID"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// AssignmentHistory 作业工作流历史记录，只追加不修改。
// OldFilePath 当且仅当 Action == resubmitted 时非空。
type AssignmentHistory struct {
	ID           string          `json:"id" gorm:"primaryKey;size:32"`
	AssignmentID string          `json:"assignment_id" gorm:"size:32;not null;index"`
	Seq          int             `json:"seq" gorm:"not null"`
	ReviewerID   *string         `json:"reviewer_id" gorm:"size:32"`
	Action       workflow.Action `json:"action" gorm:"size:16;not null"`
	Remark       string          `json:"remark" gorm:"type:text"`
	Signature    string          `json:"signature" gorm:"size:256"`
	OldFilePath  string          `json:"old_file_path" gorm:"size:512"`
	Date         time.Time       `json:"date"`

	// 关联
	Reviewer *User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}

func (AssignmentHistory) TableName() string {
	return "assignment_history"
}
