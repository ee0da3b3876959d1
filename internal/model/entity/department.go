package entity

import (
	"time"
)

// Department 院系实体
type Department struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Code      string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:128;not null;uniqueIndex"`
	HODID     string    `json:"hod_id" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	HOD *User `json:"hod,omitempty" gorm:"foreignKey:HODID"`
}

func (Department) TableName() string {
	return "departments"
}
