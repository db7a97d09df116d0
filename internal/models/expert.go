package models

import (
	"time"

	"gorm.io/gorm"
)

// Expert is a health expert listed on the tanya-ahli page. Managed by the
// admin panel only.
type Expert struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null;size:200"`
	Specialty string `json:"specialty" gorm:"not null;size:200"`

	Email       *string `json:"email" gorm:"size:255"`
	PhoneNumber *string `json:"phone_number" gorm:"size:32"`
	Bio         *string `json:"bio" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Expert) TableName() string {
	return "experts"
}
