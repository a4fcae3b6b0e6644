package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a read-only classification lookup for issues.
type Category struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
