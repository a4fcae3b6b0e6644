package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity is a ranked lookup value; higher level means more severe.
// Color is a display hint for the frontend.
type Severity struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name  string    `json:"name" gorm:"type:varchar(100);not null"`
	Level int       `json:"level" gorm:"not null"`
	Color string    `json:"color" gorm:"type:varchar(20)"`
}

func (Severity) TableName() string {
	return "severity_levels"
}

func (s *Severity) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
