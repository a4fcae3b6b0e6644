package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issue statuses. The column is free-form text at the store level; the
// handlers guarantee one of these four values is written.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// ValidStatus reports whether s is one of the four issue statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Issue is a recorded data-quality defect against a named dataset.
// CreatedBy and CreatedAt are set server-side on create and never
// accept client values on update. Deletes are hard deletes.
type Issue struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	DatasetName       string     `json:"dataset_name" gorm:"type:varchar(255);not null;index"`
	Description       string     `json:"description" gorm:"type:text;not null"`
	Owner             string     `json:"owner" gorm:"type:varchar(255);not null"`
	IssueType         string     `json:"issue_type" gorm:"type:varchar(100);not null"`
	CategoryID        *uuid.UUID `json:"category_id" gorm:"type:uuid"`
	SeverityID        *uuid.UUID `json:"severity_id" gorm:"type:uuid"`
	AccuracyScore     *int       `json:"accuracy_score"`
	CompletenessScore *int       `json:"completeness_score"`
	TimelinessScore   *int       `json:"timeliness_score"`
	Status            string     `json:"status" gorm:"type:varchar(20);not null;default:open;index"`
	CreatedBy         uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Category *Category `json:"category" gorm:"foreignKey:CategoryID"`
	Severity *Severity `json:"severity" gorm:"foreignKey:SeverityID"`
}

func (Issue) TableName() string {
	return "data_issues"
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
