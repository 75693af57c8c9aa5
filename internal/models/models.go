package models

import (
	"time"

	"gorm.io/gorm"
)

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// 'omitempty' prevents Job -> Company -> Jobs -> ... loops
	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint    `json:"company_id"`
	Company   Company `json:"company"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `json:"location"`
	JobLink     string `json:"job_link"`

	Applications []Application `json:"applications,omitempty"`
}

// Application is one candidate's application to one job. KanbanOrder is the
// position inside the (job, status) column.
type Application struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	JobID uint `gorm:"not null;index:idx_app_board,priority:1" json:"job_id"`

	Status      Status `gorm:"type:varchar(16);not null;default:'SUBMITTED';index:idx_app_board,priority:2" json:"status"`
	KanbanOrder int    `gorm:"not null;default:0;index:idx_app_board,priority:3" json:"kanban_order"`

	// display only
	MatchingScore *int `json:"matching_score"`

	CandidateName  string `gorm:"not null" json:"candidate_name"`
	CandidateEmail string `gorm:"index" json:"candidate_email"`
	ResumeLink     string `json:"resume_link"`
	CoverLetter    string `gorm:"type:text" json:"cover_letter"`
}

type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ApplicationID uint      `gorm:"index" json:"application_id"`
	EventType     string    `json:"event_type"`
	Details       string    `gorm:"type:text" json:"details"`
}

const (
	EventStatusChanged = "STATUS_CHANGED"
	EventScored        = "SCORED"
)
