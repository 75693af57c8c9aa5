package dtos

import (
	"time"

	"github.com/justsurfingit/hiring-board/internal/models"
)

// Push event names sent on the notification stream.
const (
	EventApplicationCreated = "application.created"
	EventStatusChanged      = "application.status_changed"
	EventApplicationScored  = "application.scored"
)

type Notification struct {
	Seq       int64     `json:"seq"`
	JobID     uint      `json:"job_id"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type StatusChangedPayload struct {
	JobID         uint          `json:"job_id"`
	ApplicationID uint          `json:"application_id"`
	From          models.Status `json:"from"`
	To            models.Status `json:"to"`
}

type ApplicationCreatedPayload struct {
	JobID         uint   `json:"job_id"`
	ApplicationID uint   `json:"application_id"`
	CandidateName string `json:"candidate_name"`
}

type ApplicationScoredPayload struct {
	JobID         uint `json:"job_id"`
	ApplicationID uint `json:"application_id"`
	MatchingScore int  `json:"matching_score"`
}
