package dtos

import "github.com/justsurfingit/hiring-board/internal/models"

type ApplicationCreationRequest struct {
	CandidateName  string `json:"candidate_name" binding:"required"`
	CandidateEmail string `json:"candidate_email" binding:"required,email"`
	ResumeLink     string `json:"resume_link"`
	CoverLetter    string `json:"cover_letter"`
}

// KanbanUpdate moves one application to NewStatus at position NewOrder.
type KanbanUpdate struct {
	ApplicationID uint          `json:"applicationId"`
	NewStatus     models.Status `json:"newStatus"`
	NewOrder      int           `json:"newOrder"`
}

type KanbanBatchRequest struct {
	Updates []KanbanUpdate `json:"updates" binding:"required"`
}

type KanbanBatchResponse struct {
	Updated int `json:"updated"`
	Changed int `json:"status_changed"`
}

type ScoreResponse struct {
	ApplicationID uint   `json:"application_id"`
	MatchingScore int    `json:"matching_score"`
	Reason        string `json:"reason"`
}
