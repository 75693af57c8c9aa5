package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/models"
	"gorm.io/gorm"
)

// MatchingService rates how well an application fits its job. The score is
// display only; it never moves a card.
type MatchingService struct {
	DB  *gorm.DB
	LLM Completer
	Hub *NotificationHub
	Log *slog.Logger
}

func NewMatchingService(db *gorm.DB, llm Completer, hub *NotificationHub, log *slog.Logger) *MatchingService {
	return &MatchingService{DB: db, LLM: llm, Hub: hub, Log: log}
}

const matchingPrompt = `
You are a recruiting assistant. Rate how well the candidate fits the job on a scale of 0 to 100.

### JOB
Title: %s
Location: %s
Description:
%s

### CANDIDATE
Name: %s
Resume: %s
Cover letter:
%s

### OUTPUT
Return JSON only, no markdown: {"score": <integer 0-100>, "reason": "<one sentence>"}
`

type matchResult struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// ParseMatchResult reads the model answer and clamps the score to 0..100.
func ParseMatchResult(raw string) (int, string, error) {
	var r matchResult
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &r); err != nil {
		return 0, "", fmt.Errorf("parse match result: %w", err)
	}
	switch {
	case r.Score < 0:
		r.Score = 0
	case r.Score > 100:
		r.Score = 100
	}
	return r.Score, r.Reason, nil
}

// Score computes and stores the matching score of one application.
func (s *MatchingService) Score(ctx context.Context, applicationID uint) (*dtos.ScoreResponse, error) {
	if s.LLM == nil {
		return nil, ErrLLMUnavailable
	}

	var app models.Application
	if err := s.DB.WithContext(ctx).First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application %d: %w", applicationID, ErrApplicationNotFound)
		}
		return nil, err
	}
	var job models.Job
	if err := s.DB.WithContext(ctx).First(&job, app.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %d: %w", app.JobID, ErrJobNotFound)
		}
		return nil, err
	}

	prompt := fmt.Sprintf(matchingPrompt,
		job.Title, job.Location, job.Description,
		app.CandidateName, app.ResumeLink, app.CoverLetter)
	raw, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("score application %d: %w", applicationID, err)
	}
	score, reason, err := ParseMatchResult(raw)
	if err != nil {
		s.Log.Warn("unparseable match result", "application_id", applicationID, "raw", raw)
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&app).Update("matching_score", score).Error; err != nil {
			return err
		}
		return tx.Create(&models.ApplicationEvent{
			ApplicationID: app.ID,
			EventType:     models.EventScored,
			Details:       fmt.Sprintf("Matching score %d. %s", score, reason),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Hub != nil {
		s.Hub.Publish(app.JobID, dtos.EventApplicationScored, dtos.ApplicationScoredPayload{
			JobID:         app.JobID,
			ApplicationID: app.ID,
			MatchingScore: score,
		})
	}
	s.Log.Info("application scored", "application_id", app.ID, "score", score)
	return &dtos.ScoreResponse{ApplicationID: app.ID, MatchingScore: score, Reason: reason}, nil
}
