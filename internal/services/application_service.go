package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/metrics"
	"github.com/justsurfingit/hiring-board/internal/models"
	"gorm.io/gorm"
)

// ApplicationService owns the application records behind the board.
type ApplicationService struct {
	DB      *gorm.DB
	Hub     *NotificationHub
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

func NewApplicationService(db *gorm.DB, hub *NotificationHub, m *metrics.Metrics, log *slog.Logger) *ApplicationService {
	return &ApplicationService{
		DB:      db,
		Hub:     hub,
		Metrics: m,
		Log:     log,
	}
}

// ListForJob returns the job's applications ordered by kanban order. With
// statuses given only those columns are returned.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID uint, statuses ...models.Status) ([]models.Application, error) {
	db := s.DB.WithContext(ctx)
	if err := jobExists(db, jobID); err != nil {
		return nil, err
	}

	q := db.Where("job_id = ?", jobID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var apps []models.Application
	err := q.Order("kanban_order ASC").
		Order("id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("list applications for job %d: %w", jobID, err)
	}
	s.Metrics.ObserveBoardFetch()
	return apps, nil
}

func (s *ApplicationService) Get(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := s.DB.WithContext(ctx).First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("application %d: %w", id, ErrApplicationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Create files a new application at the end of the job's SUBMITTED column.
func (s *ApplicationService) Create(ctx context.Context, jobID uint, req *dtos.ApplicationCreationRequest) (*models.Application, error) {
	app := &models.Application{
		JobID:          jobID,
		Status:         models.StatusSubmitted,
		CandidateName:  strings.TrimSpace(req.CandidateName),
		CandidateEmail: strings.ToLower(strings.TrimSpace(req.CandidateEmail)),
		ResumeLink:     req.ResumeLink,
		CoverLetter:    req.CoverLetter,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := jobExists(tx, jobID); err != nil {
			return err
		}
		// the column may have gaps, so append after the highest order
		var next int
		err := tx.Model(&models.Application{}).
			Where("job_id = ? AND status = ?", jobID, models.StatusSubmitted).
			Select("COALESCE(MAX(kanban_order), -1) + 1").
			Scan(&next).Error
		if err != nil {
			return err
		}
		app.KanbanOrder = next
		return tx.Create(app).Error
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.ObserveApplicationCreated()
	s.publish(jobID, dtos.EventApplicationCreated, dtos.ApplicationCreatedPayload{
		JobID:         jobID,
		ApplicationID: app.ID,
		CandidateName: app.CandidateName,
	})
	s.Log.Info("application created", "job_id", jobID, "application_id", app.ID)
	return app, nil
}

// ValidateBatch checks a kanban batch before anything touches the store.
func ValidateBatch(updates []dtos.KanbanUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no updates", ErrInvalidBatch)
	}
	seen := make(map[uint]struct{}, len(updates))
	for _, u := range updates {
		if u.ApplicationID == 0 {
			return fmt.Errorf("%w: missing applicationId", ErrInvalidBatch)
		}
		if _, dup := seen[u.ApplicationID]; dup {
			return fmt.Errorf("%w: application %d listed twice", ErrInvalidBatch, u.ApplicationID)
		}
		seen[u.ApplicationID] = struct{}{}
		if !u.NewStatus.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrInvalidBatch, u.NewStatus)
		}
		if u.NewOrder < 0 {
			return fmt.Errorf("%w: negative order for application %d", ErrInvalidBatch, u.ApplicationID)
		}
	}
	return nil
}

// ApplyKanbanBatch writes every update in one transaction. Either all rows
// change or none do; ids outside the job fail the whole batch.
func (s *ApplicationService) ApplyKanbanBatch(ctx context.Context, jobID uint, updates []dtos.KanbanUpdate) (dtos.KanbanBatchResponse, error) {
	if err := ValidateBatch(updates); err != nil {
		s.Metrics.ObserveBatch(len(updates), err)
		return dtos.KanbanBatchResponse{}, err
	}

	var changes []dtos.StatusChangedPayload
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := jobExists(tx, jobID); err != nil {
			return err
		}

		ids := make([]uint, 0, len(updates))
		for _, u := range updates {
			ids = append(ids, u.ApplicationID)
		}
		var current []models.Application
		if err := tx.Where("job_id = ? AND id IN ?", jobID, ids).Find(&current).Error; err != nil {
			return err
		}
		if len(current) != len(ids) {
			return fmt.Errorf("%d of %d applications not in job %d: %w", len(ids)-len(current), len(ids), jobID, ErrApplicationNotFound)
		}
		prev := make(map[uint]models.Status, len(current))
		for _, a := range current {
			prev[a.ID] = a.Status
		}

		for _, u := range updates {
			res := tx.Model(&models.Application{}).
				Where("id = ?", u.ApplicationID).
				Updates(map[string]any{
					"status":       string(u.NewStatus),
					"kanban_order": u.NewOrder,
				})
			if res.Error != nil {
				return fmt.Errorf("update application %d: %w", u.ApplicationID, res.Error)
			}

			from := prev[u.ApplicationID]
			if from == u.NewStatus {
				continue
			}
			event := models.ApplicationEvent{
				ApplicationID: u.ApplicationID,
				EventType:     models.EventStatusChanged,
				Details:       fmt.Sprintf("Status changed from %s to %s", from, u.NewStatus),
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			changes = append(changes, dtos.StatusChangedPayload{
				JobID:         jobID,
				ApplicationID: u.ApplicationID,
				From:          from,
				To:            u.NewStatus,
			})
		}
		return nil
	})
	s.Metrics.ObserveBatch(len(updates), err)
	if err != nil {
		s.Log.Warn("kanban batch rejected", "job_id", jobID, "size", len(updates), "error", err)
		return dtos.KanbanBatchResponse{}, err
	}

	for _, c := range changes {
		s.Metrics.ObserveStatusChange(string(c.To))
		s.publish(jobID, dtos.EventStatusChanged, c)
	}
	s.Log.Info("kanban batch applied", "job_id", jobID, "size", len(updates), "status_changed", len(changes))
	return dtos.KanbanBatchResponse{Updated: len(updates), Changed: len(changes)}, nil
}

// Events returns the audit trail of an application, oldest first.
func (s *ApplicationService) Events(ctx context.Context, applicationID uint) ([]models.ApplicationEvent, error) {
	events := []models.ApplicationEvent{}
	err := s.DB.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

func (s *ApplicationService) publish(jobID uint, event string, payload any) {
	if s.Hub == nil {
		return
	}
	s.Hub.Publish(jobID, event, payload)
}

func jobExists(db *gorm.DB, jobID uint) error {
	var count int64
	if err := db.Model(&models.Job{}).Where("id = ?", jobID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("job %d: %w", jobID, ErrJobNotFound)
	}
	return nil
}
