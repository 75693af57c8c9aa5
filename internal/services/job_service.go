package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/models"
	"gorm.io/gorm"
)

type JobService struct {
	DB *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB: db,
	}
}

// CreateJob stores a posting, creating its company on first use.
func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is empty", ErrInvalidJob)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: role title is empty", ErrInvalidJob)
	}

	var job *models.Job
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if err := tx.Where(models.Company{Name: name}).FirstOrCreate(&company).Error; err != nil {
			return fmt.Errorf("company %q: %w", name, err)
		}
		job = &models.Job{
			CompanyID:   company.ID,
			Company:     company,
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Location:    req.Location,
			JobLink:     req.JobLink,
		}
		return tx.Omit("Company").Create(job).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).Preload("Company").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %d: %w", id, ErrJobNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}
