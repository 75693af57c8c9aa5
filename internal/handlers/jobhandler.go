package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/services"
)

type JobHandler struct {
	LLM        services.Completer
	JobService *services.JobService
}

// NewJobHandler creates the handler; llm may be nil.
func NewJobHandler(llm services.Completer, j *services.JobService) *JobHandler {
	return &JobHandler{
		LLM:        llm,
		JobService: j,
	}
}

// ParseJob is POST /jobs/extract
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	extracted, err := services.ExtractJobDetails(c.Request.Context(), h.LLM, req.RawHTML)
	if err != nil {
		respondError(c, err)
		return
	}
	if !json.Valid([]byte(extracted)) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI extraction returned invalid JSON"})
		return
	}

	// RawMessage keeps the model's JSON from being re-escaped
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    json.RawMessage(extracted),
	})
}

// CreateJob is POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, fmt.Errorf("create job: %w", err))
		return
	}
	c.JSON(http.StatusCreated, job)
}

// GetJob is GET /jobs/:jobId
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := parseID(c, "jobId")
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
