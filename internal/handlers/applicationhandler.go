package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/models"
	"github.com/justsurfingit/hiring-board/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
	Matching     *services.MatchingService
}

func NewApplicationHandler(a *services.ApplicationService, m *services.MatchingService) *ApplicationHandler {
	return &ApplicationHandler{Applications: a, Matching: m}
}

// List is GET /jobs/:jobId/applications[?status=OFFER]
func (h *ApplicationHandler) List(c *gin.Context) {
	jobID, ok := parseID(c, "jobId")
	if !ok {
		return
	}
	var statuses []models.Status
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		statuses = append(statuses, st)
	}
	apps, err := h.Applications.ListForJob(c.Request.Context(), jobID, statuses...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Create is POST /jobs/:jobId/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	jobID, ok := parseID(c, "jobId")
	if !ok {
		return
	}
	var req dtos.ApplicationCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	app, err := h.Applications.Create(c.Request.Context(), jobID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// UpdateKanban is PUT /jobs/:jobId/applications/kanban
func (h *ApplicationHandler) UpdateKanban(c *gin.Context) {
	jobID, ok := parseID(c, "jobId")
	if !ok {
		return
	}
	var req dtos.KanbanBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	res, err := h.Applications.ApplyKanbanBatch(c.Request.Context(), jobID, req.Updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Score is POST /applications/:applicationId/score
func (h *ApplicationHandler) Score(c *gin.Context) {
	id, ok := parseID(c, "applicationId")
	if !ok {
		return
	}
	res, err := h.Matching.Score(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Events is GET /applications/:applicationId/events
func (h *ApplicationHandler) Events(c *gin.Context) {
	id, ok := parseID(c, "applicationId")
	if !ok {
		return
	}
	if _, err := h.Applications.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	events, err := h.Applications.Events(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
