package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/services"
	"github.com/justsurfingit/jobtracker/internal/stats"
	"github.com/justsurfingit/jobtracker/internal/store"
)

const duplicateMessage = "You have already applied for the same role at this company."

type JobHandler struct {
	LLMService *services.LLMService
	JobService *services.JobService
}

func NewJobHandler(llm *services.LLMService, j *services.JobService) *JobHandler {
	return &JobHandler{LLMService: llm, JobService: j}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ParseJob is the POST /jobs/extract endpoint. It returns a draft for the
// new-job form and stores nothing.
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	draft, err := h.LLMService.ExtractJobDraft(c.Request.Context(), req.RawHTML, req.URL)
	if errors.Is(err, services.ErrExtractionDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Extraction failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": draft})
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), auth.OwnerFrom(c), &req)
	if err != nil {
		respondError(c, "Failed to save job", err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	var q dtos.JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	jobs, err := h.JobService.ListJobs(c.Request.Context(), auth.OwnerFrom(c), q)
	if err != nil {
		respondError(c, "Failed to load jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.JobService.GetJob(c.Request.Context(), auth.OwnerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to load job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req dtos.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), auth.OwnerFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, "Failed to update job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.JobService.DeleteJob(c.Request.Context(), auth.OwnerFrom(c), c.Param("id")); err != nil {
		respondError(c, "Failed to delete job", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats is GET /jobs/stats?view=month|week|day.
func (h *JobHandler) Stats(c *gin.Context) {
	var q dtos.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	view, err := stats.ParseTimeView(q.View)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.JobService.Stats(c.Request.Context(), auth.OwnerFrom(c), view)
	if err != nil {
		respondError(c, "Failed to load statistics", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// respondError maps service and store errors to a status code. Unknown
// errors are storage failures.
func respondError(c *gin.Context, action string, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": duplicateMessage})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNoOwner), errors.Is(err, store.ErrUnknownSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidJob):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and company are required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + ": " + err.Error()})
	}
}
