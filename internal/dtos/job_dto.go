package dtos

import "github.com/justsurfingit/jobtracker/internal/models"

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	Title   string `json:"title" binding:"required,notblank"`
	Company string `json:"company" binding:"required,notblank"`

	// Optional Fields
	Status     models.Status `json:"status" binding:"omitempty,jobstatus"` // Defaults to Wishlist if empty
	Portal     string        `json:"portal" binding:"omitempty,portal"`
	StatusLink string        `json:"status_link" binding:"omitempty,url"`
	AppliedOn  *string       `json:"applied_on" binding:"omitempty,calendardate"` // nil means today, "" means unset
	Deadline   string        `json:"deadline" binding:"omitempty,calendardate"`
	Notes      string        `json:"notes"`
}

// JobUpdateRequest is a partial edit. Absent fields are left as they are.
type JobUpdateRequest struct {
	Title      *string        `json:"title" binding:"omitempty,notblank"`
	Company    *string        `json:"company" binding:"omitempty,notblank"`
	Status     *models.Status `json:"status" binding:"omitempty,jobstatus"`
	Portal     *string        `json:"portal" binding:"omitempty,portal"`
	StatusLink *string        `json:"status_link" binding:"omitempty,url|len=0"`
	AppliedOn  *string        `json:"applied_on" binding:"omitempty,calendardate"`
	Deadline   *string        `json:"deadline" binding:"omitempty,calendardate"`
	Notes      *string        `json:"notes"`
}

func (r *JobUpdateRequest) Patch() models.JobPatch {
	return models.JobPatch{
		Title:      r.Title,
		Company:    r.Company,
		Status:     r.Status,
		Portal:     r.Portal,
		StatusLink: r.StatusLink,
		AppliedOn:  r.AppliedOn,
		Deadline:   r.Deadline,
		Notes:      r.Notes,
	}
}

type JobListQuery struct {
	Status models.Status `form:"status" binding:"omitempty,jobstatus"`
	Portal string        `form:"portal" binding:"omitempty,portal"`
	Query  string        `form:"q"`
}

type StatsQuery struct {
	View string `form:"view" binding:"omitempty,oneof=month week day"`
}
