package models

import (
	"time"
)

type Status string

const (
	StatusWishlist  Status = "Wishlist"
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"

	// StatusUnknown is only used when counting records that carry no status.
	StatusUnknown Status = "Unknown"
)

// Statuses lists the pipeline in order.
var Statuses = []Status{StatusWishlist, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Submitted reports whether the job has left the wishlist.
func (s Status) Submitted() bool {
	return s == StatusApplied || s == StatusInterview || s == StatusOffer || s == StatusRejected
}

// Portals the job may have been found on. Empty means unset.
var Portals = []string{"Internshala", "Naukri", "LinkedIn", "Glassdoor", "Instahyre", "Indeed"}

func ValidPortal(p string) bool {
	if p == "" {
		return true
	}
	for _, v := range Portals {
		if p == v {
			return true
		}
	}
	return false
}

type Job struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Durable records only; guest records live in the session and never set it.
	OwnerID string `gorm:"not null;uniqueIndex:idx_jobs_owner_title_company" json:"-"`

	Title   string `gorm:"not null;uniqueIndex:idx_jobs_owner_title_company" json:"title"`
	Company string `gorm:"not null;uniqueIndex:idx_jobs_owner_title_company" json:"company"`
	Status  Status `gorm:"type:varchar(16);default:'Wishlist'" json:"status"`

	Portal     string `json:"portal,omitempty"`
	StatusLink string `json:"status_link,omitempty"`
	AppliedOn  string `gorm:"type:varchar(32)" json:"applied_on,omitempty"`
	Deadline   string `gorm:"type:varchar(32)" json:"deadline,omitempty"`
	Notes      string `gorm:"type:text" json:"notes,omitempty"`

	HadInterview bool `json:"had_interview"`
	HadOffer     bool `json:"had_offer"`
}

// JobPatch enumerates the fields an edit may change. Nil means untouched.
// Milestone flags are not patchable directly; they follow the status.
type JobPatch struct {
	Title      *string
	Company    *string
	Status     *Status
	Portal     *string
	StatusLink *string
	AppliedOn  *string
	Deadline   *string
	Notes      *string
}

// MarkMilestones raises HadInterview/HadOffer for the current status.
// It never clears a flag that is already set.
func (j *Job) MarkMilestones() {
	switch j.Status {
	case StatusInterview, StatusRejected:
		j.HadInterview = true
	case StatusOffer:
		j.HadInterview = true
		j.HadOffer = true
	}
}

// Apply copies the set fields of p onto j and refreshes the milestone flags.
func (j *Job) Apply(p JobPatch) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Company != nil {
		j.Company = *p.Company
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Portal != nil {
		j.Portal = *p.Portal
	}
	if p.StatusLink != nil {
		j.StatusLink = *p.StatusLink
	}
	if p.AppliedOn != nil {
		j.AppliedOn = *p.AppliedOn
	}
	if p.Deadline != nil {
		j.Deadline = *p.Deadline
	}
	if p.Notes != nil {
		j.Notes = *p.Notes
	}
	j.MarkMilestones()
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Company == nil && p.Status == nil && p.Portal == nil &&
		p.StatusLink == nil && p.AppliedOn == nil && p.Deadline == nil && p.Notes == nil
}
