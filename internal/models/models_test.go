package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestMarkMilestonesFromInitialStatus(t *testing.T) {
	cases := []struct {
		status        Status
		wantInterview bool
		wantOffer     bool
	}{
		{StatusWishlist, false, false},
		{StatusApplied, false, false},
		{StatusInterview, true, false},
		{StatusOffer, true, true},
		{StatusRejected, true, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			j := Job{Status: tc.status}
			j.MarkMilestones()
			assert.Equal(t, tc.wantInterview, j.HadInterview)
			assert.Equal(t, tc.wantOffer, j.HadOffer)
		})
	}
}

func TestApplyKeepsMilestonesAfterRegression(t *testing.T) {
	j := Job{Title: "Backend Engineer", Company: "Stripe", Status: StatusOffer}
	j.MarkMilestones()

	j.Apply(JobPatch{Status: ptr(StatusApplied)})

	assert.Equal(t, StatusApplied, j.Status)
	assert.True(t, j.HadInterview)
	assert.True(t, j.HadOffer)
}

func TestApplyOnlyTouchesSetFields(t *testing.T) {
	j := Job{Title: "SRE", Company: "Acme", Notes: "referral", Portal: "LinkedIn"}

	j.Apply(JobPatch{Notes: ptr(""), Deadline: ptr("2024-05-01")})

	assert.Equal(t, "SRE", j.Title)
	assert.Equal(t, "Acme", j.Company)
	assert.Equal(t, "LinkedIn", j.Portal)
	assert.Equal(t, "", j.Notes)
	assert.Equal(t, "2024-05-01", j.Deadline)
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusRejected.Valid())
	assert.False(t, Status("Ghosted").Valid())
	assert.False(t, StatusWishlist.Submitted())
	assert.True(t, StatusInterview.Submitted())
	assert.True(t, ValidPortal(""))
	assert.True(t, ValidPortal("Naukri"))
	assert.False(t, ValidPortal("Monster"))
	assert.True(t, JobPatch{}.Empty())
	assert.False(t, JobPatch{Notes: ptr("x")}.Empty())
}
