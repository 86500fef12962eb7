package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/jobtracker/internal/database"
	"github.com/justsurfingit/jobtracker/internal/models"
)

func ptr[T any](v T) *T { return &v }

func newDurable(t *testing.T) *Durable {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewDurable(db)
}

func newJob(title, company string, status models.Status) *models.Job {
	j := &models.Job{ID: uuid.NewString(), Title: title, Company: company, Status: status}
	j.MarkMilestones()
	return j
}

// newVolatile returns a store with the given guest sessions already opened.
func newVolatile(ttl time.Duration, sessions ...string) *Volatile {
	s := NewVolatile(ttl)
	for _, id := range sessions {
		s.Open(id)
	}
	return s
}

// stores runs fn against both implementations.
func stores(t *testing.T, fn func(t *testing.T, s Store, owner Owner)) {
	t.Run("durable", func(t *testing.T) { fn(t, newDurable(t), UserOwner("user-1")) })
	t.Run("volatile", func(t *testing.T) { fn(t, newVolatile(time.Hour, "sess-1"), GuestOwner("sess-1")) })
}

func TestStoreCRUD(t *testing.T) {
	stores(t, func(t *testing.T, s Store, owner Owner) {
		ctx := context.Background()
		job := newJob("Backend Engineer", "Stripe", models.StatusApplied)
		job.AppliedOn = "2024-01-05"
		require.NoError(t, s.Create(ctx, owner, job))

		got, err := s.Get(ctx, owner, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "Backend Engineer", got.Title)
		assert.Equal(t, "2024-01-05", got.AppliedOn)

		updated, err := s.Update(ctx, owner, job.ID, models.JobPatch{
			Status: ptr(models.StatusInterview),
			Notes:  ptr("phone screen booked"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusInterview, updated.Status)
		assert.True(t, updated.HadInterview)
		assert.Equal(t, "phone screen booked", updated.Notes)

		jobs, err := s.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "phone screen booked", jobs[0].Notes)

		require.NoError(t, s.Delete(ctx, owner, job.ID))
		_, err = s.Get(ctx, owner, job.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, owner, job.ID), ErrNotFound)
	})
}

func TestStoreMilestonesSurviveRegression(t *testing.T) {
	stores(t, func(t *testing.T, s Store, owner Owner) {
		ctx := context.Background()
		job := newJob("Data Engineer", "Acme", models.StatusOffer)
		require.NoError(t, s.Create(ctx, owner, job))

		_, err := s.Update(ctx, owner, job.ID, models.JobPatch{Status: ptr(models.StatusApplied)})
		require.NoError(t, err)

		got, err := s.Get(ctx, owner, job.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApplied, got.Status)
		assert.True(t, got.HadInterview)
		assert.True(t, got.HadOffer)
	})
}

func TestStoreOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	t.Run("durable", func(t *testing.T) {
		s := newDurable(t)
		job := newJob("SRE", "Acme", models.StatusApplied)
		require.NoError(t, s.Create(ctx, UserOwner("alice"), job))

		_, err := s.Get(ctx, UserOwner("bob"), job.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Update(ctx, UserOwner("bob"), job.ID, models.JobPatch{Notes: ptr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, UserOwner("bob"), job.ID), ErrNotFound)

		jobs, err := s.List(ctx, UserOwner("bob"))
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
	t.Run("volatile", func(t *testing.T) {
		s := newVolatile(time.Hour, "a", "b")
		job := newJob("SRE", "Acme", models.StatusApplied)
		require.NoError(t, s.Create(ctx, GuestOwner("a"), job))

		_, err := s.Get(ctx, GuestOwner("b"), job.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		jobs, err := s.List(ctx, GuestOwner("b"))
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
}

func TestDurableRejectsDuplicateTitleCompany(t *testing.T) {
	ctx := context.Background()
	s := newDurable(t)
	alice := UserOwner("alice")

	require.NoError(t, s.Create(ctx, alice, newJob("SRE", "Acme", models.StatusApplied)))
	err := s.Create(ctx, alice, newJob("SRE", "Acme", models.StatusWishlist))
	assert.ErrorIs(t, err, ErrDuplicate)

	// Another owner may track the same posting.
	require.NoError(t, s.Create(ctx, UserOwner("bob"), newJob("SRE", "Acme", models.StatusApplied)))

	other := newJob("Platform Engineer", "Acme", models.StatusApplied)
	require.NoError(t, s.Create(ctx, alice, other))
	_, err = s.Update(ctx, alice, other.ID, models.JobPatch{Title: ptr("SRE")})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestVolatileAllowsDuplicateTitleCompany(t *testing.T) {
	ctx := context.Background()
	s := newVolatile(0, "sess")
	guest := GuestOwner("sess")

	first := newJob("SRE", "Acme", models.StatusApplied)
	second := newJob("SRE", "Acme", models.StatusApplied)
	require.NoError(t, s.Create(ctx, guest, first))
	require.NoError(t, s.Create(ctx, guest, second))

	jobs, err := s.List(ctx, guest)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID, "newest first")

	err = s.Create(ctx, guest, first)
	assert.ErrorIs(t, err, ErrIDTaken, "same id twice")
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestVolatileRejectsUnopenedSession(t *testing.T) {
	ctx := context.Background()
	s := NewVolatile(time.Hour)
	stranger := GuestOwner("never-issued")

	assert.False(t, s.Active("never-issued"))
	assert.ErrorIs(t, s.Create(ctx, stranger, newJob("SRE", "Acme", models.StatusApplied)), ErrUnknownSession)
	_, err := s.List(ctx, stranger)
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = s.Get(ctx, stranger, "x")
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = s.Update(ctx, stranger, "x", models.JobPatch{Notes: ptr("n")})
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.ErrorIs(t, s.Delete(ctx, stranger, "x"), ErrUnknownSession)

	s.Open("never-issued")
	assert.True(t, s.Active("never-issued"))
	require.NoError(t, s.Create(ctx, stranger, newJob("SRE", "Acme", models.StatusApplied)))

	// Reopening a live session keeps its jobs.
	s.Open("never-issued")
	jobs, err := s.List(ctx, stranger)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestVolatileListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newVolatile(0, "sess")
	guest := GuestOwner("sess")
	require.NoError(t, s.Create(ctx, guest, newJob("SRE", "Acme", models.StatusApplied)))

	jobs, _ := s.List(ctx, guest)
	jobs[0].Title = "mutated"

	again, _ := s.List(ctx, guest)
	assert.Equal(t, "SRE", again[0].Title)
}

func TestVolatileSweepAndDiscard(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewVolatile(time.Hour)
	s.now = func() time.Time { return clock }

	s.Open("idle")
	require.NoError(t, s.Create(ctx, GuestOwner("idle"), newJob("A", "X", models.StatusApplied)))
	clock = clock.Add(50 * time.Minute)
	s.Open("active")
	require.NoError(t, s.Create(ctx, GuestOwner("active"), newJob("B", "Y", models.StatusApplied)))
	clock = clock.Add(20 * time.Minute)

	assert.Equal(t, 1, s.Sweep())

	_, err := s.List(ctx, GuestOwner("idle"))
	assert.ErrorIs(t, err, ErrUnknownSession)
	jobs, err := s.List(ctx, GuestOwner("active"))
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	s.Discard("active")
	assert.False(t, s.Active("active"))
	_, err = s.List(ctx, GuestOwner("active"))
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestVolatileSweeperStops(t *testing.T) {
	s := NewVolatile(time.Minute)
	s.StartSweeper(time.Millisecond)
	s.Close()
	s.Close()
}

func TestRouterDispatch(t *testing.T) {
	ctx := context.Background()
	durable := newDurable(t)
	volatile := newVolatile(0, "sess")
	r := NewRouter(durable, volatile)

	require.NoError(t, r.Create(ctx, UserOwner("alice"), newJob("SRE", "Acme", models.StatusApplied)))
	require.NoError(t, r.Create(ctx, GuestOwner("sess"), newJob("PM", "Initech", models.StatusWishlist)))

	userJobs, err := durable.List(ctx, UserOwner("alice"))
	require.NoError(t, err)
	require.Len(t, userJobs, 1)
	assert.Equal(t, "SRE", userJobs[0].Title)

	guestJobs, err := volatile.List(ctx, GuestOwner("sess"))
	require.NoError(t, err)
	require.Len(t, guestJobs, 1)
	assert.Equal(t, "PM", guestJobs[0].Title)

	_, err = r.List(ctx, Owner{})
	assert.ErrorIs(t, err, ErrNoOwner)
	assert.ErrorIs(t, r.Create(ctx, GuestOwner(""), newJob("A", "B", models.StatusApplied)), ErrNoOwner)
}
