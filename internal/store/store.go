// Package store persists job records for one owner at a time.
//
// Durable keeps records of authenticated users in the database. Volatile keeps
// guest records in process memory for the lifetime of the guest session.
// The two differ in one declared way: Durable rejects a second job with the
// same title and company for an owner, Volatile does not check.
package store

import (
	"context"
	"errors"

	"github.com/justsurfingit/jobtracker/internal/models"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrDuplicate = errors.New("job already exists for this company and title")
	ErrNoOwner   = errors.New("no owner in context")

	// ErrUnknownSession is returned for guest sessions that were never opened,
	// or that expired or were discarded.
	ErrUnknownSession = errors.New("guest session not found or expired")
	// ErrIDTaken means a job with the same id is already stored.
	ErrIDTaken = errors.New("job id already in use")
)

// Owner scopes every store call. Exactly one of UserID or SessionID is set.
type Owner struct {
	UserID    string
	SessionID string
	Guest     bool
}

func UserOwner(id string) Owner { return Owner{UserID: id} }
func GuestOwner(session string) Owner { return Owner{SessionID: session, Guest: true} }

// Key identifies the collection this owner reads and writes.
func (o Owner) Key() string {
	if o.Guest {
		return o.SessionID
	}
	return o.UserID
}

func (o Owner) Valid() bool { return o.Key() != "" }

type Store interface {
	List(ctx context.Context, owner Owner) ([]models.Job, error)
	Get(ctx context.Context, owner Owner, id string) (*models.Job, error)
	Create(ctx context.Context, owner Owner, job *models.Job) error
	Update(ctx context.Context, owner Owner, id string, patch models.JobPatch) (*models.Job, error)
	Delete(ctx context.Context, owner Owner, id string) error
}

// Router sends guest owners to the volatile store and everyone else to the
// durable one.
type Router struct {
	Durable  Store
	Volatile Store
}

func NewRouter(durable, volatile Store) *Router {
	return &Router{Durable: durable, Volatile: volatile}
}

func (r *Router) pick(owner Owner) (Store, error) {
	if !owner.Valid() {
		return nil, ErrNoOwner
	}
	if owner.Guest {
		return r.Volatile, nil
	}
	return r.Durable, nil
}

func (r *Router) List(ctx context.Context, owner Owner) ([]models.Job, error) {
	s, err := r.pick(owner)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, owner)
}

func (r *Router) Get(ctx context.Context, owner Owner, id string) (*models.Job, error) {
	s, err := r.pick(owner)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, owner, id)
}

func (r *Router) Create(ctx context.Context, owner Owner, job *models.Job) error {
	s, err := r.pick(owner)
	if err != nil {
		return err
	}
	return s.Create(ctx, owner, job)
}

func (r *Router) Update(ctx context.Context, owner Owner, id string, patch models.JobPatch) (*models.Job, error) {
	s, err := r.pick(owner)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, owner, id, patch)
}

func (r *Router) Delete(ctx context.Context, owner Owner, id string) error {
	s, err := r.pick(owner)
	if err != nil {
		return err
	}
	return s.Delete(ctx, owner, id)
}
