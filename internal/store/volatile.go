package store

import (
	"context"
	"sync"
	"time"

	"github.com/justsurfingit/jobtracker/internal/models"
)

type guestSession struct {
	jobs     []models.Job
	lastSeen time.Time
}

// Volatile keeps guest jobs in memory, one list per guest session.
// A session must be opened before use. Sessions idle for longer than the TTL
// are dropped by the sweeper.
type Volatile struct {
	mu       sync.Mutex
	sessions map[string]*guestSession
	ttl      time.Duration
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewVolatile returns an empty store. A zero ttl keeps sessions until they
// are discarded explicitly.
func NewVolatile(ttl time.Duration) *Volatile {
	return &Volatile{
		sessions: make(map[string]*guestSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// StartSweeper drops expired sessions every interval until Close is called.
func (s *Volatile) StartSweeper(interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 || s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Volatile) Close() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

// Sweep removes sessions idle past the TTL and reports how many went.
func (s *Volatile) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Open registers a guest session so later calls for it are accepted.
// Opening a live session only refreshes it.
func (s *Volatile) Open(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastSeen = s.now()
		return
	}
	s.sessions[sessionID] = &guestSession{lastSeen: s.now()}
}

// Active reports whether sessionID was opened and has not expired or been
// discarded.
func (s *Volatile) Active(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	return ok
}

// Discard forgets a guest session and all of its jobs.
func (s *Volatile) Discard(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// session returns the live session for owner. Sessions are only created by
// Open. Callers hold s.mu.
func (s *Volatile) session(owner Owner) (*guestSession, error) {
	sess, ok := s.sessions[owner.SessionID]
	if !ok {
		return nil, ErrUnknownSession
	}
	sess.lastSeen = s.now()
	return sess, nil
}

func (s *Volatile) List(_ context.Context, owner Owner) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(owner)
	if err != nil {
		return nil, err
	}
	out := make([]models.Job, len(sess.jobs))
	copy(out, sess.jobs)
	return out, nil
}

func (s *Volatile) Get(_ context.Context, owner Owner, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(owner)
	if err != nil {
		return nil, err
	}
	i := indexOf(sess.jobs, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	job := sess.jobs[i]
	return &job, nil
}

// Create prepends job so the newest entry lists first. There is no
// title/company uniqueness check here.
func (s *Volatile) Create(_ context.Context, owner Owner, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(owner)
	if err != nil {
		return err
	}
	if indexOf(sess.jobs, job.ID) >= 0 {
		return ErrIDTaken
	}
	now := s.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	sess.jobs = append([]models.Job{*job}, sess.jobs...)
	return nil
}

func (s *Volatile) Update(_ context.Context, owner Owner, id string, patch models.JobPatch) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(owner)
	if err != nil {
		return nil, err
	}
	i := indexOf(sess.jobs, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	job := sess.jobs[i]
	job.Apply(patch)
	job.UpdatedAt = s.now()
	sess.jobs[i] = job
	return &job, nil
}

func (s *Volatile) Delete(_ context.Context, owner Owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(owner)
	if err != nil {
		return err
	}
	i := indexOf(sess.jobs, id)
	if i < 0 {
		return ErrNotFound
	}
	sess.jobs = append(sess.jobs[:i], sess.jobs[i+1:]...)
	return nil
}

func indexOf(jobs []models.Job, id string) int {
	for i := range jobs {
		if jobs[i].ID == id {
			return i
		}
	}
	return -1
}
