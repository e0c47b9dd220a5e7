// Package store persists the board's users, jobs and applications as JSON
// collections in a key-value backend.
//
// Every mutation reads the whole collection, changes it in memory and writes
// the whole collection back. Within one process the read-modify-write runs
// under a mutex; across processes OpenDir takes a file lock so only one
// process serves a data directory at a time. Two writers sharing a backend
// through other means would lose updates: the last full snapshot wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/policy"
)

// Collection keys in the backend.
const (
	UsersKey        = "users"
	JobsKey         = "jobs"
	ApplicationsKey = "applications"
)

const (
	dbFileName   = "jobboard.db"
	lockFileName = "jobboard.lock"
)

// ErrLocked is returned by OpenDir when another process holds the data directory.
var ErrLocked = errors.New("data directory is in use by another process")

// Store is the record store. Construct it with Open or OpenDir and release it
// with Close.
type Store struct {
	mu      sync.Mutex
	backend Backend
	policy  policy.Policy
	lock    *flock.Flock // nil unless opened through OpenDir
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the record id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open wraps backend in a Store and makes sure every collection exists.
func Open(backend Backend, p policy.Policy, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		policy:  p,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, name := range []string{UsersKey, JobsKey, ApplicationsKey} {
		if err := s.createCollection(name); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("record store opened")
	return s, nil
}

// OpenDir opens the SQLite-backed store inside dir, creating dir if needed.
// It fails with ErrLocked when another process already has dir open.
func OpenDir(dir string, p policy.Policy, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking data dir: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	backend, err := NewSQLiteBackend(filepath.Join(dir, dbFileName))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	s, err := Open(backend, p, opts...)
	if err != nil {
		backend.Close()
		_ = lock.Unlock()
		return nil, err
	}
	s.lock = lock
	return s, nil
}

// Close releases the backend and the data directory lock.
func (s *Store) Close() error {
	err := s.backend.Close()
	if s.lock != nil {
		if uerr := s.lock.Unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("unlocking data dir: %w", uerr)
		}
	}
	return err
}

// Backend exposes the key-value medium for sibling records such as the session.
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) createCollection(name string) error {
	_, err := s.backend.Get(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("checking collection %s: %w", name, err)
	}
	if err := s.backend.Put(name, []byte("[]")); err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	return nil
}

func readCollection[T any](b Backend, key string) ([]T, error) {
	raw, err := b.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeCollection[T any](b Backend, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return b.Put(key, raw)
}

// AvatarURL derives the deterministic avatar reference for a handle.
func AvatarURL(handle string) string {
	seed := strings.Replace(handle, "@", "", 1)
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}

// UpsertUser returns the user registered under handle, creating it on first
// use. An existing record is returned unchanged: name is only applied at
// creation.
func (s *Store) UpsertUser(name, handle string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readCollection[model.User](s.backend, UsersKey)
	if err != nil {
		return model.User{}, fmt.Errorf("upsert user: %w", err)
	}
	for _, u := range users {
		if u.Handle == handle {
			return u, nil
		}
	}

	u := model.User{
		ID:        s.newID(),
		Name:      name,
		Handle:    handle,
		AvatarURL: AvatarURL(handle),
	}
	users = append(users, u)
	if err := writeCollection(s.backend, UsersKey, users); err != nil {
		return model.User{}, fmt.Errorf("upsert user: %w", err)
	}
	s.logger.Info("user created", "id", u.ID, "handle", u.Handle)
	return u, nil
}

// ListUsers returns every user in insertion order.
func (s *Store) ListUsers() ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[model.User](s.backend, UsersKey)
}

// InsertJob appends job with ownerID as its owner (empty means unowned). The
// job is stored as given; callers validate beforehand. A missing id is filled in.
func (s *Store) InsertJob(job model.Job, ownerID string) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := readCollection[model.Job](s.backend, JobsKey)
	if err != nil {
		return model.Job{}, fmt.Errorf("insert job: %w", err)
	}
	if job.ID == "" {
		job.ID = s.newID()
	}
	job.OwnerID = ownerID
	jobs = append(jobs, job)
	if err := writeCollection(s.backend, JobsKey, jobs); err != nil {
		return model.Job{}, fmt.Errorf("insert job: %w", err)
	}
	s.logger.Info("job inserted", "id", job.ID, "owner", ownerID)
	return job, nil
}

// ListJobs returns every job in insertion order (oldest appended first).
func (s *Store) ListJobs() ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[model.Job](s.backend, JobsKey)
}

// GetJob returns the job with id, or model.ErrNotFound.
func (s *Store) GetJob(id string) (model.Job, error) {
	jobs, err := s.ListJobs()
	if err != nil {
		return model.Job{}, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return model.Job{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
}

// DeleteJob removes the job when the policy lets requesterID delete it and
// reports whether it did. A refused or unknown job leaves the collection as
// it was; the error return is reserved for storage failures.
func (s *Store) DeleteJob(jobID, requesterID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := readCollection[model.Job](s.backend, JobsKey)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}

	idx := -1
	for i, j := range jobs {
		if j.ID == jobID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	if !s.policy.CanDeleteJob(requesterID, jobs[idx]) {
		s.logger.Warn("job delete refused", "id", jobID, "requester", requesterID)
		return false, nil
	}

	filtered := make([]model.Job, 0, len(jobs)-1)
	filtered = append(filtered, jobs[:idx]...)
	filtered = append(filtered, jobs[idx+1:]...)
	if err := writeCollection(s.backend, JobsKey, filtered); err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	s.logger.Info("job deleted", "id", jobID, "requester", requesterID)
	return true, nil
}

// InsertApplication records a submission stamped with the current time.
// There is no duplicate check.
func (s *Store) InsertApplication(userID, jobID, jobTitle, applicantName, applicantHandle string) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := readCollection[model.Application](s.backend, ApplicationsKey)
	if err != nil {
		return model.Application{}, fmt.Errorf("insert application: %w", err)
	}
	app := model.Application{
		ID:              s.newID(),
		UserID:          userID,
		JobID:           jobID,
		JobTitle:        jobTitle,
		ApplicantName:   applicantName,
		ApplicantHandle: applicantHandle,
		AppliedAt:       s.now(),
	}
	apps = append(apps, app)
	if err := writeCollection(s.backend, ApplicationsKey, apps); err != nil {
		return model.Application{}, fmt.Errorf("insert application: %w", err)
	}
	s.logger.Info("application recorded", "id", app.ID, "job", jobID)
	return app, nil
}

// ListApplications returns every application in insertion order.
func (s *Store) ListApplications() ([]model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[model.Application](s.backend, ApplicationsKey)
}

// DeleteApplication removes the application with id. It is not gated by the
// policy; unknown ids are a no-op.
func (s *Store) DeleteApplication(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := readCollection[model.Application](s.backend, ApplicationsKey)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	filtered := make([]model.Application, 0, len(apps))
	for _, a := range apps {
		if a.ID != id {
			filtered = append(filtered, a)
		}
	}
	if len(filtered) == len(apps) {
		return nil
	}
	if err := writeCollection(s.backend, ApplicationsKey, filtered); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	s.logger.Info("application deleted", "id", id)
	return nil
}
