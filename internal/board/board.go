// Package board implements the job board's use cases on top of the record
// store: posting with validation, applying, moderation and search.
package board

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/amishk599/jobboard/internal/filter"
	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/notifier"
	"github.com/amishk599/jobboard/internal/store"
)

// Store is the persistence the service needs. *store.Store satisfies it.
type Store interface {
	UpsertUser(name, handle string) (model.User, error)
	ListUsers() ([]model.User, error)
	InsertJob(job model.Job, ownerID string) (model.Job, error)
	ListJobs() ([]model.Job, error)
	GetJob(id string) (model.Job, error)
	DeleteJob(jobID, requesterID string) (bool, error)
	InsertApplication(userID, jobID, jobTitle, applicantName, applicantHandle string) (model.Application, error)
	ListApplications() ([]model.Application, error)
	DeleteApplication(id string) error
}

// GuestPrefix starts the user id recorded for applicants without an account.
const GuestPrefix = "GUEST_"

// Service coordinates the store and the administrator notifier.
type Service struct {
	store    Store
	notifier model.Notifier
	now      func() time.Time
	guestID  func() string
	logger   *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the timestamp source used for new jobs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithGuestIDs replaces the guest id generator.
func WithGuestIDs(gen func() string) Option {
	return func(s *Service) { s.guestID = gen }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService wires the board use cases.
func NewService(st Store, n model.Notifier, opts ...Option) *Service {
	s := &Service{
		store:    st,
		notifier: n,
		now:      func() time.Time { return time.Now().UTC() },
		guestID:  randomGuestID,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register returns the user for handle, creating it on first use.
func (s *Service) Register(name, handle string) (model.User, error) {
	name, handle = strings.TrimSpace(name), strings.TrimSpace(handle)
	if err := validateIdentity(name, handle); err != nil {
		return model.User{}, err
	}
	return s.store.UpsertUser(name, handle)
}

// PostJob validates draft, stores it owned by ownerID and announces it.
// A failed announcement is logged; the job stays posted.
func (s *Service) PostJob(ctx context.Context, draft JobDraft, ownerID string) (model.Job, error) {
	draft = draft.normalized()
	if err := draft.Validate(); err != nil {
		return model.Job{}, err
	}

	job, err := s.store.InsertJob(draft.toJob(s.now()), ownerID)
	if err != nil {
		return model.Job{}, fmt.Errorf("post job: %w", err)
	}
	s.logger.Info("job posted", "id", job.ID, "owner", ownerID, "company", job.Company)

	if !s.notifier.Notify(ctx, notifier.NewJobMessage(job)) {
		s.logger.Warn("new job announcement not delivered", "id", job.ID)
	}
	return job, nil
}

// Apply records an application to jobID and alerts the administrator.
// applicant may be nil, in which case a guest id is used. The application is
// stored before the alert is sent; notified reports whether the alert went out.
func (s *Service) Apply(ctx context.Context, jobID string, applicant *model.User, name, handle string) (app model.Application, notified bool, err error) {
	name, handle = strings.TrimSpace(name), strings.TrimSpace(handle)
	if err := validateApplicant(name, handle); err != nil {
		return model.Application{}, false, err
	}

	job, err := s.store.GetJob(jobID)
	if err != nil {
		return model.Application{}, false, fmt.Errorf("apply: %w", err)
	}

	userID := s.guestID()
	if applicant != nil {
		userID = applicant.ID
	}

	app, err = s.store.InsertApplication(userID, job.ID, job.Title, name, handle)
	if err != nil {
		return model.Application{}, false, fmt.Errorf("apply: %w", err)
	}

	notified = s.notifier.Notify(ctx, notifier.NewApplicationMessage(app, job.Company))
	if !notified {
		s.logger.Warn("application alert not delivered", "application", app.ID)
	}
	return app, notified, nil
}

// DeleteJob removes jobID if requesterID owns it or is the administrator.
func (s *Service) DeleteJob(jobID, requesterID string) (bool, error) {
	return s.store.DeleteJob(jobID, requesterID)
}

// Job returns one job by id.
func (s *Service) Job(id string) (model.Job, error) {
	return s.store.GetJob(id)
}

// Jobs returns the jobs matching f, newest first. A nil f returns every job.
func (s *Service) Jobs(f model.JobFilter) ([]model.Job, error) {
	jobs, err := s.store.ListJobs()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs = filter.Apply(f, jobs)
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].PostedAt.After(jobs[j].PostedAt)
	})
	return jobs, nil
}

// Applications returns every application, most recent first.
func (s *Service) Applications() ([]model.Application, error) {
	apps, err := s.store.ListApplications()
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
	return apps, nil
}

// DeleteApplication removes an application. It is not ownership-gated.
func (s *Service) DeleteApplication(id string) error {
	return s.store.DeleteApplication(id)
}

// Stats summarises the board.
type Stats struct {
	Users        int `json:"users"`
	Jobs         int `json:"jobs"`
	Applications int `json:"applications"`
}

// Stats counts the records in each collection.
func (s *Service) Stats() (Stats, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	jobs, err := s.store.ListJobs()
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	apps, err := s.store.ListApplications()
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{Users: len(users), Jobs: len(jobs), Applications: len(apps)}, nil
}

// ShareText is the plain-text blurb for sharing job.
func (s *Service) ShareText(job model.Job) string {
	return notifier.ShareText(job)
}

const guestAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomGuestID() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = guestAlphabet[rand.IntN(len(guestAlphabet))]
	}
	return GuestPrefix + string(b)
}

// LogoURL derives a job's logo from its company.
func LogoURL(company string) string {
	return store.CompanyLogoURL(company)
}
