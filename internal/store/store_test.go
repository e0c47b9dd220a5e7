package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/policy"
)

const testAdmin = "ADMIN_TEST"

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenDir(t.TempDir(), policy.OwnerOrAdmin{AdminID: testAdmin},
		WithClock(func() time.Time { return fixedNow }), WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleJob(title string) model.Job {
	return model.Job{
		Title:        title,
		Company:      "Acme",
		Location:     "Remote",
		Salary:       "$1",
		Category:     model.CategoryIT,
		Description:  "Build things that matter for people.",
		Requirements: []string{"Go", "SQL"},
		PostedAt:     fixedNow,
		LogoURL:      CompanyLogoURL("Acme"),
		Type:         model.JobTypeRemote,
	}
}

func TestOpen_CreatesEmptyCollections(t *testing.T) {
	backend := NewMemoryBackend()
	_, err := Open(backend, policy.OwnerOrAdmin{})
	require.NoError(t, err)

	for _, key := range []string{UsersKey, JobsKey, ApplicationsKey} {
		raw, err := backend.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, "[]", string(raw), key)
	}
}

func TestOpen_KeepsExistingCollections(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(JobsKey, []byte(`[{"id":"x","title":"kept"}]`)))

	s, err := Open(backend, policy.OwnerOrAdmin{})
	require.NoError(t, err)
	jobs, err := s.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "kept", jobs[0].Title)
}

func TestOpenDir_SecondOpenIsLocked(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenDir(dir, policy.OwnerOrAdmin{})
	require.NoError(t, err)

	_, err = OpenDir(dir, policy.OwnerOrAdmin{})
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, s.Close())
	s2, err := OpenDir(dir, policy.OwnerOrAdmin{})
	require.NoError(t, err, "lock must be released by Close")
	require.NoError(t, s2.Close())
}

func TestUpsertUser_IdempotentPerHandle(t *testing.T) {
	s := newTestStore(t)

	first, err := s.UpsertUser("Jane", "@jane")
	require.NoError(t, err)
	second, err := s.UpsertUser("Someone Else", "@jane")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Jane", second.Name, "name from the first call wins")

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpsertUser_DerivesAvatarFromHandle(t *testing.T) {
	s := newTestStore(t)
	u, err := s.UpsertUser("Jane", "@jane")
	require.NoError(t, err)
	assert.Equal(t, "id-1", u.ID)
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=jane", u.AvatarURL)
}

func TestInsertJob_PreservesOrderAndOwner(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertJob(sampleJob("First"), "u1")
	require.NoError(t, err)
	_, err = s.InsertJob(sampleJob("Second"), "")
	require.NoError(t, err)

	jobs, err := s.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "First", jobs[0].Title)
	assert.Equal(t, "u1", jobs[0].OwnerID)
	assert.Equal(t, "Second", jobs[1].Title)
	assert.Empty(t, jobs[1].OwnerID)
}

func TestInsertJob_OmitsAbsentOwnerInJSON(t *testing.T) {
	s := newTestStore(t)
	_, err := s.InsertJob(sampleJob("Unowned"), "")
	require.NoError(t, err)

	raw, err := s.Backend().Get(JobsKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ownerId")
}

func TestDeleteJob_OwnerOrAdminOnly(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		want      bool
	}{
		{name: "owner", requester: "owner-1", want: true},
		{name: "admin", requester: testAdmin, want: true},
		{name: "other user", requester: "intruder", want: false},
		{name: "anonymous", requester: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			job, err := s.InsertJob(sampleJob("Target"), "owner-1")
			require.NoError(t, err)

			ok, err := s.DeleteJob(job.ID, tt.requester)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			jobs, err := s.ListJobs()
			require.NoError(t, err)
			if tt.want {
				assert.Empty(t, jobs)
			} else {
				require.Len(t, jobs, 1)
				assert.Equal(t, job.ID, jobs[0].ID)
			}
		})
	}
}

func TestDeleteJob_UnknownJob(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.DeleteJob("missing", testAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteJob_DoesNotCascadeToApplications(t *testing.T) {
	s := newTestStore(t)
	job, err := s.InsertJob(sampleJob("Gone soon"), "owner-1")
	require.NoError(t, err)
	_, err = s.InsertApplication("u2", job.ID, job.Title, "Bob", "@bob")
	require.NoError(t, err)

	ok, err := s.DeleteJob(job.ID, "owner-1")
	require.NoError(t, err)
	require.True(t, ok)

	apps, err := s.ListApplications()
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestInsertApplication_FreezesJobTitle(t *testing.T) {
	s := newTestStore(t)
	job, err := s.InsertJob(sampleJob("Original Title"), "owner-1")
	require.NoError(t, err)

	app, err := s.InsertApplication("u2", job.ID, job.Title, "Bob", "@bob")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, app.AppliedAt)

	// Rewrite the job with a new title behind the store's back.
	jobs, err := s.ListJobs()
	require.NoError(t, err)
	jobs[0].Title = "Renamed"
	require.NoError(t, writeCollection(s.Backend(), JobsKey, jobs))

	apps, err := s.ListApplications()
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Original Title", apps[0].JobTitle)
}

func TestInsertApplication_NoDuplicateCheck(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.InsertApplication("u1", "j1", "Same", "Bob", "@bob")
		require.NoError(t, err)
	}
	apps, err := s.ListApplications()
	require.NoError(t, err)
	assert.Len(t, apps, 3)
}

// Application deletion is deliberately not ownership-gated, unlike jobs.
func TestDeleteApplication_IsUnconditional(t *testing.T) {
	s := newTestStore(t)
	a1, err := s.InsertApplication("u1", "j1", "T", "A", "@a")
	require.NoError(t, err)
	a2, err := s.InsertApplication("u2", "j1", "T", "B", "@b")
	require.NoError(t, err)

	require.NoError(t, s.DeleteApplication(a1.ID))
	require.NoError(t, s.DeleteApplication("unknown"))

	apps, err := s.ListApplications()
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, a2.ID, apps[0].ID)
}

func TestCollections_RoundTripAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	p := policy.OwnerOrAdmin{AdminID: testAdmin}
	s, err := OpenDir(dir, p, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	user, err := s.UpsertUser("Jane", "@jane")
	require.NoError(t, err)
	job, err := s.InsertJob(sampleJob("Round Trip"), user.ID)
	require.NoError(t, err)
	app, err := s.InsertApplication(user.ID, job.ID, job.Title, user.Name, user.Handle)
	require.NoError(t, err)
	rawJobs, err := s.Backend().Get(JobsKey)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenDir(dir, p)
	require.NoError(t, err)
	defer s.Close()

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Equal(t, []model.User{user}, users)

	jobs, err := s.ListJobs()
	require.NoError(t, err)
	assert.Equal(t, []model.Job{job}, jobs)

	apps, err := s.ListApplications()
	require.NoError(t, err)
	assert.Equal(t, []model.Application{app}, apps)

	reencoded, err := json.Marshal(jobs)
	require.NoError(t, err)
	assert.JSONEq(t, string(rawJobs), string(reencoded))
	assert.Equal(t, string(rawJobs), string(reencoded))
}

func TestSeedIfEmpty_SeedsOnce(t *testing.T) {
	s := newTestStore(t)

	seeded, err := s.SeedIfEmpty()
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedIfEmpty()
	require.NoError(t, err)
	assert.False(t, seeded)

	jobs, err := s.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	for _, j := range jobs {
		assert.Equal(t, model.SystemOwner, j.OwnerID)
	}
}

func TestSeedIfEmpty_ConcurrentCallersSeedOnce(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	var seededCount atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seeded, err := s.SeedIfEmpty()
			assert.NoError(t, err)
			if seeded {
				seededCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), seededCount.Load())
	jobs, err := s.ListJobs()
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestCompanyLogoURL_EscapesCompany(t *testing.T) {
	assert.Equal(t, "https://api.dicebear.com/7.x/identicon/svg?seed=AT%26T+Labs", CompanyLogoURL("AT&T Labs"))
	assert.Equal(t, "https://api.dicebear.com/7.x/identicon/svg?seed=neotech", CompanyLogoURL("neotech"))
}

func TestSeedIfEmpty_SkipsNonEmptyBoard(t *testing.T) {
	s := newTestStore(t)
	_, err := s.InsertJob(sampleJob("Already here"), "u1")
	require.NoError(t, err)

	seeded, err := s.SeedIfEmpty()
	require.NoError(t, err)
	assert.False(t, seeded)

	jobs, err := s.ListJobs()
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSQLiteBackend_GetMissingKey(t *testing.T) {
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Get("nope")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, b.Put("k", []byte(`{"a":1}`)))
	require.NoError(t, b.Put("k", []byte(`{"a":2}`)))
	v, err := b.Get("k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(v))

	require.NoError(t, b.Delete("k"))
	_, err = b.Get("k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
