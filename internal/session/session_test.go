package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/policy"
	"github.com/amishk599/jobboard/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager(t *testing.T, dir string) (*Manager, *store.Store) {
	t.Helper()
	s, err := store.OpenDir(dir, policy.OwnerOrAdmin{})
	require.NoError(t, err)
	return NewManager(s, s.Backend(), discardLogger()), s
}

func TestLogin_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	m, s := newManager(t, dir)

	u, err := m.Login("Jane", "@jane")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	m, s = newManager(t, dir)
	defer s.Close()

	cur, err := m.Current()
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, u, *cur)
}

func TestLogin_SameHandleReturnsSameUser(t *testing.T) {
	m, s := newManager(t, t.TempDir())
	defer s.Close()

	first, err := m.Login("Jane", "@jane")
	require.NoError(t, err)
	second, err := m.Login("Janet", "@jane")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "Jane", second.Name)
}

func TestLogin_TrimsHandleBeforeLookup(t *testing.T) {
	m, s := newManager(t, t.TempDir())
	defer s.Close()

	first, err := m.Login("Jane", "@jane")
	require.NoError(t, err)
	second, err := m.Login("  Jane ", " @jane ")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLogin_RejectsBlankIdentity(t *testing.T) {
	m, s := newManager(t, t.TempDir())
	defer s.Close()

	_, err := m.Login("  ", "")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "handle")

	cur, err := m.Current()
	require.NoError(t, err)
	assert.Nil(t, cur, "a rejected login leaves no session")
}

func TestLogin_ReplacesPreviousIdentity(t *testing.T) {
	m, s := newManager(t, t.TempDir())
	defer s.Close()

	_, err := m.Login("Jane", "@jane")
	require.NoError(t, err)
	bob, err := m.Login("Bob", "@bob")
	require.NoError(t, err)

	cur, err := m.Current()
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, bob.ID, cur.ID)
}

func TestLogout_ClearsIdentity(t *testing.T) {
	m, s := newManager(t, t.TempDir())
	defer s.Close()

	_, err := m.Login("Jane", "@jane")
	require.NoError(t, err)
	require.NoError(t, m.Logout())

	cur, err := m.Current()
	require.NoError(t, err)
	assert.Nil(t, cur)

	require.NoError(t, m.Logout(), "logout without a session is fine")
}
