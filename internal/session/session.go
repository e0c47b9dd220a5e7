// Package session keeps the single logged-in identity of a local client.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/store"
)

// Key is the backend key holding the serialized current identity.
const Key = "session"

// UserRegistry resolves a display name and handle to a user record.
type UserRegistry interface {
	UpsertUser(name, handle string) (model.User, error)
}

// Manager logs users in and out. Identity is asserted by the client; there
// is no server-side session to invalidate.
type Manager struct {
	users   UserRegistry
	backend store.Backend
	logger  *slog.Logger
}

func NewManager(users UserRegistry, backend store.Backend, logger *slog.Logger) *Manager {
	return &Manager{users: users, backend: backend, logger: logger}
}

// Login fetches or creates the user for handle and makes it the current
// identity, replacing any previous one. Surrounding spaces are dropped from
// both values so " @jane " and "@jane" resolve to the same user.
func (m *Manager) Login(name, handle string) (model.User, error) {
	name, handle = strings.TrimSpace(name), strings.TrimSpace(handle)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if handle == "" {
		fields["handle"] = "is required"
	}
	if len(fields) > 0 {
		return model.User{}, &model.ValidationError{Fields: fields}
	}

	u, err := m.users.UpsertUser(name, handle)
	if err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return model.User{}, fmt.Errorf("login: encoding session: %w", err)
	}
	if err := m.backend.Put(Key, raw); err != nil {
		return model.User{}, fmt.Errorf("login: saving session: %w", err)
	}
	m.logger.Info("logged in", "user", u.ID, "handle", u.Handle)
	return u, nil
}

// Logout clears the persisted identity.
func (m *Manager) Logout() error {
	if err := m.backend.Delete(Key); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.logger.Info("logged out")
	return nil
}

// Current returns the persisted identity, or nil when nobody is logged in.
func (m *Manager) Current() (*model.User, error) {
	raw, err := m.backend.Get(Key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &u, nil
}
