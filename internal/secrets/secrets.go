// Package secrets keeps API credentials in the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the board's secrets in the OS keychain.
const KeyringService = "jobboard"

// Well-known secret names.
const (
	TelegramToken = "telegram-bot-token"
	AIKey         = "ai-api-key"
)

// Names lists every secret the board reads.
var Names = []string{TelegramToken, AIKey}

// ErrNotFound is returned when no secret is stored under a name.
var ErrNotFound = errors.New("secret not found")

// Keyring reads and writes secrets in the OS keychain.
type Keyring struct {
	service string
}

// NewKeyring returns a Keyring scoped to KeyringService.
func NewKeyring() *Keyring {
	return &Keyring{service: KeyringService}
}

// Get returns the secret stored under name.
func (k *Keyring) Get(name string) (string, error) {
	v, err := keyring.Get(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s from keyring: %w", name, err)
	}
	if strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under name.
func (k *Keyring) Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(k.service, name, value)
}

// Delete removes the secret stored under name.
func (k *Keyring) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := keyring.Delete(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func checkName(name string) error {
	for _, n := range Names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("unknown secret %q (want one of %s)", name, strings.Join(Names, ", "))
}
