package ai

import (
	"context"

	"github.com/amishk599/jobboard/internal/model"
)

// DisabledProvider is used when no API key is configured. Every call fails
// with model.ErrCredentialRequired so callers prompt for a key.
type DisabledProvider struct{}

// NewDisabledProvider returns a DisabledProvider.
func NewDisabledProvider() *DisabledProvider {
	return &DisabledProvider{}
}

func (DisabledProvider) GenerateContent(context.Context, []Part) ([]Part, error) {
	return nil, model.ErrCredentialRequired
}

func (DisabledProvider) StartVideo(context.Context, VideoRequest) (*Operation, error) {
	return nil, model.ErrCredentialRequired
}

func (DisabledProvider) GetOperation(context.Context, string) (*Operation, error) {
	return nil, model.ErrCredentialRequired
}

func (DisabledProvider) Download(context.Context, string) (*Media, error) {
	return nil, model.ErrCredentialRequired
}
