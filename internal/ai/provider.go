package ai

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/amishk599/jobboard/internal/model"
)

// Provider is the remote generation API used by Studio.
type Provider interface {
	// GenerateContent runs one image-model request and returns the parts of
	// the first candidate.
	GenerateContent(ctx context.Context, parts []Part) ([]Part, error)
	// StartVideo submits a video generation and returns its operation handle.
	StartVideo(ctx context.Context, req VideoRequest) (*Operation, error)
	// GetOperation refreshes a previously started operation.
	GetOperation(ctx context.Context, name string) (*Operation, error)
	// Download fetches a generated artefact by URI with the provider's credential.
	Download(ctx context.Context, uri string) (*Media, error)
}

// Media is a binary payload and its MIME type.
type Media struct {
	MIMEType string
	Data     []byte
}

// DataURI renders m as a base64 data URI.
func (m *Media) DataURI() string {
	return "data:" + m.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

// Part is one element of a multi-part request or response. Exactly one of
// Text and Inline is set.
type Part struct {
	Text   string
	Inline *Media
}

// VideoRequest describes an image-to-video generation.
type VideoRequest struct {
	Prompt      string
	Image       Media
	AspectRatio string
	Resolution  string
}

// Operation is the state of a long-running generation.
type Operation struct {
	Name      string
	Done      bool
	VideoURIs []string
	Err       error // set when the operation finished with a failure
}

const defaultImageMIME = "image/png"

// ParseImage accepts a base64 image payload, optionally carrying a
// "data:<mime>;base64," prefix, and decodes it. The MIME type defaults to
// image/png when the prefix is absent.
func ParseImage(payload string) (Media, error) {
	mime := defaultImageMIME
	encoded := strings.TrimSpace(payload)
	if head, data, ok := strings.Cut(encoded, ","); ok {
		encoded = data
		if m, found := strings.CutPrefix(head, "data:"); found {
			m, _, _ = strings.Cut(m, ";")
			if m != "" {
				mime = m
			}
		}
	}
	if encoded == "" {
		return Media{}, invalidImage("is empty")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Media{}, invalidImage("is not valid base64")
	}
	return Media{MIMEType: mime, Data: data}, nil
}

func invalidImage(msg string) error {
	return &model.ValidationError{Fields: map[string]string{"image": msg}}
}
