package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/poller"
	"github.com/amishk599/jobboard/internal/retry"
)

// Supported animation aspect ratios.
const (
	AspectLandscape = "16:9"
	AspectPortrait  = "9:16"
)

const videoResolution = "720p"

// Studio edits and animates job poster images through a Provider.
type Studio struct {
	provider Provider
	poller   *poller.Poller
	retrier  *retry.Retrier
	logger   *slog.Logger
}

// NewStudio creates a Studio. p bounds how long AnimateImage waits; r retries
// the final download.
func NewStudio(provider Provider, p *poller.Poller, r *retry.Retrier, logger *slog.Logger) *Studio {
	return &Studio{
		provider: provider,
		poller:   p,
		retrier:  r,
		logger:   logger,
	}
}

// EditImage applies instruction to image in the board's visual style.
// image is base64, with or without a data URI prefix. It returns nil when the
// model answers without an image.
func (s *Studio) EditImage(ctx context.Context, image, instruction string) (*Media, error) {
	src, err := ParseImage(image)
	if err != nil {
		return nil, err
	}

	s.logger.Info("editing image", "bytes", len(src.Data), "mime", src.MIMEType)
	parts, err := s.provider.GenerateContent(ctx, []Part{
		{Inline: &src},
		{Text: editPrompt(instruction)},
	})
	if err != nil {
		return nil, fmt.Errorf("edit image: %w", err)
	}

	for _, part := range parts {
		if part.Inline != nil {
			return part.Inline, nil
		}
	}
	s.logger.Warn("image edit returned no image part", "parts", len(parts))
	return nil, nil
}

// AnimateImage turns image into a short video. An empty instruction uses
// DefaultAnimationPrompt and an empty aspect uses AspectLandscape. It returns
// model.ErrGenerationTimeout when the operation is still pending after the
// last poll, and nil when the finished operation carries no video.
func (s *Studio) AnimateImage(ctx context.Context, image, instruction, aspect string) (*Media, error) {
	if aspect == "" {
		aspect = AspectLandscape
	}
	if aspect != AspectLandscape && aspect != AspectPortrait {
		return nil, &model.ValidationError{Fields: map[string]string{
			"aspect": fmt.Sprintf("must be %s or %s", AspectLandscape, AspectPortrait),
		}}
	}
	if instruction == "" {
		instruction = DefaultAnimationPrompt
	}

	src, err := ParseImage(image)
	if err != nil {
		return nil, err
	}

	op, err := s.provider.StartVideo(ctx, VideoRequest{
		Prompt:      instruction,
		Image:       src,
		AspectRatio: aspect,
		Resolution:  videoResolution,
	})
	if err != nil {
		return nil, fmt.Errorf("animate image: %w", err)
	}
	s.logger.Info("video generation started", "operation", op.Name, "aspect", aspect)

	if !op.Done {
		err = s.poller.UntilDone(ctx, func(ctx context.Context, _ int) (bool, error) {
			next, err := s.provider.GetOperation(ctx, op.Name)
			if err != nil {
				return false, err
			}
			op = next
			return op.Done, nil
		})
		if errors.Is(err, poller.ErrTimeout) {
			return nil, fmt.Errorf("animate image: %w after %d polls", model.ErrGenerationTimeout, s.poller.MaxAttempts())
		}
		if err != nil {
			return nil, fmt.Errorf("animate image: %w", err)
		}
	}

	if op.Err != nil {
		return nil, fmt.Errorf("animate image: %w", op.Err)
	}
	if len(op.VideoURIs) == 0 {
		s.logger.Warn("video generation finished without a video", "operation", op.Name)
		return nil, nil
	}

	var video *Media
	err = s.retrier.Do(ctx, "video download", func(ctx context.Context) error {
		m, err := s.provider.Download(ctx, op.VideoURIs[0])
		if err != nil {
			return err
		}
		video = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("animate image: %w", err)
	}
	s.logger.Info("video downloaded", "operation", op.Name, "bytes", len(video.Data))
	return video, nil
}
