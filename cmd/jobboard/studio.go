package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobboard/internal/ai"
	"github.com/amishk599/jobboard/internal/console"
	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/secrets"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Edit or animate job poster images",
}

var (
	studioInstruction string
	studioOut         string
	studioAspect      string
)

var studioEditCmd = &cobra.Command{
	Use:   "edit IMAGE",
	Short: "Restyle a poster image following an instruction",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudioEdit,
}

var studioAnimateCmd = &cobra.Command{
	Use:   "animate IMAGE",
	Short: "Turn a poster image into a short video",
	Long:  "Starts a video generation and waits for it, polling every ai.poll_interval up to ai.max_polls times.",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudioAnimate,
}

func init() {
	studioEditCmd.Flags().StringVarP(&studioInstruction, "instruction", "i", "", "what to change")
	_ = studioEditCmd.MarkFlagRequired("instruction")
	studioEditCmd.Flags().StringVarP(&studioOut, "out", "o", "", "output file (default: IMAGE with -edited suffix)")

	studioAnimateCmd.Flags().StringVarP(&studioInstruction, "instruction", "i", "", "motion prompt (default: subtle poster animation)")
	studioAnimateCmd.Flags().StringVar(&studioAspect, "aspect", ai.AspectLandscape, "aspect ratio: 16:9 or 9:16")
	studioAnimateCmd.Flags().StringVarP(&studioOut, "out", "o", "", "output file (default: IMAGE with .mp4 extension)")

	studioCmd.AddCommand(studioEditCmd, studioAnimateCmd)
	rootCmd.AddCommand(studioCmd)
}

// setupStudioCLI builds a studio whose logs stay off the spinner unless
// --debug is set.
func setupStudioCLI() (*ai.Studio, func(), error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if !debug {
		return setupStudio(cfg, silentLogger()), func() {}, nil
	}
	logger, logFile := setupLogger(debug, cfg.Log)
	return setupStudio(cfg, logger), func() { logFile.Close() }, nil
}

// readImage loads path as a data URI.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("read image: %s is %s, not an image", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func outputPath(in, explicit, suffix, ext string) string {
	if explicit != "" {
		return explicit
	}
	base := strings.TrimSuffix(in, filepath.Ext(in))
	return base + suffix + ext
}

func runStudioEdit(cmd *cobra.Command, args []string) error {
	studio, done, err := setupStudioCLI()
	if err != nil {
		return err
	}
	defer done()

	image, err := readImage(args[0])
	if err != nil {
		return err
	}

	media, err := console.RunLoader(cmd.Context(), "Editing image", func(ctx context.Context) (*ai.Media, error) {
		return studio.EditImage(ctx, image, studioInstruction)
	})
	if err != nil {
		return studioError(err)
	}
	if media == nil {
		return errors.New("the model returned no image, try rephrasing the instruction")
	}

	out := outputPath(args[0], studioOut, "-edited", extensionFor(media.MIMEType, ".png"))
	if err := os.WriteFile(out, media.Data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", out, len(media.Data))
	return nil
}

func runStudioAnimate(cmd *cobra.Command, args []string) error {
	studio, done, err := setupStudioCLI()
	if err != nil {
		return err
	}
	defer done()

	image, err := readImage(args[0])
	if err != nil {
		return err
	}

	media, err := console.RunLoader(cmd.Context(), "Generating video", func(ctx context.Context) (*ai.Media, error) {
		return studio.AnimateImage(ctx, image, studioInstruction, studioAspect)
	})
	if err != nil {
		return studioError(err)
	}
	if media == nil {
		return errors.New("the generation finished without a video")
	}

	out := outputPath(args[0], studioOut, "", ".mp4")
	if err := os.WriteFile(out, media.Data, 0o644); err != nil {
		return fmt.Errorf("write video: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", out, len(media.Data))
	return nil
}

func extensionFor(mime, fallback string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return fallback
}

func studioError(err error) error {
	switch {
	case errors.Is(err, model.ErrCredentialRequired):
		return fmt.Errorf("%w: store a paid API key with: jobboard secrets set %s", err, secrets.AIKey)
	case errors.Is(err, model.ErrGenerationTimeout):
		return fmt.Errorf("%w, please try again", err)
	}
	return explain(err)
}
