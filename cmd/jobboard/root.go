package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amishk599/jobboard/internal/ai"
	"github.com/amishk599/jobboard/internal/board"
	"github.com/amishk599/jobboard/internal/config"
	"github.com/amishk599/jobboard/internal/model"
	"github.com/amishk599/jobboard/internal/notifier"
	"github.com/amishk599/jobboard/internal/policy"
	"github.com/amishk599/jobboard/internal/poller"
	"github.com/amishk599/jobboard/internal/ratelimit"
	"github.com/amishk599/jobboard/internal/retry"
	"github.com/amishk599/jobboard/internal/secrets"
	"github.com/amishk599/jobboard/internal/session"
	"github.com/amishk599/jobboard/internal/store"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "jobboard",
	Short:         "Job board with admin alerts and an AI poster studio",
	Long:          "jobboard stores job listings and applications, alerts the administrator on Telegram and edits or animates job posters.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBBOARD_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBBOARD_CONFIG env var > "./config.yaml".
// A missing default file falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv("JOBBOARD_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = defaultConfigPath
		}
	}

	keys := secrets.NewKeyring()
	cfg, err := config.Load(path, keys)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		cfg.ApplySecrets(keys)
		return cfg, nil
	}
	return cfg, err
}

// setupLogger writes to stderr, and also to a rotating file when lc.File is set.
func setupLogger(dbg bool, lc config.LogConfig) (*slog.Logger, io.Closer) {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if lc.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAgeDays,
			Compress:   lc.Compress,
		}
		out = io.MultiWriter(os.Stderr, rotating)
		closer = rotating
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel})), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// silentLogger keeps log lines off the terminal while a TUI owns it.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	if !cfg.Telegram.Enabled() {
		logger.Debug("telegram token not set, using log notifier")
		return notifier.NewLogNotifier(logger)
	}
	httpClient := &http.Client{Timeout: cfg.Telegram.Timeout}
	return notifier.NewTelegramNotifier(cfg.Telegram.BaseURL, cfg.Telegram.Token, cfg.Telegram.ChatID,
		cfg.Telegram.DisablePreview, httpClient, logger)
}

func setupStudio(cfg *config.Config, logger *slog.Logger) *ai.Studio {
	var provider ai.Provider
	if cfg.AI.APIKey == "" {
		logger.Debug("ai api key not set, generation disabled")
		provider = ai.NewDisabledProvider()
	} else {
		httpClient := &http.Client{Timeout: cfg.AI.Timeout}
		provider = ai.NewGeminiProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.ImageModel, cfg.AI.VideoModel, httpClient)
	}

	limiter := ratelimit.NewEndpointLimiter(cfg.AI.RequestsPerSecond, cfg.AI.Burst)
	provider = ratelimit.NewRateLimitedProvider(provider, limiter)

	p := poller.NewPoller("video generation", cfg.AI.PollInterval, cfg.AI.MaxPolls, logger)
	r := retry.NewRetrier(2, 2*time.Second, logger)
	return ai.NewStudio(provider, p, r, logger)
}

// app is the wired board shared by every command that touches the data dir.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	policy   policy.OwnerOrAdmin
	store    *store.Store
	board    *board.Service
	session  *session.Manager
	notifier model.Notifier
	logFile  io.Closer
}

// openApp loads config, opens the store and wires the board. quiet discards
// log output, for commands that hand the terminal to a TUI.
func openApp(quiet bool) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, logFile := setupLogger(debug, cfg.Log)
	if quiet {
		logFile.Close()
		logger, logFile = silentLogger(), nopCloser{}
	}

	pol := policy.OwnerOrAdmin{AdminID: cfg.Admin.UserID}
	st, err := store.OpenDir(cfg.DataDir, pol, store.WithLogger(logger))
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.Seed {
		if _, err := st.SeedIfEmpty(); err != nil {
			st.Close()
			logFile.Close()
			return nil, err
		}
	}

	n := setupNotifier(cfg, logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		policy:   pol,
		store:    st,
		board:    board.NewService(st, n, board.WithLogger(logger)),
		session:  session.NewManager(st, st.Backend(), logger),
		notifier: n,
		logFile:  logFile,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
	a.logFile.Close()
}

// currentUser returns the logged-in user or an error telling how to log in.
func (a *app) currentUser() (*model.User, error) {
	u, err := a.session.Current()
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.New("not logged in, run: jobboard login --name NAME --handle @HANDLE")
	}
	return u, nil
}
