package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/amishk599/jobboard/internal/config"
	"github.com/amishk599/jobboard/internal/model"
)

func TestLoadConfig_MissingDefaultFallsBack(t *testing.T) {
	keyring.MockInit()
	t.Chdir(t.TempDir())
	t.Setenv("JOBBOARD_CONFIG", "")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultListen, cfg.Server.Listen)
	assert.Equal(t, config.DefaultMaxPolls, cfg.AI.MaxPolls)
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	keyring.MockInit()
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_EnvPath(t *testing.T) {
	keyring.MockInit()
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen: \"127.0.0.1:9999\"\n"), 0o600))
	t.Setenv("JOBBOARD_CONFIG", path)

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Listen)
}

func TestSetupLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jobboard.log")
	logger, closer := setupLogger(false, config.LogConfig{File: path, MaxSizeMB: 1})
	logger.Info("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestExplain_ListsFieldsInOrder(t *testing.T) {
	err := explain(&model.ValidationError{Fields: map[string]string{
		"title":   "must be at least 5 characters",
		"company": "is required",
	}})
	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "  company is required", lines[1])
	assert.Equal(t, "  title must be at least 5 characters", lines[2])

	plain := errors.New("boom")
	assert.Same(t, plain, explain(plain))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "poster-edited.png", outputPath("poster.jpg", "", "-edited", ".png"))
	assert.Equal(t, "poster.mp4", outputPath("poster.png", "", "", ".mp4"))
	assert.Equal(t, "x.mp4", outputPath("poster.png", "x.mp4", "", ".mp4"))
}

func TestRecordSchemas(t *testing.T) {
	schemas := recordSchemas()
	require.Contains(t, schemas, "job")
	props := schemas["job"].Properties
	require.NotNil(t, props)
	_, ok := props.Get("postedAt")
	assert.True(t, ok)
	_, ok = props.Get("ownerId")
	assert.True(t, ok)
}

func TestCheckSecretName(t *testing.T) {
	assert.NoError(t, checkSecretName("ai-api-key"))
	assert.Error(t, checkSecretName("password"))
}
