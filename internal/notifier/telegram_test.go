package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobboard/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTelegramNotifier_PostsSendMessage(t *testing.T) {
	var gotPath string
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(srv.URL, "123:abc", "-100200", true, srv.Client(), discardLogger())
	ok := n.Notify(context.Background(), "<b>hi</b>")

	assert.True(t, ok)
	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, sendMessageRequest{
		ChatID:                "-100200",
		Text:                  "<b>hi</b>",
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}, got)
}

func TestTelegramNotifier_NonSuccessStatusIsFalse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(srv.URL, "tok", "1", false, srv.Client(), discardLogger())

	assert.False(t, n.Notify(context.Background(), "x"))
	assert.Equal(t, int32(1), calls.Load(), "no retry")
}

func TestTelegramNotifier_TooManyRequestsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewTelegramNotifier(srv.URL, "tok", "1", false, srv.Client(), discardLogger())

	assert.False(t, n.Notify(context.Background(), "x"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTelegramNotifier_TransportFailureIsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	n := NewTelegramNotifier(url, "secret-token", "1", false, http.DefaultClient, discardLogger())
	assert.False(t, n.Notify(context.Background(), "x"))
}

func TestTelegramNotifier_MissingConfigIsFalse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	n := NewTelegramNotifier(srv.URL, "", "1", false, srv.Client(), discardLogger())
	assert.False(t, n.Notify(context.Background(), "x"))
	assert.Zero(t, calls.Load())
}

func TestRedact_HidesToken(t *testing.T) {
	err := redact(io.ErrUnexpectedEOF, "")
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	err = redact(assert.AnError, "general")
	assert.NotContains(t, err.Error(), "general")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLogNotifier_AlwaysSucceeds(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	assert.True(t, n.Notify(context.Background(), "hello"))
}

var _ model.Notifier = (*recordingNotifier)(nil)

type recordingNotifier struct{ texts []string }

func (r *recordingNotifier) Notify(_ context.Context, text string) bool {
	r.texts = append(r.texts, text)
	return true
}

func TestSendTestMessage(t *testing.T) {
	rec := &recordingNotifier{}
	ok := SendTestMessage(context.Background(), rec, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	require.True(t, ok)
	require.Len(t, rec.texts, 1)
	assert.Contains(t, rec.texts[0], "14.03.2026 09:30")
}
