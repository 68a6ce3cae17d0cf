package queue_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/veranstalter/pkg/queue"
)

func TestConfigDefaults(t *testing.T) {
	cfg := queue.Config{}
	require.NoError(t, cfg.Finalize(nil))

	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, "veranstalter:mail", cfg.Key)
	assert.Equal(t, "veranstalter:mail:dlq", cfg.DeadLetter)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.PollTimeoutDuration())
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis:6380")
	t.Setenv("TEST_REDIS_DB", "2")
	t.Setenv("TEST_REDIS_RETRIES", "5")

	cfg := queue.Config{}
	require.NoError(t, cfg.Finalize(&queue.Env{
		Addr:       "TEST_REDIS_ADDR",
		DB:         "TEST_REDIS_DB",
		MaxRetries: "TEST_REDIS_RETRIES",
	}))

	assert.Equal(t, "redis:6380", cfg.Addr)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     queue.Config
		wantErr string
	}{
		{"same keys", queue.Config{Key: "q", DeadLetter: "q"}, "dead_letter must differ"},
		{"bad timeout", queue.Config{PollTimeout: "soon"}, "invalid poll_timeout"},
		{"negative retries", queue.Config{MaxRetries: -1}, "max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := queue.Config{Addr: "a:1", Key: "k"}
	base.Merge(&queue.Config{Addr: "b:2"})

	assert.Equal(t, "b:2", base.Addr)
	assert.Equal(t, "k", base.Key)
}

func TestNewIsLazy(t *testing.T) {
	cfg := queue.Config{Addr: "127.0.0.1:1"}
	require.NoError(t, cfg.Finalize(nil))

	q := queue.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, q.Ready())
}

func TestJobDecode(t *testing.T) {
	job := queue.Job{Payload: json.RawMessage(`{"subject":"Neuer Veranstalter 1"}`)}

	var payload struct {
		Subject string `json:"subject"`
	}
	require.NoError(t, job.Decode(&payload))
	assert.Equal(t, "Neuer Veranstalter 1", payload.Subject)
}
