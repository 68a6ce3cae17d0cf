// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, queue, mail, auth)
// that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JaimeStill/veranstalter/internal/config"
	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/database"
	"github.com/JaimeStill/veranstalter/pkg/lifecycle"
	"github.com/JaimeStill/veranstalter/pkg/mail"
	"github.com/JaimeStill/veranstalter/pkg/queue"
	"github.com/JaimeStill/veranstalter/pkg/storage"
)

const discoveryTimeout = 10 * time.Second

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Queue     queue.System
	Mailer    mail.Sender
	Worker    *mail.Worker
	Verifier  auth.Verifier
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// In OIDC mode it contacts the issuer for provider discovery.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Log, os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	verifier, err := NewVerifier(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Verifier:  verifier,
	}

	if cfg.Mail.Enabled {
		infra.Queue = queue.New(&cfg.Redis, logger)
		infra.Mailer = mail.NewQueued(infra.Queue, logger)
		infra.Worker = mail.NewWorker(infra.Queue, mail.NewSMTP(&cfg.Mail, logger), logger)
	} else {
		infra.Mailer = mail.NewLog(logger)
	}

	return infra, nil
}

// NewLogger builds the root slog logger writing to w.
func NewLogger(cfg *config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, config.LogFormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewVerifier selects the bearer token verifier for the configured mode.
func NewVerifier(cfg *auth.Config) (auth.Verifier, error) {
	switch cfg.Mode {
	case auth.ModeOIDC:
		ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
		defer cancel()
		return auth.NewOIDC(ctx, cfg.Issuer, cfg.ClientID)
	case auth.ModeHMAC:
		return auth.NewHMAC(cfg.Secret, cfg.Issuer, cfg.TokenTTLDuration()), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// Start registers all infrastructure systems with the lifecycle coordinator
// and their readiness checks.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	i.Lifecycle.Register("database", i.Database)

	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	i.Lifecycle.Register("storage", i.Storage)

	if i.Queue != nil {
		if err := i.Queue.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("queue start failed: %w", err)
		}
		i.Lifecycle.Register("queue", i.Queue)
	}

	if i.Worker != nil {
		if err := i.Worker.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("mail worker start failed: %w", err)
		}
	}
	return nil
}
