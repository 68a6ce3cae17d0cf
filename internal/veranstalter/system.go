package veranstalter

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/JaimeStill/veranstalter/pkg/mail"
	"github.com/JaimeStill/veranstalter/pkg/pagination"
	"github.com/JaimeStill/veranstalter/pkg/storage"
)

// System defines the public contract for organizer operations.
type System interface {
	Handler(basePath string, maxUploadSize int64) *Handler

	FindByID(ctx context.Context, id int, opts FindOptions) (*Veranstalter, error)
	Find(
		ctx context.Context,
		params Suchparameter,
		page pagination.PageRequest,
	) (*pagination.Slice[Veranstalter], error)
	FindFile(ctx context.Context, id int) (*FileContent, error)
	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, cmd CreateCommand) (int, error)
	AddFile(ctx context.Context, cmd AddFileCommand) (*File, error)
	Update(ctx context.Context, cmd UpdateCommand) (int, error)
	Delete(ctx context.Context, id int) error
}

type repo struct {
	db         *sql.DB
	storage    storage.System
	mailer     mail.Sender
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an organizer repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	mailer mail.Sender,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		mailer:     mailer,
		logger:     logger.With("system", "veranstalter"),
		pagination: pagination,
	}
}

func (r *repo) Handler(basePath string, maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, basePath, maxUploadSize)
}
