package veranstalter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/veranstalter/pkg/pagination"
	"github.com/JaimeStill/veranstalter/pkg/query"
	"github.com/JaimeStill/veranstalter/pkg/repository"
	"github.com/JaimeStill/veranstalter/pkg/storage"
)

func (r *repo) FindByID(ctx context.Context, id int, opts FindOptions) (*Veranstalter, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVeranstalter)
	if err != nil {
		err = repository.MapError(err, ErrNotFound, ErrDuplicate)
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("find veranstalter %d: %w", id, err)
	}

	if !opts.Teilnehmer {
		return &v, nil
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := repository.QueryMany(gctx, r.db, selectTeilnehmer, []any{id}, scanTeilnehmer)
		if err != nil {
			return fmt.Errorf("query teilnehmer: %w", err)
		}
		v.Teilnehmer = t
		return nil
	})

	g.Go(func() error {
		d, err := repository.QueryMany(gctx, r.db, selectDokumente, []any{id}, scanDokument)
		if err != nil {
			return fmt.Errorf("query dokumente: %w", err)
		}
		v.Dokumente = d
		return nil
	})

	g.Go(func() error {
		f, err := r.findFileRow(gctx, id)
		if err != nil {
			return err
		}
		v.File = f
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("veranstalter found", "id", id, "teilnehmer", len(v.Teilnehmer))
	return &v, nil
}

func (r *repo) Find(
	ctx context.Context,
	params Suchparameter,
	page pagination.PageRequest,
) (*pagination.Slice[Veranstalter], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)

	if len(params) > 0 {
		if err := params.Validate(); err != nil {
			return nil, err
		}

		preds, err := BuildPredicates(params, r.logger)
		if err != nil {
			return nil, err
		}
		preds.Apply(qb)
	}

	var (
		content []Veranstalter
		total   int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, args := qb.BuildPage(page.Offset(), page.Limit())
		rows, err := repository.QueryMany(gctx, r.db, q, args, scanVeranstalter)
		if err != nil {
			return fmt.Errorf("query veranstalter: %w", err)
		}
		content = rows
		return nil
	})

	g.Go(func() error {
		q, args := qb.BuildCount()
		n, err := repository.QueryScalar[int](gctx, r.db, q, args...)
		if err != nil {
			return fmt.Errorf("count veranstalter: %w", err)
		}
		total = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(content) == 0 {
		if len(params) == 0 {
			return nil, fmt.Errorf("%w: invalid page %d", ErrNotFound, page.Number)
		}
		return nil, fmt.Errorf("%w: no match on page %d", ErrNotFound, page.Number)
	}

	return &pagination.Slice[Veranstalter]{
		Content:       content,
		TotalElements: total,
	}, nil
}

func (r *repo) FindFile(ctx context.Context, id int) (*FileContent, error) {
	f, err := r.findFileRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		r.logger.Debug("no file attached", "id", id)
		return nil, nil
	}

	body, err := r.storage.Download(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("file row without blob", "id", id, "key", f.StorageKey)
			return nil, nil
		}
		return nil, fmt.Errorf("download file: %w", err)
	}

	return &FileContent{File: *f, Body: body}, nil
}

func (r *repo) Count(ctx context.Context) (int, error) {
	q, args := query.NewBuilder(projection).BuildCount()
	n, err := repository.QueryScalar[int](ctx, r.db, q, args...)
	if err != nil {
		return 0, fmt.Errorf("count veranstalter: %w", err)
	}
	return n, nil
}

// findFileRow returns nil without error when no file is attached.
func (r *repo) findFileRow(ctx context.Context, id int) (*File, error) {
	f, err := repository.QueryOne(ctx, r.db, selectFile, []any{id}, scanFile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query file: %w", err)
	}
	return &f, nil
}
