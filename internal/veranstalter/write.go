package veranstalter

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/veranstalter/pkg/mail"
	"github.com/JaimeStill/veranstalter/pkg/repository"
)

const (
	insertVeranstalter = `
		INSERT INTO veranstalter(version, name, email, telefon, homepage, gruendungsdatum, bewertung, aktiv, art, kategorien)
		VALUES (0, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	insertStandort = `
		INSERT INTO standort(veranstalter_id, ort, plz, strasse, land, details)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertTeilnehmer = `
		INSERT INTO teilnehmer(veranstalter_id, vorname, nachname, email)
		VALUES ($1, $2, $3, $4)`

	insertDokument = `
		INSERT INTO dokument(veranstalter_id, titel, beschreibung, dateiname)
		VALUES ($1, $2, $3, $4)`

	insertFile = `
		INSERT INTO veranstalter_file(veranstalter_id, filename, mimetype, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, filename, mimetype, size_bytes, page_count, storage_key, erzeugt`
)

// AllowedMimeTypes lists the sniffed types accepted for attachments.
var AllowedMimeTypes = []string{"image/png", "image/jpeg", "application/pdf"}

// DetectMimeType sniffs data and reports whether the type is allowed.
func DetectMimeType(data []byte) (string, bool) {
	m := mimetype.Detect(data)
	for _, allowed := range AllowedMimeTypes {
		if m.Is(allowed) {
			return allowed, true
		}
	}
	return m.String(), false
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (int, error) {
	v := cmd.Veranstalter

	id, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		id, err := repository.QueryScalar[int](
			ctx, tx, insertVeranstalter,
			v.Name,
			v.Email,
			v.Telefon,
			v.Homepage,
			v.Gruendungsdatum,
			v.Bewertung,
			v.Aktiv,
			artValue(v.Art),
			kategorienValue(v.Kategorien),
		)
		if err != nil {
			return 0, fmt.Errorf("insert veranstalter: %w", err)
		}

		if st := v.Standort; st != nil {
			if _, err := tx.ExecContext(
				ctx, insertStandort,
				id, st.Ort, st.Plz, st.Strasse, st.Land, st.Details,
			); err != nil {
				return 0, fmt.Errorf("insert standort: %w", err)
			}
		}

		for _, t := range v.Teilnehmer {
			if _, err := tx.ExecContext(
				ctx, insertTeilnehmer,
				id, t.Vorname, t.Nachname, t.Email,
			); err != nil {
				return 0, fmt.Errorf("insert teilnehmer: %w", err)
			}
		}

		for _, d := range v.Dokumente {
			if _, err := tx.ExecContext(
				ctx, insertDokument,
				id, d.Titel, d.Beschreibung, d.Dateiname,
			); err != nil {
				return 0, fmt.Errorf("insert dokument: %w", err)
			}
		}

		return id, nil
	})

	if err != nil {
		return 0, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("veranstalter created", "id", id, "name", v.Name)
	r.notify(ctx, id, v.Name)
	return id, nil
}

func (r *repo) AddFile(ctx context.Context, cmd AddFileCommand) (*File, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrInvalidFile
	}

	filename := sanitizeFilename(cmd.Filename)
	key := buildStorageKey(cmd.ID, uuid.New(), filename)

	detected := mimetype.Detect(cmd.Data)
	var contentType *string
	if !detected.Is("application/octet-stream") {
		s, _, _ := strings.Cut(detected.String(), ";")
		contentType = &s
	}

	uploadType := "application/octet-stream"
	if contentType != nil {
		uploadType = *contentType
	}

	pageCount := r.pdfPageCount(cmd.Data, contentType)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), uploadType); err != nil {
		return nil, fmt.Errorf("upload file blob: %w", err)
	}

	type result struct {
		file    File
		prevKey string
	}

	res, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (result, error) {
		exists, err := repository.QueryScalar[bool](
			ctx, tx,
			"SELECT EXISTS(SELECT 1 FROM veranstalter WHERE id = $1)",
			cmd.ID,
		)
		if err != nil {
			return result{}, err
		}
		if !exists {
			return result{}, fmt.Errorf("%w: id %d", ErrNotFound, cmd.ID)
		}

		var prev string
		err = tx.QueryRowContext(
			ctx,
			"DELETE FROM veranstalter_file WHERE veranstalter_id = $1 RETURNING storage_key",
			cmd.ID,
		).Scan(&prev)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return result{}, err
		}

		f, err := repository.QueryOne(
			ctx, tx, insertFile,
			[]any{cmd.ID, cmd.Filename, contentType, int64(len(cmd.Data)), pageCount, key},
			scanFile,
		)
		if err != nil {
			return result{}, err
		}

		return result{file: f, prevKey: prev}, nil
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if res.prevKey != "" {
		r.deleteBlob(ctx, res.prevKey)
	}

	r.logger.Info(
		"file attached",
		"id", cmd.ID,
		"filename", res.file.Filename,
		"size", res.file.SizeBytes,
	)
	return &res.file, nil
}

func (r *repo) Update(ctx context.Context, cmd UpdateCommand) (int, error) {
	supplied, err := ParseVersion(cmd.Version)
	if err != nil {
		return 0, err
	}

	current, err := r.FindByID(ctx, cmd.ID, FindOptions{})
	if err != nil {
		return 0, err
	}

	if err := checkVersion(supplied, current.Version); err != nil {
		return 0, err
	}

	version, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		set := patchAssignments(cmd.Patch)
		set.raw("version = version + 1")
		set.raw("aktualisiert = NOW()")

		q, args := set.update("veranstalter", "id", cmd.ID, "RETURNING version")
		version, err := repository.QueryScalar[int](ctx, tx, q, args...)
		if err != nil {
			return 0, err
		}

		if cmd.Patch.Standort != nil {
			st := standortAssignments(*cmd.Patch.Standort)
			if !st.empty() {
				q, args := st.update("standort", "veranstalter_id", cmd.ID, "")
				if err := repository.ExecExpectOne(ctx, tx, q, args...); err != nil {
					return 0, fmt.Errorf("update standort: %w", err)
				}
			}
		}

		return version, nil
	})

	if err != nil {
		return 0, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("veranstalter updated", "id", cmd.ID, "version", version)
	return version, nil
}

func (r *repo) Delete(ctx context.Context, id int) error {
	key, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		var key string
		err := tx.QueryRowContext(
			ctx,
			"DELETE FROM veranstalter_file WHERE veranstalter_id = $1 RETURNING storage_key",
			id,
		).Scan(&key)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM veranstalter WHERE id = $1", id); err != nil {
			return "", err
		}
		return key, nil
	})

	if err != nil {
		return fmt.Errorf("delete veranstalter %d: %w", id, err)
	}

	if key != "" {
		r.deleteBlob(ctx, key)
	}

	r.logger.Info("veranstalter deleted", "id", id)
	return nil
}

func (r *repo) notify(ctx context.Context, id int, name string) {
	if r.mailer == nil {
		return
	}

	msg := mail.Message{
		Subject: fmt.Sprintf("Neuer Veranstalter %d", id),
		Body: fmt.Sprintf(
			"Der Veranstalter mit dem Namen <strong>%s</strong> ist angelegt",
			html.EscapeString(name),
		),
	}

	if err := r.mailer.Send(ctx, msg); err != nil {
		r.logger.Warn("notification failed", "id", id, "error", err)
	}
}

func (r *repo) deleteBlob(ctx context.Context, key string) {
	if err := r.storage.Delete(ctx, key); err != nil {
		r.logger.Warn("blob delete failed after DB commit", "key", key, "error", err)
	}
}

func (r *repo) pdfPageCount(data []byte, contentType *string) *int {
	if contentType == nil || *contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		r.logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}

func buildStorageKey(id int, fileID uuid.UUID, filename string) string {
	return fmt.Sprintf("veranstalter/%d/%s/%s", id, fileID, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return url.PathEscape(name)
}

func artValue(a *Art) *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}

func kategorienValue(k []string) []string {
	if k == nil {
		return []string{}
	}
	return k
}
