package assets

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/choralworks/medialib/pkg/query"
	"github.com/choralworks/medialib/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates the Postgres-backed metadata store.
func NewRepository(db *sql.DB, logger *slog.Logger) MetadataStore {
	return &repo{
		db:     db,
		logger: logger.With("system", "assets"),
	}
}

func (r *repo) ListPage(ctx context.Context, scope string, typeFilter *Type, after *Cursor, limit int) ([]Record, bool, error) {
	qb := query.
		NewBuilder(projection).
		WhereEquals("Scope", scope)

	if typeFilter != nil {
		qb.WhereEquals("Type", string(*typeFilter))
	}
	if after != nil {
		qb.WhereBefore([]string{"CreatedAt", "Id"}, after.CreatedAt, after.ID)
	}

	q, args := qb.
		OrderByDesc("CreatedAt", "Id").
		BuildLimited(limit)

	records, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, false, fmt.Errorf("list assets: %w", err)
	}

	return records, len(records) == limit, nil
}

func (r *repo) SearchAll(ctx context.Context, scope, keyword string) ([]Record, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("Scope", scope).
		WhereSearch(keyword, "Name", "Folder").
		OrderByDesc("CreatedAt", "Id").
		BuildAll()

	records, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("search assets: %w", err)
	}

	return records, nil
}

func (r *repo) Insert(ctx context.Context, cmd CreateCommand) (*Record, error) {
	cmd.normalize()

	q := `INSERT INTO assets(scope, name, url, type, size_bytes, folder, blob_ref, page_count)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, scope, name, url, type, size_bytes, folder, blob_ref, page_count, created_at, updated_at`

	var blobRef *string
	if cmd.BlobRef != "" {
		blobRef = &cmd.BlobRef
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			cmd.Scope, cmd.Name, cmd.URL, string(cmd.Type), cmd.SizeBytes, cmd.Folder, blobRef, cmd.PageCount,
		}, scanRecord)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("asset created", "id", rec.ID, "scope", rec.Scope, "name", rec.Name, "type", rec.Type)
	return &rec, nil
}

func (r *repo) FindByID(ctx context.Context, scope string, id uuid.UUID) (*Record, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("Scope", scope).
		BuildSingle("Id", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) DeleteByID(ctx context.Context, scope string, id uuid.UUID) error {
	q := `DELETE FROM assets WHERE scope = $1 AND id = $2`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, scope, id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("asset record deleted", "id", id, "scope", scope)
	return nil
}
