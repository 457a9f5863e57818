package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/moderation"
)

type flagRow struct {
	ID          string      `db:"id"`
	ContentType string      `db:"content_type"`
	ContentID   string      `db:"content_id"`
	Reason      string      `db:"reason"`
	Keyword     null.String `db:"keyword"`
	FlaggedBy   null.String `db:"flagged_by"`
	Status      string      `db:"status"`
	ResolvedBy  null.String `db:"resolved_by"`
	CreatedAt   null.Time   `db:"created_at"`
	ResolvedAt  null.Time   `db:"resolved_at"`
}

func (r flagRow) toFlag() moderation.Flag {
	return moderation.Flag{
		ID:          r.ID,
		ContentType: r.ContentType,
		ContentID:   r.ContentID,
		Reason:      r.Reason,
		Keyword:     r.Keyword,
		FlaggedBy:   r.FlaggedBy,
		Status:      r.Status,
		ResolvedBy:  r.ResolvedBy,
		CreatedAt:   r.CreatedAt.Time,
		ResolvedAt:  r.ResolvedAt,
	}
}

type moderationRepository struct {
	db *sqlx.DB
}

var _ moderation.Repository = (*moderationRepository)(nil) // interface compliance check

func NewModerationRepository(db *sqlx.DB) *moderationRepository {
	return &moderationRepository{db: db}
}

func (repo moderationRepository) CreateFlag(ctx context.Context, flag moderation.Flag) (moderation.Flag, error) {
	flag.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO flag (id, content_type, content_id, reason, keyword, flagged_by, status, resolved_by, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		flag.ID, flag.ContentType, flag.ContentID, flag.Reason, flag.Keyword,
		flag.FlaggedBy, flag.Status, flag.ResolvedBy, flag.CreatedAt.UTC(), flag.ResolvedAt)
	if err != nil {
		return moderation.Flag{}, errors.Wrap(err, "inserting flag")
	}
	return flag, nil
}

func (repo moderationRepository) GetFlag(ctx context.Context, id string) (moderation.Flag, error) {
	if _, err := uuid.Parse(id); err != nil {
		return moderation.Flag{}, moderation.ErrNotFound
	}
	var row flagRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM flag WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return moderation.Flag{}, moderation.ErrNotFound
		}
		return moderation.Flag{}, errors.Wrap(err, "finding flag")
	}
	return row.toFlag(), nil
}

func (repo moderationRepository) QueryFlags(ctx context.Context, status string, ordering ...core.DBOrdering) ([]moderation.Flag, error) {
	query := `SELECT * FROM flag`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	if len(ordering) > 0 {
		query += orderingClause(ordering)
	} else {
		query += " ORDER BY created_at"
	}

	var rows []flagRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying flags")
	}
	flags := make([]moderation.Flag, 0, len(rows))
	for _, r := range rows {
		flags = append(flags, r.toFlag())
	}
	return flags, nil
}

func (repo moderationRepository) UpdateFlag(ctx context.Context, flag moderation.Flag) (moderation.Flag, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE flag SET status = $1, resolved_by = $2, resolved_at = $3 WHERE id = $4`,
		flag.Status, flag.ResolvedBy, flag.ResolvedAt, flag.ID)
	if err != nil {
		return moderation.Flag{}, errors.Wrap(err, "updating flag")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return moderation.Flag{}, moderation.ErrNotFound
	}
	return flag, nil
}

func (repo moderationRepository) RedactContent(ctx context.Context, contentType, contentID string) error {
	var query string
	switch contentType {
	case moderation.ContentObservation:
		query = `UPDATE observation SET body = $1 WHERE id = $2`
	case moderation.ContentMessage:
		query = `UPDATE message SET body = $1 WHERE id = $2`
	default:
		return errors.Errorf("unknown content type %q", contentType)
	}
	_, err := repo.db.ExecContext(ctx, query, moderation.RedactedBody, contentID)
	return errors.Wrap(err, "redacting content")
}
