package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/sync"
)

type syncLogRow struct {
	ID         string      `db:"id"`
	UserID     string      `db:"user_id"`
	ClientID   string      `db:"client_id"`
	Model      string      `db:"model"`
	Action     string      `db:"action"`
	Status     string      `db:"status"`
	Error      null.String `db:"error"`
	ClientTime null.Time   `db:"client_time"`
	CreatedAt  null.Time   `db:"created_at"`
}

func (r syncLogRow) toEntry() sync.LogEntry {
	return sync.LogEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		ClientID:   r.ClientID,
		Model:      r.Model,
		Action:     r.Action,
		Status:     r.Status,
		Error:      r.Error,
		ClientTime: r.ClientTime,
		CreatedAt:  r.CreatedAt.Time,
	}
}

type syncRepository struct {
	db *sqlx.DB
}

var _ sync.Repository = (*syncRepository)(nil) // interface compliance check

func NewSyncRepository(db *sqlx.DB) *syncRepository {
	return &syncRepository{db: db}
}

func (repo syncRepository) CreateLogEntry(ctx context.Context, entry sync.LogEntry) (sync.LogEntry, error) {
	entry.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO sync_log (id, user_id, client_id, model, action, status, error, client_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.UserID, entry.ClientID, entry.Model, entry.Action,
		entry.Status, entry.Error, entry.ClientTime, entry.CreatedAt.UTC())
	if err != nil {
		return sync.LogEntry{}, errors.Wrap(err, "inserting sync log entry")
	}
	return entry, nil
}

func (repo syncRepository) QueryLogEntries(ctx context.Context, userID string) ([]sync.LogEntry, error) {
	var rows []syncLogRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM sync_log WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sync log")
	}
	entries := make([]sync.LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}
