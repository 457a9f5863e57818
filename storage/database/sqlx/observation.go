package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/observation"
)

type observationRow struct {
	ID        string      `db:"id"`
	ChildID   string      `db:"child_id"`
	AuthorID  string      `db:"author_id"`
	Category  null.String `db:"category"`
	Body      null.String `db:"body"`
	MediaURL  null.String `db:"media_url"`
	Flagged   bool        `db:"flagged"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r observationRow) toObservation() observation.Observation {
	return observation.Observation{
		ID:        r.ID,
		ChildID:   r.ChildID,
		AuthorID:  r.AuthorID,
		Category:  r.Category.String,
		Body:      r.Body.String,
		MediaURL:  r.MediaURL,
		Flagged:   r.Flagged,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt,
	}
}

func newObservationRow(obs observation.Observation) observationRow {
	return observationRow{
		ID:        obs.ID,
		ChildID:   obs.ChildID,
		AuthorID:  obs.AuthorID,
		Category:  null.NewString(obs.Category, obs.Category != ""),
		Body:      null.NewString(obs.Body, obs.Body != ""),
		MediaURL:  obs.MediaURL,
		Flagged:   obs.Flagged,
		CreatedAt: null.NewTime(obs.CreatedAt.UTC(), !obs.CreatedAt.IsZero()),
		UpdatedAt: obs.UpdatedAt,
	}
}

type observationRepository struct {
	db *sqlx.DB
}

var _ observation.Repository = (*observationRepository)(nil) // interface compliance check

func NewObservationRepository(db *sqlx.DB) *observationRepository {
	return &observationRepository{db: db}
}

func (repo observationRepository) CreateObservation(ctx context.Context, obs observation.Observation) (observation.Observation, error) {
	obs.ID = uuid.New().String()
	row := newObservationRow(obs)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO observation (id, child_id, author_id, category, body, media_url, flagged, created_at, updated_at)
		VALUES (:id, :child_id, :author_id, :category, :body, :media_url, :flagged, :created_at, :updated_at)`,
		row)
	if err != nil {
		return observation.Observation{}, errors.Wrap(err, "inserting observation")
	}
	return obs, nil
}

func (repo observationRepository) GetObservation(ctx context.Context, id string) (observation.Observation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return observation.Observation{}, observation.ErrNotFound
	}
	var row observationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM observation WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return observation.Observation{}, observation.ErrNotFound
		}
		return observation.Observation{}, errors.Wrap(err, "finding observation")
	}
	return row.toObservation(), nil
}

func (repo observationRepository) QueryObservations(
	ctx context.Context,
	filter observation.QueryFilter,
	familyIDs []string,
	ordering ...core.DBOrdering,
) ([]observation.Observation, error) {
	query := `SELECT o.* FROM observation o`
	var b argBuilder
	var conds []string

	if familyIDs != nil {
		query += ` JOIN child c ON c.id = o.child_id`
		conds = append(conds, "c.family_id = ANY("+b.add(pq.StringArray(familyIDs))+")")
	}
	if filter.ChildID != "" {
		conds = append(conds, "o.child_id = "+b.add(filter.ChildID))
	}
	if filter.Category != "" {
		conds = append(conds, "o.category = "+b.add(filter.Category))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "o.created_at >= "+b.add(filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "o.created_at <= "+b.add(filter.To.UTC()))
	}

	if len(conds) > 0 {
		query += " WHERE " + joinConds(conds)
	}
	if len(ordering) > 0 {
		query += orderingClause(ordering)
	} else {
		query += " ORDER BY o.created_at DESC"
	}

	var rows []observationRow
	if err := repo.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		return nil, errors.Wrap(err, "querying observations")
	}
	obs := make([]observation.Observation, 0, len(rows))
	for _, r := range rows {
		obs = append(obs, r.toObservation())
	}
	return obs, nil
}

func (repo observationRepository) UpdateObservation(ctx context.Context, obs observation.Observation) (observation.Observation, error) {
	row := newObservationRow(obs)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE observation
		SET category = :category, body = :body, media_url = :media_url, flagged = :flagged, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return observation.Observation{}, errors.Wrap(err, "updating observation")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return observation.Observation{}, observation.ErrNotFound
	}
	return obs, nil
}

func (repo observationRepository) DeleteObservation(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM observation WHERE id = $1`, id)
	return errors.Wrap(err, "deleting observation")
}
