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
	"github.com/trezcool/malezi/core/shift"
)

type shiftRow struct {
	ID       string      `db:"id"`
	NannyID  string      `db:"nanny_id"`
	FamilyID string      `db:"family_id"`
	ClockIn  null.Time   `db:"clock_in"`
	ClockOut null.Time   `db:"clock_out"`
	Note     null.String `db:"note"`
}

func (r shiftRow) toShift() shift.Shift {
	return shift.Shift{
		ID:       r.ID,
		NannyID:  r.NannyID,
		FamilyID: r.FamilyID,
		ClockIn:  r.ClockIn.Time,
		ClockOut: r.ClockOut,
		Note:     r.Note,
	}
}

type shiftRepository struct {
	db *sqlx.DB
}

var _ shift.Repository = (*shiftRepository)(nil) // interface compliance check

func NewShiftRepository(db *sqlx.DB) *shiftRepository {
	return &shiftRepository{db: db}
}

func (repo shiftRepository) CreateShift(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	s.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO shift (id, nanny_id, family_id, clock_in, clock_out, note)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.NannyID, s.FamilyID, s.ClockIn.UTC(), s.ClockOut, s.Note)
	if err != nil {
		return shift.Shift{}, errors.Wrap(err, "inserting shift")
	}
	return s, nil
}

func (repo shiftRepository) GetShift(ctx context.Context, id string) (shift.Shift, error) {
	if _, err := uuid.Parse(id); err != nil {
		return shift.Shift{}, shift.ErrNotFound
	}
	var row shiftRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM shift WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return shift.Shift{}, shift.ErrNotFound
		}
		return shift.Shift{}, errors.Wrap(err, "finding shift")
	}
	return row.toShift(), nil
}

func (repo shiftRepository) GetOpenShift(ctx context.Context, nannyID string) (shift.Shift, error) {
	var row shiftRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM shift WHERE nanny_id = $1 AND clock_out IS NULL LIMIT 1`, nannyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return shift.Shift{}, shift.ErrNotFound
		}
		return shift.Shift{}, errors.Wrap(err, "finding open shift")
	}
	return row.toShift(), nil
}

func (repo shiftRepository) QueryShifts(
	ctx context.Context,
	filter shift.QueryFilter,
	familyIDs []string,
	ordering ...core.DBOrdering,
) ([]shift.Shift, error) {
	query := `SELECT * FROM shift`
	var b argBuilder
	var conds []string

	if familyIDs != nil {
		conds = append(conds, "family_id = ANY("+b.add(pq.StringArray(familyIDs))+")")
	}
	if filter.NannyID != "" {
		conds = append(conds, "nanny_id = "+b.add(filter.NannyID))
	}
	if filter.FamilyID != "" {
		conds = append(conds, "family_id = "+b.add(filter.FamilyID))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "clock_in >= "+b.add(filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "clock_in <= "+b.add(filter.To.UTC()))
	}

	if len(conds) > 0 {
		query += " WHERE " + joinConds(conds)
	}
	if len(ordering) > 0 {
		query += orderingClause(ordering)
	} else {
		query += " ORDER BY clock_in DESC"
	}

	var rows []shiftRow
	if err := repo.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		return nil, errors.Wrap(err, "querying shifts")
	}
	shifts := make([]shift.Shift, 0, len(rows))
	for _, r := range rows {
		shifts = append(shifts, r.toShift())
	}
	return shifts, nil
}

func (repo shiftRepository) UpdateShift(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE shift SET clock_out = $1, note = $2 WHERE id = $3`,
		s.ClockOut, s.Note, s.ID)
	if err != nil {
		return shift.Shift{}, errors.Wrap(err, "updating shift")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return shift.Shift{}, shift.ErrNotFound
	}
	return s, nil
}
