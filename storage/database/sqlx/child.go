package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/child"
)

type familyRow struct {
	ID        string      `db:"id"`
	Name      null.String `db:"name"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r familyRow) toFamily() child.Family {
	return child.Family{
		ID:        r.ID,
		Name:      r.Name.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type membershipRow struct {
	FamilyID string      `db:"family_id"`
	UserID   string      `db:"user_id"`
	Relation null.String `db:"relation"`
}

type assignmentRow struct {
	FamilyID  string    `db:"family_id"`
	NannyID   string    `db:"nanny_id"`
	CreatedAt null.Time `db:"created_at"`
}

type childRow struct {
	ID        string      `db:"id"`
	FamilyID  string      `db:"family_id"`
	Name      null.String `db:"name"`
	BirthDate null.Time   `db:"birth_date"`
	Allergies null.String `db:"allergies"`
	Notes     null.String `db:"notes"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r childRow) toChild() child.Child {
	return child.Child{
		ID:        r.ID,
		FamilyID:  r.FamilyID,
		Name:      r.Name.String,
		BirthDate: r.BirthDate.Time,
		Allergies: r.Allergies,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func newChildRow(c child.Child) childRow {
	return childRow{
		ID:        c.ID,
		FamilyID:  c.FamilyID,
		Name:      null.NewString(c.Name, c.Name != ""),
		BirthDate: null.NewTime(c.BirthDate.UTC(), !c.BirthDate.IsZero()),
		Allergies: c.Allergies,
		Notes:     c.Notes,
		CreatedAt: null.NewTime(c.CreatedAt.UTC(), !c.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(c.UpdatedAt.UTC(), !c.UpdatedAt.IsZero()),
	}
}

type childRepository struct {
	db *sqlx.DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *sqlx.DB) *childRepository {
	return &childRepository{db: db}
}

func (repo childRepository) trapNoRowsErr(err, mapped error, msg string) error {
	if err == sql.ErrNoRows {
		return mapped
	}
	return errors.Wrap(err, msg)
}

func (repo childRepository) CreateFamily(ctx context.Context, fam child.Family) (child.Family, error) {
	fam.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO family (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		fam.ID, fam.Name, fam.CreatedAt.UTC(), fam.UpdatedAt.UTC())
	if err != nil {
		return child.Family{}, errors.Wrap(err, "inserting family")
	}
	return fam, nil
}

func (repo childRepository) GetFamily(ctx context.Context, id string) (child.Family, error) {
	if _, err := uuid.Parse(id); err != nil {
		return child.Family{}, child.ErrFamilyNotFound
	}
	var row familyRow
	err := repo.db.GetContext(ctx, &row, `SELECT id, name, created_at, updated_at FROM family WHERE id = $1`, id)
	if err != nil {
		return child.Family{}, repo.trapNoRowsErr(err, child.ErrFamilyNotFound, "finding family")
	}
	return row.toFamily(), nil
}

func (repo childRepository) QueryFamilies(ctx context.Context, ids []string) ([]child.Family, error) {
	query := `SELECT id, name, created_at, updated_at FROM family`
	var args []interface{}
	if ids != nil {
		query += ` WHERE id = ANY($1)`
		args = append(args, pq.StringArray(ids))
	}
	query += ` ORDER BY name`

	var rows []familyRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying families")
	}
	fams := make([]child.Family, 0, len(rows))
	for _, r := range rows {
		fams = append(fams, r.toFamily())
	}
	return fams, nil
}

func (repo childRepository) DeleteFamily(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM family WHERE id = $1`, id)
	return errors.Wrap(err, "deleting family")
}

func (repo childRepository) AddMember(ctx context.Context, m child.Membership) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO family_member (family_id, user_id, relation) VALUES ($1, $2, $3)
		ON CONFLICT (family_id, user_id) DO UPDATE SET relation = EXCLUDED.relation`,
		m.FamilyID, m.UserID, m.Relation)
	return errors.Wrap(err, "adding family member")
}

func (repo childRepository) RemoveMember(ctx context.Context, familyID, userID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM family_member WHERE family_id = $1 AND user_id = $2`, familyID, userID)
	return errors.Wrap(err, "removing family member")
}

func (repo childRepository) queryMembers(ctx context.Context, query, arg, msg string) ([]child.Membership, error) {
	var rows []membershipRow
	if err := repo.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, errors.Wrap(err, msg)
	}
	members := make([]child.Membership, 0, len(rows))
	for _, r := range rows {
		members = append(members, child.Membership{FamilyID: r.FamilyID, UserID: r.UserID, Relation: r.Relation.String})
	}
	return members, nil
}

func (repo childRepository) QueryMembers(ctx context.Context, familyID string) ([]child.Membership, error) {
	return repo.queryMembers(ctx,
		`SELECT family_id, user_id, relation FROM family_member WHERE family_id = $1`,
		familyID, "querying family members")
}

func (repo childRepository) QueryMemberships(ctx context.Context, userID string) ([]child.Membership, error) {
	return repo.queryMembers(ctx,
		`SELECT family_id, user_id, relation FROM family_member WHERE user_id = $1`,
		userID, "querying memberships")
}

func (repo childRepository) AddAssignment(ctx context.Context, a child.Assignment) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO nanny_assignment (family_id, nanny_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (family_id, nanny_id) DO NOTHING`,
		a.FamilyID, a.NannyID, a.CreatedAt.UTC())
	return errors.Wrap(err, "adding assignment")
}

func (repo childRepository) RemoveAssignment(ctx context.Context, familyID, nannyID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM nanny_assignment WHERE family_id = $1 AND nanny_id = $2`, familyID, nannyID)
	return errors.Wrap(err, "removing assignment")
}

func (repo childRepository) queryAssignments(ctx context.Context, query, arg, msg string) ([]child.Assignment, error) {
	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, errors.Wrap(err, msg)
	}
	assignments := make([]child.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, child.Assignment{FamilyID: r.FamilyID, NannyID: r.NannyID, CreatedAt: r.CreatedAt.Time})
	}
	return assignments, nil
}

func (repo childRepository) QueryFamilyAssignments(ctx context.Context, familyID string) ([]child.Assignment, error) {
	return repo.queryAssignments(ctx,
		`SELECT family_id, nanny_id, created_at FROM nanny_assignment WHERE family_id = $1`,
		familyID, "querying family assignments")
}

func (repo childRepository) QueryNannyAssignments(ctx context.Context, nannyID string) ([]child.Assignment, error) {
	return repo.queryAssignments(ctx,
		`SELECT family_id, nanny_id, created_at FROM nanny_assignment WHERE nanny_id = $1`,
		nannyID, "querying nanny assignments")
}

func (repo childRepository) CreateChild(ctx context.Context, c child.Child) (child.Child, error) {
	c.ID = uuid.New().String()
	row := newChildRow(c)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO child (id, family_id, name, birth_date, allergies, notes, created_at, updated_at)
		VALUES (:id, :family_id, :name, :birth_date, :allergies, :notes, :created_at, :updated_at)`,
		row)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "inserting child")
	}
	return c, nil
}

func (repo childRepository) GetChild(ctx context.Context, filter child.GetFilter) (child.Child, error) {
	if _, err := uuid.Parse(filter.ID); err != nil {
		return child.Child{}, child.ErrNotFound
	}

	query := `SELECT * FROM child WHERE id = $1`
	args := []interface{}{filter.ID}
	if filter.FamilyID != "" {
		query += ` AND family_id = $2`
		args = append(args, filter.FamilyID)
	}

	var row childRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return child.Child{}, repo.trapNoRowsErr(err, child.ErrNotFound, "finding child")
	}
	return row.toChild(), nil
}

func (repo childRepository) QueryChildren(ctx context.Context, familyIDs []string) ([]child.Child, error) {
	query := `SELECT * FROM child`
	var args []interface{}
	if familyIDs != nil {
		query += ` WHERE family_id = ANY($1)`
		args = append(args, pq.StringArray(familyIDs))
	}
	query += ` ORDER BY name`

	var rows []childRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying children")
	}
	children := make([]child.Child, 0, len(rows))
	for _, r := range rows {
		children = append(children, r.toChild())
	}
	return children, nil
}

func (repo childRepository) UpdateChild(ctx context.Context, c child.Child) (child.Child, error) {
	row := newChildRow(c)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE child
		SET name = :name, birth_date = :birth_date, allergies = :allergies, notes = :notes, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "updating child")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.Child{}, child.ErrNotFound
	}
	return c, nil
}

func (repo childRepository) DeleteChild(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM child WHERE id = $1`, id)
	return errors.Wrap(err, "deleting child")
}
