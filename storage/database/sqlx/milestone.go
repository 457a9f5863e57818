package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/milestone"
)

type milestoneRow struct {
	ID          string      `db:"id"`
	Category    null.String `db:"category"`
	Title       null.String `db:"title"`
	Description null.String `db:"description"`
	MinMonths   int         `db:"min_months"`
	MaxMonths   int         `db:"max_months"`
}

func (r milestoneRow) toMilestone() milestone.Milestone {
	return milestone.Milestone{
		ID:          r.ID,
		Category:    r.Category.String,
		Title:       r.Title.String,
		Description: r.Description.String,
		MinMonths:   r.MinMonths,
		MaxMonths:   r.MaxMonths,
	}
}

type achievementRow struct {
	ID          string      `db:"id"`
	ChildID     string      `db:"child_id"`
	MilestoneID string      `db:"milestone_id"`
	RecordedBy  string      `db:"recorded_by"`
	Note        null.String `db:"note"`
	AchievedAt  null.Time   `db:"achieved_at"`
	CreatedAt   null.Time   `db:"created_at"`
}

func (r achievementRow) toAchievement() milestone.Achievement {
	return milestone.Achievement{
		ID:          r.ID,
		ChildID:     r.ChildID,
		MilestoneID: r.MilestoneID,
		RecordedBy:  r.RecordedBy,
		Note:        r.Note,
		AchievedAt:  r.AchievedAt.Time,
		CreatedAt:   r.CreatedAt.Time,
	}
}

type milestoneRepository struct {
	db *sqlx.DB
}

var _ milestone.Repository = (*milestoneRepository)(nil) // interface compliance check

func NewMilestoneRepository(db *sqlx.DB) *milestoneRepository {
	return &milestoneRepository{db: db}
}

func (repo milestoneRepository) CreateMilestone(ctx context.Context, m milestone.Milestone) (milestone.Milestone, error) {
	m.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO milestone (id, category, title, description, min_months, max_months)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Category, m.Title, m.Description, m.MinMonths, m.MaxMonths)
	if err != nil {
		return milestone.Milestone{}, errors.Wrap(err, "inserting milestone")
	}
	return m, nil
}

func (repo milestoneRepository) GetMilestone(ctx context.Context, id string) (milestone.Milestone, error) {
	if _, err := uuid.Parse(id); err != nil {
		return milestone.Milestone{}, milestone.ErrNotFound
	}
	var row milestoneRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM milestone WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return milestone.Milestone{}, milestone.ErrNotFound
		}
		return milestone.Milestone{}, errors.Wrap(err, "finding milestone")
	}
	return row.toMilestone(), nil
}

func (repo milestoneRepository) QueryMilestones(ctx context.Context, filter milestone.QueryFilter, ordering ...core.DBOrdering) ([]milestone.Milestone, error) {
	query := `SELECT * FROM milestone`
	var b argBuilder
	var conds []string

	if filter.Category != "" {
		conds = append(conds, "category = "+b.add(filter.Category))
	}
	if filter.AgeMonths > 0 {
		p := b.add(filter.AgeMonths)
		conds = append(conds, "min_months <= "+p, "max_months >= "+p)
	}

	if len(conds) > 0 {
		query += " WHERE " + joinConds(conds)
	}
	if len(ordering) > 0 {
		query += orderingClause(ordering)
	} else {
		query += " ORDER BY min_months, category, title"
	}

	var rows []milestoneRow
	if err := repo.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		return nil, errors.Wrap(err, "querying milestones")
	}
	ms := make([]milestone.Milestone, 0, len(rows))
	for _, r := range rows {
		ms = append(ms, r.toMilestone())
	}
	return ms, nil
}

func (repo milestoneRepository) CreateAchievement(ctx context.Context, ach milestone.Achievement) (milestone.Achievement, error) {
	ach.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO achievement (id, child_id, milestone_id, recorded_by, note, achieved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ach.ID, ach.ChildID, ach.MilestoneID, ach.RecordedBy, ach.Note, ach.AchievedAt.UTC(), ach.CreatedAt.UTC())
	if err != nil {
		return milestone.Achievement{}, errors.Wrap(err, "inserting achievement")
	}
	return ach, nil
}

func (repo milestoneRepository) QueryAchievements(ctx context.Context, childID string) ([]milestone.Achievement, error) {
	var rows []achievementRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM achievement WHERE child_id = $1 ORDER BY achieved_at`, childID)
	if err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	achs := make([]milestone.Achievement, 0, len(rows))
	for _, r := range rows {
		achs = append(achs, r.toAchievement())
	}
	return achs, nil
}

func (repo milestoneRepository) AchievementExists(ctx context.Context, childID, milestoneID string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM achievement WHERE child_id = $1 AND milestone_id = $2)`, childID, milestoneID)
	return exists, errors.Wrap(err, "checking achievement")
}

func (repo milestoneRepository) GetAchievement(ctx context.Context, id string) (milestone.Achievement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return milestone.Achievement{}, milestone.ErrNotFound
	}
	var row achievementRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM achievement WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return milestone.Achievement{}, milestone.ErrNotFound
		}
		return milestone.Achievement{}, errors.Wrap(err, "finding achievement")
	}
	return row.toAchievement(), nil
}

func (repo milestoneRepository) DeleteAchievement(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM achievement WHERE id = $1`, id)
	return errors.Wrap(err, "deleting achievement")
}
