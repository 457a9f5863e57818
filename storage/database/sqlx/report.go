package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/report"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo reportRepository) CountUsersByRole(ctx context.Context) (map[string]int, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT user_role, COUNT(DISTINCT id) FROM "user", UNNEST(roles) user_role GROUP BY user_role`)
	if err != nil {
		return nil, errors.Wrap(err, "counting users by role")
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var cnt int
		if err = rows.Scan(&role, &cnt); err != nil {
			return nil, errors.Wrap(err, "counting users by role")
		}
		counts[role] = cnt
	}
	return counts, errors.Wrap(rows.Err(), "counting users by role")
}

func (repo reportRepository) CountChildren(ctx context.Context) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt, `SELECT COUNT(*) FROM child`)
	return cnt, errors.Wrap(err, "counting children")
}

func (repo reportRepository) CountObservations(ctx context.Context, from, to time.Time) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt,
		`SELECT COUNT(*) FROM observation WHERE created_at >= $1 AND created_at <= $2`, from.UTC(), to.UTC())
	return cnt, errors.Wrap(err, "counting observations")
}

func (repo reportRepository) CountMessages(ctx context.Context, from, to time.Time) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt,
		`SELECT COUNT(*) FROM message WHERE created_at >= $1 AND created_at <= $2`, from.UTC(), to.UTC())
	return cnt, errors.Wrap(err, "counting messages")
}

func (repo reportRepository) CountPendingFlags(ctx context.Context) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt, `SELECT COUNT(*) FROM flag WHERE status = 'pending'`)
	return cnt, errors.Wrap(err, "counting pending flags")
}
