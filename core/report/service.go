package report

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/shift"
	"github.com/trezcool/malezi/core/user"
)

// Overview is the admin dashboard summary for a reporting window.
type Overview struct {
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	UsersByRole  map[string]int `json:"users_by_role"`
	Children     int            `json:"children"`
	Observations int            `json:"observations"`
	Messages     int            `json:"messages"`
	PendingFlags int            `json:"pending_flags"`
}

type (
	Repository interface {
		CountUsersByRole(ctx context.Context) (map[string]int, error)
		CountChildren(ctx context.Context) (int, error)
		CountObservations(ctx context.Context, from, to time.Time) (int, error)
		CountMessages(ctx context.Context, from, to time.Time) (int, error)
		CountPendingFlags(ctx context.Context) (int, error)
	}

	Service interface {
		Overview(ctx context.Context, from, to time.Time) (Overview, error)
		// Hours aggregates completed nanny hours over the window.
		Hours(ctx context.Context, actor user.User, from, to time.Time) ([]shift.Total, error)
	}

	service struct {
		repo     Repository
		shiftSvc shift.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, shiftSvc shift.Service) Service {
	return &service{
		repo:     repo,
		shiftSvc: shiftSvc,
	}
}

func (svc *service) Overview(ctx context.Context, from, to time.Time) (Overview, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	ov := Overview{From: from, To: to}

	var err error
	if ov.UsersByRole, err = svc.repo.CountUsersByRole(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "counting users")
	}
	if ov.Children, err = svc.repo.CountChildren(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "counting children")
	}
	if ov.Observations, err = svc.repo.CountObservations(ctx, from, to); err != nil {
		return Overview{}, errors.Wrap(err, "counting observations")
	}
	if ov.Messages, err = svc.repo.CountMessages(ctx, from, to); err != nil {
		return Overview{}, errors.Wrap(err, "counting messages")
	}
	if ov.PendingFlags, err = svc.repo.CountPendingFlags(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "counting pending flags")
	}
	return ov, nil
}

func (svc *service) Hours(ctx context.Context, actor user.User, from, to time.Time) ([]shift.Total, error) {
	return svc.shiftSvc.Totals(ctx, actor, shift.QueryFilter{From: from, To: to})
}
