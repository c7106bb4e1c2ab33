package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/heartlink/heartlink-backend/pkg/logger"
)

const defaultReconcileLimit = 250

// MemberCountReconcileJobParams configures the counter-repair cron job.
type MemberCountReconcileJobParams struct {
	Logger      *logger.Logger
	CircleRepo  driftedCirclesRepo
	Memberships membershipReconciler
	Limit       int
}

type driftedCirclesRepo interface {
	ListDriftedIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

type membershipReconciler interface {
	Reconcile(ctx context.Context, circleID uuid.UUID) (int64, error)
}

// NewMemberCountReconcileJob builds the job that repairs drifted member counters.
func NewMemberCountReconcileJob(params MemberCountReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.CircleRepo == nil {
		return nil, fmt.Errorf("circle repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("membership service required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	return &memberCountReconcileJob{
		logg:        params.Logger,
		circles:     params.CircleRepo,
		memberships: params.Memberships,
		limit:       limit,
	}, nil
}

type memberCountReconcileJob struct {
	logg        *logger.Logger
	circles     driftedCirclesRepo
	memberships membershipReconciler
	limit       int
}

func (j *memberCountReconcileJob) Name() string { return "member-count-reconcile" }

func (j *memberCountReconcileJob) Run(ctx context.Context) error {
	ids, err := j.circles.ListDriftedIDs(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("list drifted circles: %w", err)
	}
	if len(ids) == 0 {
		j.logg.Info(ctx, "no drifted member counters found")
		return nil
	}

	var errs []error
	repaired := 0
	for _, circleID := range ids {
		count, err := j.memberships.Reconcile(ctx, circleID)
		if err != nil {
			errs = append(errs, fmt.Errorf("reconcile circle %s: %w", circleID, err))
			continue
		}
		repaired++
		circleCtx := j.logg.WithFields(ctx, map[string]any{
			"circle_id":    circleID.String(),
			"member_count": count,
		})
		j.logg.Info(circleCtx, "member counter repaired")
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"drifted":  len(ids),
		"repaired": repaired,
		"failed":   len(errs),
	})
	j.logg.Info(logCtx, "member count reconciliation complete")
	return multierr.Combine(errs...)
}
