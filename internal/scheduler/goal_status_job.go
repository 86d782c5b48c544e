package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/trungvm/goalflow-backend/internal/usecase/progress"
)

// GoalStatusJob evaluates every goal's progress once a day and logs the
// verdicts, giving an audit trail of status transitions without persisting
// derived data.
type GoalStatusJob struct {
	progressService *progress.Service
	log             zerolog.Logger
}

// NewGoalStatusJob creates a new goal status evaluation job
func NewGoalStatusJob(progressService *progress.Service, log zerolog.Logger) *GoalStatusJob {
	return &GoalStatusJob{
		progressService: progressService,
		log:             log.With().Str("job", "goal_status").Logger(),
	}
}

// Name returns the job name
func (j *GoalStatusJob) Name() string {
	return "goal_status"
}

// Run computes progress snapshots for all goals and logs each status
func (j *GoalStatusJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snapshots, err := j.progressService.ListGoalProgress(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, snapshot := range snapshots {
		j.log.Info().
			Str("goal", snapshot.GoalID.String()).
			Str("status", string(snapshot.Status)).
			Str("current", snapshot.CurrentValue.Round(2).String()).
			Str("projected", snapshot.ProjectedValue.Round(2).String()).
			Float64("progress", snapshot.Progress).
			Msg("Goal status")
	}

	return nil
}
