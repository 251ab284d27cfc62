package service

import (
	"context"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/logger"
	"github.com/desta-elias/smart-bed-u/internal/repository"
)

// SchedulerService polls for due scheduled movements on a fixed period and
// hands each to the movement executor. Failures are isolated per record: one
// bad record never blocks the rest of the tick, and a failed record stays
// pending for the next tick.
type SchedulerService struct {
	history  repository.MovementHistory
	movement Movement
	log      *logger.Logger
}

func NewSchedulerService(history repository.MovementHistory, movement Movement, log *logger.Logger) *SchedulerService {
	return &SchedulerService{history: history, movement: movement, log: log}
}

var _ Scheduler = (*SchedulerService)(nil)

// Run ticks at the given interval until ctx is canceled.
func (s *SchedulerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.runTick(ctx, now)
		}
	}
}

// runTick executes every movement due as of now.
func (s *SchedulerService) runTick(ctx context.Context, now time.Time) {
	due, err := s.history.QueryDue(ctx, now)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("scheduler_query_due_failed", "err", err)
		}
		return
	}
	if len(due) == 0 {
		return
	}

	if s.log != nil {
		s.log.Infow("executing_scheduled_movements", "count", len(due))
	}
	for _, rec := range due {
		if err := s.movement.ExecuteScheduled(ctx, rec.ID); err != nil {
			// Left pending; retried next tick.
			if s.log != nil {
				s.log.Errorw("scheduled_movement_failed", "record", rec.ID, "bed", rec.BedID, "err", err)
			}
			continue
		}
	}
}
