package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tradeflow/internal/domain"
	"tradeflow/internal/dto"
)

type OverdueMilestoneFinder interface {
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Milestone, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

// OverdueMilestonesJob periodically announces visible pending milestones
// whose due date has passed. Each milestone is announced once per process
// for as long as it stays overdue.
type OverdueMilestonesJob struct {
	finder    OverdueMilestoneFinder
	publisher Publisher
	channel   string
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	notified map[uint]struct{}
}

func NewOverdueMilestonesJob(
	finder OverdueMilestoneFinder,
	publisher Publisher,
	channel string,
	schedule string,
	timeout time.Duration,
	logger *zap.Logger,
) *OverdueMilestonesJob {
	return &OverdueMilestonesJob{
		finder:    finder,
		publisher: publisher,
		channel:   channel,
		schedule:  schedule,
		timeout:   timeout,
		cron:      cron.New(),
		logger:    logger.With(zap.String("component", "overdue_milestones_job")),
		now:       time.Now,
		notified:  make(map[uint]struct{}),
	}
}

func (j *OverdueMilestonesJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		if _, err := j.Run(ctx); err != nil {
			j.logger.Error("overdue milestone sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("overdue milestone job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *OverdueMilestonesJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("overdue milestone job stopped")
}

// Run performs one sweep and returns how many milestones were announced.
func (j *OverdueMilestonesJob) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()

	overdue, err := j.finder.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	current := make(map[uint]struct{}, len(overdue))
	published := 0
	for _, m := range overdue {
		current[m.ID] = struct{}{}
		if _, seen := j.notified[m.ID]; seen {
			continue
		}

		event := dto.MilestoneEvent{
			Event:       dto.EventMilestoneOverdue,
			OrderID:     m.OrderID,
			MilestoneID: m.ID,
			Type:        m.Type,
			DueDate:     m.DueDate,
			OccurredAt:  now,
		}
		if err := j.publisher.Publish(ctx, j.channel, event); err != nil {
			j.logger.Warn("overdue notification failed", zap.Uint("milestoneId", m.ID), zap.Error(err))
			delete(current, m.ID)
			continue
		}
		published++
	}
	j.notified = current

	if published > 0 {
		j.logger.Info("overdue milestones announced", zap.Int("count", published), zap.Int("overdue", len(overdue)))
	}
	return published, nil
}
