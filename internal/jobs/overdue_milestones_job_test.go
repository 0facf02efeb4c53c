package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tradeflow/internal/domain"
	"tradeflow/internal/dto"
	"tradeflow/internal/infrastructure/redis"
)

type stubFinder struct {
	mu      sync.Mutex
	overdue []domain.Milestone
	err     error
	calls   int
	lastNow time.Time
}

func (f *stubFinder) ListOverdue(ctx context.Context, now time.Time) ([]domain.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastNow = now
	return f.overdue, f.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	events   []dto.MilestoneEvent
	failNext bool
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext {
		p.failNext = false
		return errors.New("redis unavailable")
	}
	p.events = append(p.events, message.(dto.MilestoneEvent))
	return nil
}

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func overdueMilestone(id uint) domain.Milestone {
	due := fixedNow.Add(-48 * time.Hour)
	return domain.Milestone{
		ID:      id,
		OrderID: 42,
		Type:    domain.MilestoneGoodsShipped,
		Status:  domain.MilestoneStatusPending,
		DueDate: &due,
		Visible: true,
	}
}

func newTestJob(finder OverdueMilestoneFinder, pub Publisher) *OverdueMilestonesJob {
	j := NewOverdueMilestonesJob(finder, pub, "tradeflow.milestones", "@every 1h", time.Second, zap.NewNop())
	j.now = func() time.Time { return fixedNow }
	return j
}

func TestRun_AnnouncesEachMilestoneOnce(t *testing.T) {
	finder := &stubFinder{overdue: []domain.Milestone{overdueMilestone(1), overdueMilestone(2)}}
	pub := &recordingPublisher{}
	job := newTestJob(finder, pub)

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, fixedNow, finder.lastNow)

	n, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.Len(t, pub.events, 2)
	assert.Equal(t, dto.EventMilestoneOverdue, pub.events[0].Event)
	assert.Equal(t, uint(42), pub.events[0].OrderID)
	require.NotNil(t, pub.events[0].DueDate)
}

func TestRun_ReannouncesAfterMilestoneLeavesAndReturns(t *testing.T) {
	finder := &stubFinder{overdue: []domain.Milestone{overdueMilestone(1)}}
	pub := &recordingPublisher{}
	job := newTestJob(finder, pub)

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	finder.overdue = nil
	_, err = job.Run(context.Background())
	require.NoError(t, err)

	finder.overdue = []domain.Milestone{overdueMilestone(1)}
	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, pub.events, 2)
}

func TestRun_FailedPublishIsRetriedNextSweep(t *testing.T) {
	finder := &stubFinder{overdue: []domain.Milestone{overdueMilestone(1)}}
	pub := &recordingPublisher{failNext: true}
	job := newTestJob(finder, pub)

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_FinderError(t *testing.T) {
	finder := &stubFinder{err: errors.New("db down")}
	job := newTestJob(finder, &recordingPublisher{})

	_, err := job.Run(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestRun_PublishesToRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	pub, err := redis.NewPublisher(srv.Addr(), "", 0)
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	defer listener.Close()
	sub := listener.Subscribe(ctx, "tradeflow.milestones")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	job := newTestJob(&stubFinder{overdue: []domain.Milestone{overdueMilestone(9)}}, pub)
	_, err = job.Run(ctx)
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event dto.MilestoneEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, dto.EventMilestoneOverdue, event.Event)
	assert.Equal(t, uint(9), event.MilestoneID)
	assert.Equal(t, domain.MilestoneGoodsShipped, event.Type)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	job := NewOverdueMilestonesJob(&stubFinder{}, &recordingPublisher{}, "c", "not a schedule", time.Second, zap.NewNop())
	assert.Error(t, job.Start())
}

func TestStart_RunsOnSchedule(t *testing.T) {
	finder := &stubFinder{}
	job := NewOverdueMilestonesJob(finder, &recordingPublisher{}, "c", "@every 1s", time.Second, zap.NewNop())

	require.NoError(t, job.Start())
	defer job.Stop()

	assert.Eventually(t, func() bool {
		finder.mu.Lock()
		defer finder.mu.Unlock()
		return finder.calls > 0
	}, 3*time.Second, 50*time.Millisecond)
}
