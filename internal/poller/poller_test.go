package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func countingTask(name string, interval time.Duration, calls *int32, err error) Task {
	return Task{
		Name:     name,
		Interval: interval,
		Run: func(context.Context) error {
			atomic.AddInt32(calls, 1)
			return err
		},
	}
}

func TestPoller_StartStop(t *testing.T) {
	var calls int32
	p := New(nil, countingTask(TaskCounters, 5*time.Millisecond, &calls, nil))

	assert.False(t, p.IsPolling())
	p.Start()
	p.Start()
	assert.True(t, p.IsPolling())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, time.Millisecond)

	p.Stop()
	p.Stop()
	assert.False(t, p.IsPolling())
}

func TestPoller_ForcedOnlyTaskDoesNotTick(t *testing.T) {
	var calls int32
	p := New(nil, countingTask(TaskFixtures, 0, &calls, nil))
	p.Start()
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestPoller_ForceRefresh(t *testing.T) {
	var trends, fixtures int32
	boom := errors.New("feed down")
	p := New(nil,
		countingTask(TaskTrends, time.Hour, &trends, boom),
		countingTask(TaskFixtures, 0, &fixtures, nil),
	)

	require.NoError(t, p.ForceRefresh(context.Background(), TaskFixtures))
	assert.ErrorIs(t, p.ForceRefresh(context.Background(), TaskTrends), boom)
	assert.ErrorIs(t, p.ForceRefresh(context.Background(), "weather"), ErrUnknownTask)

	status := p.Status()
	assert.Equal(t, 1, status[TaskFixtures].Runs)
	assert.Empty(t, status[TaskFixtures].LastError)
	assert.Equal(t, "feed down", status[TaskTrends].LastError)
	assert.Equal(t, "1h0m0s", status[TaskTrends].Interval)
	assert.Equal(t, []string{TaskFixtures, TaskTrends}, p.Tasks())
}

func TestPoller_StatusBeforeFirstRun(t *testing.T) {
	var calls int32
	p := New(nil, countingTask(TaskCounters, 30*time.Second, &calls, nil))

	st, ok := p.Status()[TaskCounters]
	require.True(t, ok)
	assert.True(t, st.LastRun.IsZero())
	assert.Equal(t, 0, st.Runs)
}
