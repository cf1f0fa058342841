package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/cloudsync"
)

type fakeSyncer struct {
	mu      sync.Mutex
	enabled bool
	calls   int
	result  *cloudsync.SyncResult
	err     error
}

func (f *fakeSyncer) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeSyncer) ForceSync(ctx context.Context) (*cloudsync.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeSyncer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordedSync struct {
	action string
	err    error
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []recordedSync
}

func (f *fakeAudit) LogSync(action, description string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedSync{action: action, err: err})
}

func TestSyncScheduler_StartStop(t *testing.T) {
	s := NewSyncScheduler(&fakeSyncer{}, "", nil)
	assert.Equal(t, DefaultSchedule, s.Schedule())
	assert.Nil(t, s.GetNextRunTime())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now().Add(-time.Minute)))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
	s.Stop()
}

func TestSyncScheduler_StopsWithContext(t *testing.T) {
	s := NewSyncScheduler(&fakeSyncer{}, "0 * * * *", nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestSyncScheduler_InvalidSchedule(t *testing.T) {
	s := NewSyncScheduler(&fakeSyncer{}, "every minute", nil)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestSyncScheduler_Reschedule(t *testing.T) {
	s := NewSyncScheduler(&fakeSyncer{}, "0 * * * *", nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.NoError(t, s.Reschedule(context.Background(), "30 2 * * *"))
	assert.True(t, s.IsRunning())
	assert.Equal(t, "30 2 * * *", s.Schedule())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 30, next.Minute())

	assert.Error(t, s.Reschedule(context.Background(), "bogus"))
	assert.Equal(t, "30 2 * * *", s.Schedule(), "invalid schedule is not applied")
}

func TestSyncScheduler_RunSync(t *testing.T) {
	t.Run("skips while disabled", func(t *testing.T) {
		syncer := &fakeSyncer{}
		s := NewSyncScheduler(syncer, "", nil)
		s.runSync(context.Background())
		assert.Equal(t, 0, syncer.Calls())
	})

	t.Run("records changes", func(t *testing.T) {
		syncer := &fakeSyncer{enabled: true, result: &cloudsync.SyncResult{Before: 1, After: 3}}
		audit := &fakeAudit{}
		s := NewSyncScheduler(syncer, "", audit)

		s.runSync(context.Background())
		assert.Equal(t, 1, syncer.Calls())
		require.Len(t, audit.entries, 1)
		assert.NoError(t, audit.entries[0].err)
	})

	t.Run("quiet when nothing changed", func(t *testing.T) {
		syncer := &fakeSyncer{enabled: true, result: &cloudsync.SyncResult{Before: 2, After: 2}}
		audit := &fakeAudit{}
		s := NewSyncScheduler(syncer, "", audit)

		s.runSync(context.Background())
		assert.Empty(t, audit.entries)
	})

	t.Run("records failures", func(t *testing.T) {
		syncer := &fakeSyncer{enabled: true, err: cloudsync.ErrFolderNotFound}
		audit := &fakeAudit{}
		s := NewSyncScheduler(syncer, "", audit)

		s.runSync(context.Background())
		require.Len(t, audit.entries, 1)
		assert.True(t, errors.Is(audit.entries[0].err, cloudsync.ErrFolderNotFound))
	})

	t.Run("ignores sync switched off mid-run", func(t *testing.T) {
		syncer := &fakeSyncer{enabled: true, err: cloudsync.ErrSyncNotEnabled}
		audit := &fakeAudit{}
		s := NewSyncScheduler(syncer, "", audit)

		s.runSync(context.Background())
		assert.Empty(t, audit.entries)
	})
}

func TestSyncScheduler_RunNow(t *testing.T) {
	syncer := &fakeSyncer{enabled: true, result: &cloudsync.SyncResult{}}
	s := NewSyncScheduler(syncer, "", nil)

	s.RunNow(context.Background())
	assert.Eventually(t, func() bool { return syncer.Calls() == 1 }, time.Second, 10*time.Millisecond)
}
