package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/wordbook/internal/cloudsync"
	"github.com/mrlokans/wordbook/internal/settingsstore"
)

// DefaultSchedule re-reads the sync folder every five minutes.
const DefaultSchedule = "*/5 * * * *"

// Syncer is the part of the sync coordinator the scheduler drives.
type Syncer interface {
	Enabled() bool
	ForceSync(ctx context.Context) (*cloudsync.SyncResult, error)
}

// SyncLogger receives the outcome of every run.
type SyncLogger interface {
	LogSync(action, description string, err error)
}

// SyncScheduler periodically pulls changes from the sync folder.
type SyncScheduler struct {
	syncer   Syncer
	auditLog SyncLogger
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	runMu      sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSyncScheduler creates a scheduler. auditLog may be nil.
func NewSyncScheduler(syncer Syncer, schedule string, auditLog SyncLogger) *SyncScheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &SyncScheduler{
		syncer:   syncer,
		auditLog: auditLog,
		schedule: schedule,
		cron:     newCron(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// Start begins the scheduler. Runs are skipped while sync is disabled, so
// it is safe to start before sync is switched on.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(s.schedule, time.Now())
	log.Printf("Sync scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule,
		settingsstore.GetCronDescription(s.schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Sync scheduler: stopped")
}

// Reschedule switches to a new cron expression.
func (s *SyncScheduler) Reschedule(ctx context.Context, schedule string) error {
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	s.mu.Lock()
	s.schedule = schedule
	s.cron = newCron()
	s.mu.Unlock()

	return s.Start(ctx)
}

// RunNow triggers an immediate sync in the background.
func (s *SyncScheduler) RunNow(ctx context.Context) {
	go s.runSync(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *SyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Schedule returns the active cron expression.
func (s *SyncScheduler) Schedule() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// GetNextRunTime returns when the next sync will occur.
func (s *SyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync performs one pull. Overlapping runs are skipped.
func (s *SyncScheduler) runSync(ctx context.Context) {
	if !s.runMu.TryLock() {
		log.Printf("Sync: skipped (previous run still in progress)")
		return
	}
	defer s.runMu.Unlock()

	if !s.syncer.Enabled() {
		return
	}

	startTime := time.Now()
	result, err := s.syncer.ForceSync(ctx)
	if err != nil {
		if errors.Is(err, cloudsync.ErrSyncNotEnabled) {
			return
		}
		errMsg := fmt.Sprintf("Sync failed: %v", err)
		log.Printf("Sync: %s", errMsg)
		s.logAudit("sync_scheduled", errMsg, err)
		return
	}

	if result.Before == result.After {
		return
	}
	successMsg := fmt.Sprintf("Reloaded sync folder, %d -> %d words in %v",
		result.Before, result.After, time.Since(startTime).Round(time.Millisecond))
	log.Printf("Sync: %s", successMsg)
	s.logAudit("sync_scheduled", successMsg, nil)
}

func (s *SyncScheduler) logAudit(action, description string, err error) {
	if s.auditLog == nil {
		return
	}
	s.auditLog.LogSync(action, description, err)
}
