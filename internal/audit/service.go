package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/wordbook/internal/entities"
)

const eventsDir = "events"

// Service keeps a journal of backups, restores, exports, deletes and sync
// runs as one JSON file per event under the audit directory.
type Service struct {
	auditor *Auditor
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewService creates a service that writes under auditDir.
func NewService(auditDir string) *Service {
	return &Service{
		auditor: NewAuditor(filepath.Join(auditDir, eventsDir)),
		now:     time.Now,
	}
}

// Log records an audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}
	if event.Status == "" {
		event.Status = entities.AuditStatusSuccess
	}
	_, err := s.auditor.save(event.ID, event)
	return err
}

// LogAsync records an audit event in the background.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Log(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until pending asynchronous events are written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// SaveSnapshot stores an arbitrary payload next to the journal, for example
// the document a restore is about to apply. It returns the file name.
func (s *Service) SaveSnapshot(data any) (string, error) {
	snapshots := NewAuditor(filepath.Join(filepath.Dir(s.auditor.AuditDir), "snapshots"))
	return snapshots.SaveJSON(data)
}

// LogBackup records a backup archive being written.
func (s *Service) LogBackup(target string, words, images int, err error) {
	s.LogAsync(withError(&entities.AuditEvent{
		EventType:   entities.AuditEventBackup,
		Action:      "backup_create",
		Description: fmt.Sprintf("Backed up %d words and %d images to %s", words, images, target),
		Metadata:    map[string]any{"words_count": words, "images_count": images},
	}, err))
}

// LogRestore records a restore.
func (s *Service) LogRestore(mode, source string, added, updated, skipped, failed int, err error) {
	s.LogAsync(withError(&entities.AuditEvent{
		EventType:   entities.AuditEventRestore,
		Action:      "restore_" + mode,
		Description: fmt.Sprintf("Restored from %s: %d added, %d updated, %d skipped", source, added, updated, skipped),
		Metadata: map[string]any{
			"added":   added,
			"updated": updated,
			"skipped": skipped,
			"failed":  failed,
		},
	}, err))
}

// LogExport records an export.
func (s *Service) LogExport(format string, words int, err error) {
	s.LogAsync(withError(&entities.AuditEvent{
		EventType:   entities.AuditEventExport,
		Action:      format + "_export",
		Description: fmt.Sprintf("Exported %d words as %s", words, format),
		Metadata:    map[string]any{"words_count": words},
	}, err))
}

// LogDelete records a removed favorite.
func (s *Service) LogDelete(word string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      "word_delete",
		Description: "Removed favorite: " + word,
		Word:        word,
	})
}

// LogSync records a sync action such as "sync_enable" or "sync_run".
func (s *Service) LogSync(action, description string, err error) {
	s.LogAsync(withError(&entities.AuditEvent{
		EventType:   entities.AuditEventSync,
		Action:      action,
		Description: description,
	}, err))
}

// GetEvents returns the most recent events first. A limit of zero or less
// means 50.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int, error) {
	events, err := s.readAll()
	if err != nil {
		return nil, 0, err
	}
	page, total := paginate(events, limit, offset)
	return page, total, nil
}

// GetEventsByType returns events of one type, most recent first.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int, error) {
	events, err := s.readAll()
	if err != nil {
		return nil, 0, err
	}
	filtered := events[:0]
	for _, e := range events {
		if e.EventType == eventType {
			filtered = append(filtered, e)
		}
	}
	page, total := paginate(filtered, limit, offset)
	return page, total, nil
}

func paginate(events []entities.AuditEvent, limit, offset int) ([]entities.AuditEvent, int) {
	total := len(events)
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []entities.AuditEvent{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return events[offset:end], total
}

// DeleteOldEvents removes events older than the retention period.
func (s *Service) DeleteOldEvents(retention time.Duration) (int, error) {
	events, err := s.readAll()
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-retention)
	deleted := 0
	for _, e := range events {
		if !e.CreatedAt.Before(cutoff) {
			continue
		}
		path := filepath.Join(s.auditor.AuditDir, e.ID+".json")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("failed to delete audit event %s: %w", e.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

func (s *Service) readAll() ([]entities.AuditEvent, error) {
	entries, err := os.ReadDir(s.auditor.AuditDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit directory: %w", err)
	}

	var events []entities.AuditEvent
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.auditor.AuditDir, entry.Name()))
		if err != nil {
			log.Printf("Audit: failed to read %s: %v", entry.Name(), err)
			continue
		}
		var event entities.AuditEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("Audit: skipping malformed %s: %v", entry.Name(), err)
			continue
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func withError(event *entities.AuditEvent, err error) *entities.AuditEvent {
	event.Status = entities.AuditStatusSuccess
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
