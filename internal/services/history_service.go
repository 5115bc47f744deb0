package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"veostudio/internal/events"
	"veostudio/internal/models"
	"veostudio/internal/repositories"
)

// HistoryRecordKey names the stored record that holds the whole ledger.
const HistoryRecordKey = "veo-video-history"

const (
	InterruptedMessage = "Generation interrupted before completion."
	MissingFileMessage = "Video file is no longer available."
)

var (
	ErrPersistenceReadFailed = errors.New("failed to load video history")
	ErrEntryNotFound         = errors.New("history entry not found")
	ErrNoVideo               = errors.New("history entry has no video")
)

// MediaStore is the part of media.Store the ledger and orchestrator use.
type MediaStore interface {
	Put(data []byte, mimeType string) (string, error)
	Adopt(handle string) error
	Retain(handle string) error
	Release(handle string) error
	Path(handle string) (string, error)
	Open(handle string) (io.ReadCloser, error)
	Sweep() (int, error)
}

// HistoryService is the ordered, persisted list of generation attempts,
// most recent first. Each completed entry owns one reference to its video.
type HistoryService interface {
	Startup(ctx context.Context)
	Load() error
	Append(entry models.HistoryEntry)
	UpdateByID(id string, update models.HistoryUpdate) bool
	DeleteByID(id string) bool
	Clear() int
	List() []models.HistoryEntry
	Get(id string) (*models.HistoryEntry, bool)
	Export(id string, w io.Writer) (int64, error)
}

type historyService struct {
	records repositories.KVRecordRepository
	store   MediaStore
	ctx     context.Context

	mu      sync.Mutex
	entries []models.HistoryEntry
}

func NewHistoryService(records repositories.KVRecordRepository, store MediaStore) HistoryService {
	return &historyService{records: records, store: store, ctx: context.Background()}
}

func (s *historyService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Load replaces the in-memory ledger with the stored one. An unreadable
// record leaves the ledger empty and returns an error wrapping
// ErrPersistenceReadFailed; the service stays usable either way.
func (s *historyService) Load() error {
	rec, err := s.records.Get(s.ctx, HistoryRecordKey)
	if err != nil {
		s.reset()
		return s.readFailed(err)
	}
	if rec == nil || rec.Value == "" {
		s.reset()
		return nil
	}

	var stored []models.HistoryEntry
	if err := json.Unmarshal([]byte(rec.Value), &stored); err != nil {
		s.reset()
		return s.readFailed(err)
	}

	changed := false
	for i := range stored {
		e := &stored[i]
		switch e.Status {
		case models.StatusGenerating:
			models.FailedUpdate(InterruptedMessage).Apply(e)
			changed = true
		case models.StatusCompleted:
			if e.ResultHandle == "" {
				models.FailedUpdate(MissingFileMessage).Apply(e)
				changed = true
				continue
			}
			if err := s.store.Adopt(e.ResultHandle); err != nil {
				log.Printf("history: dropping video %s of entry %s: %v", e.ResultHandle, e.ID, err)
				models.FailedUpdate(MissingFileMessage).Apply(e)
				changed = true
			}
		}
	}

	s.mu.Lock()
	s.entries = stored
	if changed {
		s.saveLocked()
	}
	s.mu.Unlock()

	if removed, err := s.store.Sweep(); err != nil {
		log.Printf("history: media sweep failed: %v", err)
	} else if removed > 0 {
		log.Printf("history: removed %d unreferenced media files", removed)
	}
	s.notify()
	return nil
}

func (s *historyService) Append(entry models.HistoryEntry) {
	s.mu.Lock()
	s.entries = append([]models.HistoryEntry{entry}, s.entries...)
	s.saveLocked()
	s.mu.Unlock()
	s.notify()
}

// UpdateByID merges update into the entry with id. It reports false when no
// such entry exists, in which case nothing changes.
func (s *historyService) UpdateByID(id string, update models.HistoryUpdate) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	update.Apply(&s.entries[i])
	s.saveLocked()
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *historyService) DeleteByID(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.releaseLocked(s.entries[i])
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.saveLocked()
	s.mu.Unlock()
	s.notify()
	return true
}

// Clear removes every entry and returns how many video references it released.
func (s *historyService) Clear() int {
	s.mu.Lock()
	released := 0
	for _, e := range s.entries {
		if s.releaseLocked(e) {
			released++
		}
	}
	s.entries = nil
	s.saveLocked()
	s.mu.Unlock()
	s.notify()
	return released
}

func (s *historyService) List() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *historyService) Get(id string) (*models.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	e := s.entries[i]
	return &e, true
}

// Export copies the video of entry id to w.
func (s *historyService) Export(id string, w io.Writer) (int64, error) {
	e, ok := s.Get(id)
	if !ok {
		return 0, ErrEntryNotFound
	}
	if e.Status != models.StatusCompleted || e.ResultHandle == "" {
		return 0, ErrNoVideo
	}
	rc, err := s.store.Open(e.ResultHandle)
	if err != nil {
		return 0, fmt.Errorf("open video: %w", err)
	}
	defer rc.Close()
	return io.Copy(w, rc)
}

func (s *historyService) indexLocked(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *historyService) releaseLocked(e models.HistoryEntry) bool {
	if e.ResultHandle == "" {
		return false
	}
	if err := s.store.Release(e.ResultHandle); err != nil {
		log.Printf("history: release %s: %v", e.ResultHandle, err)
		return false
	}
	return true
}

// saveLocked writes the ledger through. A failed write is logged and the
// in-memory ledger stays authoritative.
func (s *historyService) saveLocked() {
	data, err := json.Marshal(s.entries)
	if err != nil {
		log.Printf("history: encode: %v", err)
		return
	}
	if s.entries == nil {
		data = []byte("[]")
	}
	if err := s.records.Put(s.ctx, HistoryRecordKey, string(data)); err != nil {
		log.Printf("history: save: %v", err)
		events.Emit(s.ctx, events.AppWarning, events.NewWarn("Could not save video history: "+err.Error()))
	}
}

func (s *historyService) reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

func (s *historyService) readFailed(err error) error {
	log.Printf("history: load: %v", err)
	events.Emit(s.ctx, events.AppWarning, events.NewWarn("Failed to load video history. Starting with an empty history."))
	return fmt.Errorf("%w: %v", ErrPersistenceReadFailed, err)
}

func (s *historyService) notify() {
	events.Emit(s.ctx, events.HistoryChanged, events.NewInfo("history updated"))
}
