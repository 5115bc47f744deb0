package unit_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veostudio/internal/events"
	"veostudio/internal/models"
	"veostudio/internal/services"
	"veostudio/internal/tests/mocks"
)

type eventRecorder struct {
	mu     sync.Mutex
	events map[string][]events.Event
}

func recordEvents(t *testing.T) *eventRecorder {
	r := &eventRecorder{events: make(map[string][]events.Event)}
	events.SetCustomEmitter(func(_ context.Context, name string, evt events.Event) {
		r.mu.Lock()
		r.events[name] = append(r.events[name], evt)
		r.mu.Unlock()
	})
	t.Cleanup(func() { events.SetCustomEmitter(nil) })
	return r
}

func (r *eventRecorder) named(name string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events[name]...)
}

func newHistory(repo *mocks.KVRecordRepositoryMock, store *mocks.MediaStoreMock) services.HistoryService {
	svc := services.NewHistoryService(repo, store)
	svc.Startup(context.Background())
	return svc
}

func completedEntry(t *testing.T, store *mocks.MediaStoreMock, id, prompt string) models.HistoryEntry {
	t.Helper()
	handle, err := store.Put([]byte("video-"+id), "video/mp4")
	require.NoError(t, err)
	e := models.NewGeneratingEntry(id, models.GenerationRequest{
		Prompt:       prompt,
		AspectRatio:  models.AspectRatioLandscape,
		Resolution:   models.Resolution1080p,
		ModelVariant: "veo-2.0-generate-001",
	}, "", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	models.CompletedUpdate(handle).Apply(&e)
	return e
}

func TestHistoryService_AppendInsertsAtHead(t *testing.T) {
	repo := &mocks.KVRecordRepositoryMock{}
	svc := newHistory(repo, &mocks.MediaStoreMock{})

	svc.Append(models.HistoryEntry{ID: "1", Status: models.StatusGenerating})
	svc.Append(models.HistoryEntry{ID: "2", Status: models.StatusGenerating})

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)
	assert.Equal(t, "1", list[1].ID)
	assert.Equal(t, 2, repo.PutCount())

	list[0].Prompt = "mutated"
	e, ok := svc.Get("2")
	require.True(t, ok)
	assert.Empty(t, e.Prompt)
}

func TestHistoryService_UpdateByID(t *testing.T) {
	svc := newHistory(&mocks.KVRecordRepositoryMock{}, &mocks.MediaStoreMock{})
	svc.Append(models.HistoryEntry{ID: "a", Status: models.StatusGenerating, ProgressMessage: "start"})

	assert.True(t, svc.UpdateByID("a", models.ProgressUpdate("polling")))
	e, _ := svc.Get("a")
	assert.Equal(t, "polling", e.ProgressMessage)
	assert.Equal(t, models.StatusGenerating, e.Status)

	assert.True(t, svc.UpdateByID("a", models.FailedUpdate("boom")))
	e, _ = svc.Get("a")
	assert.Equal(t, models.StatusError, e.Status)
	assert.Equal(t, "boom", e.ErrorMessage)
	assert.Empty(t, e.ProgressMessage)
}

func TestHistoryService_UpdateUnknownIDIsNoop(t *testing.T) {
	repo := &mocks.KVRecordRepositoryMock{}
	svc := newHistory(repo, &mocks.MediaStoreMock{})
	svc.Append(models.HistoryEntry{ID: "a", Status: models.StatusGenerating})
	puts := repo.PutCount()

	assert.False(t, svc.UpdateByID("missing", models.FailedUpdate("x")))
	assert.Equal(t, puts, repo.PutCount())
	e, _ := svc.Get("a")
	assert.Equal(t, models.StatusGenerating, e.Status)
}

func TestHistoryService_SaveLoadRoundTrip(t *testing.T) {
	repo := &mocks.KVRecordRepositoryMock{}
	store := &mocks.MediaStoreMock{}
	first := newHistory(repo, store)
	first.Append(completedEntry(t, store, "1", "first"))
	first.Append(completedEntry(t, store, "2", "second"))
	first.Append(models.HistoryEntry{ID: "3", Prompt: "bad", Status: models.StatusError, ErrorMessage: "failed"})
	saved := repo.Value(services.HistoryRecordKey)

	second := newHistory(repo, store)
	require.NoError(t, second.Load())
	assert.Equal(t, first.List(), second.List())
	assert.Equal(t, saved, repo.Value(services.HistoryRecordKey))

	third := newHistory(repo, store)
	require.NoError(t, third.Load())
	assert.Equal(t, second.List(), third.List())
}

func TestHistoryService_LoadEmptyRecord(t *testing.T) {
	svc := newHistory(&mocks.KVRecordRepositoryMock{}, &mocks.MediaStoreMock{})
	require.NoError(t, svc.Load())
	assert.Empty(t, svc.List())
}

func TestHistoryService_LoadCorruptRecordStartsEmpty(t *testing.T) {
	rec := recordEvents(t)
	repo := &mocks.KVRecordRepositoryMock{Records: map[string]string{services.HistoryRecordKey: "{not json"}}
	svc := newHistory(repo, &mocks.MediaStoreMock{})

	err := svc.Load()
	assert.ErrorIs(t, err, services.ErrPersistenceReadFailed)
	assert.Empty(t, svc.List())
	warnings := rec.named(events.AppWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, events.EventWarn, warnings[0].Type)

	svc.Append(models.HistoryEntry{ID: "fresh", Status: models.StatusGenerating})
	assert.Len(t, svc.List(), 1)
}

func TestHistoryService_LoadRepositoryError(t *testing.T) {
	repo := &mocks.KVRecordRepositoryMock{
		GetFunc: func(ctx context.Context, key string) (*models.KVRecord, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	svc := newHistory(repo, &mocks.MediaStoreMock{})
	assert.ErrorIs(t, svc.Load(), services.ErrPersistenceReadFailed)
	assert.Empty(t, svc.List())
}

func TestHistoryService_LoadMarksInterruptedAndMissingVideos(t *testing.T) {
	store := &mocks.MediaStoreMock{}
	store.Seed("kept.mp4", []byte("kept"))
	store.Seed("orphan.mp4", []byte("orphan"))

	stored := []models.HistoryEntry{
		{ID: "running", Status: models.StatusGenerating, ProgressMessage: "Polling..."},
		{ID: "kept", Status: models.StatusCompleted, ResultHandle: "kept.mp4"},
		{ID: "gone", Status: models.StatusCompleted, ResultHandle: "gone.mp4"},
	}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	repo := &mocks.KVRecordRepositoryMock{Records: map[string]string{services.HistoryRecordKey: string(raw)}}

	svc := newHistory(repo, store)
	require.NoError(t, svc.Load())

	running, _ := svc.Get("running")
	assert.Equal(t, models.StatusError, running.Status)
	assert.Equal(t, services.InterruptedMessage, running.ErrorMessage)
	assert.Empty(t, running.ProgressMessage)

	kept, _ := svc.Get("kept")
	assert.Equal(t, models.StatusCompleted, kept.Status)
	assert.Equal(t, 1, store.RefCount("kept.mp4"))

	gone, _ := svc.Get("gone")
	assert.Equal(t, models.StatusError, gone.Status)
	assert.Equal(t, services.MissingFileMessage, gone.ErrorMessage)
	assert.Empty(t, gone.ResultHandle)

	assert.Equal(t, 1, store.Sweeps())
	assert.False(t, store.Exists("orphan.mp4"))
	assert.True(t, store.Exists("kept.mp4"))

	var persisted []models.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(repo.Value(services.HistoryRecordKey)), &persisted))
	assert.Equal(t, models.StatusError, persisted[0].Status)
}

func TestHistoryService_DeleteReleasesOnce(t *testing.T) {
	store := &mocks.MediaStoreMock{}
	svc := newHistory(&mocks.KVRecordRepositoryMock{}, store)
	entry := completedEntry(t, store, "1", "cat")
	svc.Append(entry)

	assert.True(t, svc.DeleteByID("1"))
	assert.Equal(t, 1, store.Releases(entry.ResultHandle))
	assert.Empty(t, svc.List())

	assert.False(t, svc.DeleteByID("1"))
	assert.Equal(t, 1, store.Releases(entry.ResultHandle))
}

func TestHistoryService_DeleteLeavesSiblings(t *testing.T) {
	store := &mocks.MediaStoreMock{}
	svc := newHistory(&mocks.KVRecordRepositoryMock{}, store)
	a := completedEntry(t, store, "a", "a")
	b := completedEntry(t, store, "b", "b")
	svc.Append(a)
	svc.Append(b)

	svc.DeleteByID("a")
	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, 0, store.Releases(b.ResultHandle))
	assert.Equal(t, 1, store.RefCount(b.ResultHandle))
}

func TestHistoryService_ClearReleasesEveryHandle(t *testing.T) {
	store := &mocks.MediaStoreMock{}
	repo := &mocks.KVRecordRepositoryMock{}
	svc := newHistory(repo, store)
	for _, id := range []string{"1", "2", "3"} {
		svc.Append(completedEntry(t, store, id, "p"+id))
	}
	svc.Append(models.HistoryEntry{ID: "4", Status: models.StatusError, ErrorMessage: "x"})

	assert.Equal(t, 3, svc.Clear())
	assert.Equal(t, 3, store.TotalReleases())
	assert.Empty(t, svc.List())
	assert.Equal(t, "[]", repo.Value(services.HistoryRecordKey))
}

func TestHistoryService_SaveFailureKeepsMemory(t *testing.T) {
	rec := recordEvents(t)
	repo := &mocks.KVRecordRepositoryMock{
		PutFunc: func(ctx context.Context, key, value string) error {
			return errors.New("database is locked")
		},
	}
	svc := newHistory(repo, &mocks.MediaStoreMock{})
	svc.Append(models.HistoryEntry{ID: "1", Status: models.StatusGenerating})

	assert.Len(t, svc.List(), 1)
	assert.Len(t, rec.named(events.AppWarning), 1)
	assert.NotEmpty(t, rec.named(events.HistoryChanged))
}

func TestHistoryService_Export(t *testing.T) {
	store := &mocks.MediaStoreMock{}
	svc := newHistory(&mocks.KVRecordRepositoryMock{}, store)
	svc.Append(completedEntry(t, store, "1", "cat"))
	svc.Append(models.HistoryEntry{ID: "2", Status: models.StatusGenerating})

	var buf bytes.Buffer
	n, err := svc.Export("1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("video-1")), n)
	assert.Equal(t, "video-1", buf.String())

	_, err = svc.Export("2", &buf)
	assert.ErrorIs(t, err, services.ErrNoVideo)
	_, err = svc.Export("missing", &buf)
	assert.ErrorIs(t, err, services.ErrEntryNotFound)
}
