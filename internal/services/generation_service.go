package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"veostudio/internal/events"
	"veostudio/internal/models"
	"veostudio/internal/video/client"
)

// WaitingMessages cycle on the output panel while any generation is running.
var WaitingMessages = []string{
	"Initializing VEO model...",
	"Analyzing your prompt and image...",
	"Compositing initial video frames...",
	"This can take a few minutes, please wait...",
	"Rendering high-resolution details...",
	"Generating accompanying audio track...",
	"Almost there, finalizing the video...",
}

const DefaultTickInterval = 3 * time.Second

// GenerationClient runs one generation end to end.
type GenerationClient interface {
	Generate(ctx context.Context, credential string, req models.GenerationRequest, sink client.ProgressSink) (*client.Result, error)
}

type GenerationConfig struct {
	// TickInterval is how often the waiting message advances. Zero means DefaultTickInterval.
	TickInterval time.Duration
	Now          func() time.Time
}

// GenerationService accepts submissions, runs each in its own goroutine and
// reflects progress into the history ledger and the output panel.
type GenerationService interface {
	Startup(ctx context.Context)
	Submit(req models.GenerationRequest) (string, error)
	Cancel(id string) bool
	Delete(id string) bool
	ClearHistory() int
	Output() models.OutputState
	InFlight() int
	Wait()
	Shutdown()
}

type generationService struct {
	client      GenerationClient
	credentials CredentialService
	catalogue   ModelService
	history     HistoryService
	store       MediaStore

	tickInterval time.Duration
	now          func() time.Time
	counter      atomic.Uint64
	wg           sync.WaitGroup

	mu       sync.Mutex
	ctx      context.Context
	cancels  map[string]context.CancelFunc
	inFlight int
	tickStop chan struct{}
	tickIdx  int
	output   models.OutputState
}

func NewGenerationService(
	c GenerationClient,
	credentials CredentialService,
	catalogue ModelService,
	history HistoryService,
	store MediaStore,
	cfg GenerationConfig,
) GenerationService {
	s := &generationService{
		client:       c,
		credentials:  credentials,
		catalogue:    catalogue,
		history:      history,
		store:        store,
		tickInterval: cfg.TickInterval,
		now:          cfg.Now,
		ctx:          context.Background(),
		cancels:      make(map[string]context.CancelFunc),
	}
	if s.tickInterval <= 0 {
		s.tickInterval = DefaultTickInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *generationService) Startup(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

// Submit validates req and starts generating it in the background. It
// returns the tracking id of the new history entry. Validation failures
// return an error and leave the ledger untouched.
func (s *generationService) Submit(req models.GenerationRequest) (string, error) {
	credential := s.credentials.Get()
	if credential == "" {
		return "", s.rejected(client.ErrMissingCredential)
	}
	if err := req.Validate(); err != nil {
		return "", s.rejected(err)
	}
	mdl, err := s.catalogue.Resolve(req.ModelVariant)
	if err != nil {
		return "", s.rejected(err)
	}

	snapshot := req.Snapshot()
	snapshot.ModelVariant = mdl.APIName
	started := s.now()
	id := fmt.Sprintf("%d-%d", started.UnixMilli(), s.counter.Add(1))

	s.history.Append(models.NewGeneratingEntry(id, snapshot, WaitingMessages[0], started))

	s.mu.Lock()
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancels[id] = cancel
	previous := s.output.Handle
	s.output = models.OutputState{TrackingID: id, IsLoading: true, LoadingMessage: WaitingMessages[0]}
	s.tickIdx = 0
	s.inFlight++
	if s.inFlight == 1 {
		s.startTickerLocked()
	}
	s.wg.Add(1)
	s.mu.Unlock()

	if previous != "" {
		if err := s.store.Release(previous); err != nil {
			log.Printf("generation: release previous output %s: %v", previous, err)
		}
	}
	s.emitOutput()

	log.Printf("generation: %s submitted with model %s", id, snapshot.ModelVariant)
	go s.run(events.WithTracking(ctx, id), id, credential, snapshot)
	return id, nil
}

func (s *generationService) run(ctx context.Context, id, credential string, req models.GenerationRequest) {
	defer s.finish(id)

	sink := client.ProgressFunc(func(message string) {
		if ctx.Err() != nil {
			return
		}
		s.history.UpdateByID(id, models.ProgressUpdate(message))
		if s.updateOutput(id, func(o *models.OutputState) { o.LoadingMessage = message }) {
			s.emitOutput()
		}
		events.Emit(events.WithTracking(s.baseContext(), id), events.GenerationProgress, events.NewInfo(message))
	})

	res, err := s.client.Generate(ctx, credential, req, sink)
	if ctx.Err() != nil || errors.Is(err, client.ErrCancelled) {
		log.Printf("generation: %s cancelled", id)
		return
	}
	if err != nil {
		log.Printf("generation: %s failed: %v", id, err)
		s.fail(id, err.Error())
		return
	}

	handle, err := s.store.Put(res.Data, res.MIMEType)
	if err != nil {
		log.Printf("generation: %s could not store video: %v", id, err)
		s.fail(id, "failed to save the video: "+err.Error())
		return
	}
	if !s.history.UpdateByID(id, models.CompletedUpdate(handle)) {
		_ = s.store.Release(handle)
		return
	}
	s.publish(id, handle)
	events.Emit(events.WithTracking(s.baseContext(), id), events.GenerationProgress, events.NewSuccess(client.MsgDownloaded))
}

func (s *generationService) fail(id, message string) {
	s.history.UpdateByID(id, models.FailedUpdate(message))
	if s.updateOutput(id, func(o *models.OutputState) {
		*o = models.OutputState{TrackingID: id, Error: message}
	}) {
		s.emitOutput()
	}
	events.Emit(events.WithTracking(s.baseContext(), id), events.GenerationProgress, events.NewError(message))
}

// publish shows handle on the output panel if it still tracks id. The panel
// holds its own reference, separate from the entry's.
func (s *generationService) publish(id, handle string) {
	s.mu.Lock()
	if s.output.TrackingID != id {
		s.mu.Unlock()
		return
	}
	if err := s.store.Retain(handle); err != nil {
		s.mu.Unlock()
		log.Printf("generation: retain %s for output: %v", handle, err)
		return
	}
	previous := s.output.Handle
	s.output = models.OutputState{TrackingID: id, Handle: handle}
	s.mu.Unlock()

	if previous != "" && previous != handle {
		_ = s.store.Release(previous)
	}
	s.emitOutput()
}

func (s *generationService) finish(id string) {
	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
	s.inFlight--
	if s.inFlight == 0 && s.tickStop != nil {
		close(s.tickStop)
		s.tickStop = nil
	}
	s.mu.Unlock()
	s.wg.Done()
}

// Cancel stops the generation with id. A cancelled generation writes nothing
// back to the ledger.
func (s *generationService) Cancel(id string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	if ok {
		delete(s.cancels, id)
	}
	reset := s.output.TrackingID == id && s.output.IsLoading
	if reset {
		s.output = models.OutputState{}
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	if reset {
		s.emitOutput()
	}
	return true
}

// Delete cancels id if it is still running and removes its history entry.
func (s *generationService) Delete(id string) bool {
	s.Cancel(id)
	return s.history.DeleteByID(id)
}

func (s *generationService) ClearHistory() int {
	s.mu.Lock()
	ids := make([]string, 0, len(s.cancels))
	for id := range s.cancels {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.Cancel(id)
	}
	return s.history.Clear()
}

func (s *generationService) Output() models.OutputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

func (s *generationService) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Wait blocks until every started generation has returned.
func (s *generationService) Wait() {
	s.wg.Wait()
}

// Shutdown cancels all running generations and waits for them.
func (s *generationService) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *generationService) startTickerLocked() {
	stop := make(chan struct{})
	s.tickStop = stop
	go func() {
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.advanceWaitingMessage()
			}
		}
	}()
}

func (s *generationService) advanceWaitingMessage() {
	s.mu.Lock()
	if !s.output.IsLoading {
		s.mu.Unlock()
		return
	}
	s.tickIdx = (s.tickIdx + 1) % len(WaitingMessages)
	s.output.LoadingMessage = WaitingMessages[s.tickIdx]
	s.mu.Unlock()
	s.emitOutput()
}

func (s *generationService) updateOutput(id string, f func(o *models.OutputState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.output.TrackingID != id || !s.output.IsLoading {
		return false
	}
	f(&s.output)
	return true
}

// rejected records a validation error on the output panel without touching
// what it currently shows.
func (s *generationService) rejected(err error) error {
	s.mu.Lock()
	s.output.Error = err.Error()
	s.mu.Unlock()
	s.emitOutput()
	return err
}

func (s *generationService) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *generationService) emitOutput() {
	out := s.Output()
	evt := events.NewInfo(out.LoadingMessage)
	evt.TrackingID = out.TrackingID
	if out.Error != "" {
		evt = events.NewError(out.Error)
		evt.TrackingID = out.TrackingID
	}
	events.Emit(s.baseContext(), events.OutputChanged, evt)
}
