package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"veostudio/internal/media"
	"veostudio/internal/models"
	"veostudio/internal/services"
	"veostudio/internal/utils"
)

// App struct
type App struct {
	ctx     context.Context
	svc     *services.Services
	dbClose func() error

	// Image bytes never cross the bridge; the picked image is kept here
	// and attached to the next Generate call.
	imageMu  sync.Mutex
	refImage *models.ImageFile
}

// NewApp creates a new App application struct
func NewApp(svc *services.Services) *App {
	return &App{svc: svc}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if err := a.svc.Startup(ctx); err != nil {
		runtime.LogError(ctx, fmt.Sprintf("failed to start services: %v", err))
	}
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	a.svc.Shutdown()

	// Close database connection pool
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			runtime.LogError(ctx, fmt.Sprintf("failed to close database: %v", err))
		} else {
			runtime.LogInfo(ctx, "database closed")
		}
		a.dbClose = nil
	}
}

// SetAPIKey stores the Gemini API key for this session
func (a *App) SetAPIKey(apiKey string) error {
	return a.svc.Credentials.Set(apiKey)
}

func (a *App) ClearAPIKey() {
	a.svc.Credentials.Clear()
}

func (a *App) HasAPIKey() bool {
	return a.svc.Credentials.HasCredential()
}

// ListModels returns the selectable video models grouped by provider
func (a *App) ListModels() ([]models.VideoModelGroup, error) {
	return a.svc.Models.ListModelGroups()
}

// DefaultForm returns the generation form as shown on first launch
func (a *App) DefaultForm() (models.GenerationRequest, error) {
	mdl, err := a.svc.Models.DefaultModel()
	if err != nil {
		return models.GenerationRequest{}, err
	}
	return models.DefaultGenerationRequest(mdl.APIName), nil
}

// SelectReferenceImage opens a native file picker and loads the chosen image.
// It returns nil when the dialog is cancelled.
func (a *App) SelectReferenceImage() (*models.ImageFile, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Select Reference Image",
		Filters: []runtime.FileFilter{
			{DisplayName: "Images (*.png;*.jpg;*.jpeg;*.webp;*.gif)", Pattern: "*.png;*.jpg;*.jpeg;*.webp;*.gif"},
		},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}
	img, err := a.svc.Images.LoadFile(path)
	if errors.Is(err, models.ErrUnknownImageType) {
		_, _ = runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
			Type:    runtime.WarningDialog,
			Title:   "Not an image",
			Message: "Please select an image file.",
		})
	}
	return a.setReferenceImage(img, err)
}

// LoadReferenceImage accepts an image dropped on the front-end as base64 or a data URL
func (a *App) LoadReferenceImage(name, encoded string) (*models.ImageFile, error) {
	return a.setReferenceImage(a.svc.Images.LoadBase64(name, encoded))
}

func (a *App) ClearReferenceImage() {
	a.imageMu.Lock()
	a.refImage = nil
	a.imageMu.Unlock()
}

func (a *App) setReferenceImage(img *models.ImageFile, err error) (*models.ImageFile, error) {
	if err != nil {
		return nil, err
	}
	a.imageMu.Lock()
	a.refImage = img
	a.imageMu.Unlock()
	return img, nil
}

// Generate starts a generation and returns its tracking id. A non-nil
// form.ReferenceImage selects the image loaded last.
func (a *App) Generate(form models.GenerationRequest) (string, error) {
	if form.ReferenceImage != nil && len(form.ReferenceImage.Bytes) == 0 {
		a.imageMu.Lock()
		img := a.refImage
		a.imageMu.Unlock()
		if img == nil {
			return "", fmt.Errorf("reference image %q has no data, load it again", form.ReferenceImage.Filename)
		}
		form.ReferenceImage = img
	}
	return a.svc.Generations.Submit(form)
}

func (a *App) History() []models.HistoryEntry {
	return a.svc.History.List()
}

func (a *App) Output() models.OutputState {
	return a.svc.Generations.Output()
}

// DeleteVideo removes a history entry, stopping it first if it is still running
func (a *App) DeleteVideo(id string) bool {
	return a.svc.Generations.Delete(id)
}

func (a *App) ClearHistory() int {
	return a.svc.Generations.ClearHistory()
}

// DownloadVideo asks where to save the video of entry id and writes it there.
// It returns the chosen path, or an empty string when the dialog is cancelled.
func (a *App) DownloadVideo(id string) (string, error) {
	entry, ok := a.svc.History.Get(id)
	if !ok {
		return "", services.ErrEntryNotFound
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Save Video",
		DefaultFilename: utils.VideoFilename(entry.Prompt),
		Filters: []runtime.FileFilter{
			{DisplayName: "MP4 Video (*.mp4)", Pattern: "*.mp4"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := a.svc.History.Export(id, f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	runtime.LogInfo(a.ctx, fmt.Sprintf("saved video %s to %s", id, path))
	return path, nil
}

// VideoPath returns the URL the webview plays a video handle from
func (a *App) VideoPath(handle string) (string, error) {
	if _, err := a.svc.Media.Path(handle); err != nil {
		return "", err
	}
	return media.URL(handle), nil
}
