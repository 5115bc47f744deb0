package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var Emit = func(ctx context.Context, name string, evt Event) {}

// EnableRuntimeEmitter forwards events to the Wails front-end and mirrors
// them into the runtime log. ctx must be the context Wails passed to OnStartup.
func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, name string, evt Event) {
		if evt.TrackingID == "" {
			evt.TrackingID = TrackingFromContext(ctx)
		}
		runtime.EventsEmit(ctx, name, evt)
		logRuntimeEvent(ctx, name, evt)
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt Event)) {
	if f == nil {
		Emit = func(context.Context, string, Event) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt Event) {
		if evt.TrackingID == "" {
			evt.TrackingID = TrackingFromContext(ctx)
		}
		f(ctx, name, evt)
	}
}
