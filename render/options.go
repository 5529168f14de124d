package render

// Option configures a Renderer during creation.
//
// Example:
//
//	r := render.New(render.WithTileSize(512), render.WithZoomLevel(14))
type Option func(*options)

type options struct {
	tileSize    int
	zoom        int
	scheduler   Scheduler
	step        int
	diagnostics func(error)
}

// Defaults for renderer options.
const (
	DefaultTileSize = 256
	DefaultStep     = 128
)

func defaultOptions() options {
	return options{
		tileSize:  DefaultTileSize,
		zoom:      14,
		scheduler: GoScheduler{},
		step:      DefaultStep,
		diagnostics: func(err error) {
			tracer().Infof("render: %v", err)
		},
	}
}

// WithTileSize sets the size in pixels of surfaces created by the renderer.
// Non-positive sizes are ignored.
func WithTileSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.tileSize = size
		}
	}
}

// WithZoomLevel sets the zoom level used when a render call passes
// ConfiguredZoom.
func WithZoomLevel(zoom int) Option {
	return func(o *options) {
		if zoom >= 0 {
			o.zoom = zoom
		}
	}
}

// WithScheduler sets the scheduler render steps and completion callbacks
// are posted to. The default is GoScheduler.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithStepFeatures sets the number of features a render step processes
// before it yields. Steps also end at every layer boundary.
func WithStepFeatures(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.step = n
		}
	}
}

// WithDiagnostics sets a function receiving non-fatal errors, i.e. skipped
// features. It is called from render steps.
func WithDiagnostics(f func(error)) Option {
	return func(o *options) {
		if f != nil {
			o.diagnostics = f
		}
	}
}
