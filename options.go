package fx

import (
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/quality"
	"github.com/gogpu/fx/render"
	"github.com/gogpu/fx/shader"
)

// Option configures an Engine during creation.
//
// Example:
//
//	// Defaults: built-in catalog, naga-compiled programs, software device
//	e := fx.NewEngine()
//
//	// Shared program cache and a custom device (dependency injection)
//	e := fx.NewEngine(fx.WithProgramCache(pc), fx.WithDevice(dev))
type Option func(*engineOptions)

type engineOptions struct {
	catalog      *catalog.Catalog
	programs     *shader.ProgramCache
	device       render.Device
	provider     gpucontext.DeviceProvider
	logger       *slog.Logger
	selector     quality.Selector
	hasSelector  bool
	newID        func() string
	maxSide      int
	workers      int
	historyLimit int
	preload      bool
	singleLayer  bool
}

// WithCatalog replaces the built-in effect catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *engineOptions) {
		o.catalog = c
	}
}

// WithProgramCache shares a program cache between engines. By default
// every engine owns a cache compiling with naga.
func WithProgramCache(pc *shader.ProgramCache) Option {
	return func(o *engineOptions) {
		o.programs = pc
	}
}

// WithDevice sets the device that executes programs. The engine does not
// close a device it was given. By default it creates and owns a
// render.SoftwareDevice.
func WithDevice(d render.Device) Option {
	return func(o *engineOptions) {
		o.device = d
	}
}

// WithDeviceProvider runs programs on the GPU device shared by a host
// application, such as a gogpu window. Generators and any provider that
// does not expose HAL objects fall back to the software device. WithDevice
// takes precedence.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithQuality sets the adaptive quality selector.
func WithQuality(s quality.Selector) Option {
	return func(o *engineOptions) {
		o.selector = s
		o.hasSelector = true
	}
}

// WithIDGenerator sets the function producing new layer ids. The default
// generates random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(o *engineOptions) {
		o.newID = fn
	}
}

// WithMaxTargetSize limits the side of any render target.
func WithMaxTargetSize(n int) Option {
	return func(o *engineOptions) {
		o.maxSide = n
	}
}

// WithWorkers sets the worker count of the default software device.
func WithWorkers(n int) Option {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithHistoryLimit caps the number of undo states kept.
func WithHistoryLimit(n int) Option {
	return func(o *engineOptions) {
		o.historyLimit = n
	}
}

// WithPreload compiles every catalog shader when the engine is created.
func WithPreload(on bool) Option {
	return func(o *engineOptions) {
		o.preload = on
	}
}

// WithSingleLayerMode starts the engine in single-layer mode, where
// applying an effect replaces the stack instead of appending to it.
func WithSingleLayerMode(on bool) Option {
	return func(o *engineOptions) {
		o.singleLayer = on
	}
}

// WithLogger sets the engine's logger, overriding SetLogger for this
// engine only. Records carry a [ComponentKey] attribute.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = l
	}
}
