package fx

import (
	"log/slog"
	"sync/atomic"
)

// ComponentKey is the attribute naming the subsystem that emitted a record.
const ComponentKey = "component"

// Subsystems that log under an engine.
const (
	componentEngine = "engine"
	componentShader = "shader"
	componentRender = "render"
	componentStack  = "stack"
)

// defaultLogger is the logger engines start from unless WithLogger names
// another. It is swapped atomically so SetLogger may race with engines
// being created on other goroutines.
var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger for engines created afterwards. By default fx
// produces no log output. Pass nil to restore that.
//
// Each engine tags its records with a [ComponentKey] attribute:
//   - "shader": compile failures, cache misses, preload summary
//   - "render": degraded renders (Warn), per-effect timings (Debug)
//   - "stack": per-layer timings (Debug)
//   - "engine": device selection
//
// Example:
//
//	fx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	defaultLogger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return defaultLogger.Load()
}

// loggers holds the per-subsystem loggers of one engine.
type loggers struct {
	engine *slog.Logger
	shader *slog.Logger
	render *slog.Logger
	stack  *slog.Logger
}

func newLoggers(base *slog.Logger) loggers {
	if base == nil {
		base = Logger()
	}
	return loggers{
		engine: base.With(ComponentKey, componentEngine),
		shader: base.With(ComponentKey, componentShader),
		render: base.With(ComponentKey, componentRender),
		stack:  base.With(ComponentKey, componentStack),
	}
}
