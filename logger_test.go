package fx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fx/shader"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Error("Logger() did not return the custom logger set via SetLogger")
	}
	Logger().Info("test message", "key", "value")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("expected log output to contain 'test message', got: %s", buf.String())
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) should set a discarding logger, not nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			} else {
				Logger().Debug("concurrent")
			}
		}()
	}
	wg.Wait()
}

func TestEngineLogsDegradedRender(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	failing := shader.CompilerFunc(func(string) ([]byte, error) {
		return nil, errors.New("no compiler")
	})
	e := NewEngine(WithProgramCache(shader.NewProgramCache(shader.WithCompiler(failing))), WithWorkers(1))
	defer e.Close()
	if _, err := e.ApplyEffect("twirl", nil); err != nil {
		t.Fatalf("ApplyEffect() = %v", err)
	}

	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	if _, err := e.ExportFrame(src, e.Stack(), 0, 0); !shader.IsCompileError(err) {
		t.Errorf("ExportFrame() error = %v, want compile error", err)
	}
	if !strings.Contains(buf.String(), "effect skipped") {
		t.Errorf("expected a degraded-render warning, got: %s", buf.String())
	}
}

// records decodes one JSON log record per line.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.Lines(buf.String()) {
		var r map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		out = append(out, r)
	}
	return out
}

func TestEngineLogsByComponent(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewEngine(WithWorkers(1), WithLogger(l))
	defer e.Close()
	_, err := e.ApplyEffect("clouds", nil)
	require.NoError(t, err)
	_, err = e.ApplyEffect("sepia", nil)
	require.NoError(t, err)

	_, err = e.ExportFrame(image.NewNRGBA(image.Rect(0, 0, 8, 8)), e.Stack(), 0, 0)
	require.NoError(t, err)

	byMsg := make(map[string]string)
	for _, r := range records(t, &buf) {
		msg, _ := r["msg"].(string)
		comp, _ := r[ComponentKey].(string)
		byMsg[msg] = comp
	}
	assert.Equal(t, "shader", byMsg["compiled"])
	assert.Equal(t, "render", byMsg["effect drawn"])
	assert.Equal(t, "stack", byMsg["layer composited"])
}

func TestWithLoggerOverridesDefault(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var global, local bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&global, &slog.HandlerOptions{Level: slog.LevelDebug})))
	e := NewEngine(WithWorkers(1),
		WithLogger(slog.New(slog.NewTextHandler(&local, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	defer e.Close()

	_, err := e.ApplyEffect("clouds", nil)
	require.NoError(t, err)
	_, err = e.ExportFrame(image.NewNRGBA(image.Rect(0, 0, 4, 4)), e.Stack(), 0, 0)
	require.NoError(t, err)

	assert.Empty(t, global.String())
	assert.Contains(t, local.String(), "component=stack")
}
