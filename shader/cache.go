// Package shader owns the effect shader sources and the process-wide cache
// of compiled programs.
//
// Sources are WGSL files embedded at build time. A Key selects a source and
// any structural values baked into it; ProgramCache compiles each key at
// most once and hands out the same *Program to every caller afterwards.
//
//	pc := shader.NewProgramCache()
//	prog, err := pc.Load(shader.NewKey("pixelate", nil))
package shader

import (
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/fx/internal/cache"
)

// ProgramCache memoizes compiled programs by Key.
//
// Lookups of cached keys take a shard read lock only. Concurrent first
// loads of the same key share one compilation. A failed compilation is
// remembered as well, so a broken shader is not rebuilt every frame; Clear
// forgets both programs and failures.
type ProgramCache struct {
	compiler Compiler
	log      *slog.Logger

	entries *cache.Sharded[string, *entry]
	group   singleflight.Group

	compiles atomic.Uint64
	failures atomic.Uint64
}

type entry struct {
	prog *Program
	err  error
}

// Option configures a ProgramCache.
type Option func(*ProgramCache)

// WithCompiler replaces the naga compiler.
func WithCompiler(c Compiler) Option {
	return func(pc *ProgramCache) {
		if c != nil {
			pc.compiler = c
		}
	}
}

// WithLogger sets the logger for cache events.
func WithLogger(l *slog.Logger) Option {
	return func(pc *ProgramCache) {
		if l != nil {
			pc.log = l
		}
	}
}

// NewProgramCache creates an empty cache.
func NewProgramCache(opts ...Option) *ProgramCache {
	pc := &ProgramCache{
		compiler: Naga,
		log:      slog.New(slog.DiscardHandler),
		entries:  cache.NewSharded[string, *entry](0, cache.StringHasher),
	}
	for _, o := range opts {
		o(pc)
	}
	return pc
}

// Load returns the program for key, compiling it on first use. The error,
// when non-nil, is a *CompileError.
func (pc *ProgramCache) Load(key Key) (*Program, error) {
	id := key.String()
	if e, ok := pc.entries.Get(id); ok {
		return e.prog, e.err
	}

	v, _, _ := pc.group.Do(id, func() (any, error) {
		if e, ok := pc.entries.Get(id); ok {
			return e, nil
		}
		start := time.Now()
		prog, err := compile(pc.compiler, key)
		pc.compiles.Add(1)
		e := &entry{prog: prog, err: err}
		if err != nil {
			pc.failures.Add(1)
			pc.log.Warn("compile failed", "key", id, "err", err)
		} else {
			pc.log.Debug("compiled", "key", id,
				"words", len(prog.spirv), "elapsed", time.Since(start))
		}
		pc.entries.Set(id, e)
		return e, nil
	})
	e := v.(*entry)
	return e.prog, e.err
}

// LoadRef is Load for an unspecialized source.
func (pc *ProgramCache) LoadRef(ref string) (*Program, error) {
	return pc.Load(Key{Ref: ref})
}

// Preload compiles every key, logging and skipping failures. It returns
// the number of keys that compiled.
func (pc *ProgramCache) Preload(keys ...Key) int {
	ok := 0
	for _, k := range keys {
		if _, err := pc.Load(k); err != nil {
			pc.log.Warn("preload skipped", "key", k.String(), "err", err)
			continue
		}
		ok++
	}
	pc.log.Info("preload done", "ok", ok, "failed", len(keys)-ok)
	return ok
}

// PreloadRefs preloads unspecialized sources.
func (pc *ProgramCache) PreloadRefs(refs ...string) int {
	keys := make([]Key, len(refs))
	for i, r := range refs {
		keys[i] = Key{Ref: r}
	}
	return pc.Preload(keys...)
}

// Clear drops every cached program and remembered failure.
func (pc *ProgramCache) Clear() {
	pc.entries.Clear()
}

// Len returns the number of cached keys, failed ones included.
func (pc *ProgramCache) Len() int { return pc.entries.Len() }

// Stats describes cache activity since creation.
type Stats struct {
	Entries  int
	Failed   int
	Hits     uint64
	Misses   uint64
	Compiles uint64
	Failures uint64
}

// Stats returns a snapshot of the cache counters.
func (pc *ProgramCache) Stats() Stats {
	cs := pc.entries.Stats()
	failed := 0
	pc.entries.Range(func(_ string, e *entry) bool {
		if e.err != nil {
			failed++
		}
		return true
	})
	return Stats{
		Entries:  cs.Len,
		Failed:   failed,
		Hits:     cs.Hits,
		Misses:   cs.Misses,
		Compiles: pc.compiles.Load(),
		Failures: pc.failures.Load(),
	}
}
