// Package observability reports pipeline stages and cache traffic to
// interested parties.
//
// An export passes through four [Stage]s. Each stage announces its start
// and reports a [StageEvent] when it finishes; the cooked geometry cache
// reports every [CacheEvent]. Nothing listens by default.
//
// Hooks are found on the context first and in the process-wide registry
// second, so a caller can follow one run without touching global state:
//
//	ctx = observability.WithPipelineHooks(ctx, progressHooks)
//	runner.Execute(ctx, opts)
//
// A host that exports metrics registers its hooks once at startup:
//
//	observability.SetPipelineHooks(metrics)
//	observability.SetCacheHooks(metrics)
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage is one step of an export run.
type Stage string

const (
	StageLoad     Stage = "load"
	StageExport   Stage = "export"
	StageAssemble Stage = "assemble"
	StageWrite    Stage = "write"
)

// StageEvent describes a finished stage.
type StageEvent struct {
	Stage Stage
	// Subject is the scene file for load, the blend path for export and the
	// document path for assemble and write.
	Subject string
	// Count is the number of blocks loaded, records exported or bytes
	// assembled or written.
	Count    int64
	Messages int
	Duration time.Duration
	Err      error
}

// CacheOp is the kind of cache access.
type CacheOp uint8

const (
	CacheHit CacheOp = iota
	CacheMiss
	CacheSet
)

func (op CacheOp) String() string {
	switch op {
	case CacheHit:
		return "hit"
	case CacheMiss:
		return "miss"
	}
	return "set"
}

// CacheEvent describes one cache access. Size is the stored entry size for
// CacheSet.
type CacheEvent struct {
	Op      CacheOp
	KeyType string
	Size    int
}

// PipelineHooks receives stage events.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage Stage, subject string)
	OnStageComplete(ctx context.Context, ev StageEvent)
}

// CacheHooks receives cache events.
type CacheHooks interface {
	OnCacheAccess(ctx context.Context, ev CacheEvent)
}

// NoopPipelineHooks ignores every event. Embed it to implement part of
// [PipelineHooks].
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, Stage, string) {}
func (NoopPipelineHooks) OnStageComplete(context.Context, StageEvent) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheAccess(context.Context, CacheEvent) {}

var (
	mu            sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
)

// SetPipelineHooks registers process-wide pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	mu.Lock()
	pipelineHooks = h
	mu.Unlock()
}

// SetCacheHooks registers process-wide cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	mu.Lock()
	cacheHooks = h
	mu.Unlock()
}

// Reset restores the no-op defaults.
func Reset() {
	mu.Lock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	mu.Unlock()
}

type ctxKey struct{}

// WithPipelineHooks attaches hooks to ctx. They take precedence over the
// registered ones for every stage run with ctx.
func WithPipelineHooks(ctx context.Context, h PipelineHooks) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// Pipeline returns the hooks attached to ctx, or the registered ones.
func Pipeline(ctx context.Context) PipelineHooks {
	if h, ok := ctx.Value(ctxKey{}).(PipelineHooks); ok && h != nil {
		return h
	}
	mu.RLock()
	defer mu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// Track announces stage on the hooks of ctx and returns a function that
// reports its completion. The returned function is meant to be deferred
// with the stage's named results:
//
//	done := observability.Track(ctx, observability.StageLoad, path)
//	defer func() { done(int64(blocks), 0, err) }()
func Track(ctx context.Context, stage Stage, subject string) func(count int64, messages int, err error) {
	h := Pipeline(ctx)
	start := time.Now()
	h.OnStageStart(ctx, stage, subject)
	return func(count int64, messages int, err error) {
		h.OnStageComplete(ctx, StageEvent{
			Stage:    stage,
			Subject:  subject,
			Count:    count,
			Messages: messages,
			Duration: time.Since(start),
			Err:      err,
		})
	}
}

// Fanout returns hooks that forward every event to each of hs in order.
func Fanout(hs ...PipelineHooks) PipelineHooks {
	return fanout(hs)
}

type fanout []PipelineHooks

func (f fanout) OnStageStart(ctx context.Context, stage Stage, subject string) {
	for _, h := range f {
		h.OnStageStart(ctx, stage, subject)
	}
}

func (f fanout) OnStageComplete(ctx context.Context, ev StageEvent) {
	for _, h := range f {
		h.OnStageComplete(ctx, ev)
	}
}
