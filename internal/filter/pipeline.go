package filter

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/models"
)

// Progress reports how far a chunked pass has gotten.
type Progress struct {
	Processed int
	Total     int
}

// Config tunes the pipeline. Zero values fall back to the defaults below.
type Config struct {
	ChunkSize     int           // records per cooperative slice
	SyncThreshold int           // datasets at or below this size filter synchronously
	Debounce      time.Duration // quiet period before a submitted pass runs
}

const (
	defaultChunkSize     = 500
	defaultSyncThreshold = 1000
	defaultDebounce      = 300 * time.Millisecond
)

// Pipeline debounces filter requests and executes at most one logical pass
// at a time. A newly fired pass supersedes any in-flight chunked pass via a
// generation counter: each pass captures the counter at start and its result
// is published only if the counter is unchanged at completion, so a stale
// pass can never overwrite a later one (last-writer-wins by sequencing).
type Pipeline struct {
	cfg    Config
	logger *zap.Logger

	onProgress func(Progress)
	onResult   func([]models.NormalizedRecord, models.FilterState)

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	pending    *request
	closed     bool
}

type request struct {
	records []models.NormalizedRecord
	state   models.FilterState
}

// NewPipeline creates a pipeline. onResult receives the filtered snapshot of
// the winning pass; onProgress (optional) receives per-chunk progress.
func NewPipeline(cfg Config, onResult func([]models.NormalizedRecord, models.FilterState), onProgress func(Progress), logger *zap.Logger) *Pipeline {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.SyncThreshold <= 0 {
		cfg.SyncThreshold = defaultSyncThreshold
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	return &Pipeline{
		cfg:        cfg,
		logger:     logger,
		onResult:   onResult,
		onProgress: onProgress,
	}
}

// Submit schedules a filter pass over the given snapshot. Rapid successive
// submissions within the debounce window collapse into a single pass using
// only the last submitted state.
func (p *Pipeline) Submit(records []models.NormalizedRecord, state models.FilterState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.pending = &request{records: records, state: state}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.cfg.Debounce, p.fire)
}

// Flush runs any pending debounced pass immediately. Mainly for shutdown
// and tests.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.fire()
}

// Close stops the debounce timer and drops any pending pass. In-flight
// chunked passes notice the bumped generation and abandon their results.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.pending = nil
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pipeline) fire() {
	p.mu.Lock()
	req := p.pending
	p.pending = nil
	if req == nil || p.closed {
		p.mu.Unlock()
		return
	}
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	if len(req.records) <= p.cfg.SyncThreshold {
		p.publish(Apply(req.records, req.state), req.state, gen)
		return
	}
	go p.runChunked(req, gen)
}

// runChunked processes fixed-size slices, yielding the scheduler between
// slices and reporting progress after each. The generation is re-checked at
// every chunk boundary so a superseded pass stops early.
func (p *Pipeline) runChunked(req *request, gen uint64) {
	total := len(req.records)
	out := make([]models.NormalizedRecord, 0, total)

	for start := 0; start < total; start += p.cfg.ChunkSize {
		if !p.current(gen) {
			if p.logger != nil {
				p.logger.Debug("Abandoning superseded filter pass",
					zap.Uint64("generation", gen),
					zap.Int("processed", start))
			}
			return
		}

		end := start + p.cfg.ChunkSize
		if end > total {
			end = total
		}
		for _, r := range req.records[start:end] {
			if Matches(r, req.state) {
				out = append(out, r)
			}
		}

		if p.onProgress != nil {
			p.onProgress(Progress{Processed: end, Total: total})
		}
		runtime.Gosched()
	}

	p.publish(out, req.state, gen)
}

// publish delivers a completed result only if no later pass has started.
func (p *Pipeline) publish(records []models.NormalizedRecord, state models.FilterState, gen uint64) {
	p.mu.Lock()
	stale := gen != p.generation || p.closed
	p.mu.Unlock()
	if stale {
		return
	}
	if p.onResult != nil {
		p.onResult(records, state)
	}
}

func (p *Pipeline) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.generation && !p.closed
}
