// Package arena runs a batch of independent combats concurrently, one
// goroutine per combat, and collects their results. A single combat is
// strictly single-threaded; concurrency only exists at this level,
// mirroring how this codebase's tournament manager tracks many
// independent matches behind one mutex-protected registry.
package arena

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tacticsforge/combatcore/internal/combat/config"
	"github.com/tacticsforge/combatcore/internal/combat/engine"
	"github.com/tacticsforge/combatcore/internal/combat/events"
	"github.com/tacticsforge/combatcore/internal/combat/metrics"
)

// Job is one combat to run as part of a batch.
type Job struct {
	CombatID string
	Seed     int64
	TeamA    engine.TeamInput
	TeamB    engine.TeamInput

	// CompletedRounds is how many rounds of the outer meta-progression
	// each side's roster has already survived, passed through to
	// per_round trait scaling.
	CompletedRounds int
}

// Arena runs batches of combats against a shared Config, Logger, and
// Metrics collectors.
type Arena struct {
	mu      sync.RWMutex
	running map[string]struct{}

	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Collectors
	workers int
}

// New constructs an Arena. workers <= 0 means unbounded concurrency
// (one goroutine per job).
func New(cfg config.Config, logger *zap.Logger, m *metrics.Collectors, workers int) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arena{
		running: make(map[string]struct{}),
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		workers: workers,
	}
}

// RunAll runs every job concurrently and returns their results in job
// order (results[i] belongs to jobs[i]). It respects ctx cancellation between dispatch and
// completion, but a combat already started always runs to completion —
// RunCombat is a pure computation with no cancellation point of its own.
func (a *Arena) RunAll(ctx context.Context, jobs []Job) []Result {
	sem := make(chan struct{}, a.concurrency(len(jobs)))
	results := make([]Result, len(jobs))
	var wg sync.WaitGroup

	for i, job := range jobs {
		i, job := i, job
		if job.CombatID == "" {
			job.CombatID = uuid.NewString()
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.runOne(ctx, job)
		}()
	}
	wg.Wait()
	return results
}

func (a *Arena) concurrency(n int) int {
	if a.workers > 0 && a.workers < n {
		return a.workers
	}
	if n <= 0 {
		return 1
	}
	return n
}

// Result is one completed job's outcome.
type Result struct {
	CombatID string
	Winner   string
	Duration float64
	Err      error
}

func (a *Arena) runOne(ctx context.Context, job Job) Result {
	a.mark(job.CombatID, true)
	defer a.mark(job.CombatID, false)

	select {
	case <-ctx.Done():
		return Result{CombatID: job.CombatID, Err: fmt.Errorf("arena: job %s cancelled before start: %w", job.CombatID, ctx.Err())}
	default:
	}

	in := engine.Input{
		CombatID:        job.CombatID,
		Seed:            job.Seed,
		TeamA:           job.TeamA,
		TeamB:           job.TeamB,
		Config:          a.cfg,
		Logger:          a.logger.With(zap.String("combat_id", job.CombatID)),
		Metrics:         a.metrics,
		Bus:             events.NewBus(),
		CompletedRounds: job.CompletedRounds,
	}
	res := engine.RunCombat(in)
	return Result{CombatID: job.CombatID, Winner: string(res.Winner), Duration: res.Duration}
}

func (a *Arena) mark(id string, running bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if running {
		a.running[id] = struct{}{}
	} else {
		delete(a.running, id)
	}
}

// RunningCount reports how many combats are currently executing.
func (a *Arena) RunningCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.running)
}
