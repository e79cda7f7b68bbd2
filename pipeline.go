package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
)

type pipelineState int

const (
	stateIdle pipelineState = iota
	stateDispatching
	stateDraining
	stateDone
	stateCancelled
)

func (s pipelineState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateDispatching:
		return "dispatching"
	case stateDraining:
		return "draining"
	case stateDone:
		return "done"
	case stateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("pipelineState(%d)", int(s))
}

// --- Structs ---

// RenderResult is the outcome of one frame. Err is nil on success.
type RenderResult struct {
	Index int
	Err   error
}

type renderSummary struct {
	Total     int
	Succeeded int
	Failed    []RenderResult
	Aborted   int // units stopped by cancellation
	State     pipelineState
}

func (s renderSummary) completed() int {
	return s.Succeeded + len(s.Failed)
}

// progressReporter is satisfied by *progressbar.ProgressBar.
type progressReporter interface {
	Add(int) error
}

type renderFunc func(ctx context.Context, index int) error

// pipeline renders frame indices [0, total) on a fixed pool of workers.
// Everything render reads must be immutable for the duration of run.
type pipeline struct {
	workers  int
	render   renderFunc
	progress progressReporter // optional
	logger   *log.Logger
}

func newPipeline(workers int, render renderFunc, progress progressReporter, logger *log.Logger) *pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &pipeline{workers: workers, render: render, progress: progress, logger: logger}
}

// --- Render Pipeline ---

func (p *pipeline) enter(summary *renderSummary, s pipelineState) {
	p.logger.Debug("pipeline state", "from", summary.State, "to", s)
	summary.State = s
}

// run dispatches every index once and waits for all results. A failed frame
// is recorded and logged; it never stops the others. When ctx is cancelled
// no further frames start, running frames finish, and ctx.Err() is returned.
func (p *pipeline) run(ctx context.Context, total int) (renderSummary, error) {
	summary := renderSummary{Total: total, State: stateIdle}
	if total == 0 {
		p.enter(&summary, stateDone)
		return summary, nil
	}

	workers := min(p.workers, total)
	tasks := make(chan int, workers*2)
	results := make(chan RenderResult, workers*2)
	dispatched := make(chan int, 1)

	p.enter(&summary, stateDispatching)
	go func() {
		defer close(tasks)
		for i := 0; i < total; i++ {
			select {
			case tasks <- i:
			case <-ctx.Done():
				dispatched <- i
				return
			}
		}
		dispatched <- total
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range tasks {
				if ctx.Err() != nil {
					return
				}
				results <- p.renderUnit(ctx, index)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

drain:
	for {
		select {
		case n := <-dispatched:
			p.logger.Debug("dispatch finished", "frames", n)
			p.enter(&summary, stateDraining)
			dispatched = nil
		case res, ok := <-results:
			if !ok {
				break drain
			}
			p.record(ctx, &summary, res)
		}
	}

	if err := ctx.Err(); err != nil && summary.completed() < total {
		p.enter(&summary, stateCancelled)
		return summary, err
	}
	p.enter(&summary, stateDone)
	return summary, nil
}

func (p *pipeline) record(ctx context.Context, summary *renderSummary, res RenderResult) {
	switch {
	case res.Err == nil:
		summary.Succeeded++
	case ctx.Err() != nil && errors.Is(res.Err, ctx.Err()):
		summary.Aborted++
		return
	default:
		summary.Failed = append(summary.Failed, res)
		p.logger.Error("frame failed", "frame", res.Index, "err", res.Err)
	}
	if p.progress != nil {
		p.progress.Add(1)
	}
}

// renderUnit runs one frame and converts any panic into a failed result.
func (p *pipeline) renderUnit(ctx context.Context, index int) (res RenderResult) {
	res.Index = index
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
	}()
	res.Err = p.render(ctx, index)
	return res
}
