package orchestrator

import (
	"context"
	"sync"

	"github.com/goliatone/go-formstate/pkg/errtree"
)

// Pass is the handle returned by every trigger. It resolves once all runners
// started for the trigger have settled and their results have been applied
// or discarded as stale. Triggering never blocks the caller; await the
// result through Wait or Done.
type Pass struct {
	generation uint64
	trigger    string
	done       chan struct{}

	mu      sync.Mutex
	pending int
	form    errtree.Tree
	fields  errtree.Tree
	results map[string]string
	errs    errtree.Tree
	fault   error
	blocked bool
	stale   bool
}

func newPass(generation uint64, trigger string, pending int) *Pass {
	return &Pass{
		generation: generation,
		trigger:    trigger,
		done:       make(chan struct{}),
		pending:    pending,
	}
}

// newSettledPass builds an already-resolved pass for triggers that have
// nothing to run. It carries the error state current at trigger time.
func newSettledPass(trigger string, errs errtree.Tree) *Pass {
	p := &Pass{
		trigger: trigger,
		done:    make(chan struct{}),
		errs:    errs,
	}
	close(p.done)
	return p
}

// Done returns a channel closed when the pass has resolved.
func (p *Pass) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the pass resolves or ctx is cancelled. On resolution it
// returns the pass's merged error tree; a *validation.Fault is returned as
// the error when any validator broke during the pass. Cancelling ctx
// abandons the wait only, never the pass itself.
func (p *Pass) Wait(ctx context.Context) (errtree.Tree, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return errtree.Clone(p.errs), p.fault
}

// Generation reports the pass's generation number; zero for passes that
// settled without running validators.
func (p *Pass) Generation() uint64 {
	return p.generation
}

// Trigger names the trigger class that started the pass.
func (p *Pass) Trigger() string {
	return p.trigger
}

// Blocked reports whether a submit-triggered pass found errors or a
// validator fault and therefore aborted the submission. Always false for
// non-submit passes.
func (p *Pass) Blocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blocked
}

// Stale reports whether the pass was superseded by a newer generation before
// it settled; stale results never touch orchestrator state.
func (p *Pass) Stale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stale
}

// recordForm stores the form runner result on the pass. Returns true when
// this was the last outstanding runner.
func (p *Pass) recordForm(tree errtree.Tree, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if p.fault == nil {
			p.fault = err
		}
	} else {
		p.form = tree
	}
	p.pending--
	return p.pending == 0
}

// recordField stores one field runner result on the pass. Returns true when
// this was the last outstanding runner.
func (p *Pass) recordField(path, message string, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if p.fault == nil {
			p.fault = err
		}
	} else {
		if p.results == nil {
			p.results = map[string]string{}
		}
		p.results[path] = message
		if message != "" {
			if p.fields == nil {
				p.fields = errtree.Tree{}
			}
			errtree.Set(p.fields, path, message)
		}
	}
	p.pending--
	return p.pending == 0
}

// fieldResults returns the per-path outcomes of every field runner that
// completed without a fault; "" marks a field that validated clean.
func (p *Pass) fieldResults() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.results))
	for path, message := range p.results {
		out[path] = message
	}
	return out
}

// settle resolves the pass. errs is the error state the pass produced (or
// observed, for stale passes).
func (p *Pass) settle(errs errtree.Tree, blocked, stale bool) {
	p.mu.Lock()
	p.errs = errs
	p.blocked = blocked
	p.stale = stale
	p.mu.Unlock()
	close(p.done)
}

// merged combines the pass-local form and field results with the
// field-over-form tie-break.
func (p *Pass) merged() errtree.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errtree.Merge(p.form, p.fields)
}

func (p *Pass) faulted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fault != nil
}
