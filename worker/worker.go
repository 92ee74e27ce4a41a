// Package worker implements the request/compute/respond loop that
// farms out the deep portion of the search, and a small helper pool
// for running several workers against an in-process transport.
package worker

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/search"
	"github.com/dropfour/dropfour/transport"
	"github.com/dropfour/dropfour/wire"
)

// Worker is a single rank >= 1 in the process group. It is stateless
// between tasks apart from its long-lived Engine; each task's state is
// loaded into a fresh board, never shared with another worker.
type Worker struct {
	Rank      int
	Transport transport.Transport
	Engine    *search.Engine
}

// New builds a Worker for rank, carrying its own Engine. MaxDepth on
// the engine is the full AI difficulty D; the worker always searches
// D - PrecomputeDepth plies past the frontier leaf it receives.
func New(rank int, tp transport.Transport, engine *search.Engine) *Worker {
	return &Worker{Rank: rank, Transport: tp, Engine: engine}
}

// Run services tasks until a DONE message arrives, then returns. Each
// iteration: send REQUEST, blocking-receive, exit on DONE, else unpack
// the Task, load its state into a fresh board, search, and send back a
// Result carrying the task's moves path verbatim.
func (w *Worker) Run() error {
	for {
		if err := w.Transport.Send(0, wire.Envelope{Tag: wire.Request, Rank: w.Rank}); err != nil {
			return errors.Wrapf(err, "worker %d: send request", w.Rank)
		}
		env, err := w.Transport.Recv(w.Rank)
		if err != nil {
			return errors.Wrapf(err, "worker %d: recv", w.Rank)
		}
		switch env.Tag {
		case wire.Done:
			return nil
		case wire.Task:
			result := w.compute(env.Task)
			if err := w.Transport.Send(0, wire.Envelope{Tag: wire.Result, Rank: w.Rank, Result: &result}); err != nil {
				return errors.Wrapf(err, "worker %d: send result", w.Rank)
			}
		default:
			panic(fmt.Sprintf("worker %d: malformed message tag %v", w.Rank, env.Tag))
		}
	}
}

// compute runs the deep search for a single task. The task describes a
// frontier position (its State already reflects the last played
// move); the worker searches starting from that position's children,
// for the same designated player the coordinator built the whole
// frontier for. task.Player carries whoever just moved to reach the
// leaf, which alternates with the frontier's precompute depth: on an
// even-depth frontier the designated player is the leaf mover's
// opponent, on an odd-depth frontier it is the leaf mover itself. Get
// this parity wrong and the worker scores the search for the wrong
// side entirely.
func (w *Worker) compute(task *wire.TaskPayload) wire.ResultPayload {
	b := board.FromState(task.State.Config(), task.State.State())
	me := task.Player
	if w.Engine.PrecomputeDepth%2 == 0 {
		me = me.Opponent()
	}
	depth := w.Engine.MaxDepth - w.Engine.PrecomputeDepth
	score, total, winner, loser := w.Engine.Compute(b, me, depth)
	return wire.ResultPayload{
		Score:  score,
		Total:  total,
		Winner: winner,
		Loser:  loser,
		Moves:  task.Moves,
	}
}

// Pool launches N worker goroutines against a shared transport, for
// the in-process demo/test harness where ranks are goroutines rather
// than OS processes.
type Pool struct {
	workers []*Worker
	errs    []error
	done    chan struct{}
}

// StartPool builds and runs n workers (ranks 1..n) against tp, each
// with its own Engine cloned from engineTemplate's depth knobs.
func StartPool(tp transport.Transport, n int, engineTemplate *search.Engine) *Pool {
	p := &Pool{done: make(chan struct{})}
	p.errs = make([]error, n)
	resultCh := make(chan struct {
		idx int
		err error
	}, n)
	for i := 1; i <= n; i++ {
		w := New(i, tp, search.New(engineTemplate.MaxDepth, engineTemplate.PrecomputeDepth))
		p.workers = append(p.workers, w)
		idx := i - 1
		go func() {
			err := w.Run()
			resultCh <- struct {
				idx int
				err error
			}{idx, err}
		}()
	}
	go func() {
		for range p.workers {
			r := <-resultCh
			p.errs[r.idx] = r.err
		}
		close(p.done)
	}()
	return p
}

// Wait blocks until every worker in the pool has exited (i.e. every
// worker received DONE), aggregating any errors.
func (p *Pool) Wait() error {
	<-p.done
	var errs *multierror.Error
	for i, err := range p.errs {
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "worker rank %d", i+1))
		}
	}
	return errs.ErrorOrNil()
}
