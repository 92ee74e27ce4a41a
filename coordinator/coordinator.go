// Package coordinator implements the master side of the distributed
// search: it builds a shallow frontier locally, farms one task per
// frontier leaf to a pool of workers, and reintegrates their results.
package coordinator

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/hashicorp/go-multierror"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/search"
	"github.com/dropfour/dropfour/transport"
	"github.com/dropfour/dropfour/tree"
	"github.com/dropfour/dropfour/wire"
)

// Rank is the coordinator's fixed rank within the process group.
const Rank = 0

// Coordinator is rank 0 of the process group. It owns the shared
// board, a search.Engine configured with the full search depth and
// the frontier precompute depth, and the transport's read side via a
// background receive goroutine.
type Coordinator struct {
	transport transport.Transport
	board     *board.Board
	engine    *search.Engine

	requestQueue  chan int
	responseQueue chan wire.ResultPayload
	done          chan struct{}
}

// New constructs a Coordinator. engine.PrecomputeDepth is the frontier
// depth P; engine.MaxDepth is the AI difficulty D, used only by
// workers (the coordinator itself never searches past P).
func New(tp transport.Transport, b *board.Board, engine *search.Engine) *Coordinator {
	c := &Coordinator{
		transport:     tp,
		board:         b,
		engine:        engine,
		requestQueue:  make(chan int, tp.Size()),
		responseQueue: make(chan wire.ResultPayload, tp.Size()),
		done:          make(chan struct{}),
	}
	go c.recvLoop()
	return c
}

// recvLoop owns the transport's read side for rank 0 and demultiplexes
// incoming envelopes by tag. It is the only goroutine that ever calls
// Recv on the coordinator's rank; Play only ever touches the queues.
// A malformed tag is a protocol error and is fatal to this goroutine.
func (c *Coordinator) recvLoop() {
	for {
		env, err := c.transport.Recv(Rank)
		if err != nil {
			panic(errors.Wrap(err, "coordinator: recv failed"))
		}
		switch env.Tag {
		case wire.Request:
			c.requestQueue <- env.Rank
		case wire.Result:
			c.responseQueue <- *env.Result
		case wire.Done:
			return
		default:
			panic(fmt.Sprintf("coordinator: malformed message tag %v", env.Tag))
		}
	}
}

// Play builds a depth-P frontier for player, dispatches one task per
// frontier leaf to the next free worker, waits for one result per
// dispatched task, reintegrates them into the frontier, rescoring it,
// applies the chosen move to the coordinator's own tracked board, and
// returns the best column.
func (c *Coordinator) Play(player board.Player) int {
	frontier := c.engine.CreateTree(c.board.Copy(), player, c.engine.PrecomputeDepth)
	root := frontier.Root()

	tasks := buildTasks(frontier, root)

	for _, task := range tasks {
		workerRank := <-c.requestQueue
		t := task
		if err := c.transport.Send(workerRank, wire.Envelope{Tag: wire.Task, Rank: workerRank, Task: &t}); err != nil {
			panic(errors.Wrapf(err, "coordinator: send task to worker %d", workerRank))
		}
	}

	for range tasks {
		result := <-c.responseQueue
		leaf := frontier.GetMove(root, result.Moves...)
		frontier.SetScore(leaf, result.Score, result.Total)
		frontier.SetWinner(leaf, result.Winner)
		frontier.SetLoser(leaf, result.Loser)
	}

	c.engine.ScoreTree(frontier, root, player)
	col := c.engine.Play(frontier, root)
	c.board.Play(col, player)
	return col
}

// ApplyOpponentMove advances the coordinator's internally tracked
// board with a move decided elsewhere (e.g. a human or local
// controller's turn), so the next call to Play builds its frontier
// from the true current position. The coordinator never observes the
// opposing move otherwise, since Play only ever sees its own board.
func (c *Coordinator) ApplyOpponentMove(col int, player board.Player) board.Status {
	return c.board.Play(col, player)
}

// Board returns the coordinator's internally tracked board. Callers
// must not mutate it directly; use Play or ApplyOpponentMove.
func (c *Coordinator) Board() *board.Board {
	return c.board
}

// Shutdown sends a DONE envelope to every worker and to itself,
// unblocking the coordinator's own receive goroutine. Send failures
// across workers are aggregated, not short-circuited, so a single
// unreachable worker doesn't prevent shutting down the rest.
func (c *Coordinator) Shutdown() error {
	var errs *multierror.Error
	for rank := 1; rank < c.transport.Size(); rank++ {
		if err := c.transport.Send(rank, wire.Envelope{Tag: wire.Done}); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "worker %d", rank))
		}
	}
	if err := c.transport.Send(Rank, wire.Envelope{Tag: wire.Done}); err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "self"))
	}
	return errs.ErrorOrNil()
}

// buildTasks enumerates frontier-leaf tasks with a depth-first walk:
// a node contributes a task iff it is a leaf (has no children); a node
// already marked winner or loser is pruned along with its subtree,
// since search.Engine.CreateTree's eager leaf-scoring has already
// resolved its outcome without a worker.
func buildTasks(t *tree.Tree, node tree.Ref) []wire.TaskPayload {
	if t.HasMove(node) && (t.Winner(node) || t.Loser(node)) {
		return nil
	}
	children := t.Children(node)
	if len(children) == 0 {
		if !t.HasMove(node) {
			return nil // empty board with zero legal moves: no tasks
		}
		return []wire.TaskPayload{taskFor(t, node)}
	}
	var tasks []wire.TaskPayload
	for _, c := range children {
		tasks = append(tasks, buildTasks(t, c)...)
	}
	return tasks
}

func taskFor(t *tree.Tree, node tree.Ref) wire.TaskPayload {
	return wire.TaskPayload{
		State:  t.State(node),
		Moves:  append([]int(nil), t.Chain(node)...),
		Player: t.Player(node),
	}
}
