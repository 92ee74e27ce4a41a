// Package controller supplies pluggable move sources for a game loop:
// a human reading stdin, a fixed scripted sequence (for tests and
// demos), a local single-process AI, and a thin adapter over the
// distributed coordinator so the loop never needs to know which kind
// of opponent it is driving.
package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/coordinator"
	"github.com/dropfour/dropfour/internal/xlog"
	"github.com/dropfour/dropfour/render"
	"github.com/dropfour/dropfour/search"
)

// Controller produces the next move for player given the current
// board state. Implementations may block on I/O or on a remote
// computation; ctx governs cancellation of that wait.
type Controller interface {
	NextMove(ctx context.Context, b *board.Board, player board.Player) (int, error)
}

// Observer is implemented by controllers that track their own copy of
// the board state between calls (Distributed, via its coordinator).
// Loop calls Observe with the opposing side's move after every turn so
// such controllers stay in sync without consulting the board directly.
type Observer interface {
	Observe(col int, player board.Player)
}

// Stdin reads one column index per line from an io.Reader, prompting
// on an io.Writer. It is the human-facing controller.
type Stdin struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewStdin builds a Stdin controller over in/out.
func NewStdin(in io.Reader, out io.Writer) *Stdin {
	return &Stdin{in: bufio.NewScanner(in), out: out}
}

// NextMove prompts and parses a single integer column. It ignores ctx
// cancellation, since bufio.Scanner has no cancelable read path; a
// human controller is expected to be driven interactively, not
// embedded in a cancellable pipeline.
func (s *Stdin) NextMove(ctx context.Context, b *board.Board, player board.Player) (int, error) {
	fmt.Fprintf(s.out, "player %d, choose a column: ", player.Sign())
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return 0, errors.Wrap(err, "controller: stdin read")
		}
		return 0, io.EOF
	}
	var col int
	if _, err := fmt.Sscanf(s.in.Text(), "%d", &col); err != nil {
		return 0, errors.Wrap(err, "controller: parse column")
	}
	return col, nil
}

// Scripted replays a fixed sequence of moves, one per call, ignoring
// the board and player it is handed. It exists for reproducible tests
// and demos, standing in for a recorded game.
type Scripted struct {
	moves []int
	next  int
}

// NewScripted builds a Scripted controller that will yield moves in
// order, then return io.EOF once exhausted.
func NewScripted(moves ...int) *Scripted {
	return &Scripted{moves: moves}
}

// NextMove implements Controller.
func (s *Scripted) NextMove(ctx context.Context, b *board.Board, player board.Player) (int, error) {
	if s.next >= len(s.moves) {
		return 0, io.EOF
	}
	m := s.moves[s.next]
	s.next++
	return m, nil
}

// Local wraps a single-process search.Engine: it runs a full local
// create+score+select cycle on the caller's board every move, with no
// farming out to workers.
type Local struct {
	Engine *search.Engine
}

// NewLocal builds a Local controller around engine.
func NewLocal(engine *search.Engine) *Local {
	return &Local{Engine: engine}
}

// NextMove implements Controller.
func (l *Local) NextMove(ctx context.Context, b *board.Board, player board.Player) (int, error) {
	return l.Engine.PlayLocal(b.Copy(), player), nil
}

// Distributed adapts a *coordinator.Coordinator to the Controller
// contract, so the game loop can drive the distributed search exactly
// like any other move source -- the coordinator is a controller from
// the loop's perspective, same as a human or a local engine.
type Distributed struct {
	Coordinator *coordinator.Coordinator
}

// NewDistributed builds a Distributed controller around c.
func NewDistributed(c *coordinator.Coordinator) *Distributed {
	return &Distributed{Coordinator: c}
}

// NextMove implements Controller. It ignores b, since the coordinator
// holds its own authoritative board and advances it internally; ctx
// cancellation is not honored because Play blocks on channel receives
// with no cancellation path of their own.
func (d *Distributed) NextMove(ctx context.Context, b *board.Board, player board.Player) (int, error) {
	return d.Coordinator.Play(player), nil
}

// Observe implements Observer: it replays the opposing side's move
// into the coordinator's tracked board, keeping it current for the
// next frontier build.
func (d *Distributed) Observe(col int, player board.Player) {
	d.Coordinator.ApplyOpponentMove(col, player)
}

// Loop drives a two-player game to completion, alternating move
// source by move count. PlayerOne moves first.
type Loop struct {
	Board     *board.Board
	one, two  Controller
	moveCount int
	won       board.Player
}

// NewLoop builds a Loop over b, with one playing PlayerOne and two
// playing PlayerTwo.
func NewLoop(b *board.Board, one, two Controller) *Loop {
	return &Loop{Board: b, one: one, two: two}
}

func (l *Loop) sideToMove() board.Player {
	if l.moveCount%2 == 0 {
		return board.PlayerOne
	}
	return board.PlayerTwo
}

func (l *Loop) controllerFor(p board.Player) Controller {
	if p == board.PlayerOne {
		return l.one
	}
	return l.two
}

// Step plays one move for the side to move and returns the resulting
// status. Once the game is already decided, Step short-circuits: it
// advances the move counter and returns WIN or LOSS for the current
// side without consulting the board or any controller again. An
// INVALID move (illegal column, e.g. a human mistyping) does not
// advance the move counter, so the same side is asked again on the
// next Step.
func (l *Loop) Step(ctx context.Context) (board.Status, error) {
	player := l.sideToMove()

	if l.won != board.Empty {
		l.moveCount++
		if player == l.won {
			return board.StatusWin, nil
		}
		return board.StatusLoss, nil
	}

	col, err := l.controllerFor(player).NextMove(ctx, l.Board, player)
	if err != nil {
		return board.StatusInvalid, err
	}

	status := l.Board.Play(col, player)
	if status == board.StatusInvalid {
		return status, nil
	}
	l.moveCount++

	if obs, ok := l.controllerFor(player.Opponent()).(Observer); ok {
		obs.Observe(col, player)
	}
	if status == board.StatusWin {
		l.won = player
	}
	return status, nil
}

// Run steps the loop to completion: a decided game (Winner), a draw
// (Empty, nil error) once no column accepts another token, or ctx
// cancellation. When logger is non-nil and verbose, the board is
// rendered and logged after every move that actually changes it
// (logger.Pretty picks the box-drawing table over the official
// alphabet one); logger may be nil to run silently.
func (l *Loop) Run(ctx context.Context, logger *xlog.Logger) (board.Player, error) {
	for {
		if err := ctx.Err(); err != nil {
			return board.Empty, err
		}
		if l.won != board.Empty {
			return l.won, nil
		}
		if len(l.Board.ValidMoves()) == 0 {
			return board.Empty, nil
		}
		status, err := l.Step(ctx)
		if err != nil {
			return board.Empty, err
		}
		if status != board.StatusInvalid && logger != nil {
			logger.Print("\n" + l.render(logger))
		}
	}
}

func (l *Loop) render(logger *xlog.Logger) string {
	if logger.Pretty {
		return render.Pretty(l.Board)
	}
	return render.Official(l.Board)
}
