package controller_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/controller"
	"github.com/dropfour/dropfour/internal/xlog"
)

func TestLoopAlternatesSides(t *testing.T) {
	b := board.New(board.DefaultConfig())
	one := controller.NewScripted(0, 0, 0)
	two := controller.NewScripted(1, 1)
	loop := controller.NewLoop(b, one, two)
	ctx := context.Background()

	status, err := loop.Step(ctx)
	require.NoError(t, err)
	require.Equal(t, board.StatusValid, status)
	require.Equal(t, board.PlayerOne, b.Cell(b.Config().Height-1, 0))

	status, err = loop.Step(ctx)
	require.NoError(t, err)
	require.Equal(t, board.StatusValid, status)
	require.Equal(t, board.PlayerTwo, b.Cell(b.Config().Height-1, 1))
}

func TestLoopInvalidMoveDoesNotAdvanceMoveCounter(t *testing.T) {
	cfg := board.Config{Width: 1, Height: 1, WinLength: 4}
	b := board.New(cfg)
	// Fill the only cell, then have PlayerOne try to play the same
	// full column again -- it must see INVALID and be asked again
	// without PlayerTwo ever getting a turn out of order.
	b.Play(0, board.PlayerOne)

	one := controller.NewScripted(0, 0)
	two := controller.NewScripted(0)
	loop := controller.NewLoop(b, one, two)
	ctx := context.Background()

	status, err := loop.Step(ctx)
	require.NoError(t, err)
	require.Equal(t, board.StatusInvalid, status)

	// Still PlayerOne's turn -- the second scripted move (also column
	// 0) is consumed next, again INVALID, since the board never
	// changes. PlayerTwo's controller is never touched.
	status, err = loop.Step(ctx)
	require.NoError(t, err)
	require.Equal(t, board.StatusInvalid, status)
}

func TestLoopDetectsWinAndShortCircuitsFurtherSteps(t *testing.T) {
	b := board.New(board.DefaultConfig())
	// PlayerOne: 0,1,2,3 (four in a row on the bottom row) vs
	// PlayerTwo: 0,1,2 (never gets to move a fourth time).
	one := controller.NewScripted(0, 1, 2, 3, 5)
	two := controller.NewScripted(0, 1, 2, 5)
	loop := controller.NewLoop(b, one, two)
	ctx := context.Background()

	var lastStatus board.Status
	for i := 0; i < 7; i++ {
		status, err := loop.Step(ctx)
		require.NoError(t, err)
		lastStatus = status
	}
	require.Equal(t, board.StatusWin, lastStatus)

	// Further steps short-circuit without consulting the board again:
	// it is now PlayerTwo's turn, and PlayerTwo lost.
	status, err := loop.Step(ctx)
	require.NoError(t, err)
	require.Equal(t, board.StatusLoss, status)

	// The side after that is PlayerOne again, who won.
	status, err = loop.Step(ctx)
	require.NoError(t, err)
	require.Equal(t, board.StatusWin, status)
}

func TestLoopRunDetectsDraw(t *testing.T) {
	cfg := board.Config{Width: 1, Height: 1, WinLength: 4}
	b := board.New(cfg)
	one := controller.NewScripted(0)
	two := controller.NewScripted()
	loop := controller.NewLoop(b, one, two)

	winner, err := loop.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, board.Empty, winner)
}

func TestLoopRunReturnsWinner(t *testing.T) {
	b := board.New(board.DefaultConfig())
	one := controller.NewScripted(0, 1, 2, 3)
	two := controller.NewScripted(0, 1, 2)
	loop := controller.NewLoop(b, one, two)

	winner, err := loop.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, board.PlayerOne, winner)
}

func TestLoopRunVerboseLogsBoardAfterEachMove(t *testing.T) {
	b := board.New(board.DefaultConfig())
	one := controller.NewScripted(0, 1, 2, 3)
	two := controller.NewScripted(0, 1, 2)
	loop := controller.NewLoop(b, one, two)

	var buf bytes.Buffer
	logger := xlog.New(&buf, true, false)

	winner, err := loop.Run(context.Background(), logger)
	require.NoError(t, err)
	require.Equal(t, board.PlayerOne, winner)

	// The board was rendered using the official P/C/= alphabet (Pretty
	// is false) at least once, since every move in this game is valid.
	out := buf.String()
	require.NotEmpty(t, out)
	require.Contains(t, out, "P")
	require.NotContains(t, out, "║", "official alphabet shouldn't use box-drawing borders")
}

func TestLoopRunSilentWithoutLogger(t *testing.T) {
	b := board.New(board.DefaultConfig())
	one := controller.NewScripted(0, 1, 2, 3)
	two := controller.NewScripted(0, 1, 2)
	loop := controller.NewLoop(b, one, two)

	winner, err := loop.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, board.PlayerOne, winner)
}
