package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/tree"
)

func TestAddAndGetMove(t *testing.T) {
	b := board.New(board.DefaultConfig())
	tr := tree.New(b)
	root := tr.Root()

	c1 := tr.NewChild(root, 3, board.PlayerOne, b)
	c2 := tr.NewChild(c1, 4, board.PlayerTwo, b)

	require.Equal(t, c2, tr.GetMove(root, 3, 4))
	require.Equal(t, []tree.Ref{c1}, tr.Children(root))
	require.Equal(t, c1, tr.Parent(c2))
}

func TestGetMoveMissingChildPanics(t *testing.T) {
	b := board.New(board.DefaultConfig())
	tr := tree.New(b)
	require.Panics(t, func() { tr.GetMove(tr.Root(), 9) })
}

func TestChain(t *testing.T) {
	b := board.New(board.DefaultConfig())
	tr := tree.New(b)
	root := tr.Root()
	c1 := tr.NewChild(root, 2, board.PlayerOne, b)
	c2 := tr.NewChild(c1, 5, board.PlayerTwo, b)
	c3 := tr.NewChild(c2, 1, board.PlayerOne, b)

	require.Equal(t, []int{2, 5, 1}, tr.Chain(c3))
	require.Equal(t, []int{}, tr.Chain(root))
}

func TestChildByMoveInsertionOrderPreserved(t *testing.T) {
	b := board.New(board.DefaultConfig())
	tr := tree.New(b)
	root := tr.Root()
	var moves []int
	for _, m := range []int{3, 1, 5, 0} {
		tr.NewChild(root, m, board.PlayerOne, b)
		moves = append(moves, m)
	}
	var got []int
	for _, c := range tr.Children(root) {
		got = append(got, tr.Move(c))
	}
	require.Equal(t, moves, got)
}

func TestRatio(t *testing.T) {
	b := board.New(board.DefaultConfig())
	tr := tree.New(b)
	root := tr.Root()
	require.Equal(t, 0.0, tr.Ratio(root))
	tr.SetScore(root, 3, 4)
	require.Equal(t, 0.75, tr.Ratio(root))
}
