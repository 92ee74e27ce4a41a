// Package tree implements the search-tree arena: an index-handle tree
// of nodes with move-keyed child lookup, parent/child navigation, and
// no owning parent pointers that would make the node graph cyclic.
package tree

import (
	"fmt"

	"github.com/dropfour/dropfour/board"
)

// Ref is a handle into a Tree's node arena. It stands in for a pointer
// without creating a reference cycle between parent and child.
type Ref int

// NilRef is the zero-value-safe "no node" handle.
const NilRef Ref = -1

// Status mirrors the small set of outcomes a node's board.Status can
// collapse into for scoring purposes.
type Status int

const (
	StatusNone Status = iota
	StatusValid
	StatusWin
)

// node is the arena-resident payload. Move is nil at the root
// (represented by hasMove=false); Player is the player who just moved
// to reach this node (zero/Empty at root).
type node struct {
	parent      Ref
	children    []Ref
	childByMove map[int]Ref

	move    int
	hasMove bool

	player board.Player
	state  *board.Board

	status Status
	score  int
	total  int
	winner bool
	loser  bool
}

// Tree owns the node arena. The zero value is not usable; use New.
type Tree struct {
	nodes []node
}

// New creates a tree with a single root node. The root has no move and
// no player (both zero values): its children are the legal moves of
// the player to move.
func New(state *board.Board) *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, node{
		parent:      NilRef,
		childByMove: make(map[int]Ref),
		state:       state,
	})
	return t
}

// Root returns the handle to the tree's root.
func (t *Tree) Root() Ref { return 0 }

func (t *Tree) at(r Ref) *node {
	if r < 0 || int(r) >= len(t.nodes) {
		panic(fmt.Sprintf("tree: invalid ref %d", r))
	}
	return &t.nodes[r]
}

// NewChild allocates a new node for `move`, played by `player`, arriving
// at `state`, and appends it as a child of parent via Add.
func (t *Tree) NewChild(parent Ref, move int, player board.Player, state *board.Board) Ref {
	t.nodes = append(t.nodes, node{
		parent:      NilRef,
		childByMove: make(map[int]Ref),
		move:        move,
		hasMove:     true,
		player:      player,
		state:       state,
	})
	child := Ref(len(t.nodes) - 1)
	t.Add(parent, child)
	return child
}

// Add appends child as a new ordered child of parent, sets child's
// parent pointer and registers it in parent's move-keyed lookup.
func (t *Tree) Add(parent, child Ref) {
	p := t.at(parent)
	c := t.at(child)
	if !c.hasMove {
		panic("tree: cannot add a node with no move as a child")
	}
	p.children = append(p.children, child)
	p.childByMove[c.move] = child
	c.parent = parent
}

// GetMove follows childByMove hop by hop starting from r. It panics if
// any hop is missing -- a missing child indicates a task/result
// mismatch, a programmer error, never a recoverable one.
func (t *Tree) GetMove(r Ref, moves ...int) Ref {
	cur := r
	for _, m := range moves {
		n := t.at(cur)
		next, ok := n.childByMove[m]
		if !ok {
			panic(fmt.Sprintf("tree: no child for move %d under node with move-chain %v", m, t.Chain(cur)))
		}
		cur = next
	}
	return cur
}

// Chain returns the sequence of moves from the root to r, root's
// (nonexistent) move excluded.
func (t *Tree) Chain(r Ref) []int {
	var rev []int
	cur := r
	for {
		n := t.at(cur)
		if !n.hasMove {
			break
		}
		rev = append(rev, n.move)
		cur = n.parent
	}
	chain := make([]int, len(rev))
	for i, m := range rev {
		chain[len(rev)-1-i] = m
	}
	return chain
}

// Children returns the ordered children of r.
func (t *Tree) Children(r Ref) []Ref { return t.at(r).children }

// Parent returns r's parent, or NilRef for the root.
func (t *Tree) Parent(r Ref) Ref { return t.at(r).parent }

// Move returns the move played to reach r. Calling it on the root
// (which has no move) is a programmer error.
func (t *Tree) Move(r Ref) int {
	n := t.at(r)
	if !n.hasMove {
		panic("tree: root has no move")
	}
	return n.move
}

// HasMove reports whether r is the root (false) or a real move node.
func (t *Tree) HasMove(r Ref) bool { return t.at(r).hasMove }

// Player returns the player who just moved to reach r.
func (t *Tree) Player(r Ref) board.Player { return t.at(r).player }

// State returns the board state at r. Callers must treat it as
// read-only; it may be shared by reference with sibling nodes' search
// machinery.
func (t *Tree) State(r Ref) *board.Board { return t.at(r).state }

// Status/SetStatus carry the leaf-scoring classification.
func (t *Tree) Status(r Ref) Status        { return t.at(r).status }
func (t *Tree) SetStatus(r Ref, s Status)  { t.at(r).status = s }

// Score/Total/SetScore carry the aggregated (score, total) pair.
func (t *Tree) Score(r Ref) int { return t.at(r).score }
func (t *Tree) Total(r Ref) int { return t.at(r).total }
func (t *Tree) SetScore(r Ref, score, total int) {
	n := t.at(r)
	n.score = score
	n.total = total
}

// Winner/Loser/SetWinner/SetLoser carry the propagated forced-outcome
// flags.
func (t *Tree) Winner(r Ref) bool       { return t.at(r).winner }
func (t *Tree) Loser(r Ref) bool        { return t.at(r).loser }
func (t *Tree) SetWinner(r Ref, w bool) { t.at(r).winner = w }
func (t *Tree) SetLoser(r Ref, l bool)  { t.at(r).loser = l }

// Ratio returns Score/Total as a float, or 0 if Total is 0. This is the
// key search.Engine ranks children by.
func (t *Tree) Ratio(r Ref) float64 {
	n := t.at(r)
	if n.total == 0 {
		return 0
	}
	return float64(n.score) / float64(n.total)
}
