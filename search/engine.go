// Package search builds and scores the bounded-depth adversarial game
// tree and selects the best move for a designated player.
package search

import (
	"github.com/chewxy/math32"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/tree"
)

// Engine holds the depth knobs shared by local and distributed search:
// MaxDepth is the AI difficulty (full search depth), PrecomputeDepth is
// the shallow frontier depth the coordinator builds locally before
// farming the remainder out to workers.
type Engine struct {
	MaxDepth        int
	PrecomputeDepth int
}

// New builds an Engine with the given depth knobs.
func New(maxDepth, precomputeDepth int) *Engine {
	return &Engine{MaxDepth: maxDepth, PrecomputeDepth: precomputeDepth}
}

// CreateTree builds the tree skeleton to depth, rooted at b, for the
// designated player me. Root children are me's legal moves (root's
// implicit mover is -me); a node whose Play yields StatusWin is a leaf
// and its subtree is not expanded.
func (e *Engine) CreateTree(b *board.Board, me board.Player, depth int) *tree.Tree {
	t := tree.New(b)
	e.expand(t, t.Root(), me, 1, depth)
	return t
}

func (e *Engine) expand(t *tree.Tree, node tree.Ref, me board.Player, depth, maxDepth int) {
	var mover board.Player
	if !t.HasMove(node) {
		mover = me
	} else {
		mover = t.Player(node).Opponent()
	}
	state := t.State(node)
	for _, mv := range state.ValidMoves() {
		child := state.Copy()
		status := child.Play(mv, mover)
		childRef := t.NewChild(node, mv, mover, child)
		if status == board.StatusWin {
			t.SetStatus(childRef, tree.StatusWin)
			// Directly-winning leaves are scored eagerly as the
			// skeleton is built, so the coordinator can prune their
			// subtrees before a single task is dispatched.
			e.scoreWinLeaf(t, childRef, me)
			continue
		}
		t.SetStatus(childRef, tree.StatusValid)
		if depth < maxDepth {
			e.expand(t, childRef, me, depth+1, maxDepth)
		}
	}
}

// ScoreTree walks the skeleton rooted at root bottom-up, aggregating
// (score, total) and propagating winner/loser flags. It tolerates a
// precomputed skeleton: where a node already carries winner=true or
// loser=true it is treated as a leaf and not descended into, which is
// how the coordinator injects remote-computed frontier results and
// finishes scoring locally.
func (e *Engine) ScoreTree(t *tree.Tree, root tree.Ref, me board.Player) {
	e.scoreNode(t, root, me)
}

func (e *Engine) scoreNode(t *tree.Tree, ref tree.Ref, me board.Player) (score, total int) {
	if t.Winner(ref) || t.Loser(ref) {
		return t.Score(ref), t.Total(ref)
	}
	if t.Status(ref) == tree.StatusWin {
		return e.scoreWinLeaf(t, ref, me)
	}

	children := t.Children(ref)
	if len(children) == 0 {
		// Either a genuine depth-bound leaf, or a frontier node whose
		// (score, total, winner, loser) were written directly by the
		// coordinator from a worker's Result -- nothing to aggregate.
		return t.Score(ref), t.Total(ref)
	}

	allWinner, allLoser := true, true
	for _, c := range children {
		cs, ct := e.scoreNode(t, c, me)
		score += cs
		total += ct
		allWinner = allWinner && t.Winner(c)
		allLoser = allLoser && t.Loser(c)
	}
	t.SetScore(ref, score, total)
	if !t.Winner(ref) && !t.Loser(ref) {
		if allWinner {
			t.SetWinner(ref, true)
		}
		if allLoser {
			t.SetLoser(ref, true)
		}
	}
	return score, total
}

// scoreWinLeaf scores a node whose status is StatusWin: it marks the
// node, and its immediate parent, as winner (if the mover was me) or
// loser (otherwise), with score/total weighted by V, the number of
// legal moves remaining on the resulting board. It is idempotent: a
// node already marked winner/loser is left untouched by ScoreTree's
// own call into it.
func (e *Engine) scoreWinLeaf(t *tree.Tree, ref tree.Ref, me board.Player) (score, total int) {
	v := len(t.State(ref).ValidMoves())
	var s int
	if t.Player(ref) == me {
		t.SetWinner(ref, true)
		if parent := t.Parent(ref); parent != tree.NilRef {
			t.SetWinner(parent, true)
		}
		s = v
	} else {
		t.SetLoser(ref, true)
		if parent := t.Parent(ref); parent != tree.NilRef {
			t.SetLoser(parent, true)
		}
		s = -v
	}
	t.SetScore(ref, s, v)
	return s, v
}

// Play selects the best-ranked root child and returns the column it
// was played in. It assumes root has already been scored (via
// ScoreTree or Compute). Children are ranked by score/total descending;
// ties are broken by original insertion order.
func (e *Engine) Play(t *tree.Tree, root tree.Ref) int {
	children := t.Children(root)
	if len(children) == 0 {
		panic("search: no legal moves to choose from")
	}
	best := children[0]
	bestRatio := ratio32(t, best)
	for _, c := range children[1:] {
		r := ratio32(t, c)
		if r > bestRatio {
			best = c
			bestRatio = r
		}
	}
	return t.Move(best)
}

func ratio32(t *tree.Tree, r tree.Ref) float32 {
	total := t.Total(r)
	if total == 0 {
		return 0
	}
	v := float32(t.Score(r)) / float32(total)
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		panic("search: non-finite score ratio")
	}
	return v
}

// Compute builds and scores a fresh tree rooted at b for me to depth,
// and returns the root's aggregated outcome. This is the single call a
// worker issues per task: the board it receives already reflects the
// frontier leaf's position, so the search begins from its children.
func (e *Engine) Compute(b *board.Board, me board.Player, depth int) (score, total int, winner, loser bool) {
	t := e.CreateTree(b, me, depth)
	e.ScoreTree(t, t.Root(), me)
	root := t.Root()
	return t.Score(root), t.Total(root), t.Winner(root), t.Loser(root)
}

// PlayLocal runs a full local create+score+select cycle for b and
// returns the chosen column. Used by controller.Local, the
// non-distributed AI variant.
func (e *Engine) PlayLocal(b *board.Board, me board.Player) int {
	t := e.CreateTree(b, me, e.MaxDepth)
	e.ScoreTree(t, t.Root(), me)
	return e.Play(t, t.Root())
}
