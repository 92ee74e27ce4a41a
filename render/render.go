// Package render formats a board for terminal output in the two
// modes the original tool supported, and dumps a search frontier to
// Graphviz DOT for debugging.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/tree"
)

func officialChar(p board.Player) string {
	switch p {
	case board.PlayerOne:
		return "P"
	case board.PlayerTwo:
		return "C"
	default:
		return "="
	}
}

func prettyChar(p board.Player) string {
	switch p {
	case board.PlayerOne:
		return "o"
	case board.PlayerTwo:
		return "x"
	default:
		return " "
	}
}

// Official renders b using the P/C/= alphabet, one row per line, no
// trailing newline.
func Official(b *board.Board) string {
	state := b.State()
	rows := make([]string, len(state))
	for r, row := range state {
		var sb strings.Builder
		for _, p := range row {
			sb.WriteString(officialChar(p))
		}
		rows[r] = sb.String()
	}
	return strings.Join(rows, "\n")
}

const (
	horizontalBorder  = "═"
	verticalBorder    = "║"
	topLeftBorder     = "╬"
	topRightBorder    = "╣"
	bottomLeftBorder  = "╩"
	bottomRightBorder = "╝"
)

// Pretty renders b with a box-drawing border, a column-index header,
// and a row-index column, using the o/x/space alphabet.
func Pretty(b *board.Board) string {
	cfg := b.Config()
	state := b.State()

	var top strings.Builder
	top.WriteString(" ")
	top.WriteString(verticalBorder)
	top.WriteString(" ")
	for i := 0; i < cfg.Width; i++ {
		if i > 0 {
			top.WriteString(" ")
		}
		top.WriteString(strconv.Itoa(i))
	}
	top.WriteString(" ")
	top.WriteString(verticalBorder)

	border := strings.Repeat(horizontalBorder, cfg.Width*2+1)
	header := horizontalBorder + topLeftBorder + border + topRightBorder
	footer := horizontalBorder + bottomLeftBorder + border + bottomRightBorder

	var body strings.Builder
	for i, row := range state {
		body.WriteString(strconv.Itoa(i))
		body.WriteString(verticalBorder)
		body.WriteString(" ")
		for _, p := range row {
			body.WriteString(prettyChar(p))
			body.WriteString(" ")
		}
		body.WriteString(verticalBorder)
		body.WriteString("\n")
	}

	return top.String() + "\n" + header + "\n" + body.String() + footer + "\n"
}

// DOT renders the subtree rooted at root as a Graphviz DOT graph,
// labeling each node with its move, score/total ratio, and
// winner/loser marker, for inspecting a frontier the coordinator
// built before reintegration.
func DOT(t *tree.Tree, root tree.Ref) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("frontier"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := addNode(g, t, root); err != nil {
		return "", err
	}
	if err := walk(g, t, root); err != nil {
		return "", err
	}
	return g.String(), nil
}

func nodeID(r tree.Ref) string {
	return fmt.Sprintf("n%d", r)
}

func addNode(g *gographviz.Graph, t *tree.Tree, r tree.Ref) error {
	label := fmt.Sprintf("\"ratio=%.3f score=%d/%d winner=%v loser=%v\"",
		t.Ratio(r), t.Score(r), t.Total(r), t.Winner(r), t.Loser(r))
	if t.HasMove(r) {
		label = fmt.Sprintf("\"move=%d ratio=%.3f score=%d/%d winner=%v loser=%v\"",
			t.Move(r), t.Ratio(r), t.Score(r), t.Total(r), t.Winner(r), t.Loser(r))
	}
	return g.AddNode("frontier", nodeID(r), map[string]string{"label": label})
}

func walk(g *gographviz.Graph, t *tree.Tree, r tree.Ref) error {
	for _, c := range t.Children(r) {
		if err := addNode(g, t, c); err != nil {
			return err
		}
		if err := g.AddEdge(nodeID(r), nodeID(c), true, nil); err != nil {
			return err
		}
		if err := walk(g, t, c); err != nil {
			return err
		}
	}
	return nil
}
