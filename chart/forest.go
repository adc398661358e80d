package chart

import (
	"iter"

	"github.com/dhamidi/chartparse/tree"
)

// Trees yields every tree derivable from the edge root. Trees are produced
// one at a time in a fixed order, so a caller that stops early pays only
// for the trees it took. Ranging over the sequence again restarts it.
//
// A derivation that would use an edge inside its own subtree (possible
// with cyclic unary rules or zero-width edges) is skipped, which keeps
// the sequence finite.
func (t *EdgeTable) Trees(root EdgeID) iter.Seq[*tree.Tree] {
	return func(yield func(*tree.Tree) bool) {
		f := &forest{edges: t, root: root}
		for {
			tr, failed := f.build()
			if failed >= 0 {
				if !f.backtrack(failed) {
					return
				}
				continue
			}
			if !yield(tr) {
				return
			}
			if !f.bump(len(f.frames)) {
				return
			}
		}
	}
}

// forest enumerates derivations as an odometer: frames hold one
// backtrace choice per node in preorder, and the next derivation advances
// the last frame that has an alternative left.
type forest struct {
	edges  *EdgeTable
	root   EdgeID
	frames []frame
}

type frame struct {
	edge   EdgeID
	parent int
	choice int
}

type pending struct {
	edge   EdgeID
	parent int
	node   *tree.Tree
	slot   int
}

// build replays the frames, extends them with the first usable choice of
// every new node and returns the resulting tree. If some node has no
// usable choice left it returns that node's frame index instead.
func (f *forest) build() (*tree.Tree, int) {
	var root *tree.Tree
	stack := []pending{{edge: f.root, parent: -1}}
	for i := 0; len(stack) > 0; i++ {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if i == len(f.frames) {
			f.frames = append(f.frames, frame{edge: p.edge, parent: p.parent})
		}
		choice, ok := f.firstUsable(i, f.frames[i].choice)
		if !ok {
			return nil, i
		}
		if choice != f.frames[i].choice {
			f.frames[i].choice = choice
			f.frames = f.frames[:i+1]
		}

		e := f.edges.Get(p.edge)
		bt := e.Backtraces[choice]
		node := &tree.Tree{Label: string(e.Label)}
		if p.node == nil {
			root = node
		} else {
			p.node.Children[p.slot] = node
		}

		switch bt.Kind {
		case Lexical:
			node.Children = []*tree.Tree{tree.Leaf(bt.Word)}
		case Unary:
			node.Children = make([]*tree.Tree, 1)
			stack = append(stack, pending{edge: bt.Left, parent: i, node: node, slot: 0})
		case Binary:
			node.Children = make([]*tree.Tree, 2)
			stack = append(stack,
				pending{edge: bt.Right, parent: i, node: node, slot: 1},
				pending{edge: bt.Left, parent: i, node: node, slot: 0})
		}
	}
	return root, -1
}

// firstUsable finds the first choice at or after from whose children do
// not already occur on the path from frame i to the root.
func (f *forest) firstUsable(i, from int) (int, bool) {
	bts := f.edges.Get(f.frames[i].edge).Backtraces
	for c := from; c < len(bts); c++ {
		if f.usable(i, bts[c]) {
			return c, true
		}
	}
	return 0, false
}

func (f *forest) usable(i int, bt Backtrace) bool {
	for _, child := range bt.Children() {
		for a := i; a >= 0; a = f.frames[a].parent {
			if f.frames[a].edge == child {
				return false
			}
		}
	}
	return true
}

// backtrack moves on from frame i, which has no usable choice left.
// Whether a choice is usable depends only on the frame's ancestors, so
// when i has no usable choice at all, the subtrees of its earlier
// siblings cannot revive it and are passed over. That holds only while
// every ancestor after them has a single usable choice; otherwise
// backtrack falls back to bump.
func (f *forest) backtrack(i int) bool {
	if _, ok := f.firstUsable(i, 0); ok {
		return f.bump(i)
	}
	anc := f.frames[i].parent
	for j := i - 1; j >= 0; j-- {
		if j != anc {
			continue
		}
		fr := &f.frames[j]
		if fr.choice+1 < len(f.edges.Get(fr.edge).Backtraces) {
			fr.choice++
			f.frames = f.frames[:j+1]
			return true
		}
		if first, _ := f.firstUsable(j, 0); first != fr.choice {
			return f.bump(j)
		}
		anc = fr.parent
	}
	return false
}

// bump advances the last frame before limit that has another choice and
// drops every frame after it.
func (f *forest) bump(limit int) bool {
	for j := limit - 1; j >= 0; j-- {
		fr := &f.frames[j]
		if fr.choice+1 < len(f.edges.Get(fr.edge).Backtraces) {
			fr.choice++
			f.frames = f.frames[:j+1]
			return true
		}
	}
	return false
}
