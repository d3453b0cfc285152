package goap

import (
	"container/heap"
	"sync/atomic"
)

// rootParent is the parent id of every search root. Real ids start at 1.
const rootParent = 0

var lastNodeID atomic.Int64

// noop is the action attached to search roots.
var noop = NewAction("noop", 0, NoneBehavior{})

type node struct {
	state     WorldState
	signature string
	id        int64
	parent    int64
	g, h      int
	action    *Action

	seq   uint64 // insertion order into the open list
	index int    // heap position, -1 once popped
}

func newNode(state WorldState, signature string, g, h int, parent int64, action *Action) *node {
	return &node{
		state:     state,
		signature: signature,
		id:        lastNodeID.Add(1),
		parent:    parent,
		g:         g,
		h:         h,
		action:    action,
		index:     -1,
	}
}

func (n *node) f() int { return n.g + n.h }

// openList is a min-heap on f. Among equal f the most recently inserted
// node comes first, the order a sorted list built with lower-bound inserts
// would have. Nodes are also indexed by state signature.
type openList struct {
	nodes []*node
	bySig map[string]*node
	seq   uint64
}

var _ heap.Interface = (*openList)(nil)

func (o *openList) reset() {
	clear(o.nodes)
	o.nodes = o.nodes[:0]
	if o.bySig == nil {
		o.bySig = make(map[string]*node)
	} else {
		clear(o.bySig)
	}
	o.seq = 0
}

func (o *openList) Len() int { return len(o.nodes) }

func (o *openList) Less(i, j int) bool {
	a, b := o.nodes[i], o.nodes[j]
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	return a.seq > b.seq
}

func (o *openList) Swap(i, j int) {
	o.nodes[i], o.nodes[j] = o.nodes[j], o.nodes[i]
	o.nodes[i].index = i
	o.nodes[j].index = j
}

func (o *openList) Push(x any) {
	n := x.(*node)
	n.index = len(o.nodes)
	o.nodes = append(o.nodes, n)
}

func (o *openList) Pop() any {
	last := len(o.nodes) - 1
	n := o.nodes[last]
	o.nodes[last] = nil
	o.nodes = o.nodes[:last]
	n.index = -1
	return n
}

func (o *openList) insert(n *node) {
	o.seq++
	n.seq = o.seq
	heap.Push(o, n)
	o.bySig[n.signature] = n
}

// popMin returns nil when the list is empty.
func (o *openList) popMin() *node {
	if len(o.nodes) == 0 {
		return nil
	}
	n := heap.Pop(o).(*node)
	delete(o.bySig, n.signature)
	return n
}

func (o *openList) find(signature string) *node {
	return o.bySig[signature]
}

func (o *openList) remove(n *node) {
	heap.Remove(o, n.index)
	delete(o.bySig, n.signature)
}
