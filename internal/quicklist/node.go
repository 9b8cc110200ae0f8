package quicklist

import "github.com/edirooss/qkv-server/pkg/pack"

// Node is one cell of the list's chain: it owns exactly one packed
// block, caches the block's entry count for O(1) skip during indexing,
// and links to its neighbors.
type Node struct {
	block *pack.Block
	count int
	prev  *Node
	next  *Node
}

func newNode() *Node {
	return &Node{block: pack.New()}
}

// Count returns the number of entries cached for this node. Callers
// outside the package reach nodes through List.Head/Tail, Node.Next/Prev
// and Entry.Node, and read the count only through this accessor.
func (n *Node) Count() int { return n.count }

// Next returns the node that follows this one in the chain, or nil at
// the tail.
func (n *Node) Next() *Node { return n.next }

// Prev returns the node that precedes this one in the chain, or nil at
// the head.
func (n *Node) Prev() *Node { return n.prev }

// Block exposes the node's packed block for whole-block persistence (see
// internal/blockstore). Callers must not mutate the returned block.
func (n *Node) Block() *pack.Block { return n.block }
