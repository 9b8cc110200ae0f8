// Package quicklist implements a hybrid list container: a doubly linked
// chain of packed small-entry blocks (see pkg/pack), trading per-op CPU
// for reduced per-entry overhead versus a pure linked list of boxed
// values. It backs append-only/random-access sequences such as list
// keys in a key-value store.
//
// The container is single-threaded and makes no attempt at
// thread-safety, concurrent iterators, or stable iterators across
// insertion — callers needing those serialize externally (see
// internal/blockstore, which guards each key's List with its own locks).
package quicklist

import (
	"strconv"

	"github.com/edirooss/qkv-server/pkg/pack"
)

// List is the container: a head/tail pointer pair, a node count, and a
// cached total entry count mirrored from the nodes.
type List struct {
	head  *Node
	tail  *Node
	len   int
	count int
}

// New returns an empty list.
func New() *List {
	return &List{}
}

// Release tears down every node the list owns. After Release the list
// must not be used again.
func (l *List) Release() {
	l.head, l.tail = nil, nil
	l.len, l.count = 0, 0
}

// Count returns the cached total entry count across all nodes.
func (l *List) Count() int { return l.count }

// Len returns the number of nodes currently in the chain.
func (l *List) Len() int { return l.len }

// Head returns the first node in the chain, or nil if the list is empty.
func (l *List) Head() *Node { return l.head }

// Tail returns the last node in the chain, or nil if the list is empty.
func (l *List) Tail() *Node { return l.tail }

// linkNode splices n into the chain relative to old: after old if
// after, otherwise before it. On an empty list (old == nil) n becomes
// both head and tail whichever way after points (IngestWholeBlock and the
// first PushHead/PushTail/insert into an empty list all rely on this —
// there is no separate empty-list entry point, just this generic splice).
func (l *List) linkNode(old *Node, n *Node, after bool) {
	if after {
		n.prev = old
		if old != nil {
			n.next = old.next
			if old.next != nil {
				old.next.prev = n
			}
			old.next = n
		}
		if l.tail == old {
			l.tail = n
		}
	} else {
		n.next = old
		if old != nil {
			n.prev = old.prev
			if old.prev != nil {
				old.prev.next = n
			}
			old.prev = n
		}
		if l.head == old {
			l.head = n
		}
	}
	if l.len == 0 {
		l.head, l.tail = n, n
	}
	l.len++
}

// unlink removes n from the chain, fixing up head/tail/len. It does not
// touch l.count — callers account for entries separately, since a node
// can be unlinked either because its last entry was deleted (count
// already decremented) or because a merge moved its entries elsewhere
// (count never changed).
func (l *List) unlink(n *Node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

// hasRoom reports whether n can accept another entry without breaching
// either cap: fewer than fill entries, and (if maxBytes > 0) a serialized
// size still under maxBytes. maxBytes <= 0 means no byte cap.
func hasRoom(n *Node, fill, maxBytes int) bool {
	if n.count >= fill {
		return false
	}
	return maxBytes <= 0 || n.block.ByteLen() < maxBytes
}

// PushHead prepends value to the list, appending into the head node's
// block if it has room under fill and maxBytes, otherwise allocating a
// new head node. maxBytes <= 0 means no byte cap.
func (l *List) PushHead(fill, maxBytes int, value []byte) {
	if l.head != nil && hasRoom(l.head, fill, maxBytes) {
		l.head.block.PushHead(value)
	} else {
		n := newNode()
		n.block.PushHead(value)
		l.linkNode(l.head, n, false)
	}
	l.head.count++
	l.count++
}

// PushTail appends value to the list, appending into the tail node's
// block if it has room under fill and maxBytes, otherwise allocating a
// new tail node. maxBytes <= 0 means no byte cap.
func (l *List) PushTail(fill, maxBytes int, value []byte) {
	if l.tail != nil && hasRoom(l.tail, fill, maxBytes) {
		l.tail.block.PushTail(value)
	} else {
		n := newNode()
		n.block.PushTail(value)
		l.linkNode(l.tail, n, true)
	}
	l.tail.count++
	l.count++
}

// Push dispatches to PushHead or PushTail by where.
func (l *List) Push(fill, maxBytes int, value []byte, where Where) {
	if where == HEAD {
		l.PushHead(fill, maxBytes, value)
	} else {
		l.PushTail(fill, maxBytes, value)
	}
}

// IngestWholeBlock splices a pre-built packed block in as a new tail
// node, taking its entry count as authoritative. Used to restore
// persisted blocks (see internal/blockstore); the core never re-packs
// the adopted block.
func (l *List) IngestWholeBlock(block *pack.Block) {
	n := &Node{block: block, count: block.Count()}
	l.linkNode(l.tail, n, true)
	l.count += n.count
}

// Saver copies src into a caller-owned buffer. The default
// implementation allocates len(src) bytes and copies src into it.
type Saver func(src []byte) []byte

// DefaultSaver is the default Saver: allocate, copy, return.
func DefaultSaver(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

// Value is a decoded entry payload: exactly one of Bytes/Int is
// meaningful, selected by HasBytes/HasInt.
type Value struct {
	Bytes    []byte
	HasBytes bool
	Int      int64
	HasInt   bool
}

// Pop removes and returns the entry at the given end. save, if non-nil,
// is used to copy out byte-string values (see Saver); if nil,
// DefaultSaver is used. Returns (_, false) on an empty list.
func (l *List) Pop(where Where, save Saver) (Value, bool) {
	if l.count == 0 {
		return Value{}, false
	}
	idx := 0
	if where == TAIL {
		idx = -1
	}
	entry, ok := l.Index(idx)
	if !ok {
		return Value{}, false
	}

	var val Value
	if entry.HasBytes {
		if save == nil {
			save = DefaultSaver
		}
		val = Value{Bytes: save(entry.Bytes), HasBytes: true}
	} else {
		val = Value{Int: entry.Int, HasInt: true}
	}

	c := entry.Cursor
	l.delSingle(entry.Node, &c)
	return val, true
}

// Rotate moves the tail entry to the head. A list of zero or one
// entries is left unchanged. maxBytes <= 0 means no byte cap.
func (l *List) Rotate(fill, maxBytes int) {
	if l.count <= 1 {
		return
	}
	entry, ok := l.Index(-1)
	if !ok {
		return
	}

	var value []byte
	if entry.HasBytes {
		value = entry.Bytes
	} else {
		// Integer entries must be re-serialized as decimal text before
		// the head push so the codec re-encodes them uniformly.
		value = []byte(strconv.FormatInt(entry.Int, 10))
	}
	l.PushHead(fill, maxBytes, value)

	// Re-resolve the original tail node's last entry rather than reuse
	// entry.Cursor: if head and tail were the same node, the head push
	// above just reallocated that node's block and shifted every
	// existing entry's byte offset, invalidating the cursor we read
	// before the push. The last entry of that node is still the one we
	// want to remove either way (the push only ever affects the head
	// side of a block), so re-indexing its tail position is safe and
	// correct regardless of whether head == tail.
	n := entry.Node
	c, ok := n.block.Index(-1)
	if !ok {
		return
	}
	l.delSingle(n, &c)
}

// delSingle is the single-entry delete primitive: remove one entry from
// node's block at *c, updating *c to the cursor of the entry that now
// follows. Decrements node.count and l.count; if node.count reaches
// zero, the node is unlinked and freed. Returns whether the node was
// removed.
func (l *List) delSingle(n *Node, c *pack.Cursor) bool {
	n.block.Delete(c)
	n.count--
	l.count--
	if n.count == 0 {
		l.unlink(n)
		return true
	}
	return false
}

// Index resolves a signed list position to an Entry: non-negative walks
// forward from head, negative walks backward from tail with magnitude
// |idx|. Returns (_, false) without touching entry if out of range
// (including |idx| > Count()).
func (l *List) Index(idx int) (Entry, bool) {
	forward := idx >= 0
	var target int
	var n *Node
	if forward {
		target = idx
		n = l.head
	} else {
		target = -idx - 1
		n = l.tail
	}

	accum := 0
	for n != nil {
		if accum+n.count > target {
			break
		}
		accum += n.count
		if forward {
			n = n.next
		} else {
			n = n.prev
		}
	}
	if n == nil {
		return Entry{}, false
	}

	var offset int
	if forward {
		offset = target - accum
	} else {
		offset = -(target - accum) - 1
	}

	c, ok := n.block.Index(offset)
	if !ok {
		return Entry{}, false
	}
	v, _ := n.block.Get(c)
	e := Entry{List: l, Node: n, Cursor: c, Offset: offset}
	e.Bytes, e.HasBytes, e.Int, e.HasInt = valueFromPack(v)
	return e, true
}

// ReplaceAtIndex overwrites the entry at idx with value in place.
// Reports whether idx was in range.
func (l *List) ReplaceAtIndex(idx int, value []byte) bool {
	entry, ok := l.Index(idx)
	if !ok {
		return false
	}
	n := entry.Node
	c := entry.Cursor
	n.block.Delete(&c)
	n.block.InsertBefore(c, value)
	n.count = n.block.Count()
	return true
}

// InsertBefore inserts value immediately before entry (as produced by
// Index). If entry.Node is nil (the list was empty when entry was
// resolved), a new singleton node is created. maxBytes <= 0 means no byte
// cap.
func (l *List) InsertBefore(fill, maxBytes int, entry Entry, value []byte) {
	l.insert(fill, maxBytes, entry, value, false)
}

// InsertAfter inserts value immediately after entry (as produced by
// Index). If entry.Node is nil (the list was empty when entry was
// resolved), a new singleton node is created. maxBytes <= 0 means no byte
// cap.
func (l *List) InsertAfter(fill, maxBytes int, entry Entry, value []byte) {
	l.insert(fill, maxBytes, entry, value, true)
}

func (l *List) insert(fill, maxBytes int, entry Entry, value []byte, after bool) {
	n := entry.Node
	if n == nil {
		nn := newNode()
		nn.block.PushHead(value)
		nn.count = 1
		l.linkNode(nil, nn, after)
		l.count++
		return
	}

	full := !hasRoom(n, fill, maxBytes)
	var atTail, atHead bool
	if after {
		_, hasNext := n.block.Next(entry.Cursor)
		atTail = !hasNext
	} else {
		_, hasPrev := n.block.Prev(entry.Cursor)
		atHead = !hasPrev
	}
	fullNext := n.next != nil && !hasRoom(n.next, fill, maxBytes)
	fullPrev := n.prev != nil && !hasRoom(n.prev, fill, maxBytes)

	switch {
	case !full && after:
		if next, ok := n.block.Next(entry.Cursor); ok {
			n.block.InsertBefore(next, value)
		} else {
			n.block.PushTail(value)
		}
		n.count = n.block.Count()

	case !full && !after:
		n.block.InsertBefore(entry.Cursor, value)
		n.count = n.block.Count()

	case full && atTail && n.next != nil && !fullNext && after:
		n.next.block.PushHead(value)
		n.next.count = n.next.block.Count()

	case full && atHead && n.prev != nil && !fullPrev && !after:
		n.prev.block.PushTail(value)
		n.prev.count = n.prev.block.Count()

	case full && ((atTail && n.next != nil && fullNext && after) ||
		(atHead && n.prev != nil && fullPrev && !after)):
		nn := newNode()
		nn.block.PushHead(value)
		nn.count = 1
		l.linkNode(n, nn, after)

	default: // full, not at a (mergeable) boundary: split N and place the new value
		nn := l.split(n, entry.Offset, after)
		if after {
			nn.block.PushHead(value)
		} else {
			nn.block.PushTail(value)
		}
		nn.count = nn.block.Count()
		l.linkNode(n, nn, after)
		l.mergePass(fill, maxBytes, n)
	}

	l.count++
}

// split detaches the portion of n's block on the far side of offset
// (relative to after) into a new node, byte-copying n's block first.
// Either side may end up empty; the caller is responsible for unlinking
// an empty side (insert's caller always immediately pushes a value into
// the new node, so this only matters for other, hypothetical callers).
func (l *List) split(n *Node, offset int, after bool) *Node {
	newBlock := n.block.Clone()
	if after {
		n.block.DeleteRange(offset+1, -1)
		newBlock.DeleteRange(0, offset+1)
	} else {
		n.block.DeleteRange(0, offset)
		newBlock.DeleteRange(offset, -1)
	}
	n.count = n.block.Count()
	return &Node{block: newBlock, count: newBlock.Count()}
}

// mergeable reports whether a and b's entries would fit in one node
// under both caps: combined count within fill, and (if maxBytes > 0)
// combined serialized size within maxBytes — merging is a concatenation
// of the two blocks' byte buffers, so the combined size is exactly the
// sum of their ByteLens. maxBytes <= 0 means no byte cap.
func mergeable(a, b *Node, fill, maxBytes int) bool {
	if a.count+b.count > fill {
		return false
	}
	return maxBytes <= 0 || a.block.ByteLen()+b.block.ByteLen() <= maxBytes
}

// mergePass attempts the four pairwise merges centered on c described in
// spec §4.7, in order: (c.prev.prev, c.prev), (c.next, c.next.next),
// (c.prev, c), then (survivor, survivor.next) where survivor is whatever
// the third merge produced. Each candidate pair is re-read from the
// chain immediately before use rather than cached up front, so an
// earlier merge that frees one of c's direct neighbors is automatically
// reflected (the unlink in mergeTwo relinks c.prev/c.next for us).
// maxBytes <= 0 means no byte cap.
func (l *List) mergePass(fill, maxBytes int, c *Node) {
	if prev := c.prev; prev != nil && prev.prev != nil && mergeable(prev.prev, prev, fill, maxBytes) {
		l.mergeTwo(prev.prev, prev)
	}

	if next := c.next; next != nil && next.next != nil && mergeable(next, next.next, fill, maxBytes) {
		l.mergeTwo(next, next.next)
	}

	var survivor *Node
	if c.prev != nil && mergeable(c.prev, c, fill, maxBytes) {
		survivor = l.mergeTwo(c.prev, c)
	}

	if survivor != nil && survivor.next != nil && mergeable(survivor, survivor.next, fill, maxBytes) {
		l.mergeTwo(survivor, survivor.next)
	}
}

// mergeTwo merges a and b (a immediately left of b) into whichever has
// the larger count, ties going to b. Entries are transferred one at a
// time through the codec, re-serializing integers as decimal text. The
// loser is unlinked and freed. Returns the surviving node, or nil if
// either side was already empty (no merge performed).
func (l *List) mergeTwo(a, b *Node) *Node {
	if a.count == 0 || b.count == 0 {
		return nil
	}

	if a.count > b.count {
		// target == a: scan b from its head forward, push to a's tail.
		for b.count > 0 {
			c, _ := b.block.Index(0)
			v, _ := b.block.Get(c)
			a.block.PushTail(entryBytes(v))
			b.block.Delete(&c)
			b.count--
			a.count++
		}
		l.unlink(b)
		return a
	}

	// target == b: scan a from its tail backward, push to b's head.
	for a.count > 0 {
		c, _ := a.block.Index(-1)
		v, _ := a.block.Get(c)
		b.block.PushHead(entryBytes(v))
		a.block.Delete(&c)
		a.count--
		b.count++
	}
	l.unlink(a)
	return b
}

func entryBytes(v pack.Value) []byte {
	if v.HasBytes {
		return v.Bytes
	}
	return []byte(strconv.FormatInt(v.Int, 10))
}

// DelRange deletes up to count entries starting at the signed position
// start, spanning nodes as needed. Reports whether anything was deleted.
func (l *List) DelRange(start, count int) bool {
	if count <= 0 {
		return false
	}

	extent := count
	if start >= 0 {
		if rest := l.count - start; extent > rest {
			extent = rest
		}
	} else if extent > -start {
		extent = -start
	}
	if extent <= 0 {
		return false
	}

	entry, ok := l.Index(start)
	if !ok {
		return false
	}

	node := entry.Node
	offset := entry.Offset
	deleted := false

	for node != nil && extent > 0 {
		next := node.next
		var del int

		switch {
		case offset == 0 && extent >= node.count:
			del = node.count
			l.count -= del
			l.unlink(node)
			deleted = true

		case offset >= 0 && offset+extent > node.count:
			del = node.count - offset
			node.block.DeleteRange(offset, del)
			node.count = node.block.Count()
			l.count -= del
			deleted = true
			if node.count == 0 {
				l.unlink(node)
			}

		case offset < 0:
			del = -offset
			if del > extent {
				del = extent
			}
			node.block.DeleteRange(offset, del)
			node.count = node.block.Count()
			l.count -= del
			deleted = true
			if node.count == 0 {
				l.unlink(node)
			}

		default:
			del = extent
			node.block.DeleteRange(offset, del)
			node.count = node.block.Count()
			l.count -= del
			deleted = true
			if node.count == 0 {
				l.unlink(node)
			}
		}

		extent -= del
		node = next
		offset = 0
	}

	return deleted
}

// Dup returns an independent deep copy of the list: every node's block
// is byte-copied verbatim. Mutating the copy never mutates the
// original, or vice versa.
func (l *List) Dup() *List {
	nl := New()
	for n := l.head; n != nil; n = n.next {
		cp := &Node{block: n.block.Clone(), count: n.count}
		nl.linkNode(nl.tail, cp, true)
	}
	nl.count = l.count
	return nl
}

// Compare reports whether entry's stored value equals value.
func (l *List) Compare(entry Entry, value []byte) bool {
	return entry.Compare(value)
}
