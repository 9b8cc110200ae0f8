package quicklist

import "github.com/edirooss/qkv-server/pkg/pack"

// Iterator is a stateful cursor over a List. Insertion into the list
// while an iterator is live is undefined behavior (the caller must
// rebuild the iterator after any insert); deletion through DelEntry is
// well-defined and keeps the iterator valid.
type Iterator struct {
	list      *List
	current   *Node
	cursor    pack.Cursor
	hasCursor bool
	offset    int
	direction Direction
}

// GetIterator returns an iterator starting at the head (forward) or
// tail (reverse), not yet positioned on any entry.
func (l *List) GetIterator(direction Direction) *Iterator {
	it := &Iterator{list: l, direction: direction}
	if direction == FORWARD_FROM_HEAD {
		it.current = l.head
		it.offset = 0
	} else {
		it.current = l.tail
		it.offset = -1
	}
	return it
}

// GetIteratorAtIdx returns an iterator seeded at the entry idx resolves
// to (per Index), or (_, false) if idx is out of range.
func (l *List) GetIteratorAtIdx(direction Direction, idx int) (*Iterator, bool) {
	entry, ok := l.Index(idx)
	if !ok {
		return nil, false
	}
	return &Iterator{list: l, direction: direction, current: entry.Node, offset: entry.Offset}, true
}

// ReleaseIterator exists for API parity with the exposed operation set;
// Go's garbage collector reclaims the iterator, so there is nothing to
// free explicitly.
func ReleaseIterator(it *Iterator) { _ = it }

// Next advances the iterator and reports whether an entry was produced.
func (it *Iterator) Next() (Entry, bool) {
	if it.current == nil {
		return Entry{}, false
	}

	var ok bool
	if !it.hasCursor {
		it.cursor, ok = it.current.block.Index(it.offset)
	} else if it.direction == FORWARD_FROM_HEAD {
		var c pack.Cursor
		c, ok = it.current.block.Next(it.cursor)
		if ok {
			it.cursor = c
			it.offset++
		}
	} else {
		var c pack.Cursor
		c, ok = it.current.block.Prev(it.cursor)
		if ok {
			it.cursor = c
			it.offset--
		}
	}
	it.hasCursor = ok

	if it.hasCursor {
		v, _ := it.current.block.Get(it.cursor)
		e := Entry{List: it.list, Node: it.current, Cursor: it.cursor, Offset: it.offset}
		e.Bytes, e.HasBytes, e.Int, e.HasInt = valueFromPack(v)
		return e, true
	}

	if it.direction == FORWARD_FROM_HEAD {
		it.current = it.current.next
		it.offset = 0
	} else {
		it.current = it.current.prev
		it.offset = -1
	}
	it.cursor = pack.Cursor{}
	return it.Next()
}

// DelEntry deletes entry (as just produced by it.Next) and adjusts the
// iterator so a subsequent Next continues correctly. entry must have
// come from this exact iterator's most recent Next call.
func (l *List) DelEntry(it *Iterator, entry Entry) {
	prevN := entry.Node.prev
	nextN := entry.Node.next
	c := entry.Cursor
	freed := l.delSingle(entry.Node, &c)

	if it.direction == FORWARD_FROM_HEAD {
		if freed {
			it.current = nextN
			it.offset = 0
			it.hasCursor = false
		} else {
			it.current = entry.Node
			it.offset = entry.Offset
			it.hasCursor = false // the successor now sits at the deleted entry's offset; re-seed there on the next Next
		}
		return
	}

	if freed {
		it.current = prevN
		it.offset = -1
		it.hasCursor = false
	} else {
		it.current = entry.Node
		it.hasCursor = false // re-seed from it.offset (unchanged) on the next Next
	}
}
