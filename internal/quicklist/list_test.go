package quicklist

import (
	"strconv"
	"testing"
)

func valStr(v Value) string {
	if v.HasInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return string(v.Bytes)
}

func drainForward(l *List) []string {
	out := make([]string, 0, l.Count())
	it := l.GetIterator(FORWARD_FROM_HEAD)
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		if e.HasInt {
			out = append(out, strconv.FormatInt(e.Int, 10))
		} else {
			out = append(out, string(e.Bytes))
		}
	}
	return out
}

func TestPushTailManyEntriesSplitsIntoNodes(t *testing.T) {
	l := New()
	const fill = 32
	for i := 0; i < 500; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}

	if got := l.Count(); got != 500 {
		t.Fatalf("Count() = %d, want 500", got)
	}
	if got := l.Len(); got != 16 {
		t.Fatalf("Len() = %d, want 16 (500 = 15*32 + 20)", got)
	}
	if got := l.Head().Count(); got != fill {
		t.Fatalf("head.Count() = %d, want %d", got, fill)
	}
	if got := l.Tail().Count(); got != 20 {
		t.Fatalf("tail.Count() = %d, want 20", got)
	}

	// invariant: sum of node counts equals the cached total
	sum := 0
	for n := l.Head(); n != nil; n = n.Next() {
		sum += n.Count()
	}
	if sum != l.Count() {
		t.Fatalf("sum of node counts = %d, want %d", sum, l.Count())
	}
}

func TestPushHeadOrder(t *testing.T) {
	l := New()
	const fill = 4
	for _, s := range []string{"c", "b", "a"} {
		l.PushHead(fill, 0, []byte(s))
	}
	got := drainForward(l)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("drainForward = %v, want %v", got, want)
		}
	}
}

func TestIndexLaw(t *testing.T) {
	l := New()
	const fill = 4
	for i := 0; i < 20; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}

	n := l.Count()
	for i := 0; i < n; i++ {
		pos, ok := l.Index(i)
		if !ok {
			t.Fatalf("Index(%d) not ok", i)
		}
		neg, ok := l.Index(i - n)
		if !ok {
			t.Fatalf("Index(%d) not ok", i-n)
		}
		if valStr(Value{Bytes: pos.Bytes, HasBytes: pos.HasBytes, Int: pos.Int, HasInt: pos.HasInt}) !=
			valStr(Value{Bytes: neg.Bytes, HasBytes: neg.HasBytes, Int: neg.Int, HasInt: neg.HasInt}) {
			t.Fatalf("Index(%d) and Index(%d) disagree", i, i-n)
		}
	}
}

func TestPopBothEnds(t *testing.T) {
	l := New()
	const fill = 4
	for i := 0; i < 10; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}

	v, ok := l.Pop(HEAD, nil)
	if !ok || valStr(v) != "0" {
		t.Fatalf("Pop(HEAD) = %+v, ok=%v, want 0", v, ok)
	}
	v, ok = l.Pop(TAIL, nil)
	if !ok || valStr(v) != "9" {
		t.Fatalf("Pop(TAIL) = %+v, ok=%v, want 9", v, ok)
	}
	if l.Count() != 8 {
		t.Fatalf("Count() = %d, want 8", l.Count())
	}
}

func TestPopEmpty(t *testing.T) {
	l := New()
	if _, ok := l.Pop(HEAD, nil); ok {
		t.Fatal("Pop on empty list should report false")
	}
}

func TestRotateDegenerateSingleNode(t *testing.T) {
	l := New()
	const fill = 32
	for _, s := range []string{"a", "b", "c"} {
		l.PushTail(fill, 0, []byte(s))
	}
	// all three entries live in one node (fill=32): rotating must not
	// corrupt the block even though the head push reallocates it.
	l.Rotate(fill, 0)
	got := drainForward(l)
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after rotate: got %v, want %v", got, want)
		}
	}
	if l.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", l.Count())
	}
}

func TestRotateSingleAndEmptyAreNoops(t *testing.T) {
	l := New()
	l.Rotate(4, 0) // empty: must not panic
	l.PushTail(4, 0, []byte("only"))
	l.Rotate(4, 0)
	if got := drainForward(l); len(got) != 1 || got[0] != "only" {
		t.Fatalf("single-entry rotate changed list: %v", got)
	}
}

func TestDelRangeNegativeStartCapsExtent(t *testing.T) {
	l := New()
	const fill = 4
	for i := 0; i < 10; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}

	// start=-3 means "the last 3 entries are the deletable window"; count=100
	// must be capped to 3, not (count - |start| + 1).
	if ok := l.DelRange(-3, 100); !ok {
		t.Fatal("DelRange(-3, 100) should report true")
	}
	if l.Count() != 7 {
		t.Fatalf("Count() = %d, want 7", l.Count())
	}
	got := drainForward(l)
	want := []string{"0", "1", "2", "3", "4", "5", "6"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDelRangeSpanningNodes(t *testing.T) {
	l := New()
	const fill = 4
	for i := 0; i < 20; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}
	if ok := l.DelRange(2, 10); !ok {
		t.Fatal("DelRange(2, 10) should report true")
	}
	if l.Count() != 10 {
		t.Fatalf("Count() = %d, want 10", l.Count())
	}
	got := drainForward(l)
	want := []string{"0", "1", "12", "13", "14", "15", "16", "17", "18", "19"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInsertBeforeAfterTriggersSplit(t *testing.T) {
	l := New()
	const fill = 4
	for i := 0; i < fill; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}
	// node is full (count == fill); inserting in the middle forces a split.
	entry, ok := l.Index(2)
	if !ok {
		t.Fatal("Index(2) not ok")
	}
	l.InsertAfter(fill, 0, entry, []byte("X"))

	if l.Count() != fill+1 {
		t.Fatalf("Count() = %d, want %d", l.Count(), fill+1)
	}
	got := drainForward(l)
	want := []string{"0", "1", "2", "X", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	sum := 0
	for n := l.Head(); n != nil; n = n.Next() {
		if n.Count() == 0 {
			t.Fatal("found a zero-count node after insert")
		}
		sum += n.Count()
	}
	if sum != l.Count() {
		t.Fatalf("sum of node counts = %d, want %d", sum, l.Count())
	}
}

func TestReplaceAtIndex(t *testing.T) {
	l := New()
	const fill = 4
	l.PushTail(fill, 0, []byte("a"))
	l.PushTail(fill, 0, []byte("b"))

	if ok := l.ReplaceAtIndex(1, []byte("B")); !ok {
		t.Fatal("ReplaceAtIndex(1) should report true")
	}
	if ok := l.ReplaceAtIndex(5, []byte("x")); ok {
		t.Fatal("ReplaceAtIndex(5) should report false (out of range)")
	}
	got := drainForward(l)
	if got[0] != "a" || got[1] != "B" {
		t.Fatalf("got %v, want [a B]", got)
	}
}

func TestInsertIntoThinnedNodeKeepsInvariants(t *testing.T) {
	l := New()
	const fill = 8
	for i := 0; i < 16; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}

	// thin both nodes out to 4 entries each; the insert below then lands in
	// the first node, which has room, so no split or merge happens and the
	// node invariants must still hold.
	l.DelRange(0, 4) // remove from first node
	l.DelRange(8, 4) // remove from (now-shifted) tail window

	entry, _ := l.Index(0)
	l.InsertBefore(fill, 0, entry, []byte("ins"))

	sum := 0
	for n := l.Head(); n != nil; n = n.Next() {
		if n.Count() == 0 {
			t.Fatal("found a zero-count node after merge pass")
		}
		sum += n.Count()
	}
	if sum != l.Count() {
		t.Fatalf("sum of node counts = %d, want %d", sum, l.Count())
	}
}

func TestDupIsIndependent(t *testing.T) {
	l := New()
	const fill = 4
	l.PushTail(fill, 0, []byte("a"))
	l.PushTail(fill, 0, []byte("b"))

	cp := l.Dup()
	l.PushTail(fill, 0, []byte("c"))

	if cp.Count() != 2 {
		t.Fatalf("Dup().Count() = %d, want 2 (unaffected by original mutation)", cp.Count())
	}
	got := drainForward(cp)
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("dup contents = %v, want [a b]", got)
	}
}

func TestIngestWholeBlockAppendsAsTail(t *testing.T) {
	l := New()
	const fill = 4
	l.PushTail(fill, 0, []byte("a"))

	src := New()
	src.PushTail(fill, 0, []byte("b"))
	src.PushTail(fill, 0, []byte("c"))

	l.IngestWholeBlock(src.Head().Block().Clone())
	if l.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", l.Count())
	}
	got := drainForward(l)
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("got %v, want [a b c]", got)
	}
}

func TestPushTailRespectsMaxBytesEvenUnderFill(t *testing.T) {
	l := New()
	// fill is generous (100), but each entry's record is 10 bytes (9 bytes
	// of framing plus a 1-byte varint), so a node holding one entry already
	// reaches a maxBytes of 10 and every push must start a new node.
	const fill, maxBytes = 100, 10
	for i := 0; i < 5; i++ {
		l.PushTail(fill, maxBytes, []byte(strconv.Itoa(i)))
	}
	if got := l.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5 (maxBytes should force one entry per node)", got)
	}
	if got := l.Count(); got != 5 {
		t.Fatalf("Count() = %d, want 5", got)
	}
}

func TestMergePassRespectsMaxBytes(t *testing.T) {
	l := New()
	const fill = 8
	for i := 0; i < 16; i++ {
		l.PushTail(fill, 0, []byte(strconv.Itoa(i)))
	}
	l.DelRange(0, 4)
	l.DelRange(8, 4)

	// With maxBytes=1 every node counts as full, so inserting before the
	// first entry splits off a new one-entry node in front of it (3 nodes).
	// The merge pass that follows would fold that node back into its
	// 4-entry neighbor (5 entries, within fill) if it ignored maxBytes,
	// leaving 2 nodes.
	entry, _ := l.Index(0)
	l.InsertBefore(fill, 1, entry, []byte("ins"))

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (maxBytes should have blocked the merge)", l.Len())
	}
}
