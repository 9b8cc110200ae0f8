package pack

import "testing"

func TestPushTailIndexGet(t *testing.T) {
	b := New()
	b.PushTail([]byte("alpha"))
	b.PushTail([]byte("42"))
	b.PushTail([]byte("gamma"))

	if got := b.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}

	cases := []struct {
		idx      int
		wantStr  string
		wantInt  bool
		wantIntV int64
	}{
		{0, "alpha", false, 0},
		{1, "", true, 42},
		{2, "gamma", false, 0},
		{-1, "gamma", false, 0},
		{-3, "alpha", false, 0},
	}
	for _, tc := range cases {
		c, ok := b.Index(tc.idx)
		if !ok {
			t.Fatalf("Index(%d) not ok", tc.idx)
		}
		v, ok := b.Get(c)
		if !ok {
			t.Fatalf("Get at idx %d not ok", tc.idx)
		}
		if tc.wantInt {
			if !v.HasInt || v.Int != tc.wantIntV {
				t.Fatalf("idx %d: got %+v, want int %d", tc.idx, v, tc.wantIntV)
			}
		} else {
			if !v.HasBytes || string(v.Bytes) != tc.wantStr {
				t.Fatalf("idx %d: got %+v, want string %q", tc.idx, v, tc.wantStr)
			}
		}
	}
}

func TestIndexOutOfRange(t *testing.T) {
	b := New()
	b.PushTail([]byte("only"))
	if _, ok := b.Index(1); ok {
		t.Fatal("Index(1) should be out of range on a 1-entry block")
	}
	if _, ok := b.Index(-2); ok {
		t.Fatal("Index(-2) should be out of range on a 1-entry block")
	}
}

func TestPushHeadOrder(t *testing.T) {
	b := New()
	b.PushHead([]byte("c"))
	b.PushHead([]byte("b"))
	b.PushHead([]byte("a"))

	want := []string{"a", "b", "c"}
	for i, w := range want {
		c, ok := b.Index(i)
		if !ok {
			t.Fatalf("Index(%d) not ok", i)
		}
		v, _ := b.Get(c)
		if string(v.Bytes) != w {
			t.Fatalf("idx %d: got %q, want %q", i, v.Bytes, w)
		}
	}
}

func TestNextPrevWalk(t *testing.T) {
	b := New()
	for _, s := range []string{"a", "b", "c"} {
		b.PushTail([]byte(s))
	}

	c, ok := b.Index(0)
	if !ok {
		t.Fatal("Index(0) not ok")
	}
	got := []string{}
	for {
		v, _ := b.Get(c)
		got = append(got, string(v.Bytes))
		next, ok := b.Next(c)
		if !ok {
			break
		}
		c = next
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("forward walk = %v", got)
	}

	// walk backward from the last entry
	c, _ = b.Index(-1)
	got = got[:0]
	for {
		v, _ := b.Get(c)
		got = append(got, string(v.Bytes))
		prev, ok := b.Prev(c)
		if !ok {
			break
		}
		c = prev
	}
	if len(got) != 3 || got[0] != "c" || got[1] != "b" || got[2] != "a" {
		t.Fatalf("backward walk = %v", got)
	}
}

func TestInsertBeforeAndDelete(t *testing.T) {
	b := New()
	b.PushTail([]byte("a"))
	b.PushTail([]byte("c"))

	c, _ := b.Index(1) // "c"
	b.InsertBefore(c, []byte("b"))

	if b.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", b.Count())
	}
	for i, want := range []string{"a", "b", "c"} {
		cur, _ := b.Index(i)
		v, _ := b.Get(cur)
		if string(v.Bytes) != want {
			t.Fatalf("idx %d = %q, want %q", i, v.Bytes, want)
		}
	}

	cur, _ := b.Index(1) // "b"
	b.Delete(&cur)
	if b.Count() != 2 {
		t.Fatalf("Count() after delete = %d, want 2", b.Count())
	}
	v, _ := b.Get(cur) // cursor should now point at "c"
	if string(v.Bytes) != "c" {
		t.Fatalf("cursor after delete = %q, want %q", v.Bytes, "c")
	}
}

func TestDeleteRange(t *testing.T) {
	b := New()
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		b.PushTail([]byte(s))
	}

	b.DeleteRange(1, 2) // remove "b", "c"
	if b.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", b.Count())
	}
	for i, want := range []string{"a", "d", "e"} {
		cur, _ := b.Index(i)
		v, _ := b.Get(cur)
		if string(v.Bytes) != want {
			t.Fatalf("idx %d = %q, want %q", i, v.Bytes, want)
		}
	}
}

func TestDeleteRangeToEnd(t *testing.T) {
	b := New()
	for _, s := range []string{"a", "b", "c"} {
		b.PushTail([]byte(s))
	}
	b.DeleteRange(1, -1)
	if b.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", b.Count())
	}
	cur, _ := b.Index(0)
	v, _ := b.Get(cur)
	if string(v.Bytes) != "a" {
		t.Fatalf("remaining entry = %q, want %q", v.Bytes, "a")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New()
	b.PushTail([]byte("a"))
	cp := b.Clone()

	b.PushTail([]byte("b"))
	if cp.Count() != 1 {
		t.Fatalf("clone Count() = %d, want 1 (unaffected by original mutation)", cp.Count())
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	b := New()
	b.PushTail([]byte("alpha"))
	b.PushTail([]byte("99"))
	b.PushTail([]byte("-7"))

	raw := b.Bytes()
	decoded := Decode(raw)
	if decoded.Count() != b.Count() {
		t.Fatalf("Decode Count() = %d, want %d", decoded.Count(), b.Count())
	}
	for i := 0; i < 3; i++ {
		c, _ := decoded.Index(i)
		v, _ := decoded.Get(c)
		orig, _ := b.Index(i)
		ov, _ := b.Get(orig)
		if v.HasInt != ov.HasInt || v.Int != ov.Int || string(v.Bytes) != string(ov.Bytes) {
			t.Fatalf("idx %d mismatch after Decode: %+v vs %+v", i, v, ov)
		}
	}
}

func TestIntegerQualification(t *testing.T) {
	// These must NOT round-trip as integers: leading zero, explicit plus,
	// negative zero, and an out-of-range magnitude.
	notInts := []string{"007", "+5", "-0", "99999999999999999999"}
	for _, s := range notInts {
		b := New()
		b.PushTail([]byte(s))
		c, _ := b.Index(0)
		v, _ := b.Get(c)
		if v.HasInt {
			t.Fatalf("%q round-tripped as integer %d, want string", s, v.Int)
		}
		if string(v.Bytes) != s {
			t.Fatalf("%q round-tripped as %q", s, v.Bytes)
		}
	}

	b := New()
	b.PushTail([]byte("-42"))
	c, _ := b.Index(0)
	v, _ := b.Get(c)
	if !v.HasInt || v.Int != -42 {
		t.Fatalf("-42 did not round-trip as integer: %+v", v)
	}
}

func TestCompare(t *testing.T) {
	b := New()
	b.PushTail([]byte("hello"))
	b.PushTail([]byte("123"))

	c0, _ := b.Index(0)
	if !b.Compare(c0, []byte("hello")) {
		t.Fatal("Compare(0, \"hello\") should be true")
	}
	if b.Compare(c0, []byte("nope")) {
		t.Fatal("Compare(0, \"nope\") should be false")
	}

	c1, _ := b.Index(1)
	if !b.Compare(c1, []byte("123")) {
		t.Fatal("Compare(1, \"123\") should be true against int entry's decimal text")
	}
}
