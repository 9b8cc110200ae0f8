package quicklist

import "github.com/edirooss/qkv-server/pkg/pack"

// Where selects which end of the list an end-operation acts on.
type Where int

const (
	HEAD Where = iota
	TAIL
)

// Direction selects which end an iterator starts from and which way it
// walks.
type Direction int

const (
	FORWARD_FROM_HEAD Direction = iota
	REVERSE_FROM_TAIL
)

// Entry is the transient view produced by a read: enough metadata to
// locate, decode, and — via DelEntry/ReplaceAtIndex — mutate the exact
// position it was read from. It is invalidated by any mutation other
// than the DelEntry call it was passed to (spec §7, Misuse).
type Entry struct {
	List   *List
	Node   *Node
	Cursor pack.Cursor
	Offset int

	Bytes    []byte
	HasBytes bool
	Int      int64
	HasInt   bool
}

// Compare reports whether the entry's stored value equals value: exact
// bytes for a string entry, decimal text for an integer entry.
func (e Entry) Compare(value []byte) bool {
	if e.Node == nil {
		return false
	}
	return e.Node.block.Compare(e.Cursor, value)
}

func valueFromPack(v pack.Value) (bytes []byte, hasBytes bool, n int64, hasInt bool) {
	return v.Bytes, v.HasBytes, v.Int, v.HasInt
}
