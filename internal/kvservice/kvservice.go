// Package kvservice exposes internal/quicklist.List as a list-key
// command surface (LPush/RPush/LPop/RPop/... ), the way the teacher's
// internal/service packages wrap a repository with business logic and
// error translation. Each key resolves to one list materialized by
// internal/blockstore; this package owns nothing durable itself.
package kvservice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/edirooss/qkv-server/internal/blockstore"
	"github.com/edirooss/qkv-server/internal/quicklist"
)

// ErrKeyNotFound means the list key has no entries (either never
// written or emptied by a previous command).
var ErrKeyNotFound = errors.New("key not found")

// Service is the list-key command surface. One Service per process;
// handlers call its methods directly.
type Service struct {
	log      *zap.Logger
	bs       *blockstore.Store
	fill     int
	maxBytes int

	sg singleflight.Group // coalesces concurrent reads of the same key
}

// New wires a Service around a block store. fill is the default fill
// factor used for nodes created by pushes/inserts on any key; maxBytes
// caps a single node's serialized byte size regardless of fill (<= 0
// means no byte cap).
func New(bs *blockstore.Store, fill, maxBytes int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log.Named("kvservice"), bs: bs, fill: fill, maxBytes: maxBytes}
}

// Push appends (RPush) or prepends (LPush) values to key, creating the
// key's list on first write.
func (s *Service) Push(ctx context.Context, key string, where quicklist.Where, values ...[]byte) (int, error) {
	res, err := s.bs.Mutate(ctx, key, func(l *quicklist.List) (any, error) {
		for _, v := range values {
			l.Push(s.fill, s.maxBytes, v, where)
		}
		return l.Count(), nil
	})
	if err != nil {
		return 0, fmt.Errorf("push: %w", err)
	}
	return res.(int), nil
}

// Pop removes and returns up to count entries from the given end.
// Returns ErrKeyNotFound if the key has no entries.
func (s *Service) Pop(ctx context.Context, key string, where quicklist.Where, count int) ([]quicklist.Value, error) {
	res, err := s.bs.Mutate(ctx, key, func(l *quicklist.List) (any, error) {
		if l.Count() == 0 {
			return nil, ErrKeyNotFound
		}
		out := make([]quicklist.Value, 0, count)
		for i := 0; i < count; i++ {
			v, ok := l.Pop(where, nil)
			if !ok {
				break
			}
			out = append(out, v)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop: %w", err)
	}

	out := res.([]quicklist.Value)
	if err := s.purgeIfEmpty(ctx, key); err != nil {
		return out, fmt.Errorf("purge: %w", err)
	}
	return out, nil
}

// LIndex returns the value at idx (0-based from head, negative from
// tail). Returns ErrKeyNotFound if key has no entries, or (_, false,
// nil) if idx is out of range for an existing key.
func (s *Service) LIndex(ctx context.Context, key string, idx int) (quicklist.Value, bool, error) {
	res, err := s.bs.View(ctx, key, func(l *quicklist.List) (any, error) {
		if l.Count() == 0 {
			return nil, ErrKeyNotFound
		}
		entry, ok := l.Index(idx)
		if !ok {
			return indexResult{found: false}, nil
		}
		return indexResult{found: true, value: quicklist.Value{
			Bytes: entry.Bytes, HasBytes: entry.HasBytes, Int: entry.Int, HasInt: entry.HasInt,
		}}, nil
	})
	if err != nil {
		return quicklist.Value{}, false, fmt.Errorf("lindex: %w", err)
	}
	ir := res.(indexResult)
	return ir.value, ir.found, nil
}

type indexResult struct {
	found bool
	value quicklist.Value
}

// LSet overwrites the entry at idx. Returns ErrKeyNotFound if the key
// has no entries, or (false, nil) if idx is out of range.
func (s *Service) LSet(ctx context.Context, key string, idx int, value []byte) (bool, error) {
	res, err := s.bs.Mutate(ctx, key, func(l *quicklist.List) (any, error) {
		if l.Count() == 0 {
			return false, ErrKeyNotFound
		}
		return l.ReplaceAtIndex(idx, value), nil
	})
	if err != nil {
		return false, fmt.Errorf("lset: %w", err)
	}
	return res.(bool), nil
}

// LLen returns the key's entry count (0 for a non-existent key, matching
// the absent-key-behaves-empty convention common to list-key stores).
func (s *Service) LLen(ctx context.Context, key string) (int, error) {
	v, err, _ := s.sg.Do("llen:"+key, func() (any, error) {
		return s.bs.View(ctx, key, func(l *quicklist.List) (any, error) {
			return l.Count(), nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("llen: %w", err)
	}
	return v.(int), nil
}

// LRange returns entries [start, stop] inclusive (Redis LRANGE
// semantics: both signed, both clamped to the key's bounds). Concurrent
// LRange calls against the same key and range are coalesced via singleflight —
// the same real-world motivation as the teacher's summary cache, here
// applied to a hot read path instead of a refresh cycle.
func (s *Service) LRange(ctx context.Context, key string, start, stop int) ([]quicklist.Value, error) {
	type rangeArgs struct{ start, stop int }
	v, err, _ := s.sg.Do(fmt.Sprintf("lrange:%s:%d:%d", key, start, stop), func() (any, error) {
		return s.bs.View(ctx, key, func(l *quicklist.List) (any, error) {
			n := l.Count()
			lo := normalizeIndex(start, n)
			hi := normalizeIndex(stop, n)
			if lo < 0 {
				lo = 0
			}
			if hi > n-1 {
				hi = n - 1
			}
			if n == 0 || lo > hi {
				return []quicklist.Value{}, nil
			}
			out := make([]quicklist.Value, 0, hi-lo+1)
			for i := lo; i <= hi; i++ {
				entry, ok := l.Index(i)
				if !ok {
					break
				}
				out = append(out, quicklist.Value{
					Bytes: entry.Bytes, HasBytes: entry.HasBytes, Int: entry.Int, HasInt: entry.HasInt,
				})
			}
			return out, nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	return v.([]quicklist.Value), nil
}

func normalizeIndex(idx, n int) int {
	if idx < 0 {
		idx = n + idx
	}
	return idx
}

// LTrim keeps only entries [start, stop] inclusive, deleting everything
// outside that window. An empty resulting window purges the key.
func (s *Service) LTrim(ctx context.Context, key string, start, stop int) error {
	_, err := s.bs.Mutate(ctx, key, func(l *quicklist.List) (any, error) {
		n := l.Count()
		lo := normalizeIndex(start, n)
		hi := normalizeIndex(stop, n)
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		if n == 0 {
			return nil, nil
		}
		if lo > hi {
			l.DelRange(0, n)
			return nil, nil
		}
		if hi+1 < n {
			l.DelRange(hi+1, n-hi-1)
		}
		if lo > 0 {
			l.DelRange(0, lo)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("ltrim: %w", err)
	}
	return s.purgeIfEmpty(ctx, key)
}

// LInsert splices value immediately before or after the first entry
// equal to pivot. Returns the key's new length, or (-1, nil) if pivot
// was not found, or ErrKeyNotFound if the key has no entries.
func (s *Service) LInsert(ctx context.Context, key string, before bool, pivot, value []byte) (int, error) {
	res, err := s.bs.Mutate(ctx, key, func(l *quicklist.List) (any, error) {
		if l.Count() == 0 {
			return -1, ErrKeyNotFound
		}
		dir := quicklist.FORWARD_FROM_HEAD
		it := l.GetIterator(dir)
		for {
			entry, ok := it.Next()
			if !ok {
				return -1, nil
			}
			if entry.Compare(pivot) {
				if before {
					l.InsertBefore(s.fill, s.maxBytes, entry, value)
				} else {
					l.InsertAfter(s.fill, s.maxBytes, entry, value)
				}
				return l.Count(), nil
			}
		}
	})
	if err != nil {
		return -1, fmt.Errorf("linsert: %w", err)
	}
	return res.(int), nil
}

// LRem removes entries equal to value. count > 0 removes up to count
// occurrences scanning from the head, count < 0 scanning from the tail,
// count == 0 removes every occurrence. Returns the number removed.
func (s *Service) LRem(ctx context.Context, key string, count int, value []byte) (int, error) {
	res, err := s.bs.Mutate(ctx, key, func(l *quicklist.List) (any, error) {
		if l.Count() == 0 {
			return 0, ErrKeyNotFound
		}
		dir := quicklist.FORWARD_FROM_HEAD
		limit := count
		if count < 0 {
			dir = quicklist.REVERSE_FROM_TAIL
			limit = -count
		}

		it := l.GetIterator(dir)
		removed := 0
		for {
			entry, ok := it.Next()
			if !ok {
				break
			}
			if !entry.Compare(value) {
				continue
			}
			l.DelEntry(it, entry)
			removed++
			if limit > 0 && removed >= limit {
				break
			}
		}
		return removed, nil
	})
	if err != nil {
		return 0, fmt.Errorf("lrem: %w", err)
	}
	n := res.(int)
	if n > 0 {
		if err := s.purgeIfEmpty(ctx, key); err != nil {
			return n, fmt.Errorf("purge: %w", err)
		}
	}
	return n, nil
}

// Rotate moves the tail entry to the head (Redis RPOPLPUSH src==dst
// shape, exposed directly since internal/quicklist already implements
// it as a single primitive).
func (s *Service) Rotate(ctx context.Context, key string) error {
	_, err := s.bs.Mutate(ctx, key, func(l *quicklist.List) (any, error) {
		l.Rotate(s.fill, s.maxBytes)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("rotate: %w", err)
	}
	return nil
}

// Dup clones src's list under dst, overwriting dst if it already exists.
// Grounded on internal/quicklist.List.Dup (byte-copy duplication), the
// in-memory half of a COPY-style key clone; persistence of dst happens
// through the normal Mutate path by re-ingesting the clone as fresh
// writes.
func (s *Service) Dup(ctx context.Context, src, dst string) error {
	if src == dst {
		return nil
	}

	clone, err := s.bs.View(ctx, src, func(l *quicklist.List) (any, error) {
		if l.Count() == 0 {
			return nil, ErrKeyNotFound
		}
		return l.Dup(), nil
	})
	if err != nil {
		return fmt.Errorf("dup: %w", err)
	}
	srcClone := clone.(*quicklist.List)

	if err := s.bs.Purge(ctx, dst); err != nil {
		return fmt.Errorf("dup: purge dst: %w", err)
	}

	_, err = s.bs.Mutate(ctx, dst, func(dstList *quicklist.List) (any, error) {
		for n := srcClone.Head(); n != nil; n = n.Next() {
			dstList.IngestWholeBlock(n.Block())
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("dup: %w", err)
	}
	return nil
}

// Del removes key entirely.
func (s *Service) Del(ctx context.Context, key string) error {
	if err := s.bs.Purge(ctx, key); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

func (s *Service) purgeIfEmpty(ctx context.Context, key string) error {
	res, err := s.bs.View(ctx, key, func(l *quicklist.List) (any, error) {
		return l.Count() == 0, nil
	})
	if err != nil {
		return err
	}
	if res.(bool) {
		return s.bs.Purge(ctx, key)
	}
	return nil
}
