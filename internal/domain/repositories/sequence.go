package repositories

import "context"

// SequenceAllocator hands out monotonically increasing integer ids, one
// counter per logical collection. Counters are created lazily on first use
// and never deleted; only the allocator mutates them.
type SequenceAllocator interface {
	// NextSequenceID returns the next usable id for the collection. When
	// consume is true the counter is atomically incremented and the new value
	// returned; when false the current value is returned without mutation
	// (a peek, used for availability checks). The implementation must be a
	// single atomic operation against the store - two concurrent consumers
	// are guaranteed distinct, gapless ids.
	NextSequenceID(ctx context.Context, collection string, consume bool) (int64, error)
}
