package querycache

// The optimistic mutation primitive. Every write flow (borrow, cart add and
// remove, checkout, return, review upsert) is a configuration of Mutate:
// snapshot the previous value, apply the new one synchronously so readers see
// it before the network call is dispatched, then reconcile on settlement.
// Reconciliations for one key settle in the order their mutations were
// initiated.

import "context"

// CommitMode selects what happens to the optimistic value on success.
type CommitMode int

const (
	// InvalidateOnSuccess marks the key stale so the next read refetches the
	// authoritative server state.
	InvalidateOnSuccess CommitMode = iota

	// KeepOnSuccess treats the optimistic value as final, for flows with no
	// reliable read endpoint.
	KeepOnSuccess
)

// Mutation describes one optimistic write against a single cache key.
//
// Apply must treat its input as immutable and return a new value; the
// snapshot it received is what rollback restores verbatim.
type Mutation[T any] struct {
	Key   string
	Apply func(prev T) T
	Call  func(ctx context.Context) error

	Commit CommitMode
	// AlsoInvalidate lists additional keys marked stale on success.
	AlsoInvalidate []string
}

// ticket orders reconciliations per key.
type ticket struct {
	ready chan struct{}
}

// Mutate runs one optimistic mutation. The optimistic value is visible to
// readers before Call is dispatched. On failure the pre-mutation snapshot is
// restored exactly and the error propagates to the initiator; it is never
// swallowed here.
func Mutate[T any](ctx context.Context, c *Cache, m Mutation[T]) error {
	prev, hadPrev, t := apply(c, m)

	err := m.Call(ctx)

	// Wait for earlier mutations on this key to settle first.
	<-t.ready
	defer c.settle(m.Key)

	if err != nil {
		c.restore(m.Key, prev, hadPrev)

		return err
	}

	if m.Commit == InvalidateOnSuccess {
		c.Invalidate(m.Key)
	}
	if len(m.AlsoInvalidate) > 0 {
		c.Invalidate(m.AlsoInvalidate...)
	}

	return nil
}

// apply snapshots the previous value, publishes the optimistic one, and
// enqueues a reconciliation ticket, all under one lock so readers never see a
// half-applied state.
func apply[T any](c *Cache, m Mutation[T]) (prev T, hadPrev bool, t *ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[m.Key]; ok {
		if typed, ok := e.value.(T); ok {
			prev = typed
			hadPrev = true
		}
	}

	next := m.Apply(prev)
	c.entries[m.Key] = &entry{value: next, fetchedAt: c.now()}

	t = &ticket{ready: make(chan struct{})}
	queue := c.pending[m.Key]
	if len(queue) == 0 {
		close(t.ready)
	}
	c.pending[m.Key] = append(queue, t)

	return prev, hadPrev, t
}

// restore puts the pre-mutation snapshot back, or deletes the entry when none
// existed before the mutation.
func (c *Cache) restore(key string, prev any, hadPrev bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !hadPrev {
		delete(c.entries, key)

		return
	}

	c.entries[key] = &entry{value: prev, fetchedAt: c.now()}
}

// settle retires the head ticket for the key and releases the next one.
func (c *Cache) settle(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.pending[key]
	if len(queue) == 0 {
		return
	}

	queue = queue[1:]
	if len(queue) == 0 {
		delete(c.pending, key)

		return
	}

	close(queue[0].ready)
	c.pending[key] = queue
}
