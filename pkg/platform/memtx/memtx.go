// Package memtx provides the transactional core of the in-memory record stores.
//
// Writers on the same key are serialized by a sharded mutex. Writes made inside
// a transaction are staged and applied together under the store's write lock at
// commit, so readers observe either none or all of them. Reads inside a
// transaction see committed state only.
package memtx

import (
	"context"
	"sync"
	"time"

	dErrors "credverify/pkg/domain-errors"
	platformsync "credverify/pkg/platform/sync"
)

// DefaultTimeout bounds a transaction when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Op is a staged mutation of S. Check runs against committed state when the op
// is staged and again at commit; Apply runs only once every check has passed.
type Op[S any] struct {
	Check func(*S) error
	Apply func(*S)
}

type config struct {
	timeout    time.Duration
	onLockWait func(time.Duration)
}

// Option configures a DB.
type Option func(*config)

func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLockWaitObserver reports how long each transaction waited for its key.
func WithLockWaitObserver(fn func(time.Duration)) Option {
	return func(c *config) {
		c.onLockWait = fn
	}
}

// DB guards a state value S.
type DB[S any] struct {
	mu    sync.RWMutex
	state S
	keys  *platformsync.ShardedMutex
	cfg   config
}

func New[S any](state S, opts ...Option) *DB[S] {
	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DB[S]{state: state, keys: platformsync.NewShardedMutex(), cfg: cfg}
}

// View runs fn under the read lock.
func (d *DB[S]) View(fn func(*S) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(&d.state)
}

// Update checks then applies ops atomically.
func (d *DB[S]) Update(ops ...Op[S]) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, op := range ops {
		if op.Check == nil {
			continue
		}
		if err := op.Check(&d.state); err != nil {
			return err
		}
	}
	for _, op := range ops {
		if op.Apply != nil {
			op.Apply(&d.state)
		}
	}
	return nil
}

// RunInTx runs fn holding the lock for key and commits the ops it staged.
// Nothing is applied when fn or any commit-time check fails.
func (d *DB[S]) RunInTx(ctx context.Context, key string, fn func(tx *Tx[S]) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.timeout)
		defer cancel()
	}

	lockStart := time.Now()
	d.keys.Lock(key)
	if d.cfg.onLockWait != nil {
		d.cfg.onLockWait(time.Since(lockStart))
	}
	defer d.keys.Unlock(key)

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	tx := &Tx[S]{db: d}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
	}
	return d.Update(tx.ops...)
}

// Tx collects staged ops.
type Tx[S any] struct {
	db  *DB[S]
	ops []Op[S]
}

// View reads committed state.
func (t *Tx[S]) View(fn func(*S) error) error {
	return t.db.View(fn)
}

// Stage checks op against committed state and queues it for commit.
func (t *Tx[S]) Stage(op Op[S]) error {
	if op.Check != nil {
		if err := t.db.View(func(s *S) error { return op.Check(s) }); err != nil {
			return err
		}
	}
	t.ops = append(t.ops, op)
	return nil
}

// Staged reports the number of queued ops.
func (t *Tx[S]) Staged() int {
	return len(t.ops)
}
