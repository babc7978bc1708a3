package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
)

// Snapshot is an immutable copy of a whole table. Consumers must not modify it.
type Snapshot map[string][]byte

// Table is one named table of a Store. Writes are serialized and every
// completed write publishes a fresh Snapshot to watchers, after the backend
// has acknowledged it.
type Table struct {
	name  string
	store Store

	mu   sync.Mutex // serializes writers
	rows *stream.Value[Snapshot]
}

// NewTable loads the current contents of table from store.
func NewTable(ctx context.Context, store Store, name string) (*Table, error) {
	rows, err := store.Scan(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	return &Table{
		name:  name,
		store: store,
		rows:  stream.NewValueOf(Snapshot(rows)),
	}, nil
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Get returns the value stored under key.
func (t *Table) Get(key string) ([]byte, bool) {
	rows, _ := t.rows.Load()
	value, ok := rows[key]
	return value, ok
}

// Snapshot returns the current table contents.
func (t *Table) Snapshot() Snapshot {
	rows, _ := t.rows.Load()
	return rows
}

// Watch streams the table contents on every change, starting with the
// current contents.
func (t *Table) Watch(ctx context.Context) <-chan Snapshot {
	return t.rows.Subscribe(ctx)
}

// Put stores value under key.
func (t *Table) Put(ctx context.Context, key string, value []byte) error {
	return t.Update(ctx, key, func([]byte, bool) ([]byte, bool, error) {
		return value, true, nil
	})
}

// Remove deletes key. Removing a missing key is a no-op.
func (t *Table) Remove(ctx context.Context, key string) error {
	return t.Update(ctx, key, func([]byte, bool) ([]byte, bool, error) {
		return nil, false, nil
	})
}

// Update performs a read-modify-write of key under the table's write lock.
// fn receives the current value and returns the new value and whether to
// keep the key; returning keep == false removes it.
func (t *Table) Update(ctx context.Context, key string, fn func(current []byte, ok bool) (next []byte, keep bool, err error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, _ := t.rows.Load()
	current, ok := rows[key]
	next, keep, err := fn(current, ok)
	if err != nil {
		return err
	}
	if !keep && !ok {
		return nil
	}

	if keep {
		if err := t.store.Put(ctx, t.name, key, next); err != nil {
			return err
		}
	} else if err := t.store.Remove(ctx, t.name, key); err != nil {
		return err
	}

	updated := make(Snapshot, len(rows)+1)
	for k, v := range rows {
		updated[k] = v
	}
	if keep {
		updated[key] = append([]byte(nil), next...)
	} else {
		delete(updated, key)
	}
	t.rows.Publish(updated)
	return nil
}
