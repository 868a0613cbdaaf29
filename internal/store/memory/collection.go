package memory

import (
	"maps"
	"slices"
)

// collection is one entity table. Records are stored as private copies and
// handed out as fresh copies, so callers never alias stored state.
type collection[T any] struct {
	items    map[int64]*T
	nextID   int64
	setID    func(*T, int64)
	clone    func(*T) *T
	notFound error
}

func newCollection[T any](notFound error, setID func(*T, int64), clone func(*T) *T) *collection[T] {
	return &collection[T]{
		items:    make(map[int64]*T),
		setID:    setID,
		clone:    clone,
		notFound: notFound,
	}
}

// insert assigns the next id to v and stores a copy of it. Ids are never
// reused.
func (c *collection[T]) insert(v *T) {
	c.nextID++
	c.setID(v, c.nextID)
	c.items[c.nextID] = c.clone(v)
}

func (c *collection[T]) get(id int64) (*T, error) {
	v, ok := c.items[id]
	if !ok {
		return nil, c.notFound
	}
	return c.clone(v), nil
}

func (c *collection[T]) update(id int64, apply func(*T)) (*T, error) {
	v, ok := c.items[id]
	if !ok {
		return nil, c.notFound
	}
	apply(v)
	return c.clone(v), nil
}

// list returns matching records in ascending id order.
func (c *collection[T]) list(match func(*T) bool) []*T {
	ids := slices.Sorted(maps.Keys(c.items))
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v := c.items[id]
		if match == nil || match(v) {
			out = append(out, c.clone(v))
		}
	}
	return out
}

func (c *collection[T]) find(match func(*T) bool) (*T, bool) {
	for _, id := range slices.Sorted(maps.Keys(c.items)) {
		if v := c.items[id]; match(v) {
			return c.clone(v), true
		}
	}
	return nil, false
}

func (c *collection[T]) copy() *collection[T] {
	cp := newCollection(c.notFound, c.setID, c.clone)
	cp.nextID = c.nextID
	for id, v := range c.items {
		cp.items[id] = c.clone(v)
	}
	return cp
}

// dropAfter removes records with ids above id. nextID is left alone.
func (c *collection[T]) dropAfter(id int64) {
	for k := range c.items {
		if k > id {
			delete(c.items, k)
		}
	}
}

func (c *collection[T]) values() map[int64]T {
	out := make(map[int64]T, len(c.items))
	for id, v := range c.items {
		out[id] = *c.clone(v)
	}
	return out
}

func shallow[T any](v *T) *T {
	c := *v
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
