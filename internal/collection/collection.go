// Package collection keeps the local, ordered mirror of server-side tasks.
package collection

import (
	"container/list"

	"github.com/nhle/tasksync/internal/model"
)

// Collection is an ordered set of tasks keyed by ID. New tasks are
// prepended; replacing a task keeps its position. Upsert and Remove are
// O(1) and idempotent, so a local CRUD result and its push echo can both be
// applied without producing duplicates.
//
// A Collection is not safe for concurrent use; it is owned by the single
// event loop that applies mutations.
type Collection struct {
	order *list.List
	index map[string]*list.Element
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// Seed replaces the whole collection with tasks in the given order. If an
// ID repeats, the later entry replaces the earlier one in place. Tasks
// without an ID are ignored.
func (c *Collection) Seed(tasks []model.Task) {
	c.order.Init()
	c.index = make(map[string]*list.Element, len(tasks))

	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if el, ok := c.index[t.ID]; ok {
			el.Value = t
			continue
		}
		c.index[t.ID] = c.order.PushBack(t)
	}
}

// Upsert replaces the task with the same ID in place, or inserts it at the
// front. It reports whether the task was newly inserted. Tasks without an
// ID are ignored.
func (c *Collection) Upsert(t model.Task) bool {
	if t.ID == "" {
		return false
	}
	if el, ok := c.index[t.ID]; ok {
		el.Value = t
		return false
	}
	c.index[t.ID] = c.order.PushFront(t)
	return true
}

// Remove deletes the task with the given ID and reports whether it was
// present. Removing an absent ID is a no-op.
func (c *Collection) Remove(id string) bool {
	el, ok := c.index[id]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.index, id)
	return true
}

// Clear empties the collection.
func (c *Collection) Clear() {
	c.order.Init()
	c.index = make(map[string]*list.Element)
}

// Get returns the task with the given ID.
func (c *Collection) Get(id string) (model.Task, bool) {
	el, ok := c.index[id]
	if !ok {
		return model.Task{}, false
	}
	return el.Value.(model.Task), true
}

// All returns the tasks in order. The returned slice is a copy.
func (c *Collection) All() []model.Task {
	out := make([]model.Task, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(model.Task))
	}
	return out
}

// Len returns the number of tasks.
func (c *Collection) Len() int {
	return c.order.Len()
}
