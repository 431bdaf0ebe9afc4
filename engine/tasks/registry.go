// Package tasks holds the in-process registry of started crawl tasks.
package tasks

import (
	"sync"

	"github.com/WessleyAI/mediacrawl/engine/domain"
)

// Registry maps task ids to tasks in insertion order. Entries are never
// evicted. Callers always receive copies.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Task
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*domain.Task)}
}

// Register adds t. A task with the same id already present yields
// ErrDuplicateTaskID and leaves the existing entry untouched.
func (r *Registry) Register(t domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; ok {
		return domain.NewTaskError("register", t.ID, domain.ErrDuplicateTaskID, nil)
	}
	r.byID[t.ID] = &t
	r.order = append(r.order, t.ID)
	return nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

// Lookup returns a copy of the task with id.
func (r *Registry) Lookup(id string) (domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return domain.Task{}, domain.NewTaskError("lookup", id, domain.ErrTaskNotFound, nil)
	}
	return *t, nil
}

// SetStatus records the last observed status of id.
func (r *Registry) SetStatus(id string, s domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return domain.NewTaskError("set status", id, domain.ErrTaskNotFound, nil)
	}
	t.Status = s
	return nil
}

// List returns copies of all tasks in registration order.
func (r *Registry) List() []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Task, len(r.order))
	for i, id := range r.order {
		out[i] = *r.byID[id]
	}
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
