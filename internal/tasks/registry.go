package tasks

import (
	"fmt"
	"sort"
	"sync"
)

type entry struct {
	name    string
	queue   Queue
	handler Handler
}

// Registry binds each task name to exactly one queue and handler.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

func (r *Registry) Register(name string, queue Queue, h Handler) error {
	if name == "" || h == nil {
		return fmt.Errorf("register %q: name and handler are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[name]; ok {
		return fmt.Errorf("task %s already bound to queue %s", name, existing.queue)
	}
	r.entries[name] = entry{name: name, queue: queue, handler: h}
	return nil
}

func (r *Registry) MustRegister(name string, queue Queue, h Handler) {
	if err := r.Register(name, queue, h); err != nil {
		panic(err)
	}
}

func (r *Registry) lookup(name string) (entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return e, nil
}

// QueueOf reports the queue name is bound to.
func (r *Registry) QueueOf(name string) (Queue, error) {
	e, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	return e.queue, nil
}

// Names returns every registered task name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
