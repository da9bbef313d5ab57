package difftool

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is an ordered catalog of descriptors. Order is the fallback
// order used when reporting.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
}

// NewRegistry returns a registry holding descriptors in the given order.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a descriptor. Names are unique, case-insensitively.
func (r *Registry) Register(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(d.Name) >= 0 {
		return fmt.Errorf("difftool: %s already registered", d.Name)
	}
	r.descriptors = append(r.descriptors, d)
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup finds a descriptor by name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.indexLocked(name); idx >= 0 {
		return r.descriptors[idx], true
	}
	return Descriptor{}, false
}

// Descriptors returns a snapshot in fallback order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Descriptor(nil), r.descriptors...)
}

// Names returns descriptor names in fallback order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		names[i] = d.Name
	}
	return names
}

// Prefer moves the named descriptors to the front, in the order given.
// Unknown names are ignored.
func (r *Registry) Prefer(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	front := make([]Descriptor, 0, len(names))
	for _, name := range names {
		if idx := r.indexLocked(name); idx >= 0 {
			front = append(front, r.descriptors[idx])
			r.descriptors = append(r.descriptors[:idx], r.descriptors[idx+1:]...)
		}
	}
	r.descriptors = append(front, r.descriptors...)
}

// Remove drops the named descriptors.
func (r *Registry) Remove(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if idx := r.indexLocked(name); idx >= 0 {
			r.descriptors = append(r.descriptors[:idx], r.descriptors[idx+1:]...)
		}
	}
}

func (r *Registry) indexLocked(name string) int {
	name = strings.TrimSpace(name)
	for i, d := range r.descriptors {
		if strings.EqualFold(d.Name, name) {
			return i
		}
	}
	return -1
}
