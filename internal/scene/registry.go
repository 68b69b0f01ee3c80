package scene

// Registry is the ordered set of transforms that float on the sea.
// Iteration order is insertion order. The same transform may be added more
// than once; each entry is kept.
type Registry struct {
	entries []*Transform
}

func NewRegistry() *Registry {
	return &Registry{entries: make([]*Transform, 0)}
}

// Add appends t. Nil transforms are ignored.
func (r *Registry) Add(t *Transform) {
	if t == nil {
		return
	}
	r.entries = append(r.entries, t)
}

// Remove drops the first entry pointing at t, preserving the order of the rest.
func (r *Registry) Remove(t *Transform) bool {
	for i, e := range r.entries {
		if e == t {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the first transform with the given name.
func (r *Registry) Find(name string) *Transform {
	for _, e := range r.entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Transforms returns the entries in insertion order. The slice is shared;
// callers must not modify it.
func (r *Registry) Transforms() []*Transform {
	return r.entries
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) Clear() {
	r.entries = r.entries[:0]
}
