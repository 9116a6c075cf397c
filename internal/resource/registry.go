package resource

// Registry collects resolved resource paths in first-seen order without
// duplicates. A Registry is not safe for concurrent use; batch workers each
// own one and Clear it between maps.
type Registry struct {
	paths []string
	seen  map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		paths: make([]string, 0, 64),
		seen:  make(map[string]struct{}, 64),
	}
}

// Add appends path unless it is already present. It reports whether the
// path was new.
func (r *Registry) Add(path string) bool {
	if _, ok := r.seen[path]; ok {
		return false
	}
	r.seen[path] = struct{}{}
	r.paths = append(r.paths, path)
	return true
}

// Contains reports whether path has been added since the last Clear.
func (r *Registry) Contains(path string) bool {
	_, ok := r.seen[path]
	return ok
}

// Len returns the number of distinct paths.
func (r *Registry) Len() int {
	return len(r.paths)
}

// All returns a copy of the paths in insertion order.
func (r *Registry) All() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Clear empties the registry, keeping its storage for the next map.
func (r *Registry) Clear() {
	clear(r.paths)
	r.paths = r.paths[:0]
	clear(r.seen)
}
