package index

// Registry maps document paths to sequential integer ids. Ids start at 0 and
// are assigned in first-seen order; the registry only grows.
type Registry struct {
	paths []string
}

func NewRegistry() *Registry {
	return &Registry{paths: make([]string, 0)}
}

// Add returns the id of path, registering it first if it is new.
func (r *Registry) Add(path string) int {
	if id, ok := r.Lookup(path); ok {
		return id
	}
	r.paths = append(r.paths, path)
	return len(r.paths) - 1
}

// Lookup returns the id of an already registered path.
func (r *Registry) Lookup(path string) (int, bool) {
	for i, p := range r.paths {
		if p == path {
			return i, true
		}
	}
	return -1, false
}

// Path returns the path registered under id, or "" when id is unknown.
func (r *Registry) Path(id int) string {
	if id < 0 || id >= len(r.paths) {
		return ""
	}
	return r.paths[id]
}

func (r *Registry) Len() int {
	return len(r.paths)
}

// Paths returns a copy of every registered path ordered by id.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}
