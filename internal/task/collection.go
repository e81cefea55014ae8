package task

// Collection is an ordered set of tasks with unique ids.
// Methods never modify the receiver; they return a new collection.
type Collection []Task

// Find returns the index of the task with the given id.
func (c Collection) Find(id string) (int, bool) {
	for i := range c {
		if c[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Get returns the task with the given id.
func (c Collection) Get(id string) (Task, bool) {
	i, ok := c.Find(id)
	if !ok {
		return Task{}, false
	}
	return c[i], true
}

// Add inserts t at the front, where newly created tasks appear.
func (c Collection) Add(t Task) Collection {
	out := make(Collection, 0, len(c)+1)
	out = append(out, t)
	return append(out, c...)
}

// Replace swaps in t for the task with the same id.
func (c Collection) Replace(t Task) (Collection, bool) {
	i, ok := c.Find(t.ID)
	if !ok {
		return c, false
	}
	out := c.Clone()
	out[i] = t
	return out, true
}

// Remove drops the task with the given id.
func (c Collection) Remove(id string) (Collection, bool) {
	i, ok := c.Find(id)
	if !ok {
		return c, false
	}
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...), true
}

// Merge appends tasks after the existing ones.
func (c Collection) Merge(tasks []Task) Collection {
	out := make(Collection, 0, len(c)+len(tasks))
	out = append(out, c...)
	return append(out, tasks...)
}

// IDs returns the set of ids in the collection.
func (c Collection) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(c))
	for _, t := range c {
		ids[t.ID] = struct{}{}
	}
	return ids
}

// Clone returns a shallow copy.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}
