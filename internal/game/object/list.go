package object

import (
	"sort"
)

// List is the flat, non-owning list of active objects used for stepping and rendering.
type List struct {
	objs []*GameObject
}

// Add appends objects to the list.
func (l *List) Add(objs ...*GameObject) {
	l.objs = append(l.objs, objs...)
}

// Remove deletes obj from the list.
//
// Postcondition: Returns false if obj was not present.
func (l *List) Remove(obj *GameObject) bool {
	for i, o := range l.objs {
		if o == obj {
			l.objs = append(l.objs[:i], l.objs[i+1:]...)
			return true
		}
	}
	return false
}

// Reset empties the list.
func (l *List) Reset() {
	l.objs = nil
}

// Len returns the number of active objects.
func (l *List) Len() int {
	return len(l.objs)
}

// All returns the active objects in insertion order. The slice must not be modified.
func (l *List) All() []*GameObject {
	return l.objs
}

// SortedByMesh returns a copy of the list stably ordered by mesh key.
func (l *List) SortedByMesh() []*GameObject {
	out := append([]*GameObject(nil), l.objs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeshKey < out[j].MeshKey })
	return out
}
