package transform

import "fmt"

// Arena owns a set of world transforms. A parent must be allocated in the
// same arena before its children, so allocation order is a valid update
// order and cycles cannot be formed.
type Arena struct {
	worlds []*World
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

// NewWorld allocates a transform in the arena.
func (a *Arena) NewWorld() *World {
	w := NewWorld()
	w.arena = a
	w.index = len(a.worlds)
	a.worlds = append(a.worlds, w)
	return w
}

// SetParent makes parent the parent of child. A nil parent detaches child.
func (a *Arena) SetParent(child, parent *World) error {
	if child == nil || child.arena != a {
		return fmt.Errorf("%w: child is not in this arena", ErrForeignParent)
	}
	if parent == nil {
		child.parent = nil
		return nil
	}
	if parent.arena != a {
		return ErrForeignParent
	}
	if parent.index >= child.index {
		return fmt.Errorf("%w: parent %d, child %d", ErrParentOrder, parent.index, child.index)
	}
	child.parent = parent
	return nil
}

// UpdateAll updates every transform in allocation order.
func (a *Arena) UpdateAll() {
	for _, w := range a.worlds {
		w.UpdateMatrix()
	}
}

// Len returns the number of transforms in the arena.
func (a *Arena) Len() int { return len(a.worlds) }

// Worlds returns the transforms in allocation order.
func (a *Arena) Worlds() []*World { return a.worlds }

// Destroy releases the constant buffers of every transform.
func (a *Arena) Destroy() {
	for _, w := range a.worlds {
		w.Destroy()
	}
}
