package identity

import "github.com/matzehuels/b4wexport/pkg/scene"

// Category separates the independent walk spaces of one block.
type Category uint8

const (
	Plain Category = iota
	Curve
	Hair
)

// Salt returns the identity salt of objects walked in this category.
func (c Category) Salt() string {
	switch c {
	case Curve:
		return SaltCurve
	case Hair:
		return SaltHair
	}
	return ""
}

// State is the walk state of one block in one category.
type State uint8

const (
	NotVisited State = iota
	InProgress
	Done
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Done:
		return "done"
	}
	return "not visited"
}

type visitKey struct {
	id  scene.ID
	cat Category
}

// Visited records walk state per (block, category). It replaces flags
// written onto the blocks themselves, so the graph is never mutated.
//
// The zero value is ready to use.
type Visited struct {
	states map[visitKey]State
}

// State returns the current state of id in cat.
func (v *Visited) State(id scene.ID, cat Category) State {
	return v.states[visitKey{id, cat}]
}

// Begin moves id from NotVisited to InProgress. It reports false, leaving
// the state untouched, when the block was already entered.
func (v *Visited) Begin(id scene.ID, cat Category) bool {
	if v.states == nil {
		v.states = make(map[visitKey]State)
	}
	k := visitKey{id, cat}
	if v.states[k] != NotVisited {
		return false
	}
	v.states[k] = InProgress
	return true
}

// Finish marks id as Done in cat.
func (v *Visited) Finish(id scene.ID, cat Category) {
	if v.states == nil {
		v.states = make(map[visitKey]State)
	}
	v.states[visitKey{id, cat}] = Done
}

// Abort returns id to NotVisited in cat, so a failed walk can be retried.
func (v *Visited) Abort(id scene.ID, cat Category) {
	delete(v.states, visitKey{id, cat})
}

// Len returns the number of tracked (block, category) pairs.
func (v *Visited) Len() int { return len(v.states) }

// Reset forgets every state.
func (v *Visited) Reset() { clear(v.states) }

// Stack is the chain of blocks currently being processed in one category,
// innermost last.
type Stack[T any] struct {
	items []T
}

// Push adds v on top.
func (s *Stack[T]) Push(v T) { s.items = append(s.items, v) }

// Pop removes and returns the top element.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Top returns the top element without removing it.
func (s *Stack[T]) Top() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the stack depth.
func (s *Stack[T]) Len() int { return len(s.items) }

// Clear empties the stack.
func (s *Stack[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}
