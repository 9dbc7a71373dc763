package settlement

import "github.com/google/uuid"

// SelectionSet is the set of item ids chosen for settlement.
// A locked set rejects every mutation.
type SelectionSet struct {
	ids    map[uuid.UUID]struct{}
	order  []uuid.UUID
	locked bool
}

// NewSelectionSet creates an empty, unlocked selection
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: make(map[uuid.UUID]struct{})}
}

// Toggle flips the selection of id. Ids not in known are ignored.
func (s *SelectionSet) Toggle(id uuid.UUID, known []DueItem) error {
	if s.locked {
		return ErrSelectionLocked
	}
	if !containsItem(known, id) {
		return nil
	}
	if _, ok := s.ids[id]; ok {
		s.remove(id)
		return nil
	}
	s.add(id)
	return nil
}

// SelectAll selects every item currently in the list
func (s *SelectionSet) SelectAll(items []DueItem) error {
	if s.locked {
		return ErrSelectionLocked
	}
	for _, item := range items {
		if _, ok := s.ids[item.ID]; !ok {
			s.add(item.ID)
		}
	}
	return nil
}

// ClearAll empties the selection
func (s *SelectionSet) ClearAll() error {
	if s.locked {
		return ErrSelectionLocked
	}
	s.reset()
	return nil
}

// IsSelected reports whether id is selected
func (s *SelectionSet) IsSelected(id uuid.UUID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids
func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in selection order
func (s *SelectionSet) IDs() []uuid.UUID {
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

// IsLocked reports whether the selection is frozen
func (s *SelectionSet) IsLocked() bool {
	return s.locked
}

func (s *SelectionSet) lock()   { s.locked = true }
func (s *SelectionSet) unlock() { s.locked = false }

func (s *SelectionSet) reset() {
	s.ids = make(map[uuid.UUID]struct{})
	s.order = nil
}

func (s *SelectionSet) add(id uuid.UUID) {
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *SelectionSet) remove(id uuid.UUID) {
	delete(s.ids, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func containsItem(items []DueItem, id uuid.UUID) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}
