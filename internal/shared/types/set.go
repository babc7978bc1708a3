package types

// IDSet is an immutable set of item ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids
func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, itemID := range ids {
		set[itemID] = struct{}{}
	}
	return set
}

// Has reports whether itemID is in the set. A nil set is empty.
func (s IDSet) Has(itemID string) bool {
	_, ok := s[itemID]
	return ok
}
