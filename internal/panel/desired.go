package panel

// DesiredSet maps each panel kind to whether one workspace wants it visible.
// Absent keys mean false.
type DesiredSet map[Kind]bool

// Clone returns an independent copy of the set.
func (s DesiredSet) Clone() DesiredSet {
	out := make(DesiredSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal compares every known kind explicitly. A single differing flag makes
// the sets unequal, regardless of which map the flag is stored in.
func (s DesiredSet) Equal(other DesiredSet) bool {
	for _, k := range kinds {
		if s[k] != other[k] {
			return false
		}
	}
	return true
}

// Visible returns the kinds flagged true, in canonical order.
func (s DesiredSet) Visible() []Kind {
	var out []Kind
	for _, k := range kinds {
		if s[k] {
			out = append(out, k)
		}
	}
	return out
}

// SetOf builds a DesiredSet with exactly the given kinds visible.
func SetOf(visible ...Kind) DesiredSet {
	s := make(DesiredSet, len(visible))
	for _, k := range visible {
		s[k] = true
	}
	return s
}
