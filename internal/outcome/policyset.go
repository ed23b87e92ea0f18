package outcome

import (
	"errors"
	"fmt"
)

// ErrPolicyNotFound is returned when removing a policy the set does not hold.
var ErrPolicyNotFound = errors.New("policy not found")

// #region policy-set
// PolicySet is the ordered list of policies a nation currently holds.
// It is not safe for concurrent use.
type PolicySet struct {
	names []string
}

// NewPolicySet copies names into a new set.
func NewPolicySet(names ...string) PolicySet {
	return PolicySet{names: append([]string(nil), names...)}
}

// Has reports whether name is held.
func (p PolicySet) Has(name string) bool {
	for _, n := range p.names {
		if n == name {
			return true
		}
	}
	return false
}

// Add appends name.
func (p *PolicySet) Add(name string) {
	p.names = append(p.names, name)
}

// Remove drops the first occurrence of name, keeping the order of the rest.
func (p *PolicySet) Remove(name string) error {
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i:i], p.names[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove %q: %w", name, ErrPolicyNotFound)
}

// Names returns a copy of the held policies in order.
func (p PolicySet) Names() []string {
	return append([]string(nil), p.names...)
}

// Len returns the number of held policies.
func (p PolicySet) Len() int {
	return len(p.names)
}

// Clone returns an independent copy.
func (p PolicySet) Clone() PolicySet {
	return NewPolicySet(p.names...)
}

// #endregion policy-set
