package outcome

import (
	"errors"
	"reflect"
	"testing"
)

func TestPolicySetAddRemoveRoundTrip(t *testing.T) {
	p := NewPolicySet("Welfare", "Nuclear Energy", "Prohibition")
	before := p.Names()

	p.Add("X")
	if !p.Has("X") {
		t.Fatal("expected X after Add")
	}
	if err := p.Remove("X"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !reflect.DeepEqual(p.Names(), before) {
		t.Fatalf("expected %v, got %v", before, p.Names())
	}
}

func TestPolicySetRemoveKeepsOrder(t *testing.T) {
	p := NewPolicySet("a", "b", "c", "b")
	if err := p.Remove("b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	want := []string{"a", "c", "b"}
	if !reflect.DeepEqual(p.Names(), want) {
		t.Fatalf("expected %v, got %v", want, p.Names())
	}
}

func TestPolicySetRemoveMissing(t *testing.T) {
	p := NewPolicySet("a")
	err := p.Remove("z")
	if !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}
	if p.Len() != 1 {
		t.Errorf("set changed on failed remove: %v", p.Names())
	}
}

func TestPolicySetCloneIndependent(t *testing.T) {
	p := NewPolicySet("a", "b")
	c := p.Clone()
	c.Add("c")
	if err := c.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !reflect.DeepEqual(p.Names(), []string{"a", "b"}) {
		t.Fatalf("original mutated: %v", p.Names())
	}
}

func TestPolicySetRemoveDoesNotAliasSource(t *testing.T) {
	src := []string{"a", "b", "c"}
	p := NewPolicySet(src...)
	_ = p.Remove("a")
	if !reflect.DeepEqual(src, []string{"a", "b", "c"}) {
		t.Fatalf("source slice mutated: %v", src)
	}
}
