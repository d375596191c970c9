package types

import "testing"

func TestNewDot(t *testing.T) {
	d := NewDot(3, 5)
	if d.ID != 3 || d.Counter != 5 {
		t.Errorf("got %+v, want ID=3 Counter=5", d)
	}
}

func TestDotString(t *testing.T) {
	d := NewDot(1, 2)
	if d.String() == "" {
		t.Error("String() should not be empty")
	}
}

func TestDotEquality(t *testing.T) {
	a := NewDot(1, 2)
	b := NewDot(1, 2)
	c := NewDot(1, 3)

	if a != b {
		t.Error("dots with equal fields should compare equal")
	}
	if a == c {
		t.Error("dots with different counters should not compare equal")
	}
}
