package arena

import "testing"

func TestArrayMap_PushGet(t *testing.T) {
	a := New[string]()
	i0 := a.Push("zero")
	i1 := a.Push("one")

	if got := a.Get(i0); got != "zero" {
		t.Errorf("Get(%d) = %q, want %q", i0, got, "zero")
	}
	if got := a.Get(i1); got != "one" {
		t.Errorf("Get(%d) = %q, want %q", i1, got, "one")
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}

func TestArrayMap_RemoveRecyclesSlot(t *testing.T) {
	a := New[int]()
	i0 := a.Push(10)
	i1 := a.Push(20)

	a.Remove(i0)
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after removing one of two", a.Len())
	}
	if a.Contains(i0) {
		t.Fatalf("Contains(%d) = true after Remove", i0)
	}

	i2 := a.Push(30)
	if i2 != i0 {
		t.Errorf("Push after Remove = %d, want reused slot %d", i2, i0)
	}
	if got := a.Get(i2); got != 30 {
		t.Errorf("Get(%d) = %d, want 30", i2, got)
	}
	if got := a.Get(i1); got != 20 {
		t.Errorf("unrelated live slot %d changed: got %d, want 20", i1, got)
	}
}

func TestArrayMap_SetOverwrites(t *testing.T) {
	a := New[int]()
	idx := a.Push(1)
	a.Set(idx, 2)
	if got := a.Get(idx); got != 2 {
		t.Errorf("Get after Set = %d, want 2", got)
	}
}

func TestArrayMap_AccessRemovedPanics(t *testing.T) {
	a := New[int]()
	idx := a.Push(1)
	a.Remove(idx)

	defer func() {
		if recover() == nil {
			t.Error("Get on a removed slot should panic")
		}
	}()
	a.Get(idx)
}

func TestArrayMap_DoubleRemovePanics(t *testing.T) {
	a := New[int]()
	idx := a.Push(1)
	a.Remove(idx)

	defer func() {
		if recover() == nil {
			t.Error("Remove on an already-removed slot should panic")
		}
	}()
	a.Remove(idx)
}

func TestArrayMap_CapGrowsOnlyOnAppend(t *testing.T) {
	a := New[int]()
	i0 := a.Push(1)
	a.Push(2)
	a.Remove(i0)
	a.Push(3) // reuses i0, Cap shouldn't grow
	if a.Cap() != 2 {
		t.Errorf("Cap() = %d, want 2 (no growth on recycle)", a.Cap())
	}
}
