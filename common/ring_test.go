package common

import "testing"

func TestRingBufferFIFO(t *testing.T) {
	rb := NewRingBuffer[int](3)
	for i := 1; i <= 5; i++ {
		rb.Add(i)
	}
	got := rb.Get()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d]=%d want %d", i, got[i], want[i])
		}
	}
	if rb.Len() != 3 {
		t.Errorf("Len=%d want 3", rb.Len())
	}
	if last, ok := rb.Last(); !ok || last != 5 {
		t.Errorf("Last=%d,%v want 5,true", last, ok)
	}
	if first, ok := rb.First(); !ok || first != 3 {
		t.Errorf("First=%d,%v want 3,true", first, ok)
	}
}

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer[string](4)
	for _, s := range []string{"a", "b", "c"} {
		rb.Add(s)
	}
	tail := rb.Tail(2)
	if len(tail) != 2 || tail[0] != "b" || tail[1] != "c" {
		t.Errorf("Tail(2)=%v", tail)
	}
	// Tail larger than count returns everything.
	if all := rb.Tail(10); len(all) != 3 {
		t.Errorf("Tail(10)=%v", all)
	}
}

func TestRingBufferReset(t *testing.T) {
	rb := NewRingBuffer[int](2)
	rb.Add(1)
	rb.Reset()
	if rb.Len() != 0 {
		t.Errorf("Len=%d after Reset", rb.Len())
	}
	if _, ok := rb.Last(); ok {
		t.Error("Last ok after Reset")
	}
}
