package buffer

import (
	"sync"
	"testing"
)

type testSample struct {
	Step  int
	Joint string
}

func TestAddFlush(t *testing.T) {
	b := New[testSample](16)

	b.Add(testSample{Step: 0, Joint: "shoulder"})
	b.Add(testSample{Step: 0, Joint: "elbow"}, testSample{Step: 1, Joint: "shoulder"})

	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}

	got := b.Flush()
	if len(got) != 3 {
		t.Fatalf("Flush() returned %d items, want 3", len(got))
	}
	if got[0].Joint != "shoulder" || got[2].Step != 1 {
		t.Errorf("items out of arrival order: %+v", got)
	}
	if b.Len() != 0 {
		t.Errorf("Len() after Flush = %d, want 0", b.Len())
	}
	if len(b.Flush()) != 0 {
		t.Error("second Flush should be empty")
	}
}

func TestAdd_EvictsOldest(t *testing.T) {
	b := New[int](3)

	if n := b.Add(1, 2, 3); n != 0 {
		t.Errorf("Add within limit evicted %d", n)
	}
	if n := b.Add(4, 5); n != 2 {
		t.Errorf("Add over limit evicted %d, want 2", n)
	}

	got := b.Flush()
	if len(got) != 3 || got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Errorf("Flush() = %v, want newest [3 4 5]", got)
	}
	if b.Evicted() != 2 {
		t.Errorf("Evicted() = %d, want 2", b.Evicted())
	}
}

func TestAdd_Unbounded(t *testing.T) {
	b := New[int](0)

	for i := 0; i < 1000; i++ {
		b.Add(i)
	}
	if b.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", b.Len())
	}
	if b.Evicted() != 0 {
		t.Errorf("Evicted() = %d, want 0", b.Evicted())
	}
}

func TestAdd_Concurrent(t *testing.T) {
	b := New[int](0)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Add(i)
			}
		}()
	}
	wg.Wait()

	if b.Len() != 800 {
		t.Errorf("Len() = %d, want 800", b.Len())
	}
}
