package resource

import (
	"errors"
	"sync"
	"testing"

	"github.com/wippyai/refcell"
)

type countingReleaser struct {
	name     string
	order    *[]string
	released int
}

func (r *countingReleaser) Release() {
	r.released++
	if r.order != nil {
		*r.order = append(*r.order, r.name)
	}
}

func TestLocalBackend_Basic(t *testing.T) {
	b := NewLocalBackend()
	r := &countingReleaser{name: "a"}

	id, err := b.Create("window", r)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	v, ok := b.Get(id)
	if !ok || v != r {
		t.Fatal("Get did not return the stored value")
	}

	kind, ok := b.Kind(id)
	if !ok || kind != "window" {
		t.Fatalf("Kind = %q, want window", kind)
	}

	v, ok = b.Drop(id)
	if !ok || v != r {
		t.Fatal("Drop did not return the stored value")
	}
	if r.released != 0 {
		t.Fatal("Drop must not release the value")
	}

	if _, ok := b.Get(id); ok {
		t.Fatal("Get should fail after Drop")
	}
	if _, ok := b.Drop(id); ok {
		t.Fatal("second Drop should fail")
	}
}

func TestLocalBackend_IDReuse(t *testing.T) {
	b := NewLocalBackend()

	id1, _ := b.Create("k", &countingReleaser{})
	id2, _ := b.Create("k", &countingReleaser{})
	id3, _ := b.Create("k", &countingReleaser{})

	b.Drop(id2)
	b.Drop(id1)

	id4, _ := b.Create("k", &countingReleaser{})
	id5, _ := b.Create("k", &countingReleaser{})

	if id4 != id1 || id5 != id2 {
		t.Fatalf("freed IDs not reused in LIFO order: got %d,%d want %d,%d", id4, id5, id1, id2)
	}
	for _, id := range []ID{id3, id4, id5} {
		if _, ok := b.Get(id); !ok {
			t.Fatalf("ID %d should be valid", id)
		}
	}
}

func TestLocalBackend_Newest(t *testing.T) {
	b := NewLocalBackend()

	id1, _ := b.Create("k", &countingReleaser{})
	id2, _ := b.Create("k", &countingReleaser{})
	b.Drop(id1)
	id3, _ := b.Create("k", &countingReleaser{}) // reuses id1's slot

	got := b.Newest()
	want := []ID{id3, id2}
	if len(got) != len(want) {
		t.Fatalf("Newest() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Newest() = %v, want %v", got, want)
		}
	}
}

func TestLocalBackend_Close(t *testing.T) {
	b := NewLocalBackend()
	var order []string

	b.Create("k", &countingReleaser{name: "first", order: &order})
	b.Create("k", &countingReleaser{name: "second", order: &order})
	b.Create("k", &countingReleaser{name: "third", order: &order})

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("release order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("release order = %v, want %v", order, want)
		}
	}

	_, err := b.Create("k", &countingReleaser{})
	if !errors.Is(err, ErrClosed) {
		t.Fatal("Expected ErrClosed after Close")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if len(order) != 3 {
		t.Fatal("second Close released values again")
	}
}

func TestLocalBackend_Concurrent(t *testing.T) {
	b := NewLocalBackend()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := b.Create("k", &countingReleaser{})
			b.Get(id)
			b.Drop(id)
		}()
	}

	wg.Wait()
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
}

func TestLocalBackend_Each(t *testing.T) {
	b := NewLocalBackend()

	b.Create("a", &countingReleaser{})
	b.Create("b", &countingReleaser{})
	b.Create("a", &countingReleaser{})

	count := 0
	b.Each(func(ID, string, refcell.Releaser) bool {
		count++
		return true
	})
	if count != 3 {
		t.Fatalf("Expected to iterate over 3 items, got %d", count)
	}

	count = 0
	b.Each(func(ID, string, refcell.Releaser) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Expected to iterate over 1 item (early term), got %d", count)
	}
}

func TestLocalBackend_InvalidID(t *testing.T) {
	b := NewLocalBackend()

	if _, ok := b.Get(0); ok {
		t.Fatal("ID 0 should be invalid")
	}
	if _, ok := b.Kind(0); ok {
		t.Fatal("ID 0 should be invalid for Kind")
	}
	if _, ok := b.Drop(0); ok {
		t.Fatal("ID 0 should fail Drop")
	}
	if _, ok := b.Get(999); ok {
		t.Fatal("Non-existent ID should be invalid")
	}
}
