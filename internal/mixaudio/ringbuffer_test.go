package mixaudio

import (
	"sync"
	"testing"
)

func TestSPSCRingPushPop(t *testing.T) {
	r := newSPSCRing[int](4)

	for i := 0; i < 4; i++ {
		if !r.tryPush(i) {
			t.Fatalf("tryPush(%d) failed unexpectedly", i)
		}
	}
	if r.tryPush(99) {
		t.Fatal("tryPush should fail once the ring is saturated")
	}

	for i := 0; i < 4; i++ {
		v, ok := r.tryPop()
		if !ok || v != i {
			t.Fatalf("tryPop() = %d, %v, want %d, true", v, ok, i)
		}
	}
	if _, ok := r.tryPop(); ok {
		t.Fatal("tryPop on an empty ring should report false")
	}
}

func TestSPSCRingDrainAll(t *testing.T) {
	r := newSPSCRing[string](8)
	r.tryPush("a")
	r.tryPush("b")
	r.tryPush("c")

	var drained []string
	r.drainAll(func(v string) { drained = append(drained, v) })

	if len(drained) != 3 || drained[0] != "a" || drained[2] != "c" {
		t.Fatalf("drainAll order wrong: %v", drained)
	}
	if r.len() != 0 {
		t.Fatalf("len() after drainAll = %d, want 0", r.len())
	}
}

func TestSPSCRingConcurrentProducerConsumer(t *testing.T) {
	r := newSPSCRing[int](16)
	const n = 10000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !r.tryPush(i) {
			}
		}
	}()

	received := make([]int, 0, n)
	go func() {
		defer wg.Done()
		for len(received) < n {
			if v, ok := r.tryPop(); ok {
				received = append(received, v)
			}
		}
	}()

	wg.Wait()
	for i, v := range received {
		if v != i {
			t.Fatalf("out-of-order delivery at %d: got %d", i, v)
		}
	}
}

func TestRingUsableCapacityMatchesRequested(t *testing.T) {
	// A ring built with capacity n must accept exactly n pushes before
	// saturating, matching DefaultCommandBufferSize (16) and
	// DefaultSfxQueueCapacity (4096) exactly rather than rounding up to
	// the next power of two.
	for _, n := range []int{1, 3, 4, 16, 4096} {
		r := newSPSCRing[int](n)
		pushed := 0
		for r.tryPush(pushed) {
			pushed++
		}
		if pushed != n {
			t.Errorf("capacity %d: accepted %d pushes before saturating, want exactly %d", n, pushed, n)
		}
	}
}
