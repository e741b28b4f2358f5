package controller

import "testing"

// TestAudioQueueUnbounded pushes far more chunks than the old bounded
// channel's capacity (64) before any Pop, and asserts every single one
// is still delivered, in order — the drop path this replaces would have
// silently discarded everything past the 64th push.
func TestAudioQueueUnbounded(t *testing.T) {
	q := newAudioQueue()
	const n = 10_000
	for i := 0; i < n; i++ {
		q.Push([]float32{float32(i)})
	}
	for i := 0; i < n; i++ {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() ok = false at i=%d, want true", i)
		}
		if len(got) != 1 || got[0] != float32(i) {
			t.Fatalf("Pop() = %v at i=%d, want [%d]", got, i, i)
		}
	}
}

func TestAudioQueueCloseUnblocksPop(t *testing.T) {
	q := newAudioQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	q.Close()

	if ok := <-done; ok {
		t.Fatal("Pop() ok = true after Close on an empty queue, want false")
	}
}

func TestAudioQueueDrainsBacklogBeforeClosing(t *testing.T) {
	q := newAudioQueue()
	q.Push([]float32{1})
	q.Push([]float32{2})
	q.Close()

	if _, ok := q.Pop(); !ok {
		t.Fatal("Pop() ok = false for backlog item pushed before Close, want true")
	}
	if _, ok := q.Pop(); !ok {
		t.Fatal("Pop() ok = false for second backlog item, want true")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop() ok = true after backlog drained, want false")
	}
}

func TestAudioQueuePushAfterCloseIsNoop(t *testing.T) {
	q := newAudioQueue()
	q.Close()
	q.Push([]float32{1})

	if _, ok := q.Pop(); ok {
		t.Fatal("Pop() ok = true after Push following Close, want false")
	}
}
