package controller

import "sync"

// audioQueue is an unbounded single-producer/single-consumer handoff
// between the audio capture callback and the processing goroutine
// (spec.md §2: captured chunks cross this boundary without being
// dropped). Push never blocks on queue depth — only briefly on the
// mutex — and items are delivered to Pop in the order they were pushed.
type audioQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  [][]float32
	closed bool
}

func newAudioQueue() *audioQueue {
	q := &audioQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends samples to the queue. Safe to call from the audio
// callback: it never waits on queue depth, so the capture thread is
// never held up by a slow consumer.
func (q *audioQueue) Push(samples []float32) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, samples)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop blocks until a chunk is available or the queue is closed. The
// bool return is false only once Close has been called and every
// pushed chunk has been drained.
func (q *audioQueue) Pop() ([]float32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Close unblocks any pending or future Pop once the backlog drains, and
// makes further Push calls no-ops.
func (q *audioQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
