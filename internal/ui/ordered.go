package ui

import (
	"io"
	"sync"
)

// Ordered collects output blocks from parallel tasks and writes them in
// task order. A block is held back until every earlier slot has been
// written or skipped.
type Ordered struct {
	out   io.Writer
	mu    sync.Mutex
	slots [][]byte
	done  []bool
	next  int
}

// NewOrdered creates an ordered writer for n slots.
func NewOrdered(out io.Writer, n int) *Ordered {
	return &Ordered{out: out, slots: make([][]byte, n), done: make([]bool, n)}
}

// Put stores the block for slot i and writes every consecutive finished
// slot.
func (o *Ordered) Put(i int, data []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.slots[i] = data
	o.done[i] = true
	o.drain()
}

// Skip marks slot i as finished with no output.
func (o *Ordered) Skip(i int) {
	o.Put(i, nil)
}

// Flush writes the finished slots still held back behind unfinished
// ones, in order. It is called once no more blocks will arrive.
func (o *Ordered) Flush() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for ; o.next < len(o.slots); o.next++ {
		if o.done[o.next] {
			o.write(o.next)
		}
	}
}

func (o *Ordered) drain() {
	for o.next < len(o.slots) && o.done[o.next] {
		o.write(o.next)
		o.next++
	}
}

func (o *Ordered) write(i int) {
	if len(o.slots[i]) > 0 {
		_, _ = o.out.Write(o.slots[i])
	}
	o.slots[i] = nil
}
