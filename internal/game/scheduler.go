package game

import (
	"container/heap"
	"time"
)

type eventKind int

const (
	evCountdownTick eventKind = iota + 1
	evReveal
	evClockTick
	evResolve
	evToastExpire
)

// event is a callback scheduled to run at due. Events with the same due time
// run in the order they were scheduled.
type event struct {
	due  time.Time
	seq  int64
	kind eventKind

	pair    [2]int // evResolve
	match   bool   // evResolve
	toastID string // evToastExpire
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return ev
}

// scheduler is the per-session timer queue. It is not safe for concurrent
// use; the owning Session serializes access.
type scheduler struct {
	events eventHeap
	seq    int64
}

func (s *scheduler) schedule(ev event) {
	s.seq++
	ev.seq = s.seq
	heap.Push(&s.events, &ev)
}

// next pops the earliest event due at or before now.
func (s *scheduler) next(now time.Time) (event, bool) {
	if len(s.events) == 0 || s.events[0].due.After(now) {
		return event{}, false
	}
	return *heap.Pop(&s.events).(*event), true
}

// cancel drops every pending event of the given kinds.
func (s *scheduler) cancel(kinds ...eventKind) {
	kept := s.events[:0]
	for _, ev := range s.events {
		drop := false
		for _, k := range kinds {
			if ev.kind == k {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, ev)
		}
	}
	for i := len(kept); i < len(s.events); i++ {
		s.events[i] = nil
	}
	s.events = kept
	heap.Init(&s.events)
}

func (s *scheduler) clear() {
	s.events = nil
}

func (s *scheduler) pending(kind eventKind) int {
	n := 0
	for _, ev := range s.events {
		if ev.kind == kind {
			n++
		}
	}
	return n
}
