package marker

import "time"

type entry struct {
	at    time.Duration
	index int
}

// queue is a min-heap of markers. Pending markers are ordered by trigger time then list
// position; due markers by list position alone.
type queue struct {
	entries []entry
	byIndex bool
}

func (q *queue) Len() int { return len(q.entries) }

func (q *queue) Less(i, j int) bool {
	a, b := q.entries[i], q.entries[j]
	if !q.byIndex && a.at != b.at {
		return a.at < b.at
	}
	return a.index < b.index
}

func (q *queue) Swap(i, j int) { q.entries[i], q.entries[j] = q.entries[j], q.entries[i] }

func (q *queue) Push(x any) {
	q.entries = append(q.entries, x.(entry))
}

func (q *queue) Pop() any {
	n := len(q.entries)
	item := q.entries[n-1]
	q.entries = q.entries[:n-1]
	return item
}

func (q *queue) peek() entry {
	return q.entries[0]
}
