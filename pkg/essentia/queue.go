// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import "sync"

// CommandQueue buffers encoded commands until they are drained.
//
// The amplifier's input buffer is small, so commands are released one per
// drain call rather than written back to back. Order is strictly FIFO;
// duplicates are not coalesced. Safe for concurrent use.
type CommandQueue struct {
	mu      sync.Mutex
	pending []string
}

// NewCommandQueue creates an empty queue
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Enqueue appends a command to the tail of the queue
func (q *CommandQueue) Enqueue(cmd string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, cmd)
}

// DrainOne removes and returns the head of the queue.
// Returns "", false when the queue is empty.
func (q *CommandQueue) DrainOne() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return "", false
	}
	cmd := q.pending[0]
	q.pending[0] = ""
	q.pending = q.pending[1:]
	return cmd, true
}

// IsEmpty reports whether no command is pending
func (q *CommandQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending commands
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Clear drops every pending command
func (q *CommandQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
}
