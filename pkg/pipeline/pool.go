// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import "sync"

// CommandPool hands out Command records and takes them back. It bounds
// the number of live records and rejects a release of a record that is
// not live, so leaks and double releases surface as errors.
type CommandPool struct {
	mu    sync.Mutex
	free  []*Command
	live  map[*Command]struct{}
	limit int

	allocated uint64
	released  uint64
}

// NewCommandPool creates a pool allowing at most limit live records.
func NewCommandPool(limit int) *CommandPool {
	if limit <= 0 {
		limit = DefaultCommandQueueSize + 2
	}
	return &CommandPool{
		free:  make([]*Command, 0, limit),
		live:  make(map[*Command]struct{}, limit),
		limit: limit,
	}
}

// Get returns a zeroed Command owned by the caller.
func (p *CommandPool) Get() (*Command, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.live) >= p.limit {
		return nil, ErrPoolExhausted
	}

	var cmd *Command
	if n := len(p.free); n > 0 {
		cmd = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		cmd = &Command{}
	}
	p.live[cmd] = struct{}{}
	p.allocated++
	return cmd, nil
}

// Put returns cmd to the pool. The caller must not touch cmd afterwards.
func (p *CommandPool) Put(cmd *Command) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.live[cmd]; !ok {
		return ErrDoubleRelease
	}
	delete(p.live, cmd)
	cmd.reset()
	p.free = append(p.free, cmd)
	p.released++
	return nil
}

// Live returns the number of records currently handed out.
func (p *CommandPool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Counts returns the total number of Get and Put calls that succeeded.
func (p *CommandPool) Counts() (allocated, released uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated, p.released
}
