// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Mode receives keystrokes while it is on top of the stack.
type Mode interface {
	// HandleKey processes one key.
	HandleKey(k Key)

	// Activate is called when the mode becomes the top of the stack.
	Activate()
}

// Display is where modes draw.
type Display interface {
	Write(s string)
	Width() int
}

// Stack is a pushdown stack of input modes. The base mode is never popped.
type Stack struct {
	mu     sync.Mutex
	modes  []Mode
	logger *log.Logger
}

// NewStack creates a stack with base at the bottom.
func NewStack(base Mode, logger *log.Logger) *Stack {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Stack{modes: []Mode{base}, logger: logger}
}

// Push makes m the active mode.
func (s *Stack) Push(m Mode) {
	s.mu.Lock()
	s.modes = append(s.modes, m)
	depth := len(s.modes)
	s.mu.Unlock()

	s.logger.Debug("mode pushed", "depth", depth)
	m.Activate()
}

// Pop removes m from the stack. Popping the base mode is a logged no-op.
// It reports whether m was removed.
func (s *Stack) Pop(m Mode) bool {
	s.mu.Lock()
	idx := -1
	for i := len(s.modes) - 1; i >= 1; i-- {
		if s.modes[i] == m {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn("pop ignored: mode is the base or not on the stack")
		return false
	}
	wasTop := idx == len(s.modes)-1
	s.modes = append(s.modes[:idx], s.modes[idx+1:]...)
	top := s.modes[len(s.modes)-1]
	depth := len(s.modes)
	s.mu.Unlock()

	s.logger.Debug("mode popped", "depth", depth)
	if wasTop {
		top.Activate()
	}
	return true
}

// Current returns the active mode.
func (s *Stack) Current() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modes[len(s.modes)-1]
}

// Depth returns the number of modes, including the base.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.modes)
}

// HandleInput decodes data and routes each key to the mode on top at the
// time the key is processed.
func (s *Stack) HandleInput(data string) {
	for _, k := range DecodeKeys(data) {
		s.Current().HandleKey(k)
	}
}
