// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"sync"
)

// Well-known service names.
const (
	ServiceStore    = "store"
	ServiceConfig   = "config"
	ServiceSession  = "session"
	ServiceHistory  = "history"
	ServiceRegistry = "registry"
	ServiceTheme    = "theme"
)

// Services is a named service lookup shared by all processors.
type Services struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewServices creates an empty service set.
func NewServices() *Services {
	return &Services{services: make(map[string]any)}
}

// Register stores svc under name, replacing any previous value.
func (s *Services) Register(name string, svc any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[name] = svc
}

// Lookup returns the service registered under name.
func (s *Services) Lookup(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[name]
	return svc, ok
}

// Names returns the registered service names, sorted.
func (s *Services) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Service returns the service under name if it has type T.
func Service[T any](s *Services, name string) (T, bool) {
	var zero T
	svc, ok := s.Lookup(name)
	if !ok {
		return zero, false
	}
	typed, ok := svc.(T)
	return typed, ok
}
