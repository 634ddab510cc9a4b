// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// PROCESSOR REGISTRY
// =============================================================================

// Registry holds the forest of top-level processors.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]*Processor
	aliases    map[string]string
	env        *Environment
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processors: make(map[string]*Processor),
		aliases:    make(map[string]string),
	}
}

// Attach sets the environment passed to Initialize hooks and initializes
// every processor already registered.
func (r *Registry) Attach(env *Environment) error {
	r.mu.Lock()
	r.env = env
	all := r.sortedLocked()
	r.mu.Unlock()

	for _, p := range all {
		if err := initialize(p, env); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a top-level processor.
//
// With Metadata.ExtendsProcessor set, p is layered over any processor of the
// same name and keeps it as Original. Otherwise p replaces it, unless the
// existing processor or anything it extends is sealed, in which case
// ErrSealed is returned.
func (r *Registry) Register(p *Processor) error {
	if p == nil || strings.TrimSpace(p.Command) == "" {
		return fmt.Errorf("register: processor has no command name")
	}
	key := normalizeName(p.Command)

	r.mu.Lock()
	existing := r.processors[key]
	switch {
	case existing != nil && p.Metadata.ExtendsProcessor:
		p.Original = existing
	case existing != nil && existing.sealedChain():
		r.mu.Unlock()
		return fmt.Errorf("register %q: %w", p.Command, ErrSealed)
	}
	r.processors[key] = p
	r.rebuildAliasesLocked()
	env := r.env
	r.mu.Unlock()

	if env != nil {
		return initialize(p, env)
	}
	return nil
}

// sealedChain reports whether p or any processor it extends is sealed.
func (p *Processor) sealedChain() bool {
	for n := p; n != nil; n = n.Original {
		if n.Metadata.Sealed {
			return true
		}
	}
	return false
}

// MustRegister registers p and panics on error. For use with built-ins.
func (r *Registry) MustRegister(p *Processor) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Unregister removes the top-level processor named name.
//
// A sealed processor is left untouched. An extension is replaced by the
// processor it extends. It reports whether anything changed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.resolveKeyLocked(name)
	if !ok {
		return false
	}
	p := r.processors[key]
	if p.Metadata.Sealed {
		return false
	}

	if p.Original != nil {
		r.processors[key] = p.Original
	} else {
		delete(r.processors, key)
	}
	r.rebuildAliasesLocked()
	return true
}

// Get retrieves a top-level processor by name or alias.
func (r *Registry) Get(name string) *Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.resolveKeyLocked(name)
	if !ok {
		return nil
	}
	return r.processors[key]
}

// FindProcessor resolves name and then descends into sub-processors while
// chain words match. It returns the deepest match and how many chain words
// were consumed, or nil if name matches nothing.
func (r *Registry) FindProcessor(name string, chain []string) (*Processor, int) {
	p := r.Get(name)
	if p == nil {
		return nil, 0
	}

	consumed := 0
	for _, word := range chain {
		child := p.Child(word)
		if child == nil {
			break
		}
		p = child
		consumed++
	}
	return p, consumed
}

// Resolve finds the processor for a list of bare words. It returns the
// processor, the words that named it, and the remaining words.
func (r *Registry) Resolve(words []string) (*Processor, []string, []string) {
	if len(words) == 0 {
		return nil, nil, nil
	}
	p, consumed := r.FindProcessor(words[0], words[1:])
	if p == nil {
		return nil, nil, words
	}
	n := consumed + 1
	return p, words[:n], words[n:]
}

// All returns all top-level processors sorted by name.
func (r *Registry) All() []*Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked()
}

// ByCategory returns visible processors grouped by category.
func (r *Registry) ByCategory() map[string][]*Processor {
	result := make(map[string][]*Processor)
	for _, p := range r.All() {
		if p.Hidden {
			continue
		}
		category := p.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], p)
	}
	return result
}

// Names returns the names and aliases of visible top-level processors, sorted.
func (r *Registry) Names() []string {
	var names []string
	for _, p := range r.All() {
		if p.Hidden {
			continue
		}
		names = append(names, p.Names()...)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) sortedLocked() []*Processor {
	all := make([]*Processor, 0, len(r.processors))
	for _, p := range r.processors {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Command < all[j].Command
	})
	return all
}

func (r *Registry) resolveKeyLocked(name string) (string, bool) {
	key := normalizeName(name)
	if _, ok := r.processors[key]; ok {
		return key, true
	}
	if target, ok := r.aliases[key]; ok {
		return target, true
	}
	return "", false
}

// rebuildAliasesLocked recomputes the alias index. Primary names win over
// aliases on collision.
func (r *Registry) rebuildAliasesLocked() {
	r.aliases = make(map[string]string)
	for key, p := range r.processors {
		for _, alias := range p.Aliases {
			a := normalizeName(alias)
			if _, taken := r.processors[a]; taken {
				continue
			}
			r.aliases[a] = key
		}
	}
}

func initialize(p *Processor, env *Environment) error {
	if p.Initialize == nil {
		return nil
	}
	if err := p.Initialize(env); err != nil {
		return fmt.Errorf("initialize %q: %w", p.Command, err)
	}
	return nil
}

// normalizeName folds case and applies NFC so composed and decomposed forms
// of the same name match.
func normalizeName(name string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
}
